// Package authz holds the pure role/relationship decision functions. They
// take everything they need as arguments so every mutating use case can call
// them explicitly, independent of the transport layer.
package authz

import (
	"sectorcheck/model"

	"gorm.io/gorm"
)

// CanManageCatalog: sectors, templates, items and user accounts are
// administrator territory.
func CanManageCatalog(role string) bool {
	return role == model.RoleAdministrator
}

// CanSubmit: any authenticated user may fill a checklist, whatever the role.
func CanSubmit(role string) bool {
	return model.ValidRole(role)
}

// CanViewHistory admits administrators and leaders. Leader results must
// additionally be scoped to managed sectors at query time.
func CanViewHistory(role string) bool {
	return role == model.RoleAdministrator || role == model.RoleLeader
}

// CanReview decides whether a user may approve or reject an instance whose
// template belongs to sectorID. managedSectorIDs is the caller's leader
// assignment set.
func CanReview(role string, sectorID int, managedSectorIDs []int) bool {
	if role == model.RoleAdministrator {
		return true
	}
	if role != model.RoleLeader {
		return false
	}
	for _, id := range managedSectorIDs {
		if id == sectorID {
			return true
		}
	}
	return false
}

// ManagedSectorIDs returns the sector ids assigned to the given user.
func ManagedSectorIDs(db *gorm.DB, userID int) ([]int, error) {
	var ids []int
	err := db.Model(&model.LeaderSector{}).
		Where("user_id = ?", userID).
		Pluck("sector_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
