package authz

import (
	"math/rand"
	"testing"

	"sectorcheck/model"
	"sectorcheck/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanManageCatalog(t *testing.T) {
	assert.True(t, CanManageCatalog(model.RoleAdministrator))
	assert.False(t, CanManageCatalog(model.RoleLeader))
	assert.False(t, CanManageCatalog(model.RoleOperator))
	assert.False(t, CanManageCatalog("Superuser"))
}

func TestCanSubmit(t *testing.T) {
	assert.True(t, CanSubmit(model.RoleAdministrator))
	assert.True(t, CanSubmit(model.RoleLeader))
	assert.True(t, CanSubmit(model.RoleOperator))
	assert.False(t, CanSubmit(""))
	assert.False(t, CanSubmit("guest"))
}

func TestCanViewHistory(t *testing.T) {
	assert.True(t, CanViewHistory(model.RoleAdministrator))
	assert.True(t, CanViewHistory(model.RoleLeader))
	assert.False(t, CanViewHistory(model.RoleOperator))
}

func TestCanReview(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		sectorID int
		managed  []int
		want     bool
	}{
		{"admin needs no assignment", model.RoleAdministrator, 7, nil, true},
		{"leader of the sector", model.RoleLeader, 2, []int{1, 2, 3}, true},
		{"leader of other sectors", model.RoleLeader, 9, []int{1, 2, 3}, false},
		{"leader with no sectors", model.RoleLeader, 1, nil, false},
		{"operator never reviews", model.RoleOperator, 1, []int{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReview(tt.role, tt.sectorID, tt.managed))
		})
	}
}

// Randomized assignment graphs: a leader may review an instance exactly when
// its sector is in their assignment set, and an operator never may.
func TestCanReviewAssignmentGraph(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		managed := map[int]bool{}
		var managedIDs []int
		for i := 0; i < rng.Intn(6); i++ {
			id := rng.Intn(10) + 1
			if !managed[id] {
				managed[id] = true
				managedIDs = append(managedIDs, id)
			}
		}
		sectorID := rng.Intn(10) + 1

		assert.Equal(t, managed[sectorID], CanReview(model.RoleLeader, sectorID, managedIDs))
		assert.False(t, CanReview(model.RoleOperator, sectorID, managedIDs))
		assert.True(t, CanReview(model.RoleAdministrator, sectorID, managedIDs))
	}
}

func TestManagedSectorIDs(t *testing.T) {
	db := testdb.Open(t)

	leader := model.User{Username: "lea", Email: "lea@example.com", HashedPassword: "x", Role: model.RoleLeader}
	other := model.User{Username: "otto", Email: "otto@example.com", HashedPassword: "x", Role: model.RoleLeader}
	require.NoError(t, db.Create(&leader).Error)
	require.NoError(t, db.Create(&other).Error)

	a := model.Sector{Name: "Assembly"}
	b := model.Sector{Name: "Logistics"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	require.NoError(t, db.Create(&model.LeaderSector{UserID: leader.UserID, SectorID: a.SectorID}).Error)
	require.NoError(t, db.Create(&model.LeaderSector{UserID: leader.UserID, SectorID: b.SectorID}).Error)
	require.NoError(t, db.Create(&model.LeaderSector{UserID: other.UserID, SectorID: b.SectorID}).Error)

	ids, err := ManagedSectorIDs(db, leader.UserID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{a.SectorID, b.SectorID}, ids)

	ids, err = ManagedSectorIDs(db, other.UserID)
	require.NoError(t, err)
	assert.Equal(t, []int{b.SectorID}, ids)

	ids, err = ManagedSectorIDs(db, 9999)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
