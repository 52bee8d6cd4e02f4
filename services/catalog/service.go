// Package catalog manages sectors, checklist templates and their items.
// Deletes cascade explicitly inside one transaction: sector → templates →
// items → instances → responses, so a partial cascade can never commit.
package catalog

import (
	"errors"

	"sectorcheck/apperr"
	"sectorcheck/dto"
	"sectorcheck/model"
	"sectorcheck/services/authz"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// --- Sectors ---

func (s *Service) CreateSector(actor *model.User, req dto.SectorRequest) (*model.Sector, error) {
	if !authz.CanManageCatalog(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "only administrators manage sectors")
	}
	var count int64
	if err := s.db.Model(&model.Sector{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.New(apperr.CodeValidation, "sector name already in use")
	}

	sector := model.Sector{Name: req.Name, Description: req.Description}
	if err := s.db.Create(&sector).Error; err != nil {
		return nil, err
	}
	return &sector, nil
}

func (s *Service) UpdateSector(actor *model.User, sectorID int, req dto.SectorRequest) (*model.Sector, error) {
	if !authz.CanManageCatalog(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "only administrators manage sectors")
	}
	var sector model.Sector
	if err := s.db.First(&sector, "sector_id = ?", sectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "sector not found")
		}
		return nil, err
	}

	var count int64
	err := s.db.Model(&model.Sector{}).
		Where("name = ? AND sector_id <> ?", req.Name, sectorID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.New(apperr.CodeValidation, "sector name already in use")
	}

	sector.Name = req.Name
	sector.Description = req.Description
	if err := s.db.Save(&sector).Error; err != nil {
		return nil, err
	}
	return &sector, nil
}

// DeleteSector removes the sector with everything built on it. Destructive by
// design: templates, their items, and transitively every instance and
// response recorded against those templates go with it.
func (s *Service) DeleteSector(actor *model.User, sectorID int) error {
	if !authz.CanManageCatalog(actor.Role) {
		return apperr.New(apperr.CodeForbidden, "only administrators manage sectors")
	}
	var sector model.Sector
	if err := s.db.First(&sector, "sector_id = ?", sectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "sector not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var templateIDs []int
		err := tx.Model(&model.ChecklistTemplate{}).
			Where("sector_id = ?", sectorID).
			Pluck("template_id", &templateIDs).Error
		if err != nil {
			return err
		}

		if len(templateIDs) > 0 {
			if err := deleteTemplateTrees(tx, templateIDs); err != nil {
				return err
			}
		}
		if err := tx.Where("sector_id = ?", sectorID).Delete(&model.LeaderSector{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Sector{}, "sector_id = ?", sectorID).Error
	})
}

func (s *Service) ListSectors(actor *model.User) ([]model.Sector, error) {
	if !authz.CanViewHistory(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "access denied")
	}
	var sectors []model.Sector
	if err := s.db.Order("name").Find(&sectors).Error; err != nil {
		return nil, err
	}
	return sectors, nil
}

// AssignLeaders replaces the sector's leader set. Only users with role Leader
// are meaningful assignees; anything else is rejected outright.
func (s *Service) AssignLeaders(actor *model.User, sectorID int, leaderIDs []int) error {
	if !authz.CanManageCatalog(actor.Role) {
		return apperr.New(apperr.CodeForbidden, "only administrators manage sectors")
	}
	var sector model.Sector
	if err := s.db.First(&sector, "sector_id = ?", sectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "sector not found")
		}
		return err
	}

	if len(leaderIDs) > 0 {
		var count int64
		err := s.db.Model(&model.User{}).
			Where("user_id IN ? AND role = ?", leaderIDs, model.RoleLeader).
			Count(&count).Error
		if err != nil {
			return err
		}
		if int(count) != len(leaderIDs) {
			return apperr.New(apperr.CodeValidation, "every assignee must be an existing user with role Leader")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sector_id = ?", sectorID).Delete(&model.LeaderSector{}).Error; err != nil {
			return err
		}
		for _, id := range leaderIDs {
			if err := tx.Create(&model.LeaderSector{UserID: id, SectorID: sectorID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// --- Templates ---

func (s *Service) CreateTemplate(actor *model.User, req dto.TemplateRequest) (*model.ChecklistTemplate, error) {
	if !authz.CanManageCatalog(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "only administrators manage templates")
	}
	var sector model.Sector
	if err := s.db.First(&sector, "sector_id = ?", req.SectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "sector not found")
		}
		return nil, err
	}

	template := model.ChecklistTemplate{
		Title:       req.Title,
		Description: req.Description,
		SectorID:    req.SectorID,
	}
	if err := s.db.Create(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (s *Service) UpdateTemplate(actor *model.User, templateID int, req dto.TemplateRequest) (*model.ChecklistTemplate, error) {
	if !authz.CanManageCatalog(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "only administrators manage templates")
	}
	var template model.ChecklistTemplate
	if err := s.db.First(&template, "template_id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "template not found")
		}
		return nil, err
	}
	var sector model.Sector
	if err := s.db.First(&sector, "sector_id = ?", req.SectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "sector not found")
		}
		return nil, err
	}

	template.Title = req.Title
	template.Description = req.Description
	template.SectorID = req.SectorID
	if err := s.db.Save(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (s *Service) DeleteTemplate(actor *model.User, templateID int) error {
	if !authz.CanManageCatalog(actor.Role) {
		return apperr.New(apperr.CodeForbidden, "only administrators manage templates")
	}
	var template model.ChecklistTemplate
	if err := s.db.First(&template, "template_id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "template not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteTemplateTrees(tx, []int{templateID})
	})
}

func (s *Service) ListTemplates(actor *model.User) ([]model.ChecklistTemplate, error) {
	if !authz.CanManageCatalog(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "only administrators manage templates")
	}
	var templates []model.ChecklistTemplate
	if err := s.db.Preload("Sector").Order("title").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// GetTemplate returns a template with its ordered items. Any authenticated
// user may read it; the fill form is built from this.
func (s *Service) GetTemplate(templateID int) (*model.ChecklistTemplate, []model.ChecklistItem, error) {
	var template model.ChecklistTemplate
	if err := s.db.Preload("Sector").First(&template, "template_id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.CodeNotFound, "template not found")
		}
		return nil, nil, err
	}
	var items []model.ChecklistItem
	if err := s.db.Where("template_id = ?", templateID).Order("item_id").Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &template, items, nil
}

// --- Items ---

func (s *Service) AddItem(actor *model.User, templateID int, req dto.ItemRequest) (*model.ChecklistItem, error) {
	if !authz.CanManageCatalog(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "only administrators manage templates")
	}
	var template model.ChecklistTemplate
	if err := s.db.First(&template, "template_id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "template not found")
		}
		return nil, err
	}

	item := model.ChecklistItem{Question: req.Question, TemplateID: templateID}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) DeleteItem(actor *model.User, itemID int) error {
	if !authz.CanManageCatalog(actor.Role) {
		return apperr.New(apperr.CodeForbidden, "only administrators manage templates")
	}
	var item model.ChecklistItem
	if err := s.db.First(&item, "item_id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "item not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&model.ChecklistItemResponse{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ChecklistItem{}, "item_id = ?", itemID).Error
	})
}

// deleteTemplateTrees removes the given templates with their items, instances
// and responses. Must run inside a transaction.
func deleteTemplateTrees(tx *gorm.DB, templateIDs []int) error {
	var instanceIDs []int
	err := tx.Model(&model.ChecklistInstance{}).
		Where("template_id IN ?", templateIDs).
		Pluck("instance_id", &instanceIDs).Error
	if err != nil {
		return err
	}

	if len(instanceIDs) > 0 {
		if err := tx.Where("instance_id IN ?", instanceIDs).Delete(&model.ChecklistItemResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("instance_id IN ?", instanceIDs).Delete(&model.ChecklistInstance{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("template_id IN ?", templateIDs).Delete(&model.ChecklistItem{}).Error; err != nil {
		return err
	}
	return tx.Where("template_id IN ?", templateIDs).Delete(&model.ChecklistTemplate{}).Error
}
