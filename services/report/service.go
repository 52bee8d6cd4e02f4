// Package report computes compliance aggregates and serves the history
// listing and exports. The listing and every export path share one query
// builder, so identical filters always yield identical ordered sets.
package report

import (
	"errors"
	"math"

	"sectorcheck/apperr"
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

type SectorCompliance struct {
	Sector string  `json:"sector"`
	Rate   float64 `json:"rate"`
}

// ComplianceBySector computes 100 * Yes / all responses per sector, rounded
// to 2 decimal places. Sectors with zero recorded responses are omitted, not
// zero-filled; the dashboard charts rely on that.
func (s *Service) ComplianceBySector() ([]SectorCompliance, error) {
	var rows []SectorCompliance
	err := s.db.Raw(`
		SELECT s.name AS sector,
		       SUM(CASE WHEN r.response = ? THEN 1 ELSE 0 END) * 100.0 / COUNT(r.response_id) AS rate
		FROM sectors s
		JOIN checklist_templates t ON t.sector_id = s.sector_id
		JOIN checklist_instances i ON i.template_id = t.template_id
		JOIN checklist_item_responses r ON r.instance_id = i.instance_id
		GROUP BY s.sector_id, s.name
		ORDER BY s.name`, model.AnswerYes).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rate = math.Round(rows[i].Rate*100) / 100
	}
	return rows, nil
}

type NonCompliantItem struct {
	ItemID   int    `json:"item_id"`
	Question string `json:"question"`
	Count    int    `json:"count"`
}

// TopNonCompliantItems counts "No" responses per item question, descending.
// Ties at the truncation boundary break on item id ascending so the result is
// deterministic on every backend.
func (s *Service) TopNonCompliantItems(limit int) ([]NonCompliantItem, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []NonCompliantItem
	err := s.db.Raw(`
		SELECT it.item_id AS item_id, it.question AS question, COUNT(r.response_id) AS count
		FROM checklist_item_responses r
		JOIN checklist_items it ON it.item_id = r.item_id
		WHERE r.response = ?
		GROUP BY it.item_id, it.question
		ORDER BY count DESC, it.item_id ASC
		LIMIT ?`, model.AnswerNo, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// HistoryFilter narrows the instance history. Zero values mean "no filter".
type HistoryFilter struct {
	Status   string
	SectorID int
}

// historyQuery is the one and only filter composition: status, then sector
// via template membership, then mandatory role scoping. Both FilteredHistory
// and ExportRows build on it.
func (s *Service) historyQuery(actor *model.User, filter HistoryFilter) (*gorm.DB, error) {
	if !authz.CanViewHistory(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "access denied")
	}

	q := s.db.Model(&model.ChecklistInstance{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SectorID != 0 {
		q = q.Where("template_id IN (?)", s.db.Model(&model.ChecklistTemplate{}).
			Select("template_id").Where("sector_id = ?", filter.SectorID))
	}
	if actor.Role == model.RoleLeader {
		managed, err := authz.ManagedSectorIDs(s.db, actor.UserID)
		if err != nil {
			return nil, err
		}
		if len(managed) == 0 {
			// A leader with no sectors sees nothing, not everything.
			q = q.Where("1 = 0")
		} else {
			q = q.Where("template_id IN (?)", s.db.Model(&model.ChecklistTemplate{}).
				Select("template_id").Where("sector_id IN ?", managed))
		}
	}
	return q.Order("submitted_at DESC, instance_id DESC"), nil
}

// FilteredHistory returns instances matching the filter, scoped to the actor,
// newest submissions first.
func (s *Service) FilteredHistory(actor *model.User, filter HistoryFilter) ([]model.ChecklistInstance, error) {
	q, err := s.historyQuery(actor, filter)
	if err != nil {
		return nil, err
	}
	var instances []model.ChecklistInstance
	err = q.Preload("Operator").Preload("Leader").
		Preload("Template").Preload("Template.Sector").
		Find(&instances).Error
	if err != nil {
		return nil, err
	}
	return instances, nil
}

// ExportRow is one line of the bulk export: instance fields repeated per
// response.
type ExportRow struct {
	InstanceID    int
	Status        string
	SubmittedAt   string
	Operator      string
	Leader        string
	DecidedAt     string
	Sector        string
	TemplateTitle string
	ItemID        int
	Question      string
	Answer        string
	Comment       string
}

const timeLayout = "2006-01-02 15:04:05"

// ExportRows flattens the filtered history into export rows. Same filters,
// same actor, same order as FilteredHistory, by construction.
func (s *Service) ExportRows(actor *model.User, filter HistoryFilter) ([]ExportRow, error) {
	instances, err := s.FilteredHistory(actor, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]ExportRow, 0, len(instances))
	for _, instance := range instances {
		var responses []model.ChecklistItemResponse
		err := s.db.Preload("Item").
			Where("instance_id = ?", instance.InstanceID).
			Order("item_id").Find(&responses).Error
		if err != nil {
			return nil, err
		}

		leaderName := ""
		if instance.Leader != nil {
			leaderName = instance.Leader.Username
		}
		decidedAt := ""
		if instance.DecidedAt != nil {
			decidedAt = instance.DecidedAt.Format(timeLayout)
		}
		for _, response := range responses {
			rows = append(rows, ExportRow{
				InstanceID:    instance.InstanceID,
				Status:        instance.Status,
				SubmittedAt:   instance.SubmittedAt.Format(timeLayout),
				Operator:      instance.Operator.Username,
				Leader:        leaderName,
				DecidedAt:     decidedAt,
				Sector:        instance.Template.Sector.Name,
				TemplateTitle: instance.Template.Title,
				ItemID:        response.ItemID,
				Question:      response.Item.Question,
				Answer:        response.Response,
				Comment:       response.Comment,
			})
		}
	}
	return rows, nil
}

// InstanceReport gathers everything the per-instance PDF needs. Access rule
// matches reviewing: administrator, or leader of the owning sector.
func (s *Service) InstanceReport(actor *model.User, instanceID int) (*InstanceReport, error) {
	var instance model.ChecklistInstance
	err := s.db.Preload("Operator").Preload("Leader").
		Preload("Template").Preload("Template.Sector").
		First(&instance, "instance_id = ?", instanceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "checklist instance not found")
		}
		return nil, err
	}

	managed, err := authz.ManagedSectorIDs(s.db, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReview(actor.Role, instance.Template.SectorID, managed) {
		return nil, apperr.New(apperr.CodeForbidden, "you are not a leader of this checklist's sector")
	}

	var responses []model.ChecklistItemResponse
	err = s.db.Preload("Item").
		Where("instance_id = ?", instanceID).
		Order("item_id").Find(&responses).Error
	if err != nil {
		return nil, err
	}

	r := &InstanceReport{
		InstanceID:    instance.InstanceID,
		Status:        instance.Status,
		SubmittedAt:   instance.SubmittedAt.Format(timeLayout),
		Operator:      instance.Operator.Username,
		Sector:        instance.Template.Sector.Name,
		TemplateTitle: instance.Template.Title,
	}
	if instance.Leader != nil {
		r.Leader = instance.Leader.Username
	}
	if instance.DecidedAt != nil {
		r.DecidedAt = instance.DecidedAt.Format(timeLayout)
	}
	for _, response := range responses {
		r.Items = append(r.Items, ReportItem{
			Question: response.Item.Question,
			Answer:   response.Response,
			Comment:  response.Comment,
		})
	}
	return r, nil
}
