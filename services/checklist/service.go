// Package checklist implements the instance lifecycle: creation by an
// operator and the single terminal transition decided by a leader or an
// administrator. Pending → Approved | Rejected, nothing else.
package checklist

import (
	"errors"
	"time"

	"sectorcheck/apperr"
	"sectorcheck/model"
	"sectorcheck/services/authz"
	"sectorcheck/services/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Answer is one filled-out item of the submission form.
type Answer struct {
	ItemID    int
	Response  string
	Comment   string
	Photo     []byte
	PhotoName string
}

// Result reports what a submission produced. LeadersNotified is zero when the
// sector has no leaders; the caller surfaces that as a distinct outcome.
type Result struct {
	InstanceID      int `json:"instance_id"`
	LeadersNotified int `json:"leaders_notified"`
}

// Notifier is the post-commit dispatch hook. Implementations resolve leaders
// synchronously and deliver in the background.
type Notifier interface {
	Submitted(instance *model.ChecklistInstance, template *model.ChecklistTemplate, operator *model.User) (int, error)
}

type Service struct {
	db         *gorm.DB
	signatures storage.BlobStore
	evidence   storage.BlobStore
	notifier   Notifier
	log        *zap.Logger
	now        func() time.Time
}

func NewService(db *gorm.DB, signatures, evidence storage.BlobStore, notifier Notifier, log *zap.Logger) *Service {
	return &Service{
		db:         db,
		signatures: signatures,
		evidence:   evidence,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// CreateInstance persists one Pending instance with one response per template
// item. Partial submissions are rejected: every item must carry an answer
// from the closed set. Instance and responses commit atomically; notification
// dispatch runs after the commit and cannot fail the submission.
func (s *Service) CreateInstance(actor *model.User, templateID int, answers []Answer, signature []byte) (*Result, error) {
	if !authz.CanSubmit(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "authentication required to submit a checklist")
	}

	var template model.ChecklistTemplate
	if err := s.db.First(&template, "template_id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "template not found")
		}
		return nil, err
	}
	var items []model.ChecklistItem
	if err := s.db.Where("template_id = ?", templateID).Order("item_id").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.CodeInvalidState, "template has no items to answer")
	}

	byItem := make(map[int]Answer, len(answers))
	for _, a := range answers {
		if _, dup := byItem[a.ItemID]; dup {
			return nil, apperr.Newf(apperr.CodeInvalidState, "duplicate response for item %d", a.ItemID)
		}
		byItem[a.ItemID] = a
	}
	known := make(map[int]bool, len(items))
	for _, item := range items {
		known[item.ItemID] = true
		a, ok := byItem[item.ItemID]
		if !ok {
			return nil, apperr.Newf(apperr.CodeInvalidState, "item %d has no response", item.ItemID)
		}
		if !model.ValidAnswer(a.Response) {
			return nil, apperr.Newf(apperr.CodeInvalidState, "item %d has an invalid response value", item.ItemID)
		}
	}
	for itemID := range byItem {
		if !known[itemID] {
			return nil, apperr.Newf(apperr.CodeInvalidState, "item %d does not belong to this template", itemID)
		}
	}

	// Blobs go to the store before the transaction; the store hands back
	// opaque references and a failure aborts the whole submission.
	signatureRef := ""
	if len(signature) > 0 {
		ref, err := s.signatures.Store(signature, "signature.png")
		if err != nil {
			return nil, err
		}
		signatureRef = ref
	}
	photoRefs := make(map[int]string)
	for _, item := range items {
		a := byItem[item.ItemID]
		if len(a.Photo) == 0 {
			continue
		}
		ref, err := s.evidence.Store(a.Photo, a.PhotoName)
		if err != nil {
			return nil, err
		}
		photoRefs[item.ItemID] = ref
	}

	instance := model.ChecklistInstance{
		Status:            model.StatusPending,
		SubmittedAt:       s.now(),
		OperatorID:        actor.UserID,
		TemplateID:        templateID,
		OperatorSignature: signatureRef,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&instance).Error; err != nil {
			return err
		}
		for _, item := range items {
			a := byItem[item.ItemID]
			response := model.ChecklistItemResponse{
				Response:      a.Response,
				Comment:       a.Comment,
				PhotoEvidence: photoRefs[item.ItemID],
				InstanceID:    instance.InstanceID,
				ItemID:        item.ItemID,
			}
			if err := tx.Create(&response).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notified, err := s.notifier.Submitted(&instance, &template, actor)
	if err != nil {
		// Fire-and-forget: the submission already committed.
		s.log.Warn("notification dispatch failed",
			zap.Int("instance_id", instance.InstanceID), zap.Error(err))
		notified = 0
	}

	return &Result{InstanceID: instance.InstanceID, LeadersNotified: notified}, nil
}

// Decide applies the single terminal transition. The Pending guard is an
// atomic conditional update, so two concurrent reviewers cannot both win.
func (s *Service) Decide(actor *model.User, instanceID int, verdict string, signature []byte) error {
	status, ok := model.StatusForVerdict(verdict)
	if !ok {
		return apperr.New(apperr.CodeValidation, "verdict must be Approve or Reject")
	}

	var instance model.ChecklistInstance
	if err := s.db.Preload("Template").First(&instance, "instance_id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "checklist instance not found")
		}
		return err
	}

	managed, err := authz.ManagedSectorIDs(s.db, actor.UserID)
	if err != nil {
		return err
	}
	if !authz.CanReview(actor.Role, instance.Template.SectorID, managed) {
		return apperr.New(apperr.CodeForbidden, "you are not a leader of this checklist's sector")
	}
	if instance.Status != model.StatusPending {
		return apperr.New(apperr.CodeInvalidState, "checklist has already been decided")
	}

	signatureRef := ""
	if len(signature) > 0 {
		ref, err := s.signatures.Store(signature, "signature.png")
		if err != nil {
			return err
		}
		signatureRef = ref
	}

	updates := map[string]interface{}{
		"status":     status,
		"decided_at": s.now(),
		"leader_id":  actor.UserID,
	}
	if signatureRef != "" {
		updates["leader_signature"] = signatureRef
	}
	result := s.db.Model(&model.ChecklistInstance{}).
		Where("instance_id = ? AND status = ?", instanceID, model.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Lost the race: someone else decided between our read and this write.
		return apperr.New(apperr.CodeInvalidState, "checklist has already been decided")
	}
	return nil
}

// PendingForReview lists Pending instances the actor may decide, newest
// submissions first. Administrators see everything; leaders only their
// sectors.
func (s *Service) PendingForReview(actor *model.User) ([]model.ChecklistInstance, error) {
	if !authz.CanViewHistory(actor.Role) {
		return nil, apperr.New(apperr.CodeForbidden, "access denied")
	}

	q := s.db.Model(&model.ChecklistInstance{}).
		Preload("Operator").Preload("Template").Preload("Template.Sector").
		Where("status = ?", model.StatusPending)

	if actor.Role == model.RoleLeader {
		managed, err := authz.ManagedSectorIDs(s.db, actor.UserID)
		if err != nil {
			return nil, err
		}
		if len(managed) == 0 {
			return []model.ChecklistInstance{}, nil
		}
		q = q.Where("template_id IN (?)", s.db.Model(&model.ChecklistTemplate{}).
			Select("template_id").Where("sector_id IN ?", managed))
	}

	var instances []model.ChecklistInstance
	if err := q.Order("submitted_at DESC, instance_id DESC").Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}

// Get loads one instance with its responses for the review screen. Same
// access rule as deciding it.
func (s *Service) Get(actor *model.User, instanceID int) (*model.ChecklistInstance, []model.ChecklistItemResponse, error) {
	var instance model.ChecklistInstance
	err := s.db.Preload("Operator").Preload("Leader").
		Preload("Template").Preload("Template.Sector").
		First(&instance, "instance_id = ?", instanceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.CodeNotFound, "checklist instance not found")
		}
		return nil, nil, err
	}

	managed, err := authz.ManagedSectorIDs(s.db, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanReview(actor.Role, instance.Template.SectorID, managed) {
		return nil, nil, apperr.New(apperr.CodeForbidden, "you are not a leader of this checklist's sector")
	}

	var responses []model.ChecklistItemResponse
	err = s.db.Preload("Item").
		Where("instance_id = ?", instanceID).
		Order("item_id").Find(&responses).Error
	if err != nil {
		return nil, nil, err
	}
	return &instance, responses, nil
}
