// Package notify resolves who is responsible for a submitted checklist and
// hands messages to the mail and push collaborators. Delivery is asynchronous
// and best-effort: the submission has already committed by the time anything
// here runs, and failures are logged, never surfaced to the operator.
package notify

import (
	"fmt"

	"sectorcheck/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Mailer interface {
	Send(subject string, recipients []string, htmlBody string) error
}

type PushSender interface {
	SendMulticast(tokens []string, title, body string, data map[string]string) error
}

type Dispatcher struct {
	db      *gorm.DB
	mailer  Mailer     // nil when SMTP is not configured
	push    PushSender // nil when FCM is not configured
	baseURL string
	log     *zap.Logger
}

func NewDispatcher(db *gorm.DB, mailer Mailer, push PushSender, baseURL string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{db: db, mailer: mailer, push: push, baseURL: baseURL, log: log}
}

// LeadersForSector returns the users with role Leader assigned to sectorID.
func (d *Dispatcher) LeadersForSector(sectorID int) ([]model.User, error) {
	var leaders []model.User
	err := d.db.
		Joins("JOIN leader_sectors ON leader_sectors.user_id = users.user_id").
		Where("leader_sectors.sector_id = ? AND users.role = ?", sectorID, model.RoleLeader).
		Find(&leaders).Error
	if err != nil {
		return nil, fmt.Errorf("resolve sector leaders: %w", err)
	}
	return leaders, nil
}

// ReviewURL is the deep link that resolves to the review action for an
// instance; it is what the notification email and the template QR build on.
func (d *Dispatcher) ReviewURL(instanceID int) string {
	return fmt.Sprintf("%s/leader/checklists/%d", d.baseURL, instanceID)
}

// Submitted notifies the sector's leaders about a newly Pending instance and
// returns how many leaders were resolved. Zero means nothing was sent and the
// caller should tell the operator so. Sending happens in the background.
func (d *Dispatcher) Submitted(instance *model.ChecklistInstance, template *model.ChecklistTemplate, operator *model.User) (int, error) {
	leaders, err := d.LeadersForSector(template.SectorID)
	if err != nil {
		return 0, err
	}
	if len(leaders) == 0 {
		return 0, nil
	}

	emails := make([]string, 0, len(leaders))
	tokens := make([]string, 0, len(leaders))
	for _, leader := range leaders {
		emails = append(emails, leader.Email)
		if leader.FCMToken != "" {
			tokens = append(tokens, leader.FCMToken)
		}
	}

	subject := "New checklist awaiting review: " + template.Title
	reviewURL := d.ReviewURL(instance.InstanceID)
	body := buildSubmissionEmail(template.Title, operator.Username, instance.SubmittedAt.Format("2006-01-02 15:04"), reviewURL)

	go func() {
		if d.mailer != nil {
			if err := d.mailer.Send(subject, emails, body); err != nil {
				d.log.Warn("submission email failed",
					zap.Int("instance_id", instance.InstanceID), zap.Error(err))
			}
		} else {
			d.log.Warn("mailer not configured, skipping submission email",
				zap.Int("instance_id", instance.InstanceID))
		}
		if d.push != nil && len(tokens) > 0 {
			err := d.push.SendMulticast(tokens, subject,
				fmt.Sprintf("%s submitted %q for review", operator.Username, template.Title),
				map[string]string{"instance_id": fmt.Sprintf("%d", instance.InstanceID)})
			if err != nil {
				d.log.Warn("submission push failed",
					zap.Int("instance_id", instance.InstanceID), zap.Error(err))
			}
		}
	}()

	return len(leaders), nil
}

// SendPendingReminders emails every leader a digest of Pending instances in
// their sectors. Read-only; used by the daily scheduler job.
func (d *Dispatcher) SendPendingReminders() error {
	if d.mailer == nil {
		return nil
	}

	var leaders []model.User
	if err := d.db.Where("role = ?", model.RoleLeader).Find(&leaders).Error; err != nil {
		return fmt.Errorf("load leaders: %w", err)
	}

	for _, leader := range leaders {
		var sectorIDs []int
		err := d.db.Model(&model.LeaderSector{}).
			Where("user_id = ?", leader.UserID).
			Pluck("sector_id", &sectorIDs).Error
		if err != nil {
			return fmt.Errorf("load assignments: %w", err)
		}
		if len(sectorIDs) == 0 {
			continue
		}

		var pending int64
		err = d.db.Model(&model.ChecklistInstance{}).
			Where("status = ?", model.StatusPending).
			Where("template_id IN (?)", d.db.Model(&model.ChecklistTemplate{}).
				Select("template_id").Where("sector_id IN ?", sectorIDs)).
			Count(&pending).Error
		if err != nil {
			return fmt.Errorf("count pending: %w", err)
		}
		if pending == 0 {
			continue
		}

		body := buildReminderEmail(leader.Username, int(pending), d.baseURL+"/leader/pending")
		if err := d.mailer.Send("Checklists awaiting your review", []string{leader.Email}, body); err != nil {
			d.log.Warn("reminder email failed", zap.String("leader", leader.Username), zap.Error(err))
		}
	}
	return nil
}

func buildSubmissionEmail(title, operator, submittedAt, reviewURL string) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif;">
			<h2>New checklist awaiting review</h2>
			<p><b>%s</b> submitted the checklist <b>%s</b> at %s.</p>
			<p>
				<a href="%s" style="background-color:#0d6efd;color:#ffffff;padding:10px 18px;text-decoration:none;border-radius:4px;">
					Review checklist
				</a>
			</p>
			<p>If the button does not work, open this link: %s</p>
		</body>
		</html>`, operator, title, submittedAt, reviewURL, reviewURL)
}

func buildReminderEmail(leader string, pending int, pendingURL string) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif;">
			<p>Hello %s,</p>
			<p>You have <b>%d</b> checklist(s) waiting for a decision.</p>
			<p><a href="%s">Open your pending list</a></p>
		</body>
		</html>`, leader, pending, pendingURL)
}
