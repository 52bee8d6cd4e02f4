// model/instance.go
package model

import (
	"time"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

const (
	VerdictApprove = "Approve"
	VerdictReject  = "Reject"
)

// StatusForVerdict maps a review verdict to the terminal instance status.
// The second return is false for anything outside the two verdicts.
func StatusForVerdict(verdict string) (string, bool) {
	switch verdict {
	case VerdictApprove:
		return StatusApproved, true
	case VerdictReject:
		return StatusRejected, true
	}
	return "", false
}

// ChecklistInstance is one filled-out occurrence of a template. Status starts
// Pending; decided_at and leader_id are set together, exactly once, on the
// single transition out of Pending.
type ChecklistInstance struct {
	InstanceID        int        `gorm:"column:instance_id;primaryKey;autoIncrement" json:"instance_id"`
	Status            string     `gorm:"column:status;type:varchar(30);default:'Pending';not null" json:"status"`
	SubmittedAt       time.Time  `gorm:"column:submitted_at;not null" json:"submitted_at"`
	DecidedAt         *time.Time `gorm:"column:decided_at" json:"decided_at"`
	OperatorID        int        `gorm:"column:operator_id;not null" json:"operator_id"`
	LeaderID          *int       `gorm:"column:leader_id" json:"leader_id"`
	TemplateID        int        `gorm:"column:template_id;not null" json:"template_id"`
	OperatorSignature string     `gorm:"column:operator_signature;type:varchar(255)" json:"operator_signature"`
	LeaderSignature   string     `gorm:"column:leader_signature;type:varchar(255)" json:"leader_signature"`

	// Relations
	Operator User              `gorm:"foreignKey:OperatorID;references:UserID" json:"operator"`
	Leader   *User             `gorm:"foreignKey:LeaderID;references:UserID" json:"leader,omitempty"`
	Template ChecklistTemplate `gorm:"foreignKey:TemplateID;references:TemplateID" json:"template"`
}

func (ChecklistInstance) TableName() string {
	return "checklist_instances"
}
