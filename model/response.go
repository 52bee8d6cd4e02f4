// model/response.go
package model

const (
	AnswerYes           = "Yes"
	AnswerNo            = "No"
	AnswerPartial       = "Partial"
	AnswerNotApplicable = "Not-Applicable"
)

// ValidAnswer reports whether v belongs to the closed answer set.
func ValidAnswer(v string) bool {
	switch v {
	case AnswerYes, AnswerNo, AnswerPartial, AnswerNotApplicable:
		return true
	}
	return false
}

// ChecklistItemResponse answers one item within one instance. The item
// reference is non-owning: the question text stays readable through it even
// after the template evolves.
type ChecklistItemResponse struct {
	ResponseID    int    `gorm:"column:response_id;primaryKey;autoIncrement" json:"response_id"`
	Response      string `gorm:"column:response;type:varchar(20);not null" json:"response"`
	Comment       string `gorm:"column:comment;type:text" json:"comment"`
	PhotoEvidence string `gorm:"column:photo_evidence;type:varchar(255)" json:"photo_evidence"`
	InstanceID    int    `gorm:"column:instance_id;not null" json:"instance_id"`
	ItemID        int    `gorm:"column:item_id;not null" json:"item_id"`

	// Relations
	Instance ChecklistInstance `gorm:"foreignKey:InstanceID;references:InstanceID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
	Item     ChecklistItem     `gorm:"foreignKey:ItemID;references:ItemID" json:"item"`
}

func (ChecklistItemResponse) TableName() string {
	return "checklist_item_responses"
}
