// model/template.go
package model

type ChecklistTemplate struct {
	TemplateID  int    `gorm:"column:template_id;primaryKey;autoIncrement" json:"template_id"`
	Title       string `gorm:"column:title;type:varchar(150);not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	SectorID    int    `gorm:"column:sector_id;not null" json:"sector_id"`

	// Relations
	Sector Sector `gorm:"foreignKey:SectorID;references:SectorID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"sector"`
}

func (ChecklistTemplate) TableName() string {
	return "checklist_templates"
}

// ChecklistItem is one question of a template. Item order is its id order.
type ChecklistItem struct {
	ItemID     int    `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id"`
	Question   string `gorm:"column:question;type:varchar(500);not null" json:"question"`
	TemplateID int    `gorm:"column:template_id;not null" json:"template_id"`

	// Relations
	Template ChecklistTemplate `gorm:"foreignKey:TemplateID;references:TemplateID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}
