// model/sector.go
package model

type Sector struct {
	SectorID    int    `gorm:"column:sector_id;primaryKey;autoIncrement" json:"sector_id"`
	Name        string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"column:description;type:varchar(255)" json:"description"`
}

func (Sector) TableName() string {
	return "sectors"
}

// LeaderSector is the many-to-many assignment between leaders and the
// sectors they are responsible for.
type LeaderSector struct {
	UserID   int `gorm:"column:user_id;primaryKey" json:"user_id"`
	SectorID int `gorm:"column:sector_id;primaryKey" json:"sector_id"`

	// Relations
	User   User   `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
	Sector Sector `gorm:"foreignKey:SectorID;references:SectorID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

func (LeaderSector) TableName() string {
	return "leader_sectors"
}
