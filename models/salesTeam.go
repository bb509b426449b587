package models

// SalesTeam links a sales person to a party document (parent).
type SalesTeam struct {
	ID           int     `gorm:"primary_key" json:"id"`
	ParentType   string  `gorm:"size:140;not null" json:"parent_type"`
	Parent       string  `gorm:"index;size:140;not null" json:"parent"`
	SalesPerson  string  `gorm:"index;size:140;not null" json:"sales_person"`
	AllocatedPct float64 `gorm:"column:allocated_percentage;not null;default:0" json:"allocated_percentage"`
}
