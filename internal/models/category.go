package models

import (
	"gorm.io/gorm"
)

// Category groups translations under a human readable name
type Category struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// TableName specifies the table name for Category Model
func (Category) TableName() string {
	return "categories"
}
