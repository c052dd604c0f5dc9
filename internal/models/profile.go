package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Profile is a provider page on the marketplace. Rating and ReviewCount are
// derived fields: only the rating recompute writes them.
type Profile struct {
	BaseModel
	UserID      string `gorm:"uniqueIndex;not null"`
	DisplayName string `gorm:"not null"`
	Headline    string
	About       string
	City        string         `gorm:"index"`
	Categories  datatypes.JSON `gorm:"type:jsonb"` // ["plumbing", "electrics"]
	Rating      float64        `gorm:"default:0"`
	ReviewCount int64          `gorm:"default:0"`
	IsPublic    bool           `gorm:"default:true"`

	// Relations
	Services []Service `gorm:"foreignKey:ProfileID"`
	Reviews  []Review  `gorm:"foreignKey:ProfileID"`
}

// GetCategories returns the profile categories as a string slice.
func (p *Profile) GetCategories() []string {
	var categories []string
	if len(p.Categories) > 0 {
		_ = json.Unmarshal(p.Categories, &categories)
	}
	return categories
}

// SetCategories stores the profile categories.
func (p *Profile) SetCategories(categories []string) {
	data, _ := json.Marshal(categories)
	p.Categories = datatypes.JSON(data)
}

// Service is a concrete offering owned by a profile. It carries its own
// derived rating aggregate, computed over service-level reviews only.
type Service struct {
	BaseModel
	ProfileID   string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Category    string  `gorm:"index"`
	Price       float64 `gorm:"default:0"`
	IsActive    bool    `gorm:"default:true"`
	Rating      float64 `gorm:"default:0"`
	ReviewCount int64   `gorm:"default:0"`

	// Relations
	Profile *Profile `gorm:"foreignKey:ProfileID"`
	Reviews []Review `gorm:"foreignKey:ServiceID"`
}
