package models

import "time"

// Review targets a profile and optionally one of that profile's services.
//
// Status moves pending -> approved or pending -> rejected exactly once.
// Published mirrors approval. Visible is a separate flag the profile owner
// controls; it hides the comment from public listings but a hidden approved
// review still counts toward the rating aggregate.
type Review struct {
	BaseModel
	ProfileID string  `gorm:"not null;index"`
	ServiceID *string `gorm:"index"`
	AuthorID  string  `gorm:"not null;index"`
	Rating    int     `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string

	Status         ReviewStatus `gorm:"type:varchar(20);default:'pending';index"`
	Published      bool         `gorm:"default:false"`
	Visible        bool         `gorm:"default:true"`
	ModerationNote string
	ModeratedBy    *string
	ModeratedAt    *time.Time

	// Relations
	Profile *Profile `gorm:"foreignKey:ProfileID"`
	Service *Service `gorm:"foreignKey:ServiceID"`
	Author  *User    `gorm:"foreignKey:AuthorID"`
}

// Qualifies reports whether the review counts toward rating aggregates.
// Visibility is deliberately not part of this check.
func (r *Review) Qualifies() bool {
	return r.Status == ReviewStatusApproved && r.Published
}
