package dto

import "time"

type CreateProfileRequest struct {
	DisplayName string   `json:"display_name" validate:"required,max=100"`
	Headline    string   `json:"headline" validate:"omitempty,max=200"`
	About       string   `json:"about" validate:"omitempty,max=5000"`
	City        string   `json:"city" validate:"required,max=100"`
	Categories  []string `json:"categories" validate:"omitempty,max=10,dive,max=50"`
}

type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Headline    *string  `json:"headline,omitempty" validate:"omitempty,max=200"`
	About       *string  `json:"about,omitempty" validate:"omitempty,max=5000"`
	City        *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	Categories  []string `json:"categories,omitempty" validate:"omitempty,max=10,dive,max=50"`
	IsPublic    *bool    `json:"is_public,omitempty"`
}

type CreateServiceRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Category    string  `json:"category" validate:"omitempty,max=50"`
	Price       float64 `json:"price" validate:"omitempty,min=0"`
}

type ProfileResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Headline    string    `json:"headline,omitempty"`
	About       string    `json:"about,omitempty"`
	City        string    `json:"city"`
	Categories  []string  `json:"categories"`
	Rating      float64   `json:"rating"`
	ReviewCount int64     `json:"review_count"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`

	Services []*ServiceResponse `json:"services,omitempty"`
}

type ServiceResponse struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"is_active"`
	Rating      float64   `json:"rating"`
	ReviewCount int64     `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProfileListResponse struct {
	Profiles   []*ProfileResponse `json:"profiles"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}
