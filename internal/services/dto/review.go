package dto

import "time"

// ======================
// Request DTOs
// ======================

type CreateReviewRequest struct {
	ProfileID string  `json:"profile_id" validate:"required"`
	ServiceID *string `json:"service_id,omitempty"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   string  `json:"comment" validate:"omitempty,max=2000"`
}

type ModerateReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Reason   string `json:"reason" validate:"omitempty,max=500"`
}

// ======================
// Response DTOs
// ======================

type ReviewResponse struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	ServiceID *string   `json:"service_id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Status    string    `json:"status"`
	Published bool      `json:"published"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *ProfileInfo `json:"profile,omitempty"`
	Service *ServiceInfo `json:"service,omitempty"`
	Author  *AuthorInfo  `json:"author,omitempty"`
}

type ReviewListResponse struct {
	Reviews    []*ReviewResponse `json:"reviews"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type VisibilityResponse struct {
	ReviewID string `json:"review_id"`
	Visible  bool   `json:"visible"`
}

type RatingStatsResponse struct {
	TotalReviews  int64         `json:"total_reviews"`
	AverageRating float64       `json:"average_rating"`
	RatingCounts  map[int]int64 `json:"rating_counts"` // 1-5 stars count
}

// ======================
// Embedded info
// ======================

type ProfileInfo struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	City        string  `json:"city,omitempty"`
	Rating      float64 `json:"rating"`
}

type ServiceInfo struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
}

type AuthorInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
