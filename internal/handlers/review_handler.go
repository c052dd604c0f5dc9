package handlers

import (
	"net/http"

	"skillmarket_backend/internal/middleware"
	"skillmarket_backend/internal/models"
	"skillmarket_backend/internal/services"
	"skillmarket_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public routes
	public := r.Group("/reviews")
	{
		public.GET("/profiles/:profileId", h.GetProfileReviews)
		public.GET("/profiles/:profileId/stats", h.GetProfileRatingStats)
		public.GET("/services/:serviceId", h.GetServiceReviews)
		public.GET("/services/:serviceId/stats", h.GetServiceRatingStats)
	}

	// Protected routes
	reviews := r.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware())
	{
		reviews.POST("", h.CreateReview)
		reviews.GET("/my", h.GetMyReviews)
		reviews.POST("/:reviewId/visibility", h.ToggleVisibility)
	}

	// Admin routes
	admin := r.Group("/admin/reviews")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.GET("/pending", h.GetPendingReviews)
		admin.GET("/:reviewId", h.GetReview)
		admin.POST("/:reviewId/moderate", h.ModerateReview)
	}

	// Admin rating repair
	adminRatings := r.Group("/admin/ratings")
	adminRatings.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		adminRatings.POST("/profiles/:profileId/recompute", h.RecomputeProfileRating)
		adminRatings.POST("/services/:serviceId/recompute", h.RecomputeServiceRating)
	}
}

// --- Public handlers ---

func (h *ReviewHandler) GetProfileReviews(c *gin.Context) {
	profileID := c.Param("profileId")
	page, pageSize := ParsePagination(c)

	reviews, err := h.reviewService.GetProfileReviews(c.Request.Context(), profileID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) GetProfileRatingStats(c *gin.Context) {
	profileID := c.Param("profileId")

	stats, err := h.reviewService.GetProfileRatingStats(c.Request.Context(), profileID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ReviewHandler) GetServiceReviews(c *gin.Context) {
	serviceID := c.Param("serviceId")
	page, pageSize := ParsePagination(c)

	reviews, err := h.reviewService.GetServiceReviews(c.Request.Context(), serviceID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) GetServiceRatingStats(c *gin.Context) {
	serviceID := c.Param("serviceId")

	stats, err := h.reviewService.GetServiceRatingStats(c.Request.Context(), serviceID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// --- User handlers ---

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req dto.CreateReviewRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetMyReviews(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *ReviewHandler) ToggleVisibility(c *gin.Context) {
	reviewID := c.Param("reviewId")

	resp, err := h.reviewService.ToggleReviewVisibility(c.Request.Context(), middleware.GetUserID(c), reviewID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// --- Admin handlers ---

func (h *ReviewHandler) GetPendingReviews(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	reviews, err := h.reviewService.GetPendingReviews(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID := c.Param("reviewId")

	review, err := h.reviewService.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	reviewID := c.Param("reviewId")

	var req dto.ModerateReviewRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	review, err := h.reviewService.ModerateReview(c.Request.Context(), middleware.GetUserID(c), reviewID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) RecomputeProfileRating(c *gin.Context) {
	profileID := c.Param("profileId")

	h.reviewService.RecomputeProfileRating(c.Request.Context(), profileID)
	c.JSON(http.StatusAccepted, gin.H{"profile_id": profileID})
}

func (h *ReviewHandler) RecomputeServiceRating(c *gin.Context) {
	serviceID := c.Param("serviceId")

	h.reviewService.RecomputeServiceRating(c.Request.Context(), serviceID)
	c.JSON(http.StatusAccepted, gin.H{"service_id": serviceID})
}
