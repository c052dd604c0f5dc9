package handlers

import (
	"net/http"

	"skillmarket_backend/internal/middleware"
	"skillmarket_backend/internal/services"
	"skillmarket_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public routes
	public := r.Group("/profiles")
	{
		public.GET("", h.ListProfiles)
		public.GET("/:profileId", h.GetProfile)
		public.GET("/:profileId/services", h.GetProfileServices)
	}

	// Protected routes
	protected := r.Group("/profiles")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("", h.CreateProfile)
		protected.GET("/me", h.GetMyProfile)
		protected.PUT("/me", h.UpdateProfile)
		protected.POST("/me/services", h.CreateService)
		protected.DELETE("/me/services/:serviceId", h.DeleteService)
	}
}

// --- Public handlers ---

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	city := c.Query("city")
	category := c.Query("category")

	profiles, err := h.profileService.ListProfiles(c.Request.Context(), city, category, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID := c.Param("profileId")

	profile, err := h.profileService.GetProfile(c.Request.Context(), profileID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetProfileServices(c *gin.Context) {
	profileID := c.Param("profileId")

	services, err := h.profileService.GetProfileServices(c.Request.Context(), profileID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// --- Protected handlers ---

func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req dto.CreateProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	profile, err := h.profileService.GetMyProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) CreateService(c *gin.Context) {
	var req dto.CreateServiceRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	service, err := h.profileService.CreateService(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service)
}

func (h *ProfileHandler) DeleteService(c *gin.Context) {
	serviceID := c.Param("serviceId")

	if err := h.profileService.DeleteService(c.Request.Context(), middleware.GetUserID(c), serviceID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
