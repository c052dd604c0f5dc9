package services

import (
	"context"

	"skillmarket_backend/internal/cache"
	"skillmarket_backend/internal/logger"
	"skillmarket_backend/internal/models"
	"skillmarket_backend/internal/repositories"
	"skillmarket_backend/internal/services/dto"
	"skillmarket_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ProfileService interface {
	CreateProfile(ctx context.Context, userID string, req *dto.CreateProfileRequest) (*dto.ProfileResponse, error)
	GetProfile(ctx context.Context, profileID string) (*dto.ProfileResponse, error)
	GetMyProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	ListProfiles(ctx context.Context, city, category string, page, pageSize int) (*dto.ProfileListResponse, error)

	CreateService(ctx context.Context, userID string, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	GetProfileServices(ctx context.Context, profileID string) ([]*dto.ServiceResponse, error)
	DeleteService(ctx context.Context, userID, serviceID string) error
}

type profileService struct {
	db          *gorm.DB
	profileRepo repositories.ProfileRepository
	serviceRepo repositories.ServiceRepository
	invalidator cache.Invalidator
}

func NewProfileService(
	db *gorm.DB,
	profileRepo repositories.ProfileRepository,
	serviceRepo repositories.ServiceRepository,
	invalidator cache.Invalidator,
) ProfileService {
	return &profileService{
		db:          db,
		profileRepo: profileRepo,
		serviceRepo: serviceRepo,
		invalidator: invalidator,
	}
}

func (s *profileService) CreateProfile(ctx context.Context, userID string, req *dto.CreateProfileRequest) (*dto.ProfileResponse, error) {
	if existing, _ := s.profileRepo.FindByUserID(s.db, userID); existing != nil {
		return nil, apperrors.ErrConflict(nil, "profile", "User already has a profile")
	}

	profile := &models.Profile{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Headline:    req.Headline,
		About:       req.About,
		City:        req.City,
		IsPublic:    true,
	}
	profile.SetCategories(req.Categories)

	if err := s.profileRepo.Create(s.db, profile); err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	return s.buildProfileResponse(profile, nil), nil
}

func (s *profileService) GetProfile(ctx context.Context, profileID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByID(s.db, profileID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	services, err := s.serviceRepo.FindByProfile(s.db, profileID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	return s.buildProfileResponse(profile, services), nil
}

func (s *profileService) GetMyProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(s.db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	services, err := s.serviceRepo.FindByProfile(s.db, profile.ID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	return s.buildProfileResponse(profile, services), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(s.db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Headline != nil {
		profile.Headline = *req.Headline
	}
	if req.About != nil {
		profile.About = *req.About
	}
	if req.City != nil {
		profile.City = *req.City
	}
	if req.Categories != nil {
		profile.SetCategories(req.Categories)
	}
	if req.IsPublic != nil {
		profile.IsPublic = *req.IsPublic
	}

	if err := s.profileRepo.Update(s.db, profile); err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	s.invalidateProfile(ctx, profile.ID)

	return s.buildProfileResponse(profile, nil), nil
}

func (s *profileService) ListProfiles(ctx context.Context, city, category string, page, pageSize int) (*dto.ProfileListResponse, error) {
	offset := (page - 1) * pageSize
	profiles, total, err := s.profileRepo.List(s.db, city, category, pageSize, offset)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	var profileResponses []*dto.ProfileResponse
	for i := range profiles {
		profileResponses = append(profileResponses, s.buildProfileResponse(&profiles[i], nil))
	}

	return &dto.ProfileListResponse{
		Profiles:   profileResponses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: calculateTotalPages(total, pageSize),
	}, nil
}

func (s *profileService) CreateService(ctx context.Context, userID string, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	profile, err := s.profileRepo.FindByUserID(s.db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	service := &models.Service{
		ProfileID:   profile.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		IsActive:    true,
	}

	if err := s.serviceRepo.Create(s.db, service); err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	s.invalidateProfile(ctx, profile.ID)

	return buildServiceResponse(service), nil
}

func (s *profileService) GetProfileServices(ctx context.Context, profileID string) ([]*dto.ServiceResponse, error) {
	services, err := s.serviceRepo.FindByProfile(s.db, profileID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	var serviceResponses []*dto.ServiceResponse
	for i := range services {
		serviceResponses = append(serviceResponses, buildServiceResponse(&services[i]))
	}
	return serviceResponses, nil
}

func (s *profileService) DeleteService(ctx context.Context, userID, serviceID string) error {
	service, err := s.serviceRepo.FindByID(s.db, serviceID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrServiceNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.PersistenceError(err)
	}

	profile, err := s.profileRepo.FindByID(s.db, service.ProfileID)
	if err != nil {
		return apperrors.PersistenceError(err)
	}
	if profile.UserID != userID {
		return apperrors.NewForbiddenError("Only the profile owner can delete its services")
	}

	if err := s.serviceRepo.Delete(s.db, serviceID); err != nil {
		return apperrors.PersistenceError(err)
	}

	s.invalidateProfile(ctx, profile.ID)
	return nil
}

// ---------------- Helper Methods ----------------

func (s *profileService) invalidateProfile(ctx context.Context, profileID string) {
	tags := []string{cache.ProfileTag(profileID), cache.ProfilePageTag(profileID)}
	if err := s.invalidator.Invalidate(ctx, tags...); err != nil {
		// Best-effort, same policy as the review workflow.
		logger.CtxWithError(ctx, "cache invalidation failed", err, "tags", tags)
	}
}

func (s *profileService) buildProfileResponse(profile *models.Profile, services []models.Service) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		ID:          profile.ID,
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
		Headline:    profile.Headline,
		About:       profile.About,
		City:        profile.City,
		Categories:  profile.GetCategories(),
		Rating:      profile.Rating,
		ReviewCount: profile.ReviewCount,
		IsPublic:    profile.IsPublic,
		CreatedAt:   profile.CreatedAt,
	}

	for i := range services {
		resp.Services = append(resp.Services, buildServiceResponse(&services[i]))
	}
	return resp
}

func buildServiceResponse(service *models.Service) *dto.ServiceResponse {
	return &dto.ServiceResponse{
		ID:          service.ID,
		ProfileID:   service.ProfileID,
		Title:       service.Title,
		Description: service.Description,
		Category:    service.Category,
		Price:       service.Price,
		IsActive:    service.IsActive,
		Rating:      service.Rating,
		ReviewCount: service.ReviewCount,
		CreatedAt:   service.CreatedAt,
	}
}
