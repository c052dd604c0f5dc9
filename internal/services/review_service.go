package services

import (
	"context"
	"time"

	"skillmarket_backend/internal/cache"
	"skillmarket_backend/internal/email"
	"skillmarket_backend/internal/logger"
	"skillmarket_backend/internal/models"
	"skillmarket_backend/internal/repositories"
	"skillmarket_backend/internal/services/dto"
	"skillmarket_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReviewService interface {
	// Review operations
	CreateReview(ctx context.Context, authorID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	GetReview(ctx context.Context, reviewID string) (*dto.ReviewResponse, error)
	GetProfileReviews(ctx context.Context, profileID string, page, pageSize int) (*dto.ReviewListResponse, error)
	GetServiceReviews(ctx context.Context, serviceID string, page, pageSize int) (*dto.ReviewListResponse, error)
	GetMyReviews(ctx context.Context, authorID string) ([]*dto.ReviewResponse, error)

	// Moderation operations
	GetPendingReviews(ctx context.Context, page, pageSize int) (*dto.ReviewListResponse, error)
	ModerateReview(ctx context.Context, moderatorID, reviewID string, req *dto.ModerateReviewRequest) (*dto.ReviewResponse, error)
	ToggleReviewVisibility(ctx context.Context, userID, reviewID string) (*dto.VisibilityResponse, error)

	// Rating operations
	RecomputeProfileRating(ctx context.Context, profileID string)
	RecomputeServiceRating(ctx context.Context, serviceID string)
	GetProfileRatingStats(ctx context.Context, profileID string) (*dto.RatingStatsResponse, error)
	GetServiceRatingStats(ctx context.Context, serviceID string) (*dto.RatingStatsResponse, error)
}

type reviewService struct {
	db  *gorm.DB
	txm repositories.TxManager

	reviewRepo  repositories.ReviewRepository
	profileRepo repositories.ProfileRepository
	serviceRepo repositories.ServiceRepository
	userRepo    repositories.UserRepository

	invalidator   cache.Invalidator
	emailProvider email.Provider
}

func NewReviewService(
	db *gorm.DB,
	txm repositories.TxManager,
	reviewRepo repositories.ReviewRepository,
	profileRepo repositories.ProfileRepository,
	serviceRepo repositories.ServiceRepository,
	userRepo repositories.UserRepository,
	invalidator cache.Invalidator,
	emailProvider email.Provider,
) ReviewService {
	return &reviewService{
		db:            db,
		txm:           txm,
		reviewRepo:    reviewRepo,
		profileRepo:   profileRepo,
		serviceRepo:   serviceRepo,
		userRepo:      userRepo,
		invalidator:   invalidator,
		emailProvider: emailProvider,
	}
}

// ---------------- Review Operations ----------------

func (s *reviewService) CreateReview(ctx context.Context, authorID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ValidationError(map[string]string{"rating": "must be between 1 and 5"})
	}
	if len(req.Comment) > 2000 {
		return nil, apperrors.ValidationError(map[string]string{"comment": "must be at most 2000 characters"})
	}

	profile, err := s.profileRepo.FindByID(s.db, req.ProfileID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	if profile.UserID == authorID {
		return nil, apperrors.ErrSelfReviewNotAllowed
	}

	if req.ServiceID != nil {
		service, err := s.serviceRepo.FindByID(s.db, *req.ServiceID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrServiceNotFound) {
				return nil, apperrors.ErrNotFound(err)
			}
			return nil, apperrors.PersistenceError(err)
		}
		if service.ProfileID != profile.ID {
			return nil, apperrors.ErrInvalidOperation("review", "Service does not belong to the target profile")
		}
	}

	review := &models.Review{
		ProfileID: req.ProfileID,
		ServiceID: req.ServiceID,
		AuthorID:  authorID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Status:    models.ReviewStatusPending,
		Published: false,
		Visible:   true,
	}

	if err := s.reviewRepo.Create(s.db, review); err != nil {
		if apperrors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, apperrors.ErrReviewAlreadyExists
		}
		return nil, apperrors.PersistenceError(err)
	}

	// Pending reviews are not public and never feed aggregates, so there is
	// nothing to invalidate here. Moderators get a heads-up.
	go s.notifyModerators(profile, review)

	return s.buildReviewResponse(review), nil
}

func (s *reviewService) GetReview(ctx context.Context, reviewID string) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(s.db, reviewID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}
	return s.buildReviewResponse(review), nil
}

func (s *reviewService) GetProfileReviews(ctx context.Context, profileID string, page, pageSize int) (*dto.ReviewListResponse, error) {
	reviews, total, err := s.reviewRepo.FindPublicByProfile(s.db, profileID, page, pageSize)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	var reviewResponses []*dto.ReviewResponse
	for i := range reviews {
		reviewResponses = append(reviewResponses, s.buildPublicReviewResponse(&reviews[i]))
	}

	return &dto.ReviewListResponse{
		Reviews:    reviewResponses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: calculateTotalPages(total, pageSize),
	}, nil
}

func (s *reviewService) GetServiceReviews(ctx context.Context, serviceID string, page, pageSize int) (*dto.ReviewListResponse, error) {
	reviews, total, err := s.reviewRepo.FindPublicByService(s.db, serviceID, page, pageSize)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	var reviewResponses []*dto.ReviewResponse
	for i := range reviews {
		reviewResponses = append(reviewResponses, s.buildPublicReviewResponse(&reviews[i]))
	}

	return &dto.ReviewListResponse{
		Reviews:    reviewResponses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: calculateTotalPages(total, pageSize),
	}, nil
}

func (s *reviewService) GetMyReviews(ctx context.Context, authorID string) ([]*dto.ReviewResponse, error) {
	reviews, err := s.reviewRepo.FindByAuthor(s.db, authorID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	var reviewResponses []*dto.ReviewResponse
	for i := range reviews {
		reviewResponses = append(reviewResponses, s.buildReviewResponse(&reviews[i]))
	}
	return reviewResponses, nil
}

// ---------------- Moderation Operations ----------------

func (s *reviewService) GetPendingReviews(ctx context.Context, page, pageSize int) (*dto.ReviewListResponse, error) {
	offset := (page - 1) * pageSize
	reviews, total, err := s.reviewRepo.FindPending(s.db, pageSize, offset)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	var reviewResponses []*dto.ReviewResponse
	for i := range reviews {
		reviewResponses = append(reviewResponses, s.buildReviewResponse(&reviews[i]))
	}

	return &dto.ReviewListResponse{
		Reviews:    reviewResponses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: calculateTotalPages(total, pageSize),
	}, nil
}

// ModerateReview applies a terminal decision to a pending review.
//
// The status write and the aggregate recompute run in one transaction so a
// concurrent moderation against the same profile cannot observe a
// half-updated review set. Exactly one transition is ever applied: a review
// that already left pending yields ErrReviewAlreadyModerated with no writes,
// which is also what a blind retry after success sees.
func (s *reviewService) ModerateReview(ctx context.Context, moderatorID, reviewID string, req *dto.ModerateReviewRequest) (*dto.ReviewResponse, error) {
	moderator, err := s.userRepo.FindByID(s.db, moderatorID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError("Unknown moderator")
		}
		return nil, apperrors.PersistenceError(err)
	}
	if moderator.Role != models.UserRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}

	decision := models.ReviewStatus(req.Decision)
	if decision != models.ReviewStatusApproved && decision != models.ReviewStatusRejected {
		return nil, apperrors.ErrInvalidModerationDecision
	}

	var review *models.Review
	var tags []string

	txErr := s.txm.Transaction(func(tx *gorm.DB) error {
		r, err := s.reviewRepo.FindByID(tx, reviewID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrReviewNotFound) {
				return apperrors.ErrNotFound(err)
			}
			return apperrors.PersistenceError(err)
		}

		if r.Status != models.ReviewStatusPending {
			return apperrors.ErrReviewAlreadyModerated
		}

		now := time.Now()
		r.Status = decision
		r.Published = decision == models.ReviewStatusApproved
		r.ModerationNote = req.Reason
		r.ModeratedBy = &moderator.ID
		r.ModeratedAt = &now

		if err := s.reviewRepo.UpdateModeration(tx, r); err != nil {
			return apperrors.PersistenceError(err)
		}

		tags = append(tags, cache.ReviewTag(r.ID))

		if decision == models.ReviewStatusApproved {
			// The recompute reads the status just written above and never
			// fails the moderation: a broken aggregate is repairable later.
			tags = append(tags, s.recomputeProfileRating(ctx, tx, r.ProfileID)...)
			if r.ServiceID != nil {
				tags = append(tags, s.recomputeServiceRating(ctx, tx, *r.ServiceID)...)
			}
			tags = append(tags,
				cache.ProfileReviewsTag(r.ProfileID),
				cache.ProfilePageTag(r.ProfileID),
				cache.AuthorReviewsTag(r.AuthorID),
			)
			if r.ServiceID != nil {
				tags = append(tags,
					cache.ServiceReviewsTag(*r.ServiceID),
					cache.ServicePageTag(*r.ServiceID),
				)
			}
		}

		review = r
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidate(ctx, tags...)

	if review.Status == models.ReviewStatusApproved {
		go s.notifyReviewApproved(review)
	}

	return s.buildReviewResponse(review), nil
}

// ToggleReviewVisibility flips the owner-controlled visibility flag of an
// approved review. Rating aggregates are never touched from this path:
// a hidden review still counts toward the average.
func (s *reviewService) ToggleReviewVisibility(ctx context.Context, userID, reviewID string) (*dto.VisibilityResponse, error) {
	review, err := s.reviewRepo.FindByID(s.db, reviewID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	profile, err := s.profileRepo.FindByID(s.db, review.ProfileID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	if profile.UserID != userID {
		return nil, apperrors.NewForbiddenError("Only the reviewed profile owner can change review visibility")
	}

	if !review.Qualifies() {
		return nil, apperrors.ErrReviewNotModerated
	}

	newVisible := !review.Visible
	if err := s.reviewRepo.UpdateVisibility(s.db, review.ID, newVisible); err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	tags := []string{
		cache.ReviewTag(review.ID),
		cache.ProfileReviewsTag(review.ProfileID),
		cache.ProfilePageTag(review.ProfileID),
		cache.ProfileDashboardTag(review.ProfileID),
	}
	if review.ServiceID != nil {
		tags = append(tags,
			cache.ServiceReviewsTag(*review.ServiceID),
			cache.ServicePageTag(*review.ServiceID),
		)
	}
	s.invalidate(ctx, tags...)

	return &dto.VisibilityResponse{
		ReviewID: review.ID,
		Visible:  newVisible,
	}, nil
}

// ---------------- Rating Operations ----------------

// RecomputeProfileRating refreshes the profile's cached aggregate from its
// qualifying reviews. It never reports an error: failures are logged so a
// caller is never blocked by a rating repair.
func (s *reviewService) RecomputeProfileRating(ctx context.Context, profileID string) {
	tags := s.recomputeProfileRating(ctx, s.db, profileID)
	s.invalidate(ctx, tags...)
}

// RecomputeServiceRating is the service-level counterpart of
// RecomputeProfileRating.
func (s *reviewService) RecomputeServiceRating(ctx context.Context, serviceID string) {
	tags := s.recomputeServiceRating(ctx, s.db, serviceID)
	s.invalidate(ctx, tags...)
}

func (s *reviewService) GetProfileRatingStats(ctx context.Context, profileID string) (*dto.RatingStatsResponse, error) {
	if _, err := s.profileRepo.FindByID(s.db, profileID); err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	reviews, err := s.reviewRepo.FindQualifyingByProfile(s.db, profileID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}
	return buildRatingStats(reviews), nil
}

func (s *reviewService) GetServiceRatingStats(ctx context.Context, serviceID string) (*dto.RatingStatsResponse, error) {
	if _, err := s.serviceRepo.FindByID(s.db, serviceID); err != nil {
		if apperrors.Is(err, repositories.ErrServiceNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.PersistenceError(err)
	}

	reviews, err := s.reviewRepo.FindQualifyingByService(s.db, serviceID)
	if err != nil {
		return nil, apperrors.PersistenceError(err)
	}
	return buildRatingStats(reviews), nil
}

// recomputeProfileRating does the actual aggregation pass. Returns the cache
// tags to invalidate for the entity; empty when the pass failed.
func (s *reviewService) recomputeProfileRating(ctx context.Context, db *gorm.DB, profileID string) []string {
	reviews, err := s.reviewRepo.FindQualifyingByProfile(db, profileID)
	if err != nil {
		logger.CtxWithError(ctx, "profile rating recompute failed: fetch", err, "profile_id", profileID)
		return nil
	}

	rating, count := aggregateRating(reviews)
	if err := s.profileRepo.UpdateRatingAggregate(db, profileID, rating, count); err != nil {
		logger.CtxWithError(ctx, "profile rating recompute failed: update", err, "profile_id", profileID)
		return nil
	}

	logger.CtxDebug(ctx, "profile rating recomputed",
		"profile_id", profileID, "rating", rating, "review_count", count)
	return []string{cache.ProfileTag(profileID), cache.ProfilePageTag(profileID)}
}

func (s *reviewService) recomputeServiceRating(ctx context.Context, db *gorm.DB, serviceID string) []string {
	reviews, err := s.reviewRepo.FindQualifyingByService(db, serviceID)
	if err != nil {
		logger.CtxWithError(ctx, "service rating recompute failed: fetch", err, "service_id", serviceID)
		return nil
	}

	rating, count := aggregateRating(reviews)
	if err := s.serviceRepo.UpdateRatingAggregate(db, serviceID, rating, count); err != nil {
		logger.CtxWithError(ctx, "service rating recompute failed: update", err, "service_id", serviceID)
		return nil
	}

	logger.CtxDebug(ctx, "service rating recomputed",
		"service_id", serviceID, "rating", rating, "review_count", count)
	return []string{cache.ServiceTag(serviceID), cache.ServicePageTag(serviceID)}
}

// aggregateRating computes the cached aggregate from a review set: the mean
// rating rounded half away from zero to 2 decimal places, applied once on
// the final mean. No qualifying reviews means exactly 0, never NaN.
func aggregateRating(reviews []models.Review) (float64, int64) {
	count := int64(len(reviews))
	if count == 0 {
		return 0, 0
	}

	var sum int64
	for i := range reviews {
		sum += int64(reviews[i].Rating)
	}

	avg := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(count)).
		Round(2)
	return avg.InexactFloat64(), count
}

// ---------------- Helper Methods ----------------

func (s *reviewService) invalidate(ctx context.Context, tags ...string) {
	if len(tags) == 0 {
		return
	}
	if err := s.invalidator.Invalidate(ctx, tags...); err != nil {
		// Best-effort boundary: stale cache entries expire on their own.
		logger.CtxWithError(ctx, "cache invalidation failed", err, "tags", tags)
	}
}

func (s *reviewService) notifyModerators(profile *models.Profile, review *models.Review) {
	admins, err := s.userRepo.FindAdmins(s.db)
	if err != nil {
		logger.WithError(err).Warn("failed to load moderators for review notification")
		return
	}
	for i := range admins {
		if err := s.emailProvider.SendReviewReceived(admins[i].Email, profile.DisplayName, review.Rating); err != nil {
			logger.WithError(err).Warn("failed to send moderation notification", "admin_id", admins[i].ID)
		}
	}
}

func (s *reviewService) notifyReviewApproved(review *models.Review) {
	profile, err := s.profileRepo.FindByID(s.db, review.ProfileID)
	if err != nil {
		logger.WithError(err).Warn("failed to load profile for approval notification", "review_id", review.ID)
		return
	}
	owner, err := s.userRepo.FindByID(s.db, profile.UserID)
	if err != nil {
		logger.WithError(err).Warn("failed to load profile owner for approval notification", "review_id", review.ID)
		return
	}

	serviceTitle := ""
	if review.ServiceID != nil {
		if service, err := s.serviceRepo.FindByID(s.db, *review.ServiceID); err == nil {
			serviceTitle = service.Title
		}
	}

	if err := s.emailProvider.SendReviewApproved(owner.Email, profile.DisplayName, serviceTitle, review.Rating, review.Comment); err != nil {
		logger.WithError(err).Warn("failed to send approval notification", "review_id", review.ID)
	}
}

func (s *reviewService) buildReviewResponse(review *models.Review) *dto.ReviewResponse {
	resp := &dto.ReviewResponse{
		ID:        review.ID,
		ProfileID: review.ProfileID,
		ServiceID: review.ServiceID,
		AuthorID:  review.AuthorID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Status:    string(review.Status),
		Published: review.Published,
		Visible:   review.Visible,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}

	if review.Profile != nil && review.Profile.ID != "" {
		resp.Profile = &dto.ProfileInfo{
			ID:          review.Profile.ID,
			DisplayName: review.Profile.DisplayName,
			City:        review.Profile.City,
			Rating:      review.Profile.Rating,
		}
	}
	if review.Service != nil && review.Service.ID != "" {
		resp.Service = &dto.ServiceInfo{
			ID:     review.Service.ID,
			Title:  review.Service.Title,
			Rating: review.Service.Rating,
		}
	}
	if review.Author != nil && review.Author.ID != "" {
		resp.Author = &dto.AuthorInfo{
			ID:   review.Author.ID,
			Name: review.Author.Name,
		}
	}

	return resp
}

// buildPublicReviewResponse blanks the comment of a hidden review. The
// rating stays: hiding affects display only, not the aggregate.
func (s *reviewService) buildPublicReviewResponse(review *models.Review) *dto.ReviewResponse {
	resp := s.buildReviewResponse(review)
	if !review.Visible {
		resp.Comment = ""
	}
	return resp
}

func buildRatingStats(reviews []models.Review) *dto.RatingStatsResponse {
	counts := make(map[int]int64, 5)
	for i := 1; i <= 5; i++ {
		counts[i] = 0
	}
	for i := range reviews {
		counts[reviews[i].Rating]++
	}

	rating, total := aggregateRating(reviews)
	return &dto.RatingStatsResponse{
		TotalReviews:  total,
		AverageRating: rating,
		RatingCounts:  counts,
	}
}

func calculateTotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
