package repositories

import (
	"errors"
	"time"

	"skillmarket_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this target")
)

type ReviewRepository interface {
	// Review operations
	Create(db *gorm.DB, review *models.Review) error
	FindByID(db *gorm.DB, id string) (*models.Review, error)
	FindByAuthorAndTarget(db *gorm.DB, authorID, profileID string, serviceID *string) (*models.Review, error)
	FindByAuthor(db *gorm.DB, authorID string) ([]models.Review, error)

	// Listing
	FindPublicByProfile(db *gorm.DB, profileID string, page, pageSize int) ([]models.Review, int64, error)
	FindPublicByService(db *gorm.DB, serviceID string, page, pageSize int) ([]models.Review, int64, error)
	FindPending(db *gorm.DB, limit, offset int) ([]models.Review, int64, error)

	// Qualifying reviews are the only input to rating aggregates:
	// approved and published, visibility deliberately ignored.
	FindQualifyingByProfile(db *gorm.DB, profileID string) ([]models.Review, error)
	FindQualifyingByService(db *gorm.DB, serviceID string) ([]models.Review, error)

	// Mutation
	UpdateModeration(db *gorm.DB, review *models.Review) error
	UpdateVisibility(db *gorm.DB, reviewID string, visible bool) error
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

// Review operations

func (r *ReviewRepositoryImpl) Create(db *gorm.DB, review *models.Review) error {
	existing, err := r.FindByAuthorAndTarget(db, review.AuthorID, review.ProfileID, review.ServiceID)
	if err != nil && !errors.Is(err, ErrReviewNotFound) {
		return err
	}
	if existing != nil {
		return ErrReviewAlreadyExists
	}
	return db.Create(review).Error
}

func (r *ReviewRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	err := db.Preload("Profile").Preload("Service").Preload("Author").
		First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindByAuthorAndTarget(db *gorm.DB, authorID, profileID string, serviceID *string) (*models.Review, error) {
	query := db.Where("author_id = ? AND profile_id = ?", authorID, profileID)
	if serviceID != nil {
		query = query.Where("service_id = ?", *serviceID)
	} else {
		query = query.Where("service_id IS NULL")
	}

	var review models.Review
	err := query.First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindByAuthor(db *gorm.DB, authorID string) ([]models.Review, error) {
	var reviews []models.Review
	err := db.Preload("Profile").Preload("Service").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Listing

func (r *ReviewRepositoryImpl) FindPublicByProfile(db *gorm.DB, profileID string, page, pageSize int) ([]models.Review, int64, error) {
	query := db.Model(&models.Review{}).
		Where("profile_id = ? AND status = ? AND published = ?",
			profileID, models.ReviewStatusApproved, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	offset := (page - 1) * pageSize
	err := db.Preload("Author").Preload("Service").
		Where("profile_id = ? AND status = ? AND published = ?",
			profileID, models.ReviewStatusApproved, true).
		Order("created_at DESC").
		Limit(pageSize).Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepositoryImpl) FindPublicByService(db *gorm.DB, serviceID string, page, pageSize int) ([]models.Review, int64, error) {
	query := db.Model(&models.Review{}).
		Where("service_id = ? AND status = ? AND published = ?",
			serviceID, models.ReviewStatusApproved, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	offset := (page - 1) * pageSize
	err := db.Preload("Author").
		Where("service_id = ? AND status = ? AND published = ?",
			serviceID, models.ReviewStatusApproved, true).
		Order("created_at DESC").
		Limit(pageSize).Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepositoryImpl) FindPending(db *gorm.DB, limit, offset int) ([]models.Review, int64, error) {
	var total int64
	if err := db.Model(&models.Review{}).
		Where("status = ?", models.ReviewStatusPending).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := db.Preload("Profile").Preload("Service").Preload("Author").
		Where("status = ?", models.ReviewStatusPending).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

// Qualifying reviews

func (r *ReviewRepositoryImpl) FindQualifyingByProfile(db *gorm.DB, profileID string) ([]models.Review, error) {
	var reviews []models.Review
	err := db.Where("profile_id = ? AND status = ? AND published = ?",
		profileID, models.ReviewStatusApproved, true).
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepositoryImpl) FindQualifyingByService(db *gorm.DB, serviceID string) ([]models.Review, error) {
	var reviews []models.Review
	err := db.Where("service_id = ? AND status = ? AND published = ?",
		serviceID, models.ReviewStatusApproved, true).
		Find(&reviews).Error
	return reviews, err
}

// Mutation

func (r *ReviewRepositoryImpl) UpdateModeration(db *gorm.DB, review *models.Review) error {
	result := db.Model(&models.Review{}).Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"status":          review.Status,
			"published":       review.Published,
			"moderation_note": review.ModerationNote,
			"moderated_by":    review.ModeratedBy,
			"moderated_at":    review.ModeratedAt,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepositoryImpl) UpdateVisibility(db *gorm.DB, reviewID string, visible bool) error {
	result := db.Model(&models.Review{}).Where("id = ?", reviewID).
		Updates(map[string]interface{}{
			"visible":    visible,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
