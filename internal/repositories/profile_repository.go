package repositories

import (
	"errors"

	"skillmarket_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrServiceNotFound = errors.New("service not found")
)

type ProfileRepository interface {
	Create(db *gorm.DB, profile *models.Profile) error
	FindByID(db *gorm.DB, id string) (*models.Profile, error)
	FindByUserID(db *gorm.DB, userID string) (*models.Profile, error)
	Update(db *gorm.DB, profile *models.Profile) error
	List(db *gorm.DB, city, category string, limit, offset int) ([]models.Profile, int64, error)

	// UpdateRatingAggregate writes the derived rating fields. Only the
	// rating recompute calls this.
	UpdateRatingAggregate(db *gorm.DB, profileID string, rating float64, reviewCount int64) error
}

type ProfileRepositoryImpl struct{}

func NewProfileRepository() ProfileRepository {
	return &ProfileRepositoryImpl{}
}

func (r *ProfileRepositoryImpl) Create(db *gorm.DB, profile *models.Profile) error {
	return db.Create(profile).Error
}

func (r *ProfileRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Profile, error) {
	var profile models.Profile
	err := db.First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) Update(db *gorm.DB, profile *models.Profile) error {
	result := db.Model(profile).Updates(map[string]interface{}{
		"display_name": profile.DisplayName,
		"headline":     profile.Headline,
		"about":        profile.About,
		"city":         profile.City,
		"categories":   profile.Categories,
		"is_public":    profile.IsPublic,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) List(db *gorm.DB, city, category string, limit, offset int) ([]models.Profile, int64, error) {
	query := db.Model(&models.Profile{}).Where("is_public = ?", true)
	if city != "" {
		query = query.Where("city = ?", city)
	}
	if category != "" {
		query = query.Where(datatypes.JSONArrayQuery("categories").Contains(category))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	err := query.Order("rating DESC, review_count DESC").
		Limit(limit).Offset(offset).
		Find(&profiles).Error
	return profiles, total, err
}

func (r *ProfileRepositoryImpl) UpdateRatingAggregate(db *gorm.DB, profileID string, rating float64, reviewCount int64) error {
	result := db.Model(&models.Profile{}).Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": reviewCount,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
