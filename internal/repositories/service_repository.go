package repositories

import (
	"errors"

	"skillmarket_backend/internal/models"

	"gorm.io/gorm"
)

type ServiceRepository interface {
	Create(db *gorm.DB, service *models.Service) error
	FindByID(db *gorm.DB, id string) (*models.Service, error)
	FindByProfile(db *gorm.DB, profileID string) ([]models.Service, error)
	Update(db *gorm.DB, service *models.Service) error
	Delete(db *gorm.DB, id string) error

	// UpdateRatingAggregate writes the derived rating fields. Only the
	// rating recompute calls this.
	UpdateRatingAggregate(db *gorm.DB, serviceID string, rating float64, reviewCount int64) error
}

type ServiceRepositoryImpl struct{}

func NewServiceRepository() ServiceRepository {
	return &ServiceRepositoryImpl{}
}

func (r *ServiceRepositoryImpl) Create(db *gorm.DB, service *models.Service) error {
	return db.Create(service).Error
}

func (r *ServiceRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Service, error) {
	var service models.Service
	err := db.First(&service, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepositoryImpl) FindByProfile(db *gorm.DB, profileID string) ([]models.Service, error) {
	var services []models.Service
	err := db.Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&services).Error
	return services, err
}

func (r *ServiceRepositoryImpl) Update(db *gorm.DB, service *models.Service) error {
	result := db.Model(service).Updates(map[string]interface{}{
		"title":       service.Title,
		"description": service.Description,
		"category":    service.Category,
		"price":       service.Price,
		"is_active":   service.IsActive,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *ServiceRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Service{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *ServiceRepositoryImpl) UpdateRatingAggregate(db *gorm.DB, serviceID string, rating float64, reviewCount int64) error {
	result := db.Model(&models.Service{}).Where("id = ?", serviceID).
		Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": reviewCount,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}
