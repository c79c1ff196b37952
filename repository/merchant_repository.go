package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/models"
)

type MerchantRepository interface {
	Create(ctx context.Context, merchant *models.Merchant) error
	FindByID(ctx context.Context, id uint) (*models.Merchant, error)
	FindByUser(ctx context.Context, userID string) (*models.Merchant, error)
}

type gormMerchantRepository struct {
	db *gorm.DB
}

func (r *gormMerchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

func (r *gormMerchantRepository) FindByID(ctx context.Context, id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).First(&merchant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *gormMerchantRepository) FindByUser(ctx context.Context, userID string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).First(&merchant, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}
