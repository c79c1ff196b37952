package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/models"
)

type CartRepository interface {
	FindByCustomer(ctx context.Context, customerID string) (*models.Cart, error)
	FindOrCreateByCustomer(ctx context.Context, customerID string) (*models.Cart, error)
	// AddItem merges quantity into an existing (cart, product) line
	// instead of creating a duplicate.
	AddItem(ctx context.Context, cartID, productID uint, qty int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, cartID, productID uint) error
	ClearItems(ctx context.Context, cartID uint) error
}

type gormCartRepository struct {
	db *gorm.DB
}

func (r *gormCartRepository) FindByCustomer(ctx context.Context, customerID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *gormCartRepository) FindOrCreateByCustomer(ctx context.Context, customerID string) (*models.Cart, error) {
	cart, err := r.FindByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := models.Cart{CustomerID: customerID}
	if err := r.db.WithContext(ctx).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

func (r *gormCartRepository) AddItem(ctx context.Context, cartID, productID uint, qty int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  qty,
			AddedAt:   time.Now(),
		}
		if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
	if err != nil {
		return nil, err
	}

	item.Quantity += qty
	item.AddedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormCartRepository) RemoveItem(ctx context.Context, cartID, productID uint) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

func (r *gormCartRepository) ClearItems(ctx context.Context, cartID uint) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
