package repository

import (
	"context"

	"waysfood-api/models"

	"gorm.io/gorm"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	// FindByIDs has set semantics: missing ids are skipped and the result
	// order is unspecified.
	FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	FindByOwner(ctx context.Context, userID uint) ([]models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("User").First(&product, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) FindByOwner(ctx context.Context, userID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&products).Error
	return products, err
}

func (r *productRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Preload("User").Order("id").Find(&products).Error
	return products, err
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("User").Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
