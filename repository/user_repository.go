package repository

import (
	"context"

	"waysfood-api/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
	PopularPartners(ctx context.Context, status models.TransactionStatus, limit int) ([]PartnerStats, error)
}

// PartnerStats is a partner with the number of its transactions in a given status.
type PartnerStats struct {
	models.User      `gorm:"embedded"`
	TransactionCount int64 `json:"transactionCount"`
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) PopularPartners(ctx context.Context, status models.TransactionStatus, limit int) ([]PartnerStats, error) {
	var stats []PartnerStats
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*, COUNT(transactions.id) AS transaction_count").
		Joins("LEFT JOIN transactions ON transactions.restaurant_id = users.id AND transactions.status = ?", status).
		Where("users.role = ?", models.RolePartner).
		Group("users.id").
		Order("transaction_count DESC, users.id").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}
