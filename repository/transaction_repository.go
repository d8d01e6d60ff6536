package repository

import (
	"context"

	"waysfood-api/models"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Transaction, error)
	// FindByCustomer and FindByRestaurant return at most limit rows, newest first.
	FindByCustomer(ctx context.Context, customerID uint, limit int) ([]models.Transaction, error)
	FindByRestaurant(ctx context.Context, restaurantID uint, limit int) ([]models.Transaction, error)
	Create(ctx context.Context, tx *models.Transaction) error
	// Update applies fields only if the row is still at version, and bumps it.
	Update(ctx context.Context, id uint, version int, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type OrderRepository interface {
	FindByTransactionIDs(ctx context.Context, ids []uint) ([]models.Order, error)
	CreateBatch(ctx context.Context, orders []models.Order) error
	DeleteByTransaction(ctx context.Context, transactionID uint) error
	// ReferencesImage reports whether any order line snapshot points at key.
	ReferencesImage(ctx context.Context, key string) (bool, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, entry *models.TransactionHistory) error
	FindByTransaction(ctx context.Context, transactionID uint) ([]models.TransactionHistory, error)
	DeleteByTransaction(ctx context.Context, transactionID uint) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

func (r *transactionRepository) FindByCustomer(ctx context.Context, customerID uint, limit int) ([]models.Transaction, error) {
	return r.latest(ctx, "customer_id = ?", customerID, limit)
}

func (r *transactionRepository) FindByRestaurant(ctx context.Context, restaurantID uint, limit int) ([]models.Transaction, error) {
	return r.latest(ctx, "restaurant_id = ?", restaurantID, limit)
}

func (r *transactionRepository) latest(ctx context.Context, where string, id uint, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where(where, id).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Omit("Orders", "History").Create(tx).Error
}

func (r *transactionRepository) Update(ctx context.Context, id uint, version int, fields map[string]any) error {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Transaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByTransactionIDs(ctx context.Context, ids []uint) ([]models.Order, error) {
	var orders []models.Order
	if len(ids) == 0 {
		return orders, nil
	}
	err := r.db.WithContext(ctx).Where("transaction_id IN ?", ids).Order("id").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) CreateBatch(ctx context.Context, orders []models.Order) error {
	return r.db.WithContext(ctx).Create(&orders).Error
}

func (r *orderRepository) DeleteByTransaction(ctx context.Context, transactionID uint) error {
	return r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Delete(&models.Order{}).Error
}

func (r *orderRepository) ReferencesImage(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("image = ?", key).Count(&count).Error
	return count > 0, err
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *models.TransactionHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepository) FindByTransaction(ctx context.Context, transactionID uint) ([]models.TransactionHistory, error) {
	var entries []models.TransactionHistory
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Order("id").Find(&entries).Error
	return entries, err
}

func (r *historyRepository) DeleteByTransaction(ctx context.Context, transactionID uint) error {
	return r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Delete(&models.TransactionHistory{}).Error
}
