// Package service implements the transaction lifecycle: creation with
// snapshotted order lines, role-gated reads, state transitions and deletion.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"waysfood-api/apperr"
	"waysfood-api/models"
	"waysfood-api/policy"
	"waysfood-api/repository"
	"waysfood-api/statemachine"
	"waysfood-api/storage"

	"go.uber.org/zap"
)

// DefaultListLimit bounds the listing endpoints.
const DefaultListLimit = 10

// LineRequest asks for qty units of one catalog product.
type LineRequest struct {
	ProductID uint `json:"id"`
	Qty       int  `json:"qty"`
}

type CreateInput struct {
	RestaurantID     uint
	DeliveryLocation string
	Products         []LineRequest
}

// Patch lists the fields an update may change. Nil fields are left untouched.
type Patch struct {
	Status           *models.TransactionStatus
	DeliveryLocation *string
}

func (p Patch) empty() bool {
	return p.Status == nil && p.DeliveryLocation == nil
}

type TransactionService struct {
	store     *repository.Store
	machine   *statemachine.Machine
	images    storage.Store
	logger    *zap.Logger
	listLimit int
}

func NewTransactionService(store *repository.Store, machine *statemachine.Machine, images storage.Store, logger *zap.Logger, listLimit int) *TransactionService {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &TransactionService{
		store:     store,
		machine:   machine,
		images:    images,
		logger:    logger,
		listLimit: listLimit,
	}
}

// Machine exposes the active transition table.
func (s *TransactionService) Machine() *statemachine.Machine {
	return s.machine
}

// Create writes the transaction, its order lines and the first history entry
// in one database transaction, then returns the composed aggregate.
func (s *TransactionService) Create(ctx context.Context, caller policy.Caller, in CreateInput) (*TransactionView, error) {
	ids, qtyByID, err := normalizeLines(in)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.store.Users.FindByID(ctx, in.RestaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("restaurant not found")
	}
	if err != nil {
		return nil, internal("find restaurant", err)
	}
	if !restaurant.IsPartner() {
		return nil, apperr.Validation("restaurant is not a partner")
	}

	var created models.Transaction
	err = s.store.Atomic(ctx, func(tx *repository.Store) error {
		products, err := tx.Products.FindByIDs(ctx, ids)
		if err != nil {
			return internal("find products", err)
		}
		lines := snapshotLines(ids, qtyByID, products, restaurant.ID)
		if len(lines) == 0 {
			return apperr.Validation("none of the requested products are available from this restaurant")
		}

		created = models.Transaction{
			CustomerID:       caller.ID,
			RestaurantID:     restaurant.ID,
			Status:           s.machine.Initial(),
			DeliveryLocation: in.DeliveryLocation,
			Version:          1,
		}
		if err := tx.Transactions.Create(ctx, &created); err != nil {
			return internal("create transaction", err)
		}
		for i := range lines {
			lines[i].TransactionID = created.ID
		}
		if err := tx.Orders.CreateBatch(ctx, lines); err != nil {
			return internal("create order lines", err)
		}
		return s.appendHistory(ctx, tx, &created, "", created.Status, caller.ID, map[string]any{"event": "created"})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction created",
		zap.Uint("transaction_id", created.ID),
		zap.Uint("customer_id", created.CustomerID),
		zap.Uint("restaurant_id", created.RestaurantID))

	return s.detail(ctx, &created)
}

// Get returns one transaction if the caller is its customer or restaurant.
func (s *TransactionService) Get(ctx context.Context, caller policy.Caller, id uint) (*TransactionView, error) {
	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanView(caller, tx); err != nil {
		return nil, err
	}
	return s.detail(ctx, tx)
}

// ListForPartner returns the newest transactions received by the calling partner.
func (s *TransactionService) ListForPartner(ctx context.Context, caller policy.Caller) ([]TransactionView, error) {
	if err := policy.CanList(caller, models.RolePartner); err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions.FindByRestaurant(ctx, caller.ID, s.listLimit)
	if err != nil {
		return nil, internal("list partner transactions", err)
	}
	return s.compose(ctx, txs, true, false)
}

// ListForCustomer returns the newest transactions placed by the calling customer.
func (s *TransactionService) ListForCustomer(ctx context.Context, caller policy.Caller) ([]TransactionView, error) {
	if err := policy.CanList(caller, models.RoleCustomer); err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions.FindByCustomer(ctx, caller.ID, s.listLimit)
	if err != nil {
		return nil, internal("list customer transactions", err)
	}
	return s.compose(ctx, txs, false, true)
}

// Update applies a partial patch. Checks run in order: input, existence,
// ownership, then the state machine.
func (s *TransactionService) Update(ctx context.Context, caller policy.Caller, id uint, patch Patch) (*TransactionView, error) {
	if patch.empty() {
		return nil, apperr.Validation("nothing to update")
	}
	if patch.Status != nil && *patch.Status == "" {
		return nil, apperr.Validation("status must not be empty")
	}

	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpdate(caller, tx); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	changes := map[string]any{}
	next := tx.Status

	if patch.DeliveryLocation != nil && *patch.DeliveryLocation != tx.DeliveryLocation {
		if err := policy.CanChangeDeliveryLocation(caller, tx); err != nil {
			return nil, err
		}
		if tx.Status != s.machine.Initial() {
			return nil, apperr.Validation("delivery location can no longer be changed")
		}
		fields["delivery_location"] = *patch.DeliveryLocation
		changes["deliveryLocation"] = *patch.DeliveryLocation
	}
	if patch.Status != nil && *patch.Status != tx.Status {
		if err := s.machine.CanTransition(tx.Status, *patch.Status, caller.Role); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		next = *patch.Status
		fields["status"] = next
		changes["status"] = next
	}

	if len(fields) == 0 {
		return s.detail(ctx, tx)
	}

	err = s.store.Atomic(ctx, func(store *repository.Store) error {
		err := store.Transactions.Update(ctx, tx.ID, tx.Version, fields)
		if errors.Is(err, repository.ErrStaleVersion) {
			return apperr.Conflict("transaction was modified by another request, reload and retry")
		}
		if err != nil {
			return internal("update transaction", err)
		}
		return s.appendHistory(ctx, store, tx, tx.Status, next, caller.ID, changes)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction updated",
		zap.Uint("transaction_id", tx.ID),
		zap.String("from_status", string(tx.Status)),
		zap.String("to_status", string(next)),
		zap.Uint("changed_by", caller.ID))

	updated, err := s.load(ctx, tx.ID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, updated)
}

// Delete removes a transaction with its lines and history. Any partner may
// delete; customers never can.
func (s *TransactionService) Delete(ctx context.Context, caller policy.Caller, id uint) (uint, error) {
	tx, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := policy.CanDelete(caller); err != nil {
		return 0, err
	}

	err = s.store.Atomic(ctx, func(store *repository.Store) error {
		if err := store.Orders.DeleteByTransaction(ctx, tx.ID); err != nil {
			return internal("delete order lines", err)
		}
		if err := store.History.DeleteByTransaction(ctx, tx.ID); err != nil {
			return internal("delete history", err)
		}
		if err := store.Transactions.Delete(ctx, tx.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return internal("delete transaction", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Transaction deleted", zap.Uint("transaction_id", tx.ID), zap.Uint("deleted_by", caller.ID))
	return tx.ID, nil
}

// History returns the change log of a transaction visible to the caller.
func (s *TransactionService) History(ctx context.Context, caller policy.Caller, id uint) ([]models.TransactionHistory, error) {
	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanView(caller, tx); err != nil {
		return nil, err
	}
	entries, err := s.store.History.FindByTransaction(ctx, tx.ID)
	if err != nil {
		return nil, internal("find history", err)
	}
	return entries, nil
}

func (s *TransactionService) load(ctx context.Context, id uint) (*models.Transaction, error) {
	tx, err := s.store.Transactions.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("transaction not found")
	}
	if err != nil {
		return nil, internal("find transaction", err)
	}
	return tx, nil
}

func (s *TransactionService) appendHistory(ctx context.Context, store *repository.Store, tx *models.Transaction, from, to models.TransactionStatus, by uint, changes map[string]any) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return internal("encode history", err)
	}
	entry := &models.TransactionHistory{
		TransactionID: tx.ID,
		FromStatus:    from,
		ToStatus:      to,
		ChangedBy:     by,
		Changes:       raw,
	}
	if err := store.History.Append(ctx, entry); err != nil {
		return internal("append history", err)
	}
	return nil
}

// normalizeLines validates the request and merges repeated product ids,
// keeping the order in which ids first appear.
func normalizeLines(in CreateInput) ([]uint, map[uint]int, error) {
	if in.RestaurantID == 0 {
		return nil, nil, apperr.Validation("restaurant_id is required")
	}
	if len(in.Products) == 0 {
		return nil, nil, apperr.Validation("products must not be empty")
	}
	ids := make([]uint, 0, len(in.Products))
	qtyByID := make(map[uint]int, len(in.Products))
	for _, p := range in.Products {
		if p.ProductID == 0 {
			return nil, nil, apperr.Validation("product id is required")
		}
		if p.Qty < 1 {
			return nil, nil, apperr.Validation("qty must be a positive integer")
		}
		if _, seen := qtyByID[p.ProductID]; !seen {
			ids = append(ids, p.ProductID)
		}
		qtyByID[p.ProductID] += p.Qty
	}
	return ids, qtyByID, nil
}

// snapshotLines pairs each resolved product with the quantity requested for
// its id. Products that were not found or belong to another partner are dropped.
func snapshotLines(ids []uint, qtyByID map[uint]int, products []models.Product, restaurantID uint) []models.Order {
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	lines := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || p.UserID != restaurantID {
			continue
		}
		lines = append(lines, models.Order{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image,
			Qty:       qtyByID[id],
		})
	}
	return lines
}

func internal(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}
