package service

import (
	"context"
	"time"

	"waysfood-api/models"
)

// UserSummary is the counterpart user embedded in a transaction view.
type UserSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Location string `json:"location,omitempty"`
	Email    string `json:"email,omitempty"`
}

// OrderLineView is a snapshotted order line. ID is the catalog product id.
type OrderLineView struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
	Image string `json:"image"`
	Qty   int    `json:"qty"`
}

// TransactionView is the aggregate returned to API callers.
type TransactionView struct {
	ID               uint                     `json:"id"`
	Status           models.TransactionStatus `json:"status"`
	DeliveryLocation string                   `json:"deliveryLocation"`
	CustomerID       uint                     `json:"customerId"`
	RestaurantID     uint                     `json:"restaurantId"`
	Total            int64                    `json:"total"`
	CreatedAt        time.Time                `json:"createdAt"`
	UserOrder        *UserSummary             `json:"userOrder,omitempty"`
	Restaurant       *UserSummary             `json:"restaurant,omitempty"`
	Orders           []OrderLineView          `json:"orders"`
}

func (s *TransactionService) detail(ctx context.Context, tx *models.Transaction) (*TransactionView, error) {
	views, err := s.compose(ctx, []models.Transaction{*tx}, true, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// compose joins order lines and counterpart summaries onto each transaction
// with one query per related table.
func (s *TransactionService) compose(ctx context.Context, txs []models.Transaction, withCustomer, withRestaurant bool) ([]TransactionView, error) {
	views := make([]TransactionView, 0, len(txs))
	if len(txs) == 0 {
		return views, nil
	}

	txIDs := make([]uint, len(txs))
	var userIDs []uint
	seenUser := map[uint]bool{}
	addUser := func(id uint) {
		if !seenUser[id] {
			seenUser[id] = true
			userIDs = append(userIDs, id)
		}
	}
	for i, tx := range txs {
		txIDs[i] = tx.ID
		if withCustomer {
			addUser(tx.CustomerID)
		}
		if withRestaurant {
			addUser(tx.RestaurantID)
		}
	}

	orders, err := s.store.Orders.FindByTransactionIDs(ctx, txIDs)
	if err != nil {
		return nil, internal("find order lines", err)
	}
	linesByTx := make(map[uint][]OrderLineView, len(txs))
	totalByTx := make(map[uint]int64, len(txs))
	for _, o := range orders {
		linesByTx[o.TransactionID] = append(linesByTx[o.TransactionID], OrderLineView{
			ID:    o.ProductID,
			Title: o.Title,
			Price: o.Price,
			Image: s.images.URL(o.Image),
			Qty:   o.Qty,
		})
		totalByTx[o.TransactionID] += o.Subtotal()
	}

	users, err := s.store.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, internal("find users", err)
	}
	usersByID := make(map[uint]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	for _, tx := range txs {
		view := TransactionView{
			ID:               tx.ID,
			Status:           tx.Status,
			DeliveryLocation: tx.DeliveryLocation,
			CustomerID:       tx.CustomerID,
			RestaurantID:     tx.RestaurantID,
			Total:            totalByTx[tx.ID],
			CreatedAt:        tx.CreatedAt,
			Orders:           linesByTx[tx.ID],
		}
		if view.Orders == nil {
			view.Orders = []OrderLineView{}
		}
		if withCustomer {
			if u, ok := usersByID[tx.CustomerID]; ok {
				view.UserOrder = &UserSummary{ID: u.ID, FullName: u.FullName, Location: u.Location, Email: u.Email}
			}
		}
		if withRestaurant {
			if u, ok := usersByID[tx.RestaurantID]; ok {
				view.Restaurant = &UserSummary{ID: u.ID, FullName: u.FullName}
			}
		}
		views = append(views, view)
	}
	return views, nil
}
