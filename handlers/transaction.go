package handlers

import (
	"net/http"

	"waysfood-api/models"
	"waysfood-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateTransactionRequest struct {
	RestaurantID     uint                  `json:"restaurant_id"`
	DeliveryLocation string                `json:"deliveryLocation"`
	Products         []service.LineRequest `json:"products"`
}

// UpdateTransactionRequest is a partial update; omitted fields stay as they are.
type UpdateTransactionRequest struct {
	Status           *models.TransactionStatus `json:"status"`
	DeliveryLocation *string                   `json:"deliveryLocation"`
}

type TransactionHandler struct {
	svc    *service.TransactionService
	logger *zap.Logger
}

func NewTransactionHandler(svc *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, logger: logger}
}

// Create places a new transaction for the calling customer
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	view, err := h.svc.Create(c.Request.Context(), caller(c), service.CreateInput{
		RestaurantID:     req.RestaurantID,
		DeliveryLocation: req.DeliveryLocation,
		Products:         req.Products,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusCreated, "resource has successfully created", gin.H{"transaction": view})
}

// ListForPartner returns the transactions received by the calling partner.
// The :id segment is accepted but the listing is always the caller's own.
func (h *TransactionHandler) ListForPartner(c *gin.Context) {
	views, err := h.svc.ListForPartner(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusOK, "resources has successfully get", gin.H{"transactions": views})
}

func (h *TransactionHandler) ListForCustomer(c *gin.Context) {
	views, err := h.svc.ListForCustomer(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusOK, "resources has successfully get", gin.H{"transactions": views})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	view, err := h.svc.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusOK, "resource has successfully get", gin.H{"transaction": view})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	view, err := h.svc.Update(c.Request.Context(), caller(c), id, service.Patch{
		Status:           req.Status,
		DeliveryLocation: req.DeliveryLocation,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusOK, "resource has successfully updated", gin.H{"transaction": view})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	deleted, err := h.svc.Delete(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusOK, "resource has successfully deleted", gin.H{"id": deleted})
}

// History returns the status changes of one transaction, oldest first
func (h *TransactionHandler) History(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	entries, err := h.svc.History(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusOK, "resources has successfully get", gin.H{"history": entries})
}
