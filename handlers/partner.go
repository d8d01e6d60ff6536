package handlers

import (
	"net/http"

	"waysfood-api/apperr"
	"waysfood-api/models"
	"waysfood-api/repository"
	"waysfood-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const popularPartnerLimit = 4

type PopularPartnerView struct {
	UserView
	TransactionCount int64 `json:"transactionCount"`
}

type PartnerHandler struct {
	users  repository.UserRepository
	images storage.Store
	logger *zap.Logger
}

func NewPartnerHandler(users repository.UserRepository, images storage.Store, logger *zap.Logger) *PartnerHandler {
	return &PartnerHandler{users: users, images: images, logger: logger}
}

// Popular ranks partners by their number of successful transactions.
func (h *PartnerHandler) Popular(c *gin.Context) {
	stats, err := h.users.PopularPartners(c.Request.Context(), models.StatusSuccess, popularPartnerLimit)
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	views := make([]PopularPartnerView, len(stats))
	for i := range stats {
		views[i] = PopularPartnerView{
			UserView:         newUserView(&stats[i].User, h.images),
			TransactionCount: stats[i].TransactionCount,
		}
	}
	success(c, http.StatusOK, "get popular partner successfully", gin.H{"users": views})
}
