package handlers

import (
	"net/http"

	"waysfood-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PublicHandler struct {
	db      *gorm.DB
	machine *statemachine.Machine
	logger  *zap.Logger
}

func NewPublicHandler(db *gorm.DB, machine *statemachine.Machine, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{db: db, machine: machine, logger: logger}
}

// Health reports whether the API can reach its database
func (h *PublicHandler) Health(c *gin.Context) {
	status := gin.H{"status": "healthy", "service": "waysfood-api"}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.logger.Warn("Database ping failed", zap.Error(err))
		status["status"] = "unhealthy"
		status["database"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	status["database"] = "ok"
	c.JSON(http.StatusOK, status)
}

// StateMachine returns the active transaction state machine
func (h *PublicHandler) StateMachine(c *gin.Context) {
	success(c, http.StatusOK, "state machine", gin.H{
		"initial":         h.machine.Initial(),
		"transitions":     h.machine.Transitions(),
		"terminal_states": h.machine.TerminalStates(),
	})
}
