package routes

import (
	"waysfood-api/handlers"
	"waysfood-api/middleware"
	"waysfood-api/repository"
	"waysfood-api/service"
	"waysfood-api/statemachine"
	"waysfood-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	DB          *gorm.DB
	Images      storage.Store
	Machine     *statemachine.Machine
	Tokens      *middleware.TokenManager
	Logger      *zap.Logger
	ListLimit   int
	CORSOrigins []string
	UploadDir   string
}

// NewRouter wires repositories, the lifecycle service and handlers into a gin engine.
func NewRouter(o Options) *gin.Engine {
	store := repository.NewStore(o.DB)
	txService := service.NewTransactionService(store, o.Machine, o.Images, o.Logger, o.ListLimit)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(o.Logger))

	SetupRoutes(r, Deps{
		Tokens:       o.Tokens,
		CORSOrigins:  o.CORSOrigins,
		UploadDir:    o.UploadDir,
		Public:       handlers.NewPublicHandler(o.DB, o.Machine, o.Logger),
		Auth:         handlers.NewAuthHandler(store.Users, o.Tokens, o.Images, o.Logger),
		Users:        handlers.NewUserHandler(store.Users, o.Images, o.Logger),
		Products:     handlers.NewProductHandler(store.Products, store.Orders, o.Images, o.Logger),
		Partners:     handlers.NewPartnerHandler(store.Users, o.Images, o.Logger),
		Transactions: handlers.NewTransactionHandler(txService, o.Logger),
	})
	return r
}
