package handlers

import (
	"errors"
	"net/http"

	"waysfood-api/apperr"
	"waysfood-api/models"
	"waysfood-api/policy"
	"waysfood-api/repository"
	"waysfood-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductView is a catalog entry with its owner summary.
type ProductView struct {
	ID    uint      `json:"id"`
	Title string    `json:"title"`
	Price int64     `json:"price"`
	Image string    `json:"image"`
	User  *UserView `json:"user,omitempty"`
}

func newProductView(p *models.Product, images storage.Store) ProductView {
	view := ProductView{ID: p.ID, Title: p.Title, Price: p.Price, Image: images.URL(p.Image)}
	if p.User != nil {
		owner := newUserView(p.User, images)
		owner.Image = ""
		view.User = &owner
	}
	return view
}

type CreateProductRequest struct {
	Title string `form:"title" json:"title" binding:"required,min=2,max=100"`
	Price int64  `form:"price" json:"price" binding:"required,gt=0"`
}

type UpdateProductRequest struct {
	Title *string `form:"title" json:"title" binding:"omitempty,min=2,max=100"`
	Price *int64  `form:"price" json:"price" binding:"omitempty,gt=0"`
}

type ProductHandler struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	images   storage.Store
	logger   *zap.Logger
}

func NewProductHandler(products repository.ProductRepository, orders repository.OrderRepository, images storage.Store, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, orders: orders, images: images, logger: logger}
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	h.respondList(c, products)
}

// ListByOwner returns the menu of one partner.
func (h *ProductHandler) ListByOwner(c *gin.Context) {
	userID, err := paramID(c, "userId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	products, err := h.products.FindByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	h.respondList(c, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusOK, "resource has successfully get", gin.H{"product": newProductView(product, h.images)})
}

// Create adds a product owned by the calling partner. The image is a required
// multipart field.
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	image, err := saveImage(c, h.images)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if image == "" {
		respondError(c, h.logger, apperr.Validation("image is required"))
		return
	}

	ctx := c.Request.Context()
	product := models.Product{UserID: caller(c).ID, Title: req.Title, Price: req.Price, Image: image}
	if err := h.products.Create(ctx, &product); err != nil {
		h.discard(c, image)
		respondError(c, h.logger, apperr.Internal(err))
		return
	}

	created, err := h.products.FindByID(ctx, product.ID)
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	h.logger.Info("Product created", zap.Uint("product_id", created.ID), zap.Uint("user_id", created.UserID))
	success(c, http.StatusCreated, "resource has successfully created", gin.H{"product": newProductView(created, h.images)})
}

// Update edits a product of the calling partner. Existing order lines keep
// their snapshot.
func (h *ProductHandler) Update(c *gin.Context) {
	product, err := h.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := policy.CanManageProduct(caller(c), product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	image, err := saveImage(c, h.images)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if image != "" {
		fields["image"] = image
	}
	if len(fields) == 0 {
		respondError(c, h.logger, apperr.Validation("nothing to update"))
		return
	}

	ctx := c.Request.Context()
	if err := h.products.Update(ctx, product.ID, fields); err != nil {
		h.discard(c, image)
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	if image != "" {
		h.release(c, product.Image)
	}

	updated, err := h.products.FindByID(ctx, product.ID)
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	success(c, http.StatusOK, "resource has successfully updated", gin.H{"product": newProductView(updated, h.images)})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	product, err := h.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := policy.CanManageProduct(caller(c), product); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.products.Delete(c.Request.Context(), product.ID); err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	h.release(c, product.Image)
	success(c, http.StatusOK, "resource has successfully deleted", gin.H{"id": product.ID})
}

func (h *ProductHandler) respondList(c *gin.Context, products []models.Product) {
	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = newProductView(&products[i], h.images)
	}
	success(c, http.StatusOK, "resources has successfully get", gin.H{"products": views})
}

func (h *ProductHandler) load(c *gin.Context) (*models.Product, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	product, err := h.products.FindByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("resource doesn't exist")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return product, nil
}

// release drops the product's claim on key. Order lines snapshot image keys,
// so the file stays while any line still points at it.
func (h *ProductHandler) release(c *gin.Context, key string) {
	if key == "" {
		return
	}
	used, err := h.orders.ReferencesImage(c.Request.Context(), key)
	if err != nil {
		h.logger.Warn("Failed to check image references", zap.String("key", key), zap.Error(err))
		return
	}
	if used {
		return
	}
	h.discard(c, key)
}

// discard removes an image nothing references. Failures only log.
func (h *ProductHandler) discard(c *gin.Context, key string) {
	if key == "" {
		return
	}
	if err := h.images.Delete(c.Request.Context(), key); err != nil {
		h.logger.Warn("Failed to remove product image", zap.String("key", key), zap.Error(err))
	}
}
