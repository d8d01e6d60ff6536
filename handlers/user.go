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

// UserView is a user as returned by the API; the image is a public URL.
type UserView struct {
	ID       uint            `json:"id"`
	FullName string          `json:"fullName"`
	Email    string          `json:"email"`
	Gender   string          `json:"gender"`
	Phone    string          `json:"phone"`
	Location string          `json:"location"`
	Image    string          `json:"image"`
	Role     models.UserRole `json:"role"`
}

func newUserView(u *models.User, images storage.Store) UserView {
	return UserView{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Gender:   u.Gender,
		Phone:    u.Phone,
		Location: u.Location,
		Image:    images.URL(u.Image),
		Role:     u.Role,
	}
}

type UpdateUserRequest struct {
	FullName *string `json:"fullName" form:"fullName" binding:"omitempty,min=3,max=40"`
	Gender   *string `json:"gender" form:"gender"`
	Phone    *string `json:"phone" form:"phone" binding:"omitempty,min=10,max=15"`
	Location *string `json:"location" form:"location"`
}

func (r UpdateUserRequest) fields() map[string]any {
	fields := map[string]any{}
	if r.FullName != nil {
		fields["full_name"] = *r.FullName
	}
	if r.Gender != nil {
		fields["gender"] = *r.Gender
	}
	if r.Phone != nil {
		fields["phone"] = *r.Phone
	}
	if r.Location != nil {
		fields["location"] = *r.Location
	}
	return fields
}

type UserHandler struct {
	users  repository.UserRepository
	images storage.Store
	logger *zap.Logger
}

func NewUserHandler(users repository.UserRepository, images storage.Store, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, images: images, logger: logger}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	views := make([]UserView, len(users))
	for i := range users {
		views[i] = newUserView(&users[i], h.images)
	}
	success(c, http.StatusOK, "get users successfully", gin.H{"users": views})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	success(c, http.StatusOK, "user detail successfully get", gin.H{"user": newUserView(user, h.images)})
}

// Update edits the caller's own profile. A multipart "image" replaces the avatar.
func (h *UserHandler) Update(c *gin.Context) {
	user, err := h.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := policy.CanManageUser(caller(c), user.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	fields := req.fields()

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
	if err := h.users.Update(ctx, user.ID, fields); err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	if image != "" && user.Image != "" {
		if err := h.images.Delete(ctx, user.Image); err != nil {
			h.logger.Warn("Failed to remove old avatar", zap.String("key", user.Image), zap.Error(err))
		}
	}

	updated, err := h.users.FindByID(ctx, user.ID)
	if err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	success(c, http.StatusOK, "user has successfully updated", gin.H{"user": newUserView(updated, h.images)})
}

func (h *UserHandler) Delete(c *gin.Context) {
	user, err := h.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := policy.CanManageUser(caller(c), user.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.users.Delete(ctx, user.ID); err != nil {
		respondError(c, h.logger, apperr.Internal(err))
		return
	}
	if err := h.images.Delete(ctx, user.Image); err != nil {
		h.logger.Warn("Failed to remove avatar", zap.String("key", user.Image), zap.Error(err))
	}
	success(c, http.StatusOK, "user has successfully deleted", gin.H{"id": user.ID})
}

func (h *UserHandler) load(c *gin.Context) (*models.User, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	user, err := h.users.FindByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user is not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}
