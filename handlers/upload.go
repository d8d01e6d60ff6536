package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"waysfood-api/apperr"
	"waysfood-api/storage"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 2 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// saveImage stores the multipart "image" field and returns its key.
// A request without the field yields an empty key and no error.
func saveImage(c *gin.Context, images storage.Store) (string, error) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Validation("invalid image upload")
	}
	if header.Size > maxImageSize {
		return "", apperr.Validation("image must be at most 2MB")
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return "", apperr.Validation("image must be a jpg, png, webp or gif file")
	}

	f, err := header.Open()
	if err != nil {
		return "", apperr.Internal(err)
	}
	defer f.Close()

	key, err := images.Save(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), f)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return key, nil
}
