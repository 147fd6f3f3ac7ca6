package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/internal/catalog"
	"github.com/fittinglab/storefront/pkg/response"
)

const maxUploadBytes = 10 << 20

// AdminHandler holds the operator endpoints: product media uploads and search reindexing.
type AdminHandler struct {
	Media   *application.MediaService
	Catalog *catalog.Service
	Logger  *logrus.Logger
}

func NewAdminHandler(media *application.MediaService, cat *catalog.Service, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Media: media, Catalog: cat, Logger: logger}
}

// Upload POST /api/admin/uploads (multipart field "file")
func (h *AdminHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Bitte wählen Sie eine Datei aus.", nil)
		return
	}
	if fh.Size > maxUploadBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "Die Datei ist zu groß (max. 10 MB).", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Media.UploadProductFile(c.Request.Context(), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"url": url}, "uploaded", nil)
}

// Reindex POST /api/admin/products/reindex
func (h *AdminHandler) Reindex(c *gin.Context) {
	n, err := h.Catalog.Reindex(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"indexed": n}, "reindexed", nil)
}
