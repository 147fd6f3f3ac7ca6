package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/catalog"
	"github.com/fittinglab/storefront/pkg/response"
)

type CatalogHandler struct {
	Catalog *catalog.Service
	Logger  *logrus.Logger
}

func NewCatalogHandler(svc *catalog.Service, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: svc, Logger: logger}
}

// List GET /api/store/products?limit=&offset=
func (h *CatalogHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page, err := h.Catalog.List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page.Products, "products", gin.H{"count": page.Count, "limit": page.Limit, "offset": page.Offset})
}

// Get GET /api/store/products/:handle
func (h *CatalogHandler) Get(c *gin.Context) {
	p, err := h.Catalog.ByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": p}, "product", nil)
}

// Search GET /api/store/products/search?q=
func (h *CatalogHandler) Search(c *gin.Context) {
	hits, err := h.Catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"q": c.Query("q"), "total": len(hits)})
}
