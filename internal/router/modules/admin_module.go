package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/fittinglab/storefront/internal/interface/http"
	"github.com/fittinglab/storefront/internal/interface/middleware"
)

// AdminModule exposes operator endpoints behind ADMIN_API_TOKEN.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Token   string
}

func NewAdminModule(h *handlers.AdminHandler, token string) *AdminModule {
	return &AdminModule{Handler: h, Token: token}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", middleware.AdminToken(m.Token))
	admin.POST("/uploads", m.Handler.Upload)
	admin.POST("/products/reindex", m.Handler.Reindex)
}
