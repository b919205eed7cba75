package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopfront/shopfront/internal/app/backend"
	"github.com/shopfront/shopfront/internal/app/domain/admin"
	"github.com/shopfront/shopfront/internal/app/domain/auth"
	"github.com/shopfront/shopfront/internal/app/domain/cart"
	"github.com/shopfront/shopfront/internal/app/domain/catalog"
	"github.com/shopfront/shopfront/internal/app/middleware"
	"github.com/shopfront/shopfront/internal/app/session"
)

type AppHandlers struct {
	Catalog *catalog.Handlers
	Cart    *cart.Handlers
	Auth    *auth.Handlers
	Admin   *admin.Handlers
}

func Setup(r *gin.Engine, api *backend.Client, store *session.Store, log *zap.Logger) {
	handlers := setupDependencies(api, store, log)
	setupRouter(r, handlers)
}

func setupDependencies(api *backend.Client, store *session.Store, log *zap.Logger) *AppHandlers {
	return &AppHandlers{
		Catalog: catalog.NewHandlers(api, log),
		Cart:    cart.NewHandlers(api, log),
		Auth:    auth.NewHandlers(api, store, log),
		Admin:   admin.NewHandlers(api, log),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers) {
	// Public views. Cart stays public: an unauthenticated fetch surfaces the
	// backend's rejection as a view-local error, not a redirect.
	r.GET("/", h.Catalog.ShowCatalog)
	r.POST("/cart/add", h.Catalog.AddToCart)
	r.GET("/cart", h.Cart.ShowCart)
	r.POST("/cart/remove", h.Cart.RemoveItem)
	r.POST("/orders/checkout", h.Cart.Checkout)

	// Login and register redirect away when a session already exists.
	guest := r.Group("/", middleware.RedirectIfAuthenticated())
	{
		guest.GET("/login", h.Auth.ShowLogin)
		guest.POST("/login", h.Auth.Login)
		guest.GET("/register", h.Auth.ShowRegister)
		guest.POST("/register", h.Auth.Register)
	}

	r.POST("/logout", h.Auth.Logout)

	// Admin panel: the guard redirects before any backend fetch happens.
	adminGroup := r.Group("/admin", middleware.RequireAdmin())
	{
		adminGroup.GET("", h.Admin.ShowPanel)
		adminGroup.POST("/products", h.Admin.CreateProduct)
		adminGroup.POST("/products/:id", h.Admin.UpdateProduct)
		adminGroup.POST("/products/:id/delete", h.Admin.DeleteProduct)
	}
}
