package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/shopfront/shopfront/internal/app/backend"
	"github.com/shopfront/shopfront/internal/app/middleware"
	"github.com/shopfront/shopfront/internal/app/models"
	"github.com/shopfront/shopfront/internal/app/observability/metrics"
	"github.com/shopfront/shopfront/internal/app/render"
	"github.com/shopfront/shopfront/internal/app/session"
)

type Handlers struct {
	api    *backend.Client
	logger *zap.Logger
}

func NewHandlers(api *backend.Client, logger *zap.Logger) *Handlers {
	return &Handlers{api: api, logger: logger}
}

type homePageData struct {
	render.BaseData
	Products []models.Product
}

// ShowCatalog renders the public product grid. The list is re-fetched on
// every visit; nothing is cached between pages.
func (h *Handlers) ShowCatalog(c *gin.Context) {
	data := homePageData{BaseData: render.BaseData{
		Title:   "Shopfront - Products",
		Active:  "Home",
		Session: middleware.CurrentSession(c),
		Flash:   session.PopFlash(c),
	}}

	products, err := h.api.Products(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch products", zap.Error(err))
		data.Error = "Failed to load products."
	} else {
		data.Products = products
	}

	c.HTML(http.StatusOK, "home.html", data)
}

// AddToCart adds one unit of a product to the viewer's backend cart and
// bounces back to the catalog with a flash. The cart view is deliberately
// not touched; it re-fetches when it mounts.
func (h *Handlers) AddToCart(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	productID, err := strconv.Atoi(c.PostForm("product_id"))
	if err != nil {
		session.AddFlash(c, "Failed to add item to cart.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if err := h.api.AddToCart(c.Request.Context(), sess.Token, productID, 1); err != nil {
		h.logger.Warn("Add to cart failed", zap.Int("product_id", productID), zap.Error(err))
		session.AddFlash(c, "Failed to add item to cart.")
	} else {
		countCartOp(c, "add")
		session.AddFlash(c, "Added to cart.")
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func countCartOp(c *gin.Context, op string) {
	if m := metrics.Get(); m != nil {
		m.CartOpsTotal.Add(c.Request.Context(), 1,
			metric.WithAttributes(attribute.String("op", op)))
	}
}
