package cart

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

type cartPageData struct {
	render.BaseData
	Items []models.CartItem
	Total float64
}

// ShowCart fetches the viewer's cart and renders it with a display-only
// total. An unauthenticated visit gets the backend's rejection as the usual
// view-local error; the route stays public per the guard policy.
func (h *Handlers) ShowCart(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	data := cartPageData{BaseData: render.BaseData{
		Title:   "Shopfront - Your Cart",
		Active:  "Cart",
		Session: sess,
		Flash:   session.PopFlash(c),
	}}

	items, err := h.api.Cart(c.Request.Context(), sess.Token)
	if err != nil {
		h.logger.Warn("Failed to fetch cart", zap.Error(err))
		data.Error = "Failed to load cart."
	} else {
		data.Items = items
		data.Total = models.CartTotal(items)
	}

	c.HTML(http.StatusOK, "cart.html", data)
}

// RemoveItem deletes a cart row by product id. The redirect re-fetches the
// cart, so only the row embedding that product disappears and the total is
// recomputed from what the backend still holds.
func (h *Handlers) RemoveItem(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	productID, err := strconv.Atoi(c.PostForm("product_id"))
	if err != nil {
		session.AddFlash(c, "Failed to remove item.")
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}

	if err := h.api.RemoveFromCart(c.Request.Context(), sess.Token, productID); err != nil {
		h.logger.Warn("Cart remove failed", zap.Int("product_id", productID), zap.Error(err))
		session.AddFlash(c, "Failed to remove item.")
	} else if m := metrics.Get(); m != nil {
		m.CartOpsTotal.Add(c.Request.Context(), 1,
			metric.WithAttributes(attribute.String("op", "remove")))
	}

	c.Redirect(http.StatusSeeOther, "/cart")
}

// Checkout asks the backend for a hosted payment session and navigates the
// whole page to the URL it returns. A response without a checkout URL is a
// reportable error, never a silent no-op.
func (h *Handlers) Checkout(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	if m := metrics.Get(); m != nil {
		m.CheckoutRequestsTotal.Add(c.Request.Context(), 1)
	}

	checkoutURL, err := h.api.Checkout(c.Request.Context(), sess.Token)
	if err != nil {
		h.logger.Warn("Checkout failed", zap.Error(err))
		session.AddFlash(c, "Failed to start checkout.")
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}
	if checkoutURL == "" {
		h.logger.Warn("Checkout response missing checkout_url")
		session.AddFlash(c, "Checkout URL not found.")
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}

	c.Redirect(http.StatusSeeOther, checkoutURL)
}
