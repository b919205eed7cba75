package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopfront/shopfront/internal/app/backend"
	"github.com/shopfront/shopfront/internal/app/middleware"
	"github.com/shopfront/shopfront/internal/app/models"
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

type adminPageData struct {
	render.BaseData
	Products []models.Product
	Editing  *models.Product
}

// ShowPanel renders the product management panel. Reaching here means the
// admin guard already passed; the backend still authorizes the listing call
// on its own.
func (h *Handlers) ShowPanel(c *gin.Context) {
	data := adminPageData{BaseData: render.BaseData{
		Title:   "Shopfront - Admin",
		Active:  "Admin",
		Session: middleware.CurrentSession(c),
		Flash:   session.PopFlash(c),
	}}

	products, err := h.api.AdminProducts(c.Request.Context(), data.Session.Token)
	if err != nil {
		h.logger.Error("Failed to fetch admin products", zap.Error(err))
		data.Error = "Failed to fetch products (admins only)."
		c.HTML(http.StatusOK, "admin.html", data)
		return
	}
	data.Products = products

	// ?edit=<id> prefills the form with that product for updating.
	if editID, err := strconv.Atoi(c.Query("edit")); err == nil {
		for i := range products {
			if products[i].ID == editID {
				data.Editing = &products[i]
				break
			}
		}
	}

	c.HTML(http.StatusOK, "admin.html", data)
}

// CreateProduct coerces the form fields and creates a catalog record.
func (h *Handlers) CreateProduct(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	in, ok := h.productInput(c)
	if !ok {
		return
	}

	if _, err := h.api.CreateProduct(c.Request.Context(), sess.Token, in); err != nil {
		h.logger.Warn("Product create failed", zap.Error(err))
		session.AddFlash(c, "Action failed. Make sure you are logged in as admin.")
	} else {
		session.AddFlash(c, "Product created.")
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

// UpdateProduct coerces the form fields and replaces the record by id.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		session.AddFlash(c, "Action failed. Make sure you are logged in as admin.")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	in, ok := h.productInput(c)
	if !ok {
		return
	}

	if _, err := h.api.UpdateProduct(c.Request.Context(), sess.Token, id, in); err != nil {
		h.logger.Warn("Product update failed", zap.Int("id", id), zap.Error(err))
		session.AddFlash(c, "Action failed. Make sure you are logged in as admin.")
	} else {
		session.AddFlash(c, "Product updated.")
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

// DeleteProduct removes a record by id. The confirmation dialog lives in the
// template; by the time this runs the admin already confirmed.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		session.AddFlash(c, "Delete failed.")
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	if err := h.api.DeleteProduct(c.Request.Context(), sess.Token, id); err != nil {
		h.logger.Warn("Product delete failed", zap.Int("id", id), zap.Error(err))
		session.AddFlash(c, "Delete failed.")
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

// productInput reads the create/update form and coerces price to a decimal
// number and quantity to an integer. The backend receives JSON numbers,
// never the raw form strings. On bad input it flashes and redirects itself,
// returning ok=false.
func (h *Handlers) productInput(c *gin.Context) (backend.ProductInput, bool) {
	price, priceErr := strconv.ParseFloat(c.PostForm("price"), 64)
	quantity, qtyErr := strconv.Atoi(c.PostForm("quantity"))
	if priceErr != nil || qtyErr != nil || price < 0 || quantity < 0 {
		session.AddFlash(c, "Price and quantity must be valid numbers.")
		c.Redirect(http.StatusSeeOther, "/admin")
		return backend.ProductInput{}, false
	}

	return backend.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		Quantity:    quantity,
	}, true
}
