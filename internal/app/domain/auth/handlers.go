package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/shopfront/shopfront/internal/app/backend"
	"github.com/shopfront/shopfront/internal/app/middleware"
	"github.com/shopfront/shopfront/internal/app/observability/metrics"
	"github.com/shopfront/shopfront/internal/app/render"
	"github.com/shopfront/shopfront/internal/app/session"
)

type Handlers struct {
	api    *backend.Client
	store  *session.Store
	logger *zap.Logger
}

func NewHandlers(api *backend.Client, store *session.Store, logger *zap.Logger) *Handlers {
	return &Handlers{api: api, store: store, logger: logger}
}

type loginPageData struct {
	render.BaseData
	Email string
}

type registerPageData struct {
	render.BaseData
	Username string
	Email    string
}

func (h *Handlers) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginPageData{BaseData: render.BaseData{
		Title:   "Shopfront - Login",
		Session: middleware.CurrentSession(c),
		Flash:   session.PopFlash(c),
	}})
}

// Login exchanges credentials for a token, resolves it to a profile, and
// only then records the session: a token without a resolvable user never
// becomes a session.
func (h *Handlers) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	data := loginPageData{
		BaseData: render.BaseData{Title: "Shopfront - Login", Session: middleware.CurrentSession(c)},
		Email:    email,
	}

	if email == "" || password == "" {
		data.Error = "Email and password are required."
		c.HTML(http.StatusBadRequest, "login.html", data)
		return
	}

	ctx := c.Request.Context()
	token, err := h.api.Login(ctx, email, password)
	if err != nil {
		h.logger.Warn("Invalid login credentials", zap.String("email", email))
		h.countAuth(c, "login", false)
		data.Error = "Invalid email or password."
		c.HTML(http.StatusUnauthorized, "login.html", data)
		return
	}

	profile, err := h.api.Me(ctx, token)
	if err != nil {
		h.logger.Warn("Failed to resolve profile after login", zap.Error(err))
		h.countAuth(c, "login", false)
		data.Error = "Invalid email or password."
		c.HTML(http.StatusUnauthorized, "login.html", data)
		return
	}

	if err := h.store.Login(c, profile, token); err != nil {
		h.logger.Error("Failed to persist session", zap.Error(err))
		data.Error = "Login failed. Please try again."
		c.HTML(http.StatusInternalServerError, "login.html", data)
		return
	}

	h.countAuth(c, "login", true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", registerPageData{BaseData: render.BaseData{
		Title:   "Shopfront - Register",
		Session: middleware.CurrentSession(c),
		Flash:   session.PopFlash(c),
	}})
}

func (h *Handlers) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	data := registerPageData{
		BaseData: render.BaseData{Title: "Shopfront - Register", Session: middleware.CurrentSession(c)},
		Username: username,
		Email:    email,
	}

	if username == "" || email == "" || password == "" {
		data.Error = "All fields are required."
		c.HTML(http.StatusBadRequest, "register.html", data)
		return
	}

	if err := h.api.Register(c.Request.Context(), username, email, password); err != nil {
		h.logger.Warn("Registration failed", zap.String("email", email), zap.Error(err))
		h.countAuth(c, "register", false)
		data.Error = "Registration failed."
		c.HTML(http.StatusBadRequest, "register.html", data)
		return
	}

	h.countAuth(c, "register", true)
	session.AddFlash(c, "Account created! Please log in.")
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handlers) Logout(c *gin.Context) {
	if err := h.store.Logout(c); err != nil {
		h.logger.Warn("Failed to clear session", zap.Error(err))
	}
	h.countAuth(c, "logout", true)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handlers) countAuth(c *gin.Context, op string, ok bool) {
	if m := metrics.Get(); m != nil {
		m.AuthRequestsTotal.Add(c.Request.Context(), 1,
			metric.WithAttributes(attribute.String("op", op), attribute.Bool("success", ok)))
	}
}
