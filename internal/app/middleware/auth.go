package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopfront/shopfront/internal/app/models"
	"github.com/shopfront/shopfront/internal/app/session"
)

// sessionContextKey is where the resolved session lives in the gin context.
const sessionContextKey = "session"

// SessionMiddleware resolves the cookie-persisted token once per request and
// stashes the result. Guards and handlers read only the stashed session, so
// every authorization decision in a request sees the same state.
func SessionMiddleware(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionContextKey, store.Current(c))
		c.Next()
	}
}

// CurrentSession returns the session resolved by SessionMiddleware, or the
// zero Session when the middleware did not run.
func CurrentSession(c *gin.Context) models.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(models.Session); ok {
			return sess
		}
	}
	return models.Session{}
}

// RequireAdmin gates the admin panel: unauthenticated viewers go to the
// login page, authenticated non-admins go back to the catalog. The decision
// is pure in the resolved session, so a redirected request never reaches the
// handler and no admin fetch is issued. Advisory UX only — the backend
// authorizes every admin call independently.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		switch {
		case !sess.Authenticated():
			redirect(c, "/login")
		case !sess.User.IsAdmin:
			redirect(c, "/")
		default:
			c.Next()
		}
	}
}

// RedirectIfAuthenticated keeps logged-in viewers off the login and register
// pages.
func RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).Authenticated() {
			redirect(c, "/")
			return
		}
		c.Next()
	}
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
