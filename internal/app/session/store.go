package session

import (
	"context"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/shopfront/shopfront/internal/app/backend"
	"github.com/shopfront/shopfront/internal/app/models"
)

// tokenKey is the single durable key: the raw bearer token persisted in the
// encrypted cookie session. The user object is never persisted; it is
// re-derived from the token on every cold resolution.
const tokenKey = "token"

// ProfileResolver resolves a bearer token to the user it belongs to.
type ProfileResolver interface {
	Me(ctx context.Context, token string) (*models.User, error)
}

// Store is the single source of truth for "who is logged in". The token
// lives in the browser cookie so it survives restarts on both ends; resolved
// users are cached in-process with a short TTL and deduplicated so a burst
// of requests with the same fresh token costs one profile fetch.
type Store struct {
	resolver ProfileResolver
	users    *gocache.Cache
	group    singleflight.Group
	logger   *zap.Logger
}

func NewStore(resolver ProfileResolver, cacheTTL time.Duration, logger *zap.Logger) *Store {
	return &Store{
		resolver: resolver,
		users:    gocache.New(cacheTTL, 2*cacheTTL),
		logger:   logger,
	}
}

// Login records a freshly authenticated session: token into the cookie, user
// into the cache. Both take effect together.
func (s *Store) Login(c *gin.Context, user *models.User, token string) error {
	sess := sessions.Default(c)
	sess.Set(tokenKey, token)
	if err := sess.Save(); err != nil {
		return err
	}
	s.users.Set(token, user, gocache.DefaultExpiration)
	return nil
}

// Logout destroys the session: cookie key and cached user both go.
func (s *Store) Logout(c *gin.Context) error {
	sess := sessions.Default(c)
	if token, ok := sess.Get(tokenKey).(string); ok && token != "" {
		s.users.Delete(token)
	}
	sess.Delete(tokenKey)
	return sess.Save()
}

// Current resolves the request's session. Absent or unresolvable tokens
// yield the zero Session, so callers see a user if and only if they see a
// token. A token the backend rejects as unauthorized is cleared for good;
// a resolution that fails for other reasons (backend down, 5xx) leaves the
// token in place and treats this request as unauthenticated.
func (s *Store) Current(c *gin.Context) models.Session {
	sess := sessions.Default(c)
	token, _ := sess.Get(tokenKey).(string)
	if token == "" {
		return models.Session{}
	}

	if tokenExpired(token) {
		s.logger.Debug("Discarding expired session token")
		s.discard(c, token)
		return models.Session{}
	}

	if cached, ok := s.users.Get(token); ok {
		return models.Session{User: cached.(*models.User), Token: token}
	}

	v, err, _ := s.group.Do(token, func() (any, error) {
		return s.resolver.Me(c.Request.Context(), token)
	})
	if err != nil {
		if backend.IsAuthRejection(err) {
			s.logger.Info("Session token rejected by backend, clearing", zap.Error(err))
			s.discard(c, token)
		} else {
			s.logger.Warn("Failed to resolve session token", zap.Error(err))
		}
		return models.Session{}
	}

	user := v.(*models.User)
	s.users.Set(token, user, gocache.DefaultExpiration)
	return models.Session{User: user, Token: token}
}

func (s *Store) discard(c *gin.Context, token string) {
	s.users.Delete(token)
	sess := sessions.Default(c)
	sess.Delete(tokenKey)
	if err := sess.Save(); err != nil {
		s.logger.Warn("Failed to clear session cookie", zap.Error(err))
	}
}

// tokenExpired does an unverified decode of the token's exp claim so an
// already-dead JWT is not spent on a network round trip. Opaque or
// claim-less tokens pass through; verification stays with the backend.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
