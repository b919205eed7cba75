package admin_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopfront/shopfront/internal/app/backend"
	"github.com/shopfront/shopfront/internal/app/middleware"
	"github.com/shopfront/shopfront/internal/app/render"
	"github.com/shopfront/shopfront/internal/app/session"
	"github.com/shopfront/shopfront/internal/pkg/config"
	"github.com/shopfront/shopfront/internal/routes"
)

// stubAdmin fakes the privileged product endpoints and counts listing hits so
// tests can prove guarded paths never reach the backend.
type stubAdmin struct {
	mux        *http.ServeMux
	listHits   atomic.Int32
	createBody []byte
	lastMethod string
	lastPath   string
}

func newStubAdmin() *stubAdmin {
	s := &stubAdmin{mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok|" + body["email"]})
	})
	s.mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		email, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer tok|")
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "username": "u", "email": email,
			"is_admin": strings.HasPrefix(email, "admin"),
		})
	})
	s.mux.HandleFunc("GET /admin/products", func(w http.ResponseWriter, r *http.Request) {
		s.listHits.Add(1)
		_, _ = w.Write([]byte(`[
			{"id":5,"name":"Mug","description":"A mug","price":9.99,"quantity":10},
			{"id":6,"name":"Shirt","description":"A shirt","price":19.5,"quantity":4}
		]`))
	})
	s.mux.HandleFunc("POST /admin/products", func(w http.ResponseWriter, r *http.Request) {
		s.createBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"id":7,"name":"X","description":"d","price":9.99,"quantity":3}`))
	})
	s.mux.HandleFunc("/admin/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.lastMethod = r.Method
		s.lastPath = r.URL.Path
		switch r.Method {
		case http.MethodPut:
			_, _ = w.Write([]byte(`{"id":5,"name":"Mug v2","description":"d","price":11.5,"quantity":8}`))
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"message":"Product deleted"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return s
}

func newApp(t *testing.T, backendURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	api := backend.NewClient(config.BackendConfig{BaseURL: backendURL, Timeout: 2 * time.Second}, logger)
	store := session.NewStore(api, time.Minute, logger)

	r := gin.New()
	tmpl, err := render.Templates()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(middleware.SessionMiddleware(store))
	routes.Setup(r, api, store, logger)
	return r
}

func loginAs(t *testing.T, r *gin.Engine, email string) []*http.Cookie {
	t.Helper()
	form := url.Values{"email": {email}, "password": {"pw"}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	return w.Result().Cookies()
}

func doForm(r *gin.Engine, method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	body := ""
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseHTML(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func TestAnonymousRedirectedWithoutBackendFetch(t *testing.T) {
	stub := newStubAdmin()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)
	r := newApp(t, srv.URL)

	w := doForm(r, http.MethodGet, "/admin", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, int32(0), stub.listHits.Load(), "guard must short-circuit before any fetch")
}

func TestShopperRedirectedHome(t *testing.T) {
	stub := newStubAdmin()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)
	r := newApp(t, srv.URL)
	cookies := loginAs(t, r, "alice@example.com")

	w := doForm(r, http.MethodGet, "/admin", nil, cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, int32(0), stub.listHits.Load())
}

func TestPanelRendersProducts(t *testing.T) {
	stub := newStubAdmin()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)
	r := newApp(t, srv.URL)
	cookies := loginAs(t, r, "admin@example.com")

	w := doForm(r, http.MethodGet, "/admin", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	doc := parseHTML(t, w)
	assert.Equal(t, 2, doc.Find("ul.admin-products li").Length())
	action, _ := doc.Find("#product-form").Attr("action")
	assert.Equal(t, "/admin/products", action, "blank form targets create")
	confirm, _ := doc.Find("li[data-product-id='5'] form.inline").Attr("onsubmit")
	assert.Contains(t, confirm, "confirm(")
}

func TestPanelEditPrefill(t *testing.T) {
	stub := newStubAdmin()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)
	r := newApp(t, srv.URL)
	cookies := loginAs(t, r, "admin@example.com")

	doc := parseHTML(t, doForm(r, http.MethodGet, "/admin?edit=5", nil, cookies))
	action, _ := doc.Find("#product-form").Attr("action")
	assert.Equal(t, "/admin/products/5", action)
	name, _ := doc.Find("#product-form input[name='name']").Attr("value")
	assert.Equal(t, "Mug", name)
}

func TestCreateProductCoercesFormStrings(t *testing.T) {
	stub := newStubAdmin()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)
	r := newApp(t, srv.URL)
	cookies := loginAs(t, r, "admin@example.com")

	w := doForm(r, http.MethodPost, "/admin/products", url.Values{
		"name": {"X"}, "description": {"d"}, "price": {"9.99"}, "quantity": {"3"},
	}, cookies)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	// The backend must see JSON numbers, not the form's strings.
	dec := json.NewDecoder(strings.NewReader(string(stub.createBody)))
	dec.UseNumber()
	var payload map[string]any
	require.NoError(t, dec.Decode(&payload))
	assert.Equal(t, json.Number("9.99"), payload["price"])
	assert.Equal(t, json.Number("3"), payload["quantity"])
}

func TestCreateProductRejectsBadNumbers(t *testing.T) {
	stub := newStubAdmin()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)
	r := newApp(t, srv.URL)
	cookies := loginAs(t, r, "admin@example.com")

	w := doForm(r, http.MethodPost, "/admin/products", url.Values{
		"name": {"X"}, "description": {"d"}, "price": {"not-a-price"}, "quantity": {"3"},
	}, cookies)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Nil(t, stub.createBody, "invalid input never reaches the backend")

	doc := parseHTML(t, doForm(r, http.MethodGet, "/admin", nil, w.Result().Cookies()))
	assert.Equal(t, "Price and quantity must be valid numbers.", doc.Find("p.flash").Text())
}

func TestUpdateProduct(t *testing.T) {
	stub := newStubAdmin()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)
	r := newApp(t, srv.URL)
	cookies := loginAs(t, r, "admin@example.com")

	w := doForm(r, http.MethodPost, "/admin/products/5", url.Values{
		"name": {"Mug v2"}, "description": {"d"}, "price": {"11.50"}, "quantity": {"8"},
	}, cookies)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, http.MethodPut, stub.lastMethod)
	assert.Equal(t, "/admin/products/5", stub.lastPath)

	doc := parseHTML(t, doForm(r, http.MethodGet, "/admin", nil, w.Result().Cookies()))
	assert.Equal(t, "Product updated.", doc.Find("p.flash").Text())
}

func TestDeleteProduct(t *testing.T) {
	stub := newStubAdmin()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)
	r := newApp(t, srv.URL)
	cookies := loginAs(t, r, "admin@example.com")

	w := doForm(r, http.MethodPost, "/admin/products/6/delete", nil, cookies)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	assert.Equal(t, http.MethodDelete, stub.lastMethod)
	assert.Equal(t, "/admin/products/6", stub.lastPath)
}
