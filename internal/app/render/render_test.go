package render_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/shopfront/internal/app/models"
	"github.com/shopfront/shopfront/internal/app/render"
)

func renderPage(t *testing.T, name string, data any) *goquery.Document {
	t.Helper()
	tmpl, err := render.Templates()
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, tmpl.ExecuteTemplate(&sb, name, data))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return doc
}

func TestTemplatesParse(t *testing.T) {
	tmpl, err := render.Templates()
	require.NoError(t, err)
	for _, name := range []string{"home.html", "cart.html", "login.html", "register.html", "admin.html", "navbar", "flash"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestPriceFormatting(t *testing.T) {
	type homeData struct {
		render.BaseData
		Products []models.Product
	}
	doc := renderPage(t, "home.html", homeData{
		BaseData: render.BaseData{Title: "t"},
		Products: []models.Product{
			{ID: 1, Name: "Mug", Price: 9.9},
			{ID: 2, Name: "Crate", Price: 1234.5},
		},
	})

	assert.Equal(t, "$9.90", doc.Find(".product-card[data-product-id='1'] .price").Text())
	// Thousands get a separator for readability.
	assert.Equal(t, "$1,234.50", doc.Find(".product-card[data-product-id='2'] .price").Text())
}

func TestNavbarPerRole(t *testing.T) {
	tests := []struct {
		name       string
		session    models.Session
		wantLogin  int
		wantLogout int
		wantAdmin  int
	}{
		{"anonymous", models.Session{}, 1, 0, 0},
		{"shopper", models.Session{User: &models.User{ID: 1}, Token: "tok"}, 0, 1, 0},
		{"admin", models.Session{User: &models.User{ID: 2, IsAdmin: true}, Token: "tok"}, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := renderPage(t, "navbar", render.BaseData{Session: tt.session})
			assert.Equal(t, tt.wantLogin, doc.Find("a[href='/login']").Length())
			assert.Equal(t, tt.wantLogout, doc.Find("form[action='/logout']").Length())
			assert.Equal(t, tt.wantAdmin, doc.Find("a[href='/admin']").Length())
		})
	}
}

func TestEmptyStates(t *testing.T) {
	type homeData struct {
		render.BaseData
		Products []models.Product
	}
	doc := renderPage(t, "home.html", homeData{BaseData: render.BaseData{Title: "t"}})
	assert.Equal(t, "No products available.", doc.Find("p.empty").Text())

	type cartData struct {
		render.BaseData
		Items []models.CartItem
		Total float64
	}
	doc = renderPage(t, "cart.html", cartData{BaseData: render.BaseData{Title: "t"}})
	assert.Equal(t, "Your cart is empty.", doc.Find("p.empty").Text())
	assert.Equal(t, 0, doc.Find("form[action='/orders/checkout']").Length(), "no checkout button on an empty cart")
}
