package controllers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

type api struct {
	db      *gorm.DB
	handler http.Handler

	admin, vendor, customer, other models.User
	tokens                         map[string]string
	kettle                         models.Product
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testkit.NewDB(t)
	a := &api{
		db: db,
		handler: kernel.NewHTTPKernel(kernel.Options{
			Services:  services.New(db, nil, nil, time.Second),
			RateLimit: -1,
		}).Handler(),
		tokens: map[string]string{},
	}

	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	mk := func(name string, staff bool) models.User {
		u := models.User{Username: name, Password: hash, IsActive: true, IsStaff: staff, DateJoined: time.Now()}
		require.NoError(t, db.Create(&u).Error)
		tok, _, err := auth.GenerateToken(u.ID, staff)
		require.NoError(t, err)
		a.tokens[name] = tok
		return u
	}
	a.admin = mk("admin", true)
	a.vendor = mk("vendor", false)
	a.customer = mk("customer", false)
	a.other = mk("other", false)

	a.kettle = models.Product{VendorID: a.vendor.ID, Title: "Kettle", Price: 2500}
	require.NoError(t, db.Omit("Tags").Create(&a.kettle).Error)
	return a
}

func (a *api) do(t *testing.T, method, url, user string, body interface{}) (int, testkit.Envelope) {
	t.Helper()
	rec := testkit.Do(t, a.handler, method, url, a.tokens[user], body)
	if rec.Code == http.StatusNoContent {
		return rec.Code, testkit.Envelope{}
	}
	return rec.Code, testkit.Decode(t, rec, nil)
}

func (a *api) count(t *testing.T, model interface{}) int64 {
	var n int64
	require.NoError(t, a.db.Model(model).Count(&n).Error)
	return n
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func TestScenarios(t *testing.T) {
	a := newAPI(t)
	testkit.RunDir(t, a.handler, "testdata", map[string]string{
		"vendor_token":   a.tokens["vendor"],
		"customer_token": a.tokens["customer"],
		"product_id":     id(a.kettle.ID),
	})
}

func TestPlaceOrderFromCart(t *testing.T) {
	a := newAPI(t)
	lamp := models.Product{VendorID: a.vendor.ID, Title: "Lamp", Price: 900}
	require.NoError(t, a.db.Omit("Tags").Create(&lamp).Error)

	code, _ := a.do(t, http.MethodPost, "/carts/", "customer", map[string]any{
		"product": "http://example.com/products/" + id(a.kettle.ID) + "/", "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, code)
	code, _ = a.do(t, http.MethodPost, "/carts", "customer", map[string]any{"product": id(lamp.ID)})
	require.Equal(t, http.StatusCreated, code)
	require.NoError(t, a.db.Create(&models.Cart{CustomerID: a.other.ID, ProductID: lamp.ID, Quantity: 1}).Error)

	linesBefore := a.count(t, &models.Order2Product{})
	code, env := a.do(t, http.MethodPost, "/orders/", "customer", nil)
	require.Equal(t, http.StatusCreated, code)

	var order struct {
		URL      string  `json:"url"`
		Customer *string `json:"customer"`
		Lines    []struct {
			Product  string `json:"product"`
			Quantity int    `json:"quantity"`
		} `json:"order2products"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.NotNil(t, order.Customer)
	assert.Equal(t, "http://example.com/users/"+id(a.customer.ID)+"/", *order.Customer)
	assert.Len(t, order.Lines, 2)

	assert.Equal(t, linesBefore+2, a.count(t, &models.Order2Product{}))
	var left int64
	require.NoError(t, a.db.Model(&models.Cart{}).Where("customer_id = ?", a.customer.ID).Count(&left).Error)
	assert.Zero(t, left)
	assert.EqualValues(t, 1, a.count(t, &models.Cart{}), "other customers keep their cart")

	// The order and its lines are visible to the customer only.
	code, env = a.do(t, http.MethodGet, "/order2products/", "customer", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 2, page.Count)

	code, _ = a.do(t, http.MethodGet, order.URL, "other", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodGet, order.URL, "admin", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestPlaceOrderWithEmptyCart(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(t, http.MethodPost, "/orders/", "customer", nil)
	require.Equal(t, http.StatusCreated, code)

	var order struct {
		Lines []json.RawMessage `json:"order2products"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Empty(t, order.Lines)
	assert.EqualValues(t, 1, a.count(t, &models.Order{}))
}

func TestAnonymousCannotPlaceOrders(t *testing.T) {
	a := newAPI(t)
	code, _ := a.do(t, http.MethodPost, "/orders/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Zero(t, a.count(t, &models.Order{}))
}

func TestCartRowsArePrivate(t *testing.T) {
	a := newAPI(t)
	row := models.Cart{CustomerID: a.customer.ID, ProductID: a.kettle.ID, Quantity: 1}
	require.NoError(t, a.db.Create(&row).Error)
	url := "/carts/" + id(row.ID) + "/"

	code, _ := a.do(t, http.MethodGet, url, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.do(t, http.MethodGet, url, "other", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodPatch, url, "other", map[string]any{"quantity": 5})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodDelete, url, "other", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := a.do(t, http.MethodGet, "/carts/", "other", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Zero(t, page.Count)

	code, _ = a.do(t, http.MethodPatch, url, "customer", map[string]any{"quantity": 5})
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodDelete, url, "customer", nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestDuplicateCartRowIsRejected(t *testing.T) {
	a := newAPI(t)
	body := map[string]any{"product": id(a.kettle.ID)}
	code, _ := a.do(t, http.MethodPost, "/carts/", "customer", body)
	require.Equal(t, http.StatusCreated, code)

	code, env := a.do(t, http.MethodPost, "/carts/", "customer", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, env.Errors)
	assert.EqualValues(t, 1, a.count(t, &models.Cart{}))
}

func TestCatalogWritesNeedStaff(t *testing.T) {
	a := newAPI(t)
	body := map[string]any{"title": "kitchen"}

	code, _ := a.do(t, http.MethodPost, "/categories/", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.do(t, http.MethodPost, "/categories/", "customer", body)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodPost, "/categories/", "admin", body)
	assert.Equal(t, http.StatusCreated, code)

	code, env := a.do(t, http.MethodPost, "/categories/", "admin", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "category with this title already exists.", env.Errors["title"])

	code, _ = a.do(t, http.MethodGet, "/categories/", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestProductOwnership(t *testing.T) {
	a := newAPI(t)
	url := "/products/" + id(a.kettle.ID) + "/"

	code, _ := a.do(t, http.MethodPatch, url, "", map[string]any{"price": 1})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.do(t, http.MethodDelete, url, "customer", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := a.do(t, http.MethodPatch, url, "vendor", map[string]any{"price": 2700})
	require.Equal(t, http.StatusOK, code)
	var p struct {
		Price  int64  `json:"price"`
		Vendor string `json:"vendor"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.EqualValues(t, 2700, p.Price)
	assert.Equal(t, "http://example.com/users/"+id(a.vendor.ID)+"/", p.Vendor)

	code, _ = a.do(t, http.MethodDelete, url, "admin", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = a.do(t, http.MethodGet, url, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProductVendorIsTheCaller(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(t, http.MethodPost, "/products/", "customer", map[string]any{
		"title": "Mug", "price": 500, "vendor": "http://example.com/users/" + id(a.vendor.ID) + "/",
	})
	require.Equal(t, http.StatusCreated, code)
	var p struct {
		Vendor string `json:"vendor"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "http://example.com/users/"+id(a.customer.ID)+"/", p.Vendor)
}

func TestReviewsUniquePerProduct(t *testing.T) {
	a := newAPI(t)
	body := map[string]any{"product": id(a.kettle.ID), "rating": 4.5, "description": "solid"}

	code, _ := a.do(t, http.MethodPost, "/reviews/", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.do(t, http.MethodPost, "/reviews/", "customer", body)
	require.Equal(t, http.StatusCreated, code)
	code, _ = a.do(t, http.MethodPost, "/reviews/", "customer", body)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(t, http.MethodGet, "/products/"+id(a.kettle.ID)+"/", "", nil)
	require.Equal(t, http.StatusOK, code)
	var p struct {
		Rating *float64 `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	require.NotNil(t, p.Rating)
	assert.InDelta(t, 4.5, *p.Rating, 1e-9)
}

func TestReviewWritesAreReviewerOnly(t *testing.T) {
	a := newAPI(t)
	review := models.Review{ReviewerID: a.customer.ID, ProductID: a.kettle.ID, Rating: 4, Description: "fine"}
	require.NoError(t, a.db.Create(&review).Error)
	url := "/reviews/" + id(review.ID) + "/"

	code, _ := a.do(t, http.MethodGet, url, "other", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodPatch, url, "other", map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodDelete, url, "other", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodDelete, url, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	var stored models.Review
	require.NoError(t, a.db.First(&stored, review.ID).Error)
	assert.InDelta(t, 4.0, stored.Rating, 1e-9)

	code, _ = a.do(t, http.MethodPatch, url, "customer", map[string]any{"rating": 3})
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodDelete, url, "customer", nil)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Zero(t, a.count(t, &models.Review{}))
}

func TestOrderDeleteIsOwnerOnly(t *testing.T) {
	a := newAPI(t)
	order := models.Order{CustomerID: &a.customer.ID}
	require.NoError(t, a.db.Create(&order).Error)
	require.NoError(t, a.db.Create(&models.Order2Product{OrderID: order.ID, ProductID: &a.kettle.ID, Quantity: 2}).Error)
	url := "/orders/" + id(order.ID) + "/"

	code, _ := a.do(t, http.MethodDelete, url, "other", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodDelete, url, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.EqualValues(t, 1, a.count(t, &models.Order{}))
	assert.EqualValues(t, 1, a.count(t, &models.Order2Product{}))

	code, _ = a.do(t, http.MethodDelete, url, "customer", nil)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Zero(t, a.count(t, &models.Order{}))
	assert.Zero(t, a.count(t, &models.Order2Product{}))
}

func TestUsersSelfOrAdmin(t *testing.T) {
	a := newAPI(t)
	self := "/users/" + id(a.customer.ID) + "/"

	code, _ := a.do(t, http.MethodGet, "/users/", "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodPatch, self, "other", map[string]any{"first_name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodPatch, self, "customer", map[string]any{"first_name": "Cleo"})
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodPost, "/users/", "customer", map[string]any{"username": "new", "password": "pw"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodPost, "/users/", "admin", map[string]any{"username": "new", "password": "pw"})
	assert.Equal(t, http.StatusCreated, code)
}

func TestTokenAndMe(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do(t, http.MethodPost, "/auth/token", "", map[string]any{"username": "customer", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(t, http.MethodPost, "/auth/token/", "", map[string]any{"username": "customer", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, code)
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	require.NotEmpty(t, tok.Token)

	rec := testkit.Do(t, a.handler, http.MethodGet, "/auth/me", tok.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Username string `json:"username"`
	}
	testkit.Decode(t, rec, &me)
	assert.Equal(t, "customer", me.Username)

	code, _ = a.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLikes(t *testing.T) {
	a := newAPI(t)
	body := map[string]any{"product": id(a.kettle.ID)}

	code, env := a.do(t, http.MethodPost, "/product_likes/", "customer", body)
	require.Equal(t, http.StatusCreated, code)
	var like struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &like))

	code, _ = a.do(t, http.MethodPost, "/product_likes/", "customer", body)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(t, http.MethodDelete, like.URL, "other", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(t, http.MethodDelete, like.URL, "customer", nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestPagination(t *testing.T) {
	a := newAPI(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, a.db.Omit("Tags").Create(&models.Product{VendorID: a.vendor.ID, Title: "P" + strconv.Itoa(i), Price: 1}).Error)
	}

	code, env := a.do(t, http.MethodGet, "/products/?page_size=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Count    int               `json:"count"`
		Next     *string           `json:"next"`
		Previous *string           `json:"previous"`
		Results  []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 4, page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Nil(t, page.Previous)
}

func TestNonNumericIDIsNotFound(t *testing.T) {
	a := newAPI(t)
	code, _ := a.do(t, http.MethodGet, "/products/abc/", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
