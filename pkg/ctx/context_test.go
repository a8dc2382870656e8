package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	appctx "github.com/shashiranjanraj/storefront/pkg/ctx"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, 200, env.Status)
	assert.JSONEq(t, `{"id":1}`, string(env.Data))
}

func TestCreatedAndNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) { c.Created(map[string]any{"id": 2}) })(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) { c.NoContent() })(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSetAndGet(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Set("user_id", uint(42))
		assert.Equal(t, uint(42), c.GetUint("user_id"))
		assert.Equal(t, uint(0), c.GetUint("missing"))
		c.Success(nil)
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestBindJSONValid(t *testing.T) {
	body := `{"title":"Kettle","price":1200}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Title string `json:"title" validate:"required,max=100"`
			Price int64  `json:"price" validate:"gte=0"`
		}
		require.True(t, c.BindJSON(&input))
		assert.Equal(t, "Kettle", input.Title)
		assert.Equal(t, int64(1200), input.Price)
		c.Success(nil)
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONValidationIs400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Kettle","price":-5}`))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Title string `json:"title" validate:"required"`
			Price int64  `json:"price" validate:"gte=0"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Contains(t, env.Errors, "price")
}

func TestBindJSONWrongTypeReportsField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":"two"}`))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Quantity int `json:"quantity"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Errors, "quantity")
}

func TestBindJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		var input map[string]any
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Message, "invalid JSON")
}

func TestParamID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		id, ok := c.ParamID("id")
		if !ok {
			return
		}
		c.Success(map[string]uint{"id": id})
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7}`, string(decode(t, rec).Data))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?page=3&category=4&vendor=x&ordering=", nil)
	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, 3, c.QueryInt("page", 1))
		assert.Equal(t, 1, c.QueryInt("missing", 1))

		id, ok := c.QueryUint("category")
		assert.True(t, ok)
		assert.Equal(t, uint(4), id)

		_, ok = c.QueryUint("vendor")
		assert.False(t, ok)

		assert.Equal(t, "title", c.DefaultQuery("ordering", "title"))
	})(httptest.NewRecorder(), req)
}

func TestBaseURLHonoursForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "internal:8080"
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "shop.example.com")

	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, "https://shop.example.com", c.BaseURL())
	})(httptest.NewRecorder(), req)
}

func TestIdentityFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 9, IsStaff: true}))

	appctx.Wrap(func(c *appctx.Context) {
		id := c.Identity()
		assert.Equal(t, uint(9), id.UserID)
		assert.True(t, id.IsStaff)
	})(httptest.NewRecorder(), req)
}

func TestErrorHelpers(t *testing.T) {
	cases := []struct {
		fn   func(c *appctx.Context)
		code int
	}{
		{func(c *appctx.Context) { c.Unauthorized() }, http.StatusUnauthorized},
		{func(c *appctx.Context) { c.Forbidden() }, http.StatusForbidden},
		{func(c *appctx.Context) { c.NotFound() }, http.StatusNotFound},
		{func(c *appctx.Context) { c.Conflict("Cart changed.") }, http.StatusConflict},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		var written int
		appctx.Wrap(func(c *appctx.Context) {
			tc.fn(c)
			written = c.WrittenStatus()
		})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tc.code, rec.Code)
		assert.Equal(t, tc.code, written)
		assert.NotEmpty(t, decode(t, rec).Message)
	}
}

func TestClientIPIsThePeerAddress(t *testing.T) {
	cases := map[string]string{
		"198.51.100.4:5555": "198.51.100.4",
		"[::1]:8080":        "::1",
		"unix":              "unix",
	}
	for addr, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		req.Header.Set("X-Forwarded-For", "6.6.6.6")
		var got string
		appctx.Wrap(func(c *appctx.Context) { got = c.ClientIP() })(httptest.NewRecorder(), req)
		assert.Equal(t, want, got, addr)
	}
}
