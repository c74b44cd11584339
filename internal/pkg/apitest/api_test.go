package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/common/paging"
	"storefront/internal/pkg/model"
)

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func newAPI() *API {
	gin.SetMode(gin.TestMode)
	return New(Seeded())
}

func TestOrdersPage(t *testing.T) {
	api := newAPI()
	w := do(t, api, http.MethodGet, "/api/orders?page=3&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success    bool              `json:"success"`
		Orders     []model.Order     `json:"orders"`
		Pagination paging.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Orders, 3)
	assert.Equal(t, paging.Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 23, ItemsPerPage: 10}, resp.Pagination)
	assert.Equal(t, 1, api.Calls("/api/orders"))

	w = do(t, api, http.MethodGet, "/api/orders?page=9&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, paging.Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 23, ItemsPerPage: 10}, resp.Pagination,
		"a page past the end is clamped to the last page")
	require.Len(t, resp.Orders, 3)
	assert.Equal(t, "o023", resp.Orders[2].ID)
	assert.NoError(t, resp.Pagination.Validate(len(resp.Orders)))

	w = do(t, api, http.MethodGet, "/api/orders?page=0", "")
	assert.Equal(t, http.StatusOK, w.Code, "page 0 defaults to 1")
	w = do(t, api, http.MethodGet, "/api/orders?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrdersStatusFilter(t *testing.T) {
	api := newAPI()
	w := do(t, api, http.MethodGet, "/api/orders?page=1&limit=50&status=canceled", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Orders []model.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Orders)
	for _, o := range resp.Orders {
		assert.Equal(t, model.StatusCancelled, o.StatusCategory())
	}
}

func TestProductRoutes(t *testing.T) {
	api := newAPI()

	w := do(t, api, http.MethodPost, "/api/products", `{"name":"Cotton Kurta","price":1200,"stock":4}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Product model.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "cotton-kurta", created.Product.Slug)
	assert.Equal(t, "draft", created.Product.Status)

	w = do(t, api, http.MethodPut, "/api/products/status/"+created.Product.ID, `{"status":"active"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var bare model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bare))
	assert.Equal(t, "active", bare.Status)

	w = do(t, api, http.MethodGet, "/api/products/slug/cotton-kurta", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, api, http.MethodPost, "/api/products", `{"price":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, api, http.MethodGet, "/api/products?page=1&min_price=9&max_price=1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, api, http.MethodDelete, "/api/products/"+created.Product.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, api, http.MethodGet, "/api/products/"+created.Product.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignupConflict(t *testing.T) {
	api := newAPI()
	body := `{"name":"Asha","mobile_no":"9876543210","password":"secret-pass"}`

	assert.Equal(t, http.StatusCreated, do(t, api, http.MethodPost, "/api/customers/signup", body).Code)
	w := do(t, api, http.MethodPost, "/api/customers/signup", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"User already exists"}`, w.Body.String())
}

func TestTokenRoundTrip(t *testing.T) {
	api := newAPI()
	token, err := api.SignToken("9876543210", model.OTPReset, OTPTTL)
	require.NoError(t, err)

	mobile, purpose, err := api.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", mobile)
	assert.Equal(t, model.OTPReset, purpose)

	other := New(Seeded(), WithSecret([]byte("different")))
	_, _, err = other.parseToken(token)
	assert.Error(t, err)
}

func TestFailNext(t *testing.T) {
	api := newAPI()
	api.FailNext("/api/inventory", http.StatusServiceUnavailable, "maintenance")

	w := do(t, api, http.MethodGet, "/api/inventory", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(t, api, http.MethodGet, "/api/inventory", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, api.Calls("/api/inventory"))
}
