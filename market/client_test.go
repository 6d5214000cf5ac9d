package market_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfront/market"
)

// staticResolver hands out a fixed pre-formatted bearer value.
type staticResolver string

func (r staticResolver) ResolveAccessToken(ctx context.Context) (string, error) {
	return string(r), nil
}

func newTestClient(handler http.HandlerFunc) (*market.Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	return market.New(ts.URL, staticResolver("Bearer fixed-token")), ts
}

func TestAuthorizationHeaderInjected(t *testing.T) {
	var seen string
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	defer ts.Close()

	_, err := client.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fixed-token", seen, "the resolved value is injected verbatim")
}

func TestProductsDecodesEnvelope(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"identifier":7,"title":"Widget","stock":3,"situation":"available"}]}`))
	})
	defer ts.Close()

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "7", products[0].Identifier.String())
	assert.Equal(t, "Widget", products[0].Title)
	assert.Equal(t, 3, products[0].Stock)
}

func TestUserInformation(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"identifier":1006,"name":"user2","email":"user2@users.com","isVerified":1}}`))
	})
	defer ts.Close()

	user, err := client.UserInformation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1006", user.Identifier.String())
	assert.Equal(t, "user2@users.com", user.Email)
}

func TestErrorEnvelope(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"The given data was invalid."}`))
	})
	defer ts.Close()

	_, err := client.Products(context.Background())
	var responseErr *market.ResponseError
	require.ErrorAs(t, err, &responseErr)
	assert.Equal(t, http.StatusUnprocessableEntity, responseErr.StatusCode)
	assert.Equal(t, "The given data was invalid.", responseErr.Message)
}

func TestUnauthorizedIsAuthenticationRejected(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthenticated."}`))
	})
	defer ts.Close()

	_, err := client.Products(context.Background())
	require.Error(t, err)
	assert.True(t, market.IsAuthenticationRejected(err))
}

func TestPurchaseProductSendsForm(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/7/buyers/1006/transactions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2", r.PostFormValue("quantity"))
		_, _ = w.Write([]byte(`{"data":{"identifier":42,"quantity":2}}`))
	})
	defer ts.Close()

	transaction, err := client.PurchaseProduct(context.Background(), "7", "1006", 2)
	require.NoError(t, err)
	assert.Equal(t, "42", transaction.Identifier.String())
	assert.Equal(t, 2, transaction.Quantity)
}

func TestPublishProductMultipart(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sellers/1006/products", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Widget", r.FormValue("title"))
		assert.Equal(t, "A fine widget", r.FormValue("details"))
		assert.Equal(t, "3", r.FormValue("stock"))
		file, header, err := r.FormFile("picture")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "widget.png", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake-png-bytes", string(content))
		_, _ = w.Write([]byte(`{"data":{"identifier":7,"title":"Widget"}}`))
	})
	defer ts.Close()

	product, err := client.PublishProduct(context.Background(), "1006", &market.NewProduct{
		Title:   "Widget",
		Details: "A fine widget",
		Stock:   3,
		Picture: &market.Picture{Name: "widget.png", Content: strings.NewReader("fake-png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "7", product.Identifier.String())
}

func TestUpdateProductSpoofsPut(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "updates ride on POST so the picture can come along")
		assert.Equal(t, "/sellers/1006/products/7", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "PUT", r.FormValue("_method"))
		assert.Equal(t, "available", r.FormValue("situation"))
		_, _ = w.Write([]byte(`{"data":{"identifier":7,"situation":"available"}}`))
	})
	defer ts.Close()

	updated, err := client.UpdateProduct(context.Background(), "1006", "7", map[string]string{"situation": "available"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "available", updated.Situation)
}

func TestSetProductCategoryToleratesEmptyBody(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/7/categories/2", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	defer ts.Close()

	require.NoError(t, client.SetProductCategory(context.Background(), "7", "2"))
}
