package market

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	furl "github.com/viant/afs/url"
)

// Client talks to the Market REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient sets the underlying client; its transport is still wrapped
// with the authorizing round tripper.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a Market client whose requests are authorized through the given
// resolver.
func New(baseURL string, resolver TokenResolver, options ...Option) *Client {
	ret := &Client{baseURL: baseURL}
	for _, opt := range options {
		opt(ret)
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{}
	}
	ret.httpClient.Transport = NewRoundTripper(resolver, ret.httpClient.Transport)
	return ret
}

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]*Product, error) {
	var products []*Product
	err := c.request(ctx, http.MethodGet, "products", "list products", nil, nil, &products)
	return products, err
}

// Product fetches a single catalog entry.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	var product Product
	err := c.request(ctx, http.MethodGet, "products/"+id, "get product", nil, nil, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Categories lists the catalog categories.
func (c *Client) Categories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	err := c.request(ctx, http.MethodGet, "categories", "list categories", nil, nil, &categories)
	return categories, err
}

// CategoryProducts lists the products filed under a category.
func (c *Client) CategoryProducts(ctx context.Context, id string) ([]*Product, error) {
	var products []*Product
	err := c.request(ctx, http.MethodGet, "categories/"+id+"/products", "list category products", nil, nil, &products)
	return products, err
}

// UserInformation fetches the account behind the current token.
func (c *Client) UserInformation(ctx context.Context) (*User, error) {
	var user User
	err := c.request(ctx, http.MethodGet, "users/me", "get user information", nil, nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Purchases lists products the buyer has purchased.
func (c *Client) Purchases(ctx context.Context, buyerID string) ([]*Product, error) {
	var products []*Product
	err := c.request(ctx, http.MethodGet, "buyers/"+buyerID+"/products", "list purchases", nil, nil, &products)
	return products, err
}

// Publications lists products the seller has published.
func (c *Client) Publications(ctx context.Context, sellerID string) ([]*Product, error) {
	var products []*Product
	err := c.request(ctx, http.MethodGet, "sellers/"+sellerID+"/products", "list publications", nil, nil, &products)
	return products, err
}

// PurchaseProduct buys quantity units of a product on behalf of the buyer.
func (c *Client) PurchaseProduct(ctx context.Context, productID, buyerID string, quantity int) (*Transaction, error) {
	var transaction Transaction
	form := url.Values{"quantity": {strconv.Itoa(quantity)}}
	path := "products/" + productID + "/buyers/" + buyerID + "/transactions"
	err := c.request(ctx, http.MethodPost, path, "purchase product", nil, form, &transaction)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// SetProductCategory files a product under a category.
func (c *Client) SetProductCategory(ctx context.Context, productID, categoryID string) error {
	path := "products/" + productID + "/categories/" + categoryID
	return c.request(ctx, http.MethodPut, path, "set product category", nil, nil, nil)
}

// Picture is an uploaded product image.
type Picture struct {
	Name    string
	Content io.Reader
}

// NewProduct carries the fields for a catalog publication.
type NewProduct struct {
	Title   string
	Details string
	Stock   int
	Picture *Picture
}

// PublishProduct creates a product under the seller's account. The picture
// rides along as a multipart file part.
func (c *Client) PublishProduct(ctx context.Context, sellerID string, product *NewProduct) (*Product, error) {
	fields := map[string]string{
		"title":   product.Title,
		"details": product.Details,
		"stock":   strconv.Itoa(product.Stock),
	}
	var created Product
	path := "sellers/" + sellerID + "/products"
	if err := c.upload(ctx, path, "publish product", fields, product.Picture, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct updates an existing publication. Because updates may carry a
// picture, the Market API expects a multipart POST with a _method=PUT
// override instead of a raw PUT.
func (c *Client) UpdateProduct(ctx context.Context, sellerID, productID string, fields map[string]string, picture *Picture) (*Product, error) {
	merged := map[string]string{"_method": "PUT"}
	for name, value := range fields {
		merged[name] = value
	}
	var updated Product
	path := "sellers/" + sellerID + "/products/" + productID
	if err := c.upload(ctx, path, "update product", merged, picture, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// request issues a form-encoded or bodyless call and decodes the enveloped
// reply into out.
func (c *Client) request(ctx context.Context, method, path, op string, query, form url.Values, out interface{}) error {
	endpoint := furl.Join(c.baseURL, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var body io.Reader
	if len(form) > 0 {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(form) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return c.do(req, op, out)
}

// upload issues a multipart POST.
func (c *Client) upload(ctx context.Context, path, op string, fields map[string]string, picture *Picture, out interface{}) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if picture != nil {
		part, err := writer.CreateFormFile("picture", picture.Name)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if _, err := io.Copy(part, picture.Content); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, furl.Join(c.baseURL, path), buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthenticationRejectedError{Op: op}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := decodeEnvelope(body, op, resp.StatusCode, out); err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return &ResponseError{Op: op, StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}
