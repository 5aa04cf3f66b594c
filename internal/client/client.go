// Package client provides an HTTP client for the broker REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/search"
	"github.com/adway7103/broker-demo/internal/shortlist"
)

// Client is an HTTP client for the broker API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for public calls.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Error is an error response from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unauthorized reports whether err is a 401 from the server.
func Unauthorized(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Status == http.StatusUnauthorized
}

// Pagination is the paging block of list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// LoginResponse is the response from POST /api/admin/login.
type LoginResponse struct {
	Success bool `json:"success"`
	User    struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login exchanges admin credentials for a token.
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.post("/api/admin/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PropertyList is one page of properties.
type PropertyList struct {
	Properties []*property.Property `json:"properties"`
	Pagination Pagination           `json:"pagination"`
}

// ListProperties returns one page of properties matching f.
func (c *Client) ListProperties(f search.Filter) (*PropertyList, error) {
	path := "/api/properties"
	if q := f.Query(); q != "" {
		path += "?" + q
	}
	var resp PropertyList
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProperty returns a property by ID.
func (c *Client) GetProperty(id string) (*property.Property, error) {
	var p property.Property
	if err := c.get("/api/properties/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProperty creates a property.
func (c *Client) CreateProperty(in property.Input) (*property.Property, error) {
	var p property.Property
	if err := c.send(http.MethodPost, "/api/properties", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetRented marks a property rented or available.
func (c *Client) SetRented(id string, rented bool) (*property.Property, error) {
	var p property.Property
	body := map[string]bool{"isRented": rented}
	if err := c.send(http.MethodPatch, "/api/properties/"+url.PathEscape(id), body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProperty removes a property.
func (c *Client) DeleteProperty(id string) error {
	return c.send(http.MethodDelete, "/api/properties/"+url.PathEscape(id), nil, nil)
}

// LeadQuery filters ListLeads. Empty fields do not filter.
type LeadQuery struct {
	Search       string
	ListingType  string
	PropertyType string
	Locality     string
	Furnishing   string
	Budget       string
	Page         int
	Limit        int
}

func (q LeadQuery) values() url.Values {
	v := url.Values{}
	for key, val := range map[string]string{
		"search":       q.Search,
		"listingType":  q.ListingType,
		"propertyType": q.PropertyType,
		"locality":     q.Locality,
		"furnishing":   q.Furnishing,
		"budget":       q.Budget,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// LeadList is one page of leads.
type LeadList struct {
	Leads      []*lead.Lead `json:"leads"`
	Pagination Pagination   `json:"pagination"`
}

// ListLeads returns one page of leads. Requires an admin token.
func (c *Client) ListLeads(q LeadQuery) (*LeadList, error) {
	path := "/api/leads"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	var resp LeadList
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ShortlistList is one page of shortlists.
type ShortlistList struct {
	Shortlists []*shortlist.Shortlist `json:"shortlists"`
	Pagination Pagination             `json:"pagination"`
}

// ListShortlists returns shortlists, all of them (admin) or for one phone
// number.
func (c *Client) ListShortlists(phone string, page, limit int) (*ShortlistList, error) {
	v := url.Values{}
	if phone != "" {
		v.Set("phoneNumber", phone)
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/shortlists"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var resp ShortlistList
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats are the dashboard counters.
type Stats struct {
	Properties int64 `json:"properties"`
	Leads      int64 `json:"leads"`
	Shortlists int64 `json:"shortlists"`
}

// Stats returns record counts. Requires an admin token.
func (c *Client) Stats() (*Stats, error) {
	var s Stats
	if err := c.get("/api/admin/stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	return c.send(http.MethodGet, path, nil, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(path string, body interface{}, result interface{}) error {
	return c.send(http.MethodPost, path, body, result)
}

// send performs a request with an optional JSON body.
func (c *Client) send(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "err", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		msg := fmt.Sprintf("server error: %s", http.StatusText(resp.StatusCode))
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
