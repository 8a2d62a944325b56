// Package client is a typed Go client for the Cariella JSON API. It
// replaces the per-page fetch glue of the original web frontend: the
// session cookie set at login is kept in a cookie jar, every endpoint
// is a method, and failed envelopes surface as *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a Cariella server. Safe to reuse across requests;
// the zero value is not usable, construct with New.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// APIError is returned when the server answers with success=false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "cariella: " + e.Message
}

// Envelope carries the fields common to every response.
type Envelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// New creates a client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// RegisterRequest holds the registration form fields.
type RegisterRequest struct {
	Phone     string
	CountryID uint
	CityID    uint
	Password  string
}

// RegisterResult is the successful registration payload.
type RegisterResult struct {
	Envelope
	UserID uint `json:"user_id"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	body := map[string]string{
		"phone":    req.Phone,
		"country":  strconv.FormatUint(uint64(req.CountryID), 10),
		"city":     strconv.FormatUint(uint64(req.CityID), 10),
		"password": req.Password,
	}
	var out RegisterResult
	if err := c.postJSON(ctx, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyPhone(ctx context.Context, userID uint, code string) (*Envelope, error) {
	body := map[string]string{
		"user_id":           strconv.FormatUint(uint64(userID), 10),
		"verification_code": code,
	}
	var out Envelope
	if err := c.postJSON(ctx, "/api/auth/verify-phone", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and stores the session cookie in the jar. With
// remember set, the server additionally issues a persistent token.
func (c *Client) Login(ctx context.Context, phone, password string, remember bool) (*Envelope, error) {
	body := map[string]interface{}{
		"phone":    phone,
		"password": password,
		"remember": remember,
	}
	var out Envelope
	if err := c.postJSON(ctx, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	var out Envelope
	return c.postJSON(ctx, "/api/auth/logout", map[string]string{}, &out)
}

func (c *Client) RequestPasswordReset(ctx context.Context, phone string) (*Envelope, error) {
	var out Envelope
	if err := c.postJSON(ctx, "/api/auth/request-password-reset", map[string]string{"phone": phone}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetPassword(ctx context.Context, userID uint, code, newPassword, confirmPassword string) (*Envelope, error) {
	body := map[string]string{
		"user_id":           strconv.FormatUint(uint64(userID), 10),
		"verification_code": code,
		"new_password":      newPassword,
		"confirm_password":  confirmPassword,
	}
	var out Envelope
	if err := c.postJSON(ctx, "/api/auth/reset-password", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Option is a reference row used to populate dropdowns.
type Option struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Locations is the country/city reference payload. Cities are grouped
// by country id.
type Locations struct {
	Envelope
	Countries []Option            `json:"countries"`
	Cities    map[string][]Option `json:"cities"`
}

func (c *Client) GetLocations(ctx context.Context) (*Locations, error) {
	var out Locations
	if err := c.getJSON(ctx, "/api/auth/get-locations", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VehicleCatalog is the vehicle reference payload. Models are grouped
// by make id.
type VehicleCatalog struct {
	Envelope
	Makes         []Option            `json:"makes"`
	Models        map[string][]Option `json:"models"`
	BodyStyles    []Option            `json:"body_styles"`
	FuelTypes     []Option            `json:"fuel_types"`
	Transmissions []Option            `json:"transmissions"`
}

func (c *Client) GetVehicleCatalog(ctx context.Context) (*VehicleCatalog, error) {
	var out VehicleCatalog
	if err := c.getJSON(ctx, "/api/vehicles/get-vehicle-catalog", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddVehicleRequest holds the add-vehicle form fields.
type AddVehicleRequest struct {
	MakeID             uint
	ModelID            uint
	Year               int
	BodyStyleID        uint
	FuelTypeID         uint
	TransmissionID     uint
	RegistrationNumber string
}

// AddVehicleResult is the successful add-vehicle payload.
type AddVehicleResult struct {
	Envelope
	VehicleID uint `json:"vehicle_id"`
}

func (c *Client) AddVehicle(ctx context.Context, req AddVehicleRequest) (*AddVehicleResult, error) {
	body := map[string]string{
		"make":                strconv.FormatUint(uint64(req.MakeID), 10),
		"model":               strconv.FormatUint(uint64(req.ModelID), 10),
		"year":                strconv.Itoa(req.Year),
		"body_style":          strconv.FormatUint(uint64(req.BodyStyleID), 10),
		"fuel_type":           strconv.FormatUint(uint64(req.FuelTypeID), 10),
		"transmission":        strconv.FormatUint(uint64(req.TransmissionID), 10),
		"registration_number": req.RegistrationNumber,
	}
	var out AddVehicleResult
	if err := c.postJSON(ctx, "/api/vehicles/add", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Vehicle is a row from the caller's vehicle list.
type Vehicle struct {
	ID                 uint   `json:"id"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	RegistrationNumber string `json:"registration_number"`
}

func (c *Client) GetVehicles(ctx context.Context) ([]Vehicle, error) {
	var out struct {
		Envelope
		Vehicles []Vehicle `json:"vehicles"`
	}
	if err := c.getJSON(ctx, "/api/vehicles/get", nil, &out); err != nil {
		return nil, err
	}
	return out.Vehicles, nil
}

// ServiceRecord is one completed service request.
type ServiceRecord struct {
	PreferredDate      time.Time `json:"preferred_date"`
	ServiceCategory    string    `json:"service_category"`
	ServiceDescription string    `json:"service_description"`
	ActualCost         float64   `json:"actual_cost"`
}

func (c *Client) GetServiceHistory(ctx context.Context, vehicleID uint) ([]ServiceRecord, error) {
	params := url.Values{}
	params.Set("vehicle_id", strconv.FormatUint(uint64(vehicleID), 10))

	var out struct {
		Envelope
		History []ServiceRecord `json:"history"`
	}
	if err := c.getJSON(ctx, "/api/services/get-history", params, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Listing is a marketplace entry.
type Listing struct {
	ID      uint     `json:"id"`
	Price   float64  `json:"price"`
	Mileage int      `json:"mileage"`
	Images  []string `json:"images"`
	Make    string   `json:"make"`
	Model   string   `json:"model"`
	Year    int      `json:"year"`
	City    string   `json:"city"`
}

func (c *Client) GetListings(ctx context.Context) ([]Listing, error) {
	var out struct {
		Envelope
		Listings []Listing `json:"listings"`
	}
	if err := c.getJSON(ctx, "/api/marketplace/get-listings", nil, &out); err != nil {
		return nil, err
	}
	return out.Listings, nil
}

// envelopeCarrier lets the helpers inspect the success flag on any
// response struct that embeds Envelope.
type envelopeCarrier interface {
	envelope() *Envelope
}

func (e *Envelope) envelope() *Envelope { return e }

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out envelopeCarrier) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out envelopeCarrier) error {
	target := c.BaseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out envelopeCarrier) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return err
	}

	if env := out.envelope(); !env.Success {
		return &APIError{Message: env.Message}
	}
	return nil
}
