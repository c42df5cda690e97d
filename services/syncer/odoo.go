package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"ledgerly/config"
	"ledgerly/models"
)

const odooTimeout = 20 * time.Second

// OdooConnector mirrors bookings as calendar.event records in the firm's Odoo
// instance over its JSON-RPC endpoint.
type OdooConnector struct {
	url        string
	db         string
	user       string
	apiKey     string
	httpClient *http.Client

	mu  sync.Mutex
	uid int // cached authenticated user id, 0 until first auth
}

// NewOdooConnector builds the connector from the app config.
func NewOdooConnector() *OdooConnector {
	cfg := config.AppConfig
	return &OdooConnector{
		url:    cfg.OdooURL,
		db:     cfg.OdooDatabase,
		user:   cfg.OdooUser,
		apiKey: cfg.OdooAPIKey,
		httpClient: &http.Client{
			Timeout: odooTimeout,
		},
	}
}

func (c *OdooConnector) System() string {
	return models.SyncSystemCRM
}

func (c *OdooConnector) IsConnected(ctx context.Context) bool {
	return c.url != "" && c.db != "" && c.user != "" && c.apiKey != ""
}

// CreateRemoteRecord creates an Odoo calendar.event for the booking.
func (c *OdooConnector) CreateRemoteRecord(ctx context.Context, booking *models.Booking, slot *models.TimeSlot) (string, map[string]string, error) {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return "", nil, err
	}

	record := map[string]interface{}{
		"name":        fmt.Sprintf("Consultation: %s", booking.FullName),
		"start":       slot.StartAt.UTC().Format("2006-01-02 15:04:05"),
		"stop":        slot.EndAt.UTC().Format("2006-01-02 15:04:05"),
		"description": buildEventDescription(booking),
	}

	var recordID int
	err = c.call(ctx, "object", "execute_kw", []interface{}{
		c.db, uid, c.apiKey,
		"calendar.event", "create",
		[]interface{}{record},
	}, &recordID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create odoo appointment: %w", err)
	}

	appointmentID := strconv.Itoa(recordID)
	return appointmentID, map[string]string{"appointmentId": appointmentID}, nil
}

// authenticate resolves and caches the Odoo user id for the API key.
func (c *OdooConnector) authenticate(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uid != 0 {
		return c.uid, nil
	}

	var uid int
	err := c.call(ctx, "common", "authenticate", []interface{}{c.db, c.user, c.apiKey, map[string]interface{}{}}, &uid)
	if err != nil {
		return 0, fmt.Errorf("odoo authentication failed: %w", err)
	}
	if uid == 0 {
		return 0, fmt.Errorf("odoo rejected credentials for user %s", c.user)
	}
	c.uid = uid
	return uid, nil
}

type odooRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      int64          `json:"id"`
}

type odooResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *odooError      `json:"error"`
}

type odooError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func (e *odooError) Error() string {
	if e.Data != nil {
		if msg, ok := e.Data["message"].(string); ok && msg != "" {
			return fmt.Sprintf("odoo error %d: %s", e.Code, msg)
		}
	}
	return fmt.Sprintf("odoo error %d: %s", e.Code, e.Message)
}

// call performs one JSON-RPC round trip against /jsonrpc.
func (c *OdooConnector) call(ctx context.Context, service, method string, args []interface{}, out interface{}) error {
	payload := odooRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]any{
			"service": service,
			"method":  method,
			"args":    args,
		},
		ID: time.Now().UnixNano(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal odoo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/jsonrpc", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build odoo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("odoo request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read odoo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("odoo returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed odooResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to decode odoo response: %w", err)
	}
	if parsed.Error != nil {
		return parsed.Error
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return fmt.Errorf("failed to decode odoo result: %w", err)
		}
	}
	return nil
}
