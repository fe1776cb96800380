package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/query"
)

const statusSuccess = "success"

// Identity headers forwarded on every analytics request.
const (
	HeaderToken      = "X-Auth-Token"
	HeaderUserID     = "X-User-Id"
	HeaderTenantID   = "X-Tenant-Id"
	HeaderTenantName = "X-Tenant-Name"
	HeaderDealerID   = "X-Dealer-Id"
	HeaderRoleID     = "X-Role-Id"
)

var (
	ErrTransport         = errors.New("analytics endpoint unreachable")
	ErrUpstreamStatus    = errors.New("analytics endpoint returned a failure status")
	ErrMalformedResponse = errors.New("analytics endpoint returned an unreadable response")
)

type ClientConfig struct {
	URL       string
	DBName    string
	TableName string
}

type queryRequest struct {
	Query     string `json:"query"`
	Params    []any  `json:"params"`
	DBName    string `json:"dbName"`
	TableName string `json:"tableName"`
}

type queryResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    struct {
		Data []model.Row `json:"data"`
	} `json:"data"`
}

// Client posts queries to the SQL-over-HTTP analytics endpoint as one session.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	session    model.Session
}

func NewClient(cfg ClientConfig, httpClient *http.Client, sess model.Session) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient, session: sess}
}

// Execute sends q and returns the rows. It never retries.
func (c *Client) Execute(ctx context.Context, q query.Query) ([]model.Row, error) {
	params := q.Args
	if params == nil {
		params = []any{}
	}
	bodyBytes, err := json.Marshal(queryRequest{
		Query:     q.Text,
		Params:    params,
		DBName:    c.cfg.DBName,
		TableName: c.cfg.TableName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analytics request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setSessionHeaders(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", c.cfg.URL).Msg("Analytics HTTP request failed")
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	var out queryResponse
	decoder := json.NewDecoder(bytes.NewReader(respBody))
	decoder.UseNumber()
	decodeErr := decoder.Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status_code", resp.StatusCode).Bytes("response_body", truncate(respBody)).Msg("Analytics endpoint returned non-2xx status")
		if decodeErr == nil && out.Message != "" {
			return nil, fmt.Errorf("%w: http %d: %s", ErrUpstreamStatus, resp.StatusCode, out.Message)
		}
		return nil, fmt.Errorf("%w: http %d", ErrUpstreamStatus, resp.StatusCode)
	}
	if decodeErr != nil {
		log.Error().Err(decodeErr).Bytes("response_body", truncate(respBody)).Msg("Failed to decode analytics response")
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if out.Status != statusSuccess {
		msg := out.Message
		if msg == "" {
			msg = "status " + quoteOrEmpty(out.Status)
		}
		log.Warn().Str("status", out.Status).Str("message", out.Message).Msg("Analytics query did not succeed")
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, msg)
	}

	rows := out.Data.Data
	if rows == nil {
		rows = []model.Row{}
	}
	log.Debug().Int("rows", len(rows)).Msg("Analytics query succeeded")
	return rows, nil
}

func (c *Client) setSessionHeaders(h http.Header) {
	for name, value := range map[string]string{
		HeaderToken:      c.session.Token,
		HeaderUserID:     c.session.UserID,
		HeaderTenantID:   c.session.TenantID,
		HeaderTenantName: c.session.TenantName,
		HeaderDealerID:   c.session.DealerID,
		HeaderRoleID:     c.session.RoleID,
	} {
		if value != "" {
			h.Set(name, value)
		}
	}
}

func quoteOrEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "<empty>"
	}
	return fmt.Sprintf("%q", s)
}

func truncate(b []byte) []byte {
	const max = 2048
	if len(b) > max {
		return b[:max]
	}
	return b
}
