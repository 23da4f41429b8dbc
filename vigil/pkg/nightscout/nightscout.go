package nightscout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nsight/vigil/defs"

	"go.uber.org/zap"
)

const (
	entriesEndpoint      = "api/v1/entries.json"
	treatmentsEndpoint   = "api/v1/treatments.json"
	devicestatusEndpoint = "api/v1/devicestatus.json"
	profileEndpoint      = "api/v1/profile.json"
	statusEndpoint       = "api/v1/status.json"

	secretHeader = "API-SECRET"

	// One day's worth of five-minute samples.
	DefaultCount = 288
	// Upper bound when pulling a whole reporting period.
	PeriodCount = 10000
)

type Client struct {
	client    *http.Client
	logger    *zap.Logger
	baseURL   string
	apiSecret string
}

type Source interface {
	Entries(ctx context.Context, count int) ([]defs.Entry, error)
	EntriesSince(ctx context.Context, since time.Time, count int) ([]defs.Entry, error)
	Treatments(ctx context.Context, count int) ([]Treatment, error)
	DeviceStatus(ctx context.Context, count int) ([]DeviceStatus, error)
}

func New(baseURL, apiSecret string, logger *zap.Logger) *Client {
	return &Client{
		client:    &http.Client{},
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiSecret: apiSecret,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	c.logger.Debug("making nightscout request", zap.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.apiSecret != "" {
		req.Header.Set(secretHeader, c.apiSecret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to reach nightscout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Debug("failed to decode nightscout response", zap.String("endpoint", endpoint))
		return err
	}
	return nil
}

// Entries fetches the most recent glucose entries, newest first.
func (c *Client) Entries(ctx context.Context, count int) ([]defs.Entry, error) {
	var entries []defs.Entry
	params := url.Values{"count": {strconv.Itoa(count)}}
	if err := c.get(ctx, entriesEndpoint, params, &entries); err != nil {
		return nil, err
	}

	c.logger.Debug("received entries", zap.Int("count", len(entries)))
	return entries, nil
}

// EntriesSince fetches every entry at or after since, newest first.
func (c *Client) EntriesSince(ctx context.Context, since time.Time, count int) ([]defs.Entry, error) {
	var entries []defs.Entry
	params := url.Values{
		"find[dateString][$gte]": {since.UTC().Format(time.RFC3339)},
		"count":                  {strconv.Itoa(count)},
	}
	if err := c.get(ctx, entriesEndpoint, params, &entries); err != nil {
		return nil, err
	}

	c.logger.Debug("received entries for period",
		zap.Time("since", since),
		zap.Int("count", len(entries)),
	)
	return entries, nil
}

func (c *Client) Treatments(ctx context.Context, count int) ([]Treatment, error) {
	var treatments []Treatment
	params := url.Values{"count": {strconv.Itoa(count)}}
	if err := c.get(ctx, treatmentsEndpoint, params, &treatments); err != nil {
		return nil, err
	}
	return treatments, nil
}

func (c *Client) DeviceStatus(ctx context.Context, count int) ([]DeviceStatus, error) {
	var statuses []DeviceStatus
	params := url.Values{"count": {strconv.Itoa(count)}}
	if err := c.get(ctx, devicestatusEndpoint, params, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *Client) Status(ctx context.Context) (*ServerStatus, error) {
	var status ServerStatus
	if err := c.get(ctx, statusEndpoint, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profiles []Profile
	if err := c.get(ctx, profileEndpoint, nil, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// TestConnection verifies the server answers its status endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	status, err := c.Status(ctx)
	if err != nil {
		return err
	}
	if status.Status == "" {
		return fmt.Errorf("no status reported by %s", c.baseURL)
	}
	return nil
}
