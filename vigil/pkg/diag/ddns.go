package diag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// DDNS pings a dynamic-DNS update URL (freedns/duckdns style token URLs)
// so the server's hostname keeps pointing home.
type DDNS struct {
	client    *http.Client
	logger    *zap.Logger
	updateURL string
}

func NewDDNS(updateURL string, logger *zap.Logger) *DDNS {
	return &DDNS{
		client:    &http.Client{},
		logger:    logger,
		updateURL: updateURL,
	}
}

func (d *DDNS) Update(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.updateURL, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to reach ddns service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ddns update failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	d.logger.Debug("ddns update succeeded", zap.String("response", strings.TrimSpace(string(body))))
	return nil
}
