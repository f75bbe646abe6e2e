// Package notify calls the external coupon notification service. Delivery is
// best-effort: a failure here never rolls back or blocks the ledger write it
// follows.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/observability/tracing"
)

var (
	ErrDisabled = errors.New("notifier_disabled")
	ErrSend     = errors.New("notifier_send_failed")
)

// CouponEmail is the send-coupon request payload.
type CouponEmail struct {
	RecipientEmail   string `json:"recipientEmail"`
	CouponCode       string `json:"couponCode"`
	Discount         string `json:"discount"`
	OrganizationName string `json:"organizationName"`
	Description      string `json:"description,omitempty"`
	ExpiresAt        string `json:"expiresAt"`
	RedeemURL        string `json:"redeemUrl,omitempty"`
}

// Config holds the notification service endpoint and credentials.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Notifier is the HTTP client for the notification service.
type Notifier struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

// New builds a notifier. An empty base URL yields a disabled notifier whose
// sends fail with ErrDisabled; callers already treat failures as warnings.
func New(cfg Config, log *zap.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		cfg:    cfg,
		client: tracing.WrapHTTPClient(&http.Client{Timeout: timeout}),
		log:    log.Named("notify"),
	}
}

type sendResponse struct {
	Success bool `json:"success"`
}

// SendCouponEmail posts the coupon email request. A non-2xx response or a
// success=false body both count as send failures.
func (n *Notifier) SendCouponEmail(ctx context.Context, email CouponEmail) error {
	if strings.TrimSpace(n.cfg.BaseURL) == "" {
		return ErrDisabled
	}

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", ErrSend, err)
	}

	url := strings.TrimRight(n.cfg.BaseURL, "/") + "/email/send-coupon"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.cfg.Token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrSend, resp.StatusCode)
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrSend, err)
	}
	if !parsed.Success {
		return fmt.Errorf("%w: service reported failure", ErrSend)
	}

	n.log.Debug("coupon email sent",
		zap.String("recipient", email.RecipientEmail),
		zap.String("code", email.CouponCode),
	)
	return nil
}
