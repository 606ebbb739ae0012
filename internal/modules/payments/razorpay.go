package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type RazorpayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Razorpay talks to the Orders API. It is built once from config and injected.
type Razorpay struct {
	http *resty.Client
}

func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Razorpay{http: c}
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (r *Razorpay) CreateOrder(ctx context.Context, req CreateOrderRequest) (GatewayOrder, error) {
	body := map[string]any{
		"amount":          req.AmountMinor,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}
	if len(req.Notes) > 0 {
		body["notes"] = req.Notes
	}

	var out GatewayOrder
	var apiErr razorpayError
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/orders")
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if resp.IsError() {
		desc := apiErr.Error.Description
		if desc == "" {
			desc = resp.Status()
		}
		return GatewayOrder{}, fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode(), desc)
	}
	if out.ID == "" {
		return GatewayOrder{}, fmt.Errorf("%w: response carried no order id", ErrGateway)
	}
	return out, nil
}
