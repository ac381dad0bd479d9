package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront-be/internal/config"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Gateway interface {
	PaymentMethods(ctx context.Context) ([]Method, error)
	InitPay(ctx context.Context, req InvoiceRequest) (*Invoice, error)
}

type fawaterakGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewFawaterakGateway(cfg config.Fawaterak) Gateway {
	if cfg.VendorKey == "" {
		logger.L().Warn("Fawaterak vendor key is empty")
	}

	return &fawaterakGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.VendorKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// envelope is the provider's response wrapper.
type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

func (f *fawaterakGateway) do(ctx context.Context, method, path string, body any, out any) error {
	log := logger.FromCtx(ctx).With(zap.String("provider", Provider), zap.String("path", path))

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+f.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Error("Fawaterak request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read fawaterak response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("Fawaterak returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return fmt.Errorf("%w: http %d", errProviderStatus, resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Error("Failed decoding Fawaterak response", zap.Error(err))
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (f *fawaterakGateway) PaymentMethods(ctx context.Context) ([]Method, error) {
	var res envelope[[]Method]
	if err := f.do(ctx, http.MethodGet, "/getPaymentmethods", nil, &res); err != nil {
		return nil, err
	}
	if res.Status != "success" {
		return nil, fmt.Errorf("%w: status %q", errProviderStatus, res.Status)
	}
	return res.Data, nil
}

func (f *fawaterakGateway) InitPay(ctx context.Context, in InvoiceRequest) (*Invoice, error) {
	var res envelope[Invoice]
	if err := f.do(ctx, http.MethodPost, "/invoiceInitPay", in, &res); err != nil {
		return nil, err
	}
	if res.Status != "success" || res.Data.InvoiceID == "" {
		return nil, fmt.Errorf("%w: status %q", errProviderStatus, res.Status)
	}

	logger.FromCtx(ctx).Info("Fawaterak invoice created",
		zap.String("invoice_id", res.Data.InvoiceID.String()),
		zap.String("checkout_id", in.PayLoad.CheckoutID.String()),
	)
	return &res.Data, nil
}
