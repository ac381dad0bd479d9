package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"storefront-be/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestGateway() *fawaterakGateway {
	return NewFawaterakGateway(config.Fawaterak{
		BaseURL:   "https://fawaterak.test/api/v2/",
		VendorKey: "vendor-key",
		Timeout:   time.Second,
	}).(*fawaterakGateway)
}

func TestFawaterakGateway_PaymentMethods(t *testing.T) {
	gw := newTestGateway()

	t.Run("Success", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "https://fawaterak.test/api/v2/getPaymentmethods", req.URL.String())
			assert.Equal(t, "Bearer vendor-key", req.Header.Get("Authorization"))
			return jsonResponse(http.StatusOK, `{"status":"success","data":[{"paymentId":2,"name_en":"Visa-Mastercard","name_ar":"فيزا","redirect":"true","logo":"l.png"}]}`)
		})

		methods, err := gw.PaymentMethods(context.Background())
		require.NoError(t, err)
		require.Len(t, methods, 1)
		assert.Equal(t, 2, methods[0].PaymentID)
		assert.Equal(t, "Visa-Mastercard", methods[0].NameEn)
	})

	t.Run("APIError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusUnauthorized, `{"status":"error"}`)
		})

		_, err := gw.PaymentMethods(context.Background())
		assert.ErrorIs(t, err, errProviderStatus)
	})

	t.Run("NetworkError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := gw.PaymentMethods(context.Background())
		assert.Error(t, err)
	})
}

func TestFawaterakGateway_InitPay(t *testing.T) {
	gw := newTestGateway()
	checkoutID := uuid.New()
	req := InvoiceRequest{
		PaymentMethodID: 2,
		CartTotal:       "25.00",
		Currency:        "EGP",
		CartItems:       []CartItem{{Name: "A", Price: "10.00", Quantity: 2}, {Name: "B", Price: "5.00", Quantity: 1}},
		PayLoad:         InvoicePayload{CheckoutID: checkoutID},
	}

	t.Run("Success", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v2/invoiceInitPay", r.URL.Path)

			var sent map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			assert.Equal(t, 25.0, sent["cartTotal"])
			assert.Equal(t, checkoutID.String(), sent["payLoad"].(map[string]any)["checkoutId"])

			return jsonResponse(http.StatusOK, `{"status":"success","data":{"invoice_id":1001,"invoice_key":"key-1","payment_data":{"redirectTo":"https://pay"}}}`)
		})

		inv, err := gw.InitPay(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "1001", inv.InvoiceID.String())
		assert.Equal(t, "key-1", inv.InvoiceKey)
		assert.JSONEq(t, `{"redirectTo":"https://pay"}`, string(inv.PaymentData))
	})

	t.Run("ProviderRefused", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"status":"error","data":{}}`)
		})

		_, err := gw.InitPay(context.Background(), req)
		assert.ErrorIs(t, err, errProviderStatus)
	})

	t.Run("BadJSON", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `not json`)
		})

		_, err := gw.InitPay(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x1","b":1234567,"c":null}`), &v))
	assert.Equal(t, FlexString("x1"), v.A)
	assert.Equal(t, FlexString("1234567"), v.B)
	assert.Equal(t, FlexString(""), v.C)
}
