package webhook

import (
	"testing"

	"storefront-be/internal/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Paid", func(t *testing.T) {
		n, err := Parse([]byte(`{"invoice_id":1001,"invoice_key":"k","payment_method":"Card","invoice_status":"paid","referenceNumber":"R","hashKey":"h","pay_load":"{\"checkoutId\":\"x\"}"}`))
		require.NoError(t, err)
		paid, ok := n.(PaidNotification)
		require.True(t, ok)
		assert.Equal(t, "1001", paid.InvoiceID)
		assert.Equal(t, "InvoiceId=1001&InvoiceKey=k&PaymentMethod=Card", paid.SignedString())
		assert.Equal(t, KindPaid, n.Kind())
	})

	t.Run("Expired", func(t *testing.T) {
		n, err := Parse([]byte(`{"referenceId":"REF-9","paymentMethod":"Fawry","status":"EXPIRED","hashKey":"h"}`))
		require.NoError(t, err)
		exp, ok := n.(ExpiredNotification)
		require.True(t, ok)
		assert.Equal(t, "referenceId=REF-9&PaymentMethod=Fawry", exp.SignedString())
		assert.Equal(t, KindExpired, n.Kind())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Parse([]byte(`{"status":"paid"}`))
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Parse([]byte("  "))
		assert.ErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := Parse([]byte(`{"invoice_id":`))
		assert.ErrorIs(t, err, ErrMalformedBody)
	})

	t.Run("PaidMissingFields", func(t *testing.T) {
		_, err := Parse([]byte(`{"invoice_id":"1"}`))
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		assert.Len(t, apperror.DetailsOf(err), 2)
	})

	t.Run("ExpiredMissingMethod", func(t *testing.T) {
		_, err := Parse([]byte(`{"referenceId":"1"}`))
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestCheckoutID(t *testing.T) {
	id := uuid.New()

	cases := []struct {
		name    string
		payload string
		want    uuid.UUID
		wantErr bool
	}{
		{"EncodedString", `"{\"checkoutId\":\"` + id.String() + `\"}"`, id, false},
		{"Object", `{"checkoutId":"` + id.String() + `"}`, id, false},
		{"Missing", ``, uuid.Nil, true},
		{"Null", `null`, uuid.Nil, true},
		{"NoKey", `{"other":1}`, uuid.Nil, true},
		{"NotAnID", `{"checkoutId":"abc"}`, uuid.Nil, true},
		{"GarbageString", `"not json"`, uuid.Nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CheckoutID(PaidNotification{PayLoad: []byte(tc.payload)})
			if tc.wantErr {
				assert.Error(t, err)
				assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
