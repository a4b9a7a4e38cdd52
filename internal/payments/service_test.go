package payments

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/backend/backendtest"
	"github.com/florista/bouquet-bff/pkg/enums"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
)

var creds = backend.Credentials{Token: "backend-token"}

func newTestService(t *testing.T, fake *backendtest.Fake) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Backend: fake})
	require.NoError(t, err)
	return svc
}

func TestCreate(t *testing.T) {
	fake := backendtest.New().JSON(backend.ServicePayment, http.MethodPost, "/payments",
		`{"data":{"payment":{"transaction_id":"trx-1","transaction_status":"pending","gross_amount":"180000.00","snap_token":"snap","redirect_url":"https://pay.example/snap"}}}`)
	svc := newTestService(t, fake)

	payment, err := svc.Create(context.Background(), CreateInput{OrderID: " 55 ", Method: "qris"}, creds)
	require.NoError(t, err)
	assert.Equal(t, "trx-1", payment.ID)
	assert.Equal(t, "55", payment.OrderID)
	assert.Equal(t, "qris", payment.Method)
	assert.Equal(t, enums.PaymentStatusPending, payment.Status)
	assert.Equal(t, "180000", payment.Amount.String())
	assert.Equal(t, "https://pay.example/snap", payment.RedirectURL)

	sent := fake.Last()
	assert.Equal(t, "backend-token", sent.Token)
	assert.JSONEq(t, `{"order_id":"55","payment_method":"qris"}`, backendtest.BodyJSON(sent))
}

func TestCreateValidation(t *testing.T) {
	fake := backendtest.New()
	svc := newTestService(t, fake)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{OrderID: "1"}, creds)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	_, err = svc.Create(ctx, CreateInput{OrderID: "1", Method: "qris"}, backend.Credentials{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
	assert.Empty(t, fake.Calls())
}

func TestCreateRequiresPaymentReference(t *testing.T) {
	fake := backendtest.New().JSON(backend.ServicePayment, http.MethodPost, "/payments", `{"success":true}`)
	svc := newTestService(t, fake)

	_, err := svc.Create(context.Background(), CreateInput{OrderID: "1", Method: "qris"}, creds)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUpstreamContract))
}

func TestStatus(t *testing.T) {
	fake := backendtest.New().
		JSON(backend.ServicePayment, http.MethodGet, "/payments/order/55", `{"id":"pay-9","status":"settlement","paid_at":"2025-03-10T10:00:00Z"}`).
		Fail(backend.ServicePayment, http.MethodGet, "/payments/order/56", pkgerrors.New(pkgerrors.CodeNotFound, "no payment"))
	svc := newTestService(t, fake)
	ctx := context.Background()

	payment, err := svc.Status(ctx, "55", creds)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, payment.Status)
	assert.Equal(t, "55", payment.OrderID)
	require.NotNil(t, payment.PaidAt)

	_, err = svc.Status(ctx, "56", creds)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = svc.Status(ctx, "", creds)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
