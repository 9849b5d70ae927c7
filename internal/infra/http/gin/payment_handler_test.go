package ginserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campnest/internal/app/commands"
	paymentsapp "campnest/internal/app/handlers/payments"
	domainbooking "campnest/internal/domain/booking"
	domainpricing "campnest/internal/domain/pricing"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
	"campnest/internal/infra/payments"
	"campnest/internal/infra/storage/memory"
)

func newPaymentTestStack(t *testing.T, code string) (PaymentHandler, *memory.BookingRepository) {
	t.Helper()
	bookings := memory.NewBookingRepository()
	factory := memory.Factory{
		PropertiesRepo:   memory.NewPropertyRepository(),
		SitesRepo:        memory.NewSiteRepository(),
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		BookingRepo:      bookings,
		ReviewsRepo:      memory.NewReviewRepository(),
	}

	site, err := domainsites.NewSite(domainsites.CreateSiteParams{
		ID:         "site-1",
		PropertyID: "prop-1",
		Host:       "host-1",
		Name:       "Creek pitch",
		Capacity:   domainsites.Capacity{MaxGuests: 4},
		Tariff:     domainsites.Tariff{Currency: "EUR", BasePrice: 100},
		Now:        time.Now().UTC(),
	})
	require.NoError(t, err)

	checkIn := domainrange.Truncate(time.Now().UTC()).AddDate(0, 0, 10)
	dr, err := domainrange.New(checkIn, checkIn.AddDate(0, 0, 2))
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        "bk-1",
		Code:      code,
		Site:      site,
		GuestID:   "guest-1",
		Range:     dr,
		Occupancy: domainbooking.Occupancy{Guests: 2},
		Price:     domainpricing.Breakdown{Currency: "EUR", Nights: 2, Subtotal: 200, Total: 200},
		Schedule:  domainbooking.DefaultSchedule(),
		Now:       time.Now().UTC(),
	})
	require.NoError(t, err)
	b.ClearEvents()
	require.NoError(t, bookings.Save(context.Background(), b))

	reg := commands.NewRegistry()
	commands.Register[paymentsapp.ApplyPaymentCallbackCommand, *paymentsapp.CallbackResult](reg, &paymentsapp.ApplyPaymentCallbackHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
	})

	return PaymentHandler{
		Commands: reg,
		Verifier: payments.CallbackVerifier{Token: "hook-secret"},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, bookings
}

func postCallback(handler PaymentHandler, body, token string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if token != "" {
		c.Request.Header.Set("X-Callback-Token", token)
	}
	handler.Callback(c)
	return rec
}

func TestPaymentCallbackAppliesProviderPayload(t *testing.T) {
	handler, bookings := newPaymentTestStack(t, "CN-TESTHOOK")

	rec := postCallback(handler, `{"data":{"code":"CN-TESTHOOK","status":"paid"}}`, "hook-secret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"outcome":"applied"`)

	stored, err := bookings.ByCode(context.Background(), "CN-TESTHOOK")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.PaymentPaid, stored.PaymentStatus)
}

func TestPaymentCallbackUnknownCodeStillAcked(t *testing.T) {
	handler, _ := newPaymentTestStack(t, "CN-TESTHOOK")

	rec := postCallback(handler, `{"data":{"code":"CN-NOSUCHBK","status":"paid"}}`, "hook-secret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"outcome":"unknown_reference"`)
}

func TestPaymentCallbackRejectsBadToken(t *testing.T) {
	handler, bookings := newPaymentTestStack(t, "CN-TESTHOOK")

	rec := postCallback(handler, `{"data":{"code":"CN-TESTHOOK","status":"paid"}}`, "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := bookings.ByCode(context.Background(), "CN-TESTHOOK")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.PaymentUnpaid, stored.PaymentStatus)
}

func TestPaymentCallbackRejectsMalformedBody(t *testing.T) {
	handler, _ := newPaymentTestStack(t, "CN-TESTHOOK")

	rec := postCallback(handler, `{"data":`, "hook-secret")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentCallbackRejectsUnknownStatus(t *testing.T) {
	handler, _ := newPaymentTestStack(t, "CN-TESTHOOK")

	rec := postCallback(handler, `{"data":{"code":"CN-TESTHOOK","status":"pondering"}}`, "hook-secret")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
