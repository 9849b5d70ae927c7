package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"campnest/internal/app/policies"
)

// HTTPProvider talks to a hosted-checkout payment provider over its REST
// API. The booking engine only needs two things from it: a checkout URL at
// reservation time, and webhook callbacks later (handled by the HTTP layer,
// not here).
type HTTPProvider struct {
	Client    *http.Client
	BaseURL   string
	APIKey    string
	ReturnURL string
	CancelURL string
	Logger    *slog.Logger
}

type createInvoiceRequest struct {
	ExternalID  string `json:"external_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	SuccessURL  string `json:"success_redirect_url,omitempty"`
	FailureURL  string `json:"failure_redirect_url,omitempty"`
	Description string `json:"description,omitempty"`
}

type createInvoiceResponse struct {
	InvoiceID  string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"status"`
}

func (p *HTTPProvider) CreateCheckout(ctx context.Context, req policies.CheckoutRequest) (policies.CheckoutSession, error) {
	var zero policies.CheckoutSession
	if p == nil || p.Client == nil {
		return zero, errors.New("payments: http client not configured")
	}
	if p.BaseURL == "" {
		return zero, errors.New("payments: base url not configured")
	}
	if strings.TrimSpace(req.OrderRef) == "" {
		return zero, errors.New("payments: order reference required")
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = p.ReturnURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = p.CancelURL
	}
	body, err := json.Marshal(createInvoiceRequest{
		ExternalID:  req.OrderRef,
		Amount:      req.Amount,
		Currency:    req.Currency,
		SuccessURL:  returnURL,
		FailureURL:  cancelURL,
		Description: fmt.Sprintf("Campsite booking %s", req.OrderRef),
	})
	if err != nil {
		return zero, err
	}

	endpoint := strings.TrimRight(p.BaseURL, "/") + "/v2/invoices"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.SetBasicAuth(p.APIKey, "")

	resp, err := p.Client.Do(request)
	if err != nil {
		p.logError("payment provider request failed", req.OrderRef, err)
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("payment provider returned status %d: %s", resp.StatusCode, string(snippet))
		p.logError("payment provider returned error", req.OrderRef, err)
		return zero, err
	}

	var invoice createInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		p.logError("payment provider decode failed", req.OrderRef, err)
		return zero, err
	}
	if invoice.InvoiceURL == "" {
		return zero, errors.New("payments: provider response missing invoice url")
	}

	if p.Logger != nil {
		p.Logger.Info("checkout session created", "order_ref", req.OrderRef, "invoice_id", invoice.InvoiceID)
	}
	return policies.CheckoutSession{CheckoutURL: invoice.InvoiceURL}, nil
}

func (p *HTTPProvider) logError(msg, orderRef string, err error) {
	if p.Logger == nil {
		return
	}
	p.Logger.Error(msg, "order_ref", orderRef, "error", err)
}

var _ policies.PaymentsPort = (*HTTPProvider)(nil)
