// Package stripe implements the payment and transfer gateways over the
// Stripe REST API.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	accountdomain "github.com/contentry/ledger/internal/account/domain"
	"github.com/contentry/ledger/internal/money"
	"github.com/contentry/ledger/internal/payment/adapters"
	paymentdomain "github.com/contentry/ledger/internal/payment/domain"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
)

const defaultBaseURL = "https://api.stripe.com"

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "stripe"
}

func (f *Factory) NewGateways(cfg adapters.Config) (paymentdomain.Gateway, settlementdomain.Gateway, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, nil, adapters.ErrInvalidConfig
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	gateway := &Gateway{
		secretKey: secret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
	return gateway, gateway, nil
}

// Gateway serves both gateway roles: buyer charges (payment intents) and
// seller payouts (transfers to connected accounts).
type Gateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// Authorize places a manual-capture payment intent and records the intent id
// on the payment.
func (g *Gateway) Authorize(ctx context.Context, payment *paymentdomain.Payment) error {
	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", payment.Money.Amount))
	form.Set("currency", strings.ToLower(string(payment.Money.Currency)))
	form.Set("capture_method", "manual")
	form.Set("confirm", "true")
	form.Set("metadata[order_id]", payment.OrderID.String())

	var intent stripeObject
	if err := g.post(ctx, "/v1/payment_intents", form, &intent); err != nil {
		return err
	}
	payment.RecordExternalPaymentID(intent.ID)
	return nil
}

// Refund refunds part or all of a previously authorized payment intent.
func (g *Gateway) Refund(ctx context.Context, payment *paymentdomain.Payment, amount money.Money, reason string) error {
	if payment.ExternalPaymentID == nil {
		return fmt.Errorf("payment %s has no external payment id", payment.ID)
	}

	form := url.Values{}
	form.Set("payment_intent", *payment.ExternalPaymentID)
	form.Set("amount", fmt.Sprintf("%d", amount.Amount))
	if reason = strings.TrimSpace(reason); reason != "" {
		form.Set("metadata[reason]", reason)
	}

	var refund stripeObject
	return g.post(ctx, "/v1/refunds", form, &refund)
}

// Execute pays a transfer out to the account's connected account and returns
// the external transfer id. Processor declines come back as
// *settlementdomain.GatewayError so execution can absorb them into transfer
// state.
func (g *Gateway) Execute(ctx context.Context, transfer *settlementdomain.Transfer, account *accountdomain.MonetizationAccount) (string, error) {
	if account.ConnectedAccountID == nil {
		return "", settlementdomain.NewGatewayError("account has no connected account")
	}

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", transfer.Amount.Amount))
	form.Set("currency", strings.ToLower(string(transfer.Amount.Currency)))
	form.Set("destination", *account.ConnectedAccountID)
	form.Set("metadata[transfer_id]", transfer.ID.String())
	form.Set("metadata[batch_id]", transfer.BatchID.String())

	var out stripeObject
	if err := g.post(ctx, "/v1/transfers", form, &out); err != nil {
		var declined *declineError
		if errors.As(err, &declined) {
			return "", settlementdomain.NewGatewayError(declined.Error())
		}
		return "", err
	}
	return out.ID, nil
}

type stripeObject struct {
	ID string `json:"id"`
}

type stripeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// declineError is an error response the processor produced, as opposed to a
// transport failure reaching it.
type declineError struct {
	path    string
	message string
}

func (e *declineError) Error() string {
	return fmt.Sprintf("stripe %s: %s", e.path, e.message)
}

func (g *Gateway) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var stripeErr stripeErrorBody
		if json.Unmarshal(body, &stripeErr) == nil && stripeErr.Error.Message != "" {
			return &declineError{path: path, message: stripeErr.Error.Message}
		}
		return &declineError{path: path, message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return json.Unmarshal(body, out)
}
