package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"

	accountdomain "github.com/contentry/ledger/internal/account/domain"
	"github.com/contentry/ledger/internal/money"
	"github.com/contentry/ledger/internal/payment/adapters"
	paymentdomain "github.com/contentry/ledger/internal/payment/domain"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	paymentGateway, _, err := NewFactory().NewGateways(adapters.Config{
		SecretKey: "sk_test_123",
		BaseURL:   server.URL,
		Timeout:   5 * time.Second,
	})
	assert.NoError(t, err)
	return paymentGateway.(*Gateway)
}

func testNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)
	return node
}

func TestFactoryRequiresSecretKey(t *testing.T) {
	_, _, err := NewFactory().NewGateways(adapters.Config{})
	assert.ErrorIs(t, err, adapters.ErrInvalidConfig)
}

func TestAuthorizeRecordsPaymentIntentID(t *testing.T) {
	node := testNode(t)

	var gotPath, gotAuth, gotIdempotency string
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdempotency = r.Header.Get("Idempotency-Key")
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "15000", r.PostForm.Get("amount"))
		assert.Equal(t, "krw", r.PostForm.Get("currency"))
		assert.Equal(t, "manual", r.PostForm.Get("capture_method"))
		w.Write([]byte(`{"id":"pi_123"}`))
	})

	amount, err := money.New(15000, money.KRW)
	assert.NoError(t, err)
	payment, err := paymentdomain.NewPayment(node.Generate(), node.Generate(), node.Generate(), amount, paymentdomain.PaymentMethod{
		Type:  paymentdomain.MethodTypeCard,
		Label: "visa-4242",
	}, time.Now())
	assert.NoError(t, err)

	err = gateway.Authorize(context.Background(), payment)
	assert.NoError(t, err)
	assert.Equal(t, "/v1/payment_intents", gotPath)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.NotEmpty(t, gotIdempotency)
	if assert.NotNil(t, payment.ExternalPaymentID) {
		assert.Equal(t, "pi_123", *payment.ExternalPaymentID)
	}
}

func TestAuthorizeDeclined(t *testing.T) {
	node := testNode(t)
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	amount, err := money.New(5000, money.KRW)
	assert.NoError(t, err)
	payment, err := paymentdomain.NewPayment(node.Generate(), node.Generate(), node.Generate(), amount, paymentdomain.PaymentMethod{
		Type:  paymentdomain.MethodTypeCard,
		Label: "visa-4242",
	}, time.Now())
	assert.NoError(t, err)

	err = gateway.Authorize(context.Background(), payment)
	assert.ErrorContains(t, err, "Your card was declined.")
	assert.Nil(t, payment.ExternalPaymentID)
}

func TestRefundRequiresExternalPaymentID(t *testing.T) {
	node := testNode(t)
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway must not be called")
	})

	amount, err := money.New(5000, money.KRW)
	assert.NoError(t, err)
	payment, err := paymentdomain.NewPayment(node.Generate(), node.Generate(), node.Generate(), amount, paymentdomain.PaymentMethod{
		Type:  paymentdomain.MethodTypeCard,
		Label: "visa-4242",
	}, time.Now())
	assert.NoError(t, err)

	err = gateway.Refund(context.Background(), payment, amount, "buyer request")
	assert.Error(t, err)
}

func TestRefundPostsPaymentIntent(t *testing.T) {
	node := testNode(t)

	var gotPath string
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_123", r.PostForm.Get("payment_intent"))
		assert.Equal(t, "2000", r.PostForm.Get("amount"))
		w.Write([]byte(`{"id":"re_1"}`))
	})

	amount, err := money.New(5000, money.KRW)
	assert.NoError(t, err)
	payment, err := paymentdomain.NewPayment(node.Generate(), node.Generate(), node.Generate(), amount, paymentdomain.PaymentMethod{
		Type:  paymentdomain.MethodTypeCard,
		Label: "visa-4242",
	}, time.Now())
	assert.NoError(t, err)
	payment.RecordExternalPaymentID("pi_123")

	refund, err := money.New(2000, money.KRW)
	assert.NoError(t, err)
	err = gateway.Refund(context.Background(), payment, refund, "buyer request")
	assert.NoError(t, err)
	assert.Equal(t, "/v1/refunds", gotPath)
}

func TestExecuteReturnsTransferID(t *testing.T) {
	node := testNode(t)

	var gotPath string
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "acct_42", r.PostForm.Get("destination"))
		assert.Equal(t, "90000", r.PostForm.Get("amount"))
		w.Write([]byte(`{"id":"tr_9"}`))
	})

	connectedID := "acct_42"
	status := accountdomain.ConnectedAccountStatusEnabled
	account := &accountdomain.MonetizationAccount{
		ID:                     node.Generate(),
		OwnerAccountID:         node.Generate(),
		ConnectedAccountID:     &connectedID,
		ConnectedAccountStatus: &status,
	}

	amount, err := money.New(90000, money.KRW)
	assert.NoError(t, err)
	transfer := &settlementdomain.Transfer{
		ID:        node.Generate(),
		BatchID:   node.Generate(),
		AccountID: account.ID,
		Amount:    amount,
		Status:    settlementdomain.TransferStatusPending,
	}

	externalID, err := gateway.Execute(context.Background(), transfer, account)
	assert.NoError(t, err)
	assert.Equal(t, "tr_9", externalID)
	assert.Equal(t, "/v1/transfers", gotPath)
}

func TestExecuteDeclineIsGatewayError(t *testing.T) {
	node := testNode(t)
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Insufficient platform balance."}}`))
	})

	connectedID := "acct_42"
	account := &accountdomain.MonetizationAccount{
		ID:                 node.Generate(),
		ConnectedAccountID: &connectedID,
	}
	amount, err := money.New(90000, money.KRW)
	assert.NoError(t, err)
	transfer := &settlementdomain.Transfer{
		ID:      node.Generate(),
		BatchID: node.Generate(),
		Amount:  amount,
		Status:  settlementdomain.TransferStatusPending,
	}

	_, err = gateway.Execute(context.Background(), transfer, account)
	var gatewayErr *settlementdomain.GatewayError
	assert.True(t, errors.As(err, &gatewayErr))
	assert.Contains(t, gatewayErr.Message, "Insufficient platform balance.")
}
