package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/contentry/ledger/internal/money"
	paymentdomain "github.com/contentry/ledger/internal/payment/domain"
)

type authorizePaymentRequest struct {
	OrderID        string `json:"order_id"`
	BuyerAccountID string `json:"buyer_account_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Method         struct {
		Type      string `json:"type"`
		Label     string `json:"label"`
		Recurring bool   `json:"recurring"`
	} `json:"method"`
}

func (s *Server) AuthorizePayment(c *gin.Context) {
	var req authorizePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	orderID, err := snowflake.ParseString(req.OrderID)
	if err != nil {
		AbortWithError(c, newValidationError("order_id", "invalid_id", "invalid id"))
		return
	}
	buyerID, err := snowflake.ParseString(req.BuyerAccountID)
	if err != nil {
		AbortWithError(c, newValidationError("buyer_account_id", "invalid_id", "invalid id"))
		return
	}
	currency, err := money.ParseCurrency(req.Currency)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	amount, err := money.New(req.Amount, currency)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payment, err := s.paymentSvc.Authorize(c.Request.Context(), paymentdomain.AuthorizeRequest{
		OrderID:        orderID,
		BuyerAccountID: buyerID,
		Amount:         amount,
		Method: paymentdomain.PaymentMethod{
			Type:      paymentdomain.MethodType(req.Method.Type),
			Label:     req.Method.Label,
			Recurring: req.Method.Recurring,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": payment})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := s.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CapturePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := s.paymentSvc.Capture(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type refundPaymentRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) RefundPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req refundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	payment, err := s.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	amount, err := money.New(req.Amount, payment.Money.Currency)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.paymentSvc.Refund(c.Request.Context(), id, amount, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type failPaymentRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) FailPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req failPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	item, err := s.paymentSvc.Fail(c.Request.Context(), id, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
