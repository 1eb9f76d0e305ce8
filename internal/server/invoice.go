package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	invoicedomain "github.com/contentry/ledger/internal/invoice/domain"
	"github.com/contentry/ledger/internal/money"
)

type invoiceLineRequest struct {
	Description     string `json:"description"`
	Quantity        int64  `json:"quantity"`
	UnitPriceAmount int64  `json:"unit_price_amount"`
}

type discountRequest struct {
	Type   string  `json:"type"` // "fixed" or "percentage"
	Amount int64   `json:"amount,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
}

type taxLineRequest struct {
	Code string  `json:"code"`
	Rate float64 `json:"rate"`
	Mode string  `json:"mode"` // "exclusive" or "inclusive"
}

type createInvoiceRequest struct {
	OrderID        string               `json:"order_id"`
	BuyerAccountID string               `json:"buyer_account_id"`
	Currency       string               `json:"currency"`
	Lines          []invoiceLineRequest `json:"lines"`
	Discount       *discountRequest     `json:"discount,omitempty"`
	TaxLines       []taxLineRequest     `json:"tax_lines,omitempty"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
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

	lines := make([]invoicedomain.NewLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		unitPrice, err := money.New(line.UnitPriceAmount, currency)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		lines = append(lines, invoicedomain.NewLine{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
		})
	}

	var discount invoicedomain.Discount
	if req.Discount != nil {
		switch req.Discount.Type {
		case "fixed":
			amount, err := money.New(req.Discount.Amount, currency)
			if err != nil {
				AbortWithError(c, err)
				return
			}
			discount = invoicedomain.FixedDiscount{Amount: amount}
		case "percentage":
			discount = invoicedomain.PercentageDiscount{Rate: req.Discount.Rate}
		default:
			AbortWithError(c, newValidationError("discount.type", "invalid_discount", "unknown discount type"))
			return
		}
	}

	taxLines := make([]invoicedomain.TaxLine, 0, len(req.TaxLines))
	for _, tax := range req.TaxLines {
		taxLines = append(taxLines, invoicedomain.TaxLine{
			Code: tax.Code,
			Rate: tax.Rate,
			Mode: invoicedomain.TaxMode(tax.Mode),
		})
	}

	now := time.Now().UTC()
	dueDate := now.AddDate(0, 0, 14)
	if req.DueDate != nil {
		dueDate = req.DueDate.UTC()
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		OrderID:        orderID,
		BuyerAccountID: buyerID,
		Currency:       currency,
		Lines:          lines,
		Discount:       discount,
		TaxLines:       taxLines,
		IssuedAt:       now,
		DueDate:        dueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.Void(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type applyPaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

func (s *Server) ApplyPayment(c *gin.Context) {
	invoiceID, ok := parseID(c)
	if !ok {
		return
	}

	var req applyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	paymentID, err := snowflake.ParseString(req.PaymentID)
	if err != nil {
		AbortWithError(c, newValidationError("payment_id", "invalid_id", "invalid id"))
		return
	}

	invoice, err := s.matcherSvc.Match(c.Request.Context(), invoiceID, paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}
