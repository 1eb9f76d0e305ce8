package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/contentry/ledger/internal/money"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
)

type payoutRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createBatchRequest struct {
	AccountID   string          `json:"account_id"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Payouts     []payoutRequest `json:"payouts"`
}

func (s *Server) CreateSettlementBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	accountID, err := snowflake.ParseString(req.AccountID)
	if err != nil {
		AbortWithError(c, newValidationError("account_id", "invalid_id", "invalid id"))
		return
	}

	payouts := make([]money.Money, 0, len(req.Payouts))
	for _, payout := range req.Payouts {
		currency, err := money.ParseCurrency(payout.Currency)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		amount, err := money.New(payout.Amount, currency)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		payouts = append(payouts, amount)
	}

	batch, err := s.settlementSvc.CreateBatch(c.Request.Context(), settlementdomain.CreateBatchRequest{
		AccountID:   accountID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Payouts:     payouts,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": batch})
}

func (s *Server) GetSettlementBatchByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := s.settlementSvc.GetBatchByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) GetTransferByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := s.settlementSvc.GetTransferByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ExecuteTransfer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := s.settlementSvc.ExecuteTransfer(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
