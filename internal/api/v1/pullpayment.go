package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pullbill/pullbill/internal/api/dto"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/logger"
	"github.com/pullbill/pullbill/internal/service"
	"github.com/pullbill/pullbill/internal/types"
)

type PullPaymentHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewPullPaymentHandler(service service.BillingService, log *logger.Logger) *PullPaymentHandler {
	return &PullPaymentHandler{service: service, log: log}
}

// @Summary Register a pull payment
// @Description Register a signed pull-payment subscription (executor only)
// @Tags PullPayments
// @Accept json
// @Produce json
// @Param pull_payment body dto.RegisterPullPaymentRequest true "Signed subscription terms"
// @Success 201 {object} dto.SubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /pullpayments [post]
func (h *PullPaymentHandler) RegisterPullPayment(c *gin.Context) {
	var req dto.RegisterPullPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RegisterPullPayment(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Failed to register pull payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Execute a pull payment
// @Description Charge a due pull payment through the token ledger
// @Tags PullPayments
// @Accept json
// @Produce json
// @Param pull_payment body dto.ExecutePullPaymentRequest true "Execution target"
// @Success 200 {object} dto.ExecutionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /pullpayments/execute [post]
func (h *PullPaymentHandler) ExecutePullPayment(c *gin.Context) {
	var req dto.ExecutePullPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ExecutePullPayment(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Failed to execute pull payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel a pull payment
// @Description Cancel a subscription with the client's signed cancellation consent (executor only)
// @Tags PullPayments
// @Accept json
// @Produce json
// @Param pull_payment body dto.CancelPullPaymentRequest true "Signed cancellation"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /pullpayments/cancel [post]
func (h *PullPaymentHandler) CancelPullPayment(c *gin.Context) {
	var req dto.CancelPullPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CancelPullPayment(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Failed to cancel pull payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a pull payment
// @Description Get the stored subscription for a client and beneficiary pair
// @Tags PullPayments
// @Accept json
// @Produce json
// @Param client path string true "Client address"
// @Param beneficiary path string true "Beneficiary address"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /pullpayments/{client}/{beneficiary} [get]
func (h *PullPaymentHandler) GetPullPayment(c *gin.Context) {
	client, ok := types.ParseAddress(c.Param("client"))
	if !ok {
		c.Error(ierr.NewError("invalid client address").
			WithHint("Client must be a hex address").
			Mark(ierr.ErrValidation))
		return
	}
	beneficiary, ok := types.ParseAddress(c.Param("beneficiary"))
	if !ok {
		c.Error(ierr.NewError("invalid beneficiary address").
			WithHint("Beneficiary must be a hex address").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPullPayment(c.Request.Context(), client, beneficiary)
	if err != nil {
		h.log.Error("Failed to get pull payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a ledger balance
// @Description Get the token ledger balance of an account
// @Tags Balances
// @Accept json
// @Produce json
// @Param account path string true "Account address"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /balances/{account} [get]
func (h *PullPaymentHandler) GetBalance(c *gin.Context) {
	account, ok := types.ParseAddress(c.Param("account"))
	if !ok {
		c.Error(ierr.NewError("invalid account address").
			WithHint("Account must be a hex address").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetBalance(c.Request.Context(), account)
	if err != nil {
		h.log.Error("Failed to get balance", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
