package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pullbill/pullbill/internal/api/dto"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/logger"
	"github.com/pullbill/pullbill/internal/service"
)

type RateHandler struct {
	service service.RateService
	log     *logger.Logger
}

func NewRateHandler(service service.RateService, log *logger.Logger) *RateHandler {
	return &RateHandler{service: service, log: log}
}

// @Summary Set an exchange rate
// @Description Set the fiat-per-token exchange rate for a currency (administrator only)
// @Tags Rates
// @Accept json
// @Produce json
// @Param rate body dto.SetRateRequest true "Exchange rate"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /rates [post]
func (h *RateHandler) SetRate(c *gin.Context) {
	var req dto.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetRate(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Failed to set rate", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get an exchange rate
// @Description Get the registered exchange rate for a currency
// @Tags Rates
// @Accept json
// @Produce json
// @Param currency path string true "Currency code"
// @Success 200 {object} dto.RateResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /rates/{currency} [get]
func (h *RateHandler) GetRate(c *gin.Context) {
	currency := c.Param("currency")
	if currency == "" {
		c.Error(ierr.NewError("currency is required").
			WithHint("Currency code is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetRate(c.Request.Context(), currency)
	if err != nil {
		h.log.Error("Failed to get rate", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List exchange rates
// @Description List all registered exchange rates
// @Tags Rates
// @Accept json
// @Produce json
// @Success 200 {object} dto.ListRatesResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /rates [get]
func (h *RateHandler) ListRates(c *gin.Context) {
	resp, err := h.service.ListRates(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list rates", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
