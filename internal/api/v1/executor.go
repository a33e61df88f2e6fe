package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pullbill/pullbill/internal/api/dto"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/logger"
	"github.com/pullbill/pullbill/internal/service"
)

type ExecutorHandler struct {
	service service.AccessService
	log     *logger.Logger
}

func NewExecutorHandler(service service.AccessService, log *logger.Logger) *ExecutorHandler {
	return &ExecutorHandler{service: service, log: log}
}

// @Summary Add an executor
// @Description Add an account to the executor allow-list (administrator only)
// @Tags Executors
// @Accept json
// @Produce json
// @Param executor body dto.ExecutorRequest true "Executor account"
// @Success 201 {object} dto.ExecutorResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /executors [post]
func (h *ExecutorHandler) AddExecutor(c *gin.Context) {
	var req dto.ExecutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.AddExecutor(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Failed to add executor", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Remove an executor
// @Description Remove an account from the executor allow-list (administrator only)
// @Tags Executors
// @Accept json
// @Produce json
// @Param account path string true "Executor account"
// @Success 204
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /executors/{account} [delete]
func (h *ExecutorHandler) RemoveExecutor(c *gin.Context) {
	account := c.Param("account")
	if account == "" {
		c.Error(ierr.NewError("account is required").
			WithHint("Executor account is required").
			Mark(ierr.ErrValidation))
		return
	}

	req := dto.ExecutorRequest{Account: account}
	if err := h.service.RemoveExecutor(c.Request.Context(), req); err != nil {
		h.log.Error("Failed to remove executor", "error", err)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List executors
// @Description List the current executor allow-list
// @Tags Executors
// @Accept json
// @Produce json
// @Success 200 {object} dto.ListExecutorsResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /executors [get]
func (h *ExecutorHandler) ListExecutors(c *gin.Context) {
	resp, err := h.service.ListExecutors(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list executors", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
