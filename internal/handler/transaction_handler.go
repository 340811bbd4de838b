package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxengine/internal/repository"
	"taxengine/internal/service"
	"taxengine/pkg/pagination"
	"taxengine/pkg/response"
)

type TransactionHandler struct {
	calcService service.TaxCalculationService
}

func NewTransactionHandler(calcService service.TaxCalculationService) *TransactionHandler {
	return &TransactionHandler{calcService: calcService}
}

func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	txns := router.Group("/api/transactions")
	{
		txns.GET("", h.ListTransactions)
		txns.GET("/:id", h.GetTransaction)
		txns.GET("/taxpayer/:taxId", h.ListByTaxPayer)
		txns.POST("/calculate", h.Calculate)
		txns.POST("", h.CreateTransaction)
		txns.PUT("/:id/pay", h.PayTransaction)
		txns.PUT("/:id/cancel", h.CancelTransaction)
	}
}

// Calculate godoc
// @Summary      Calculate tax
// @Description  Computes the tax liability for a taxable amount without persisting anything. Failures are reported in the body with success=false.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CalculationRequest  true  "Calculation Payload"
// @Success      200      {object}  service.CalculationResult
// @Failure      400      {object}  response.Response
// @Router       /api/transactions/calculate [post]
func (h *TransactionHandler) Calculate(c *gin.Context) {
	var req service.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result := h.calcService.CalculateTax(c.Request.Context(), req)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateTransaction godoc
// @Summary      Create a tax transaction
// @Description  Calculates the tax and persists a Pending transaction with a generated transaction number
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CalculationRequest  true  "Calculation Payload"
// @Success      201      {object}  response.Response{data=model.TaxTransaction}
// @Failure      400      {object}  response.Response
// @Router       /api/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req service.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	txn, err := h.calcService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, txn))
}

// ListTransactions godoc
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Param        status    query     string  false  "Filter by status (Pending, Paid, Cancelled)"
// @Param        tax_type  query     string  false  "Filter by tax type"
// @Param        from      query     string  false  "Transactions on or after this date (YYYY-MM-DD)"
// @Param        to        query     string  false  "Transactions on or before this date (YYYY-MM-DD)"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Paged}
// @Router       /api/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.TransactionListFilter{
		Status:  c.Query("status"),
		TaxType: c.Query("tax_type"),
	}
	if raw := c.Query("from"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			filter.FromDate = &d
		}
	}
	if raw := c.Query("to"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			filter.ToDate = &d
		}
	}

	txns, total, err := h.calcService.ListTransactions(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessPaged(http.StatusOK, txns, total, params.Page, params.Limit))
}

// GetTransaction godoc
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  response.Response{data=model.TaxTransaction}
// @Failure      404  {object}  response.Response
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	txn, err := h.calcService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, txn))
}

// ListByTaxPayer godoc
// @Summary      List a taxpayer's transactions
// @Tags         transactions
// @Produce      json
// @Param        taxId  path      string  true   "Public tax identifier"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.Paged}
// @Failure      404    {object}  response.Response
// @Router       /api/transactions/taxpayer/{taxId} [get]
func (h *TransactionHandler) ListByTaxPayer(c *gin.Context) {
	params := pagination.Parse(c)

	txns, total, err := h.calcService.ListByTaxPayer(c.Request.Context(), c.Param("taxId"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessPaged(http.StatusOK, txns, total, params.Page, params.Limit))
}

// PayTransaction godoc
// @Summary      Pay a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Transaction ID"
// @Param        payload  body      service.PaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=model.TaxTransaction}
// @Failure      400      {object}  response.Response
// @Router       /api/transactions/{id}/pay [put]
func (h *TransactionHandler) PayTransaction(c *gin.Context) {
	var req service.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	txn, err := h.calcService.PayTransaction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, txn))
}

// CancelTransaction godoc
// @Summary      Cancel a transaction
// @Tags         transactions
// @Produce      json
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  response.Response{data=model.TaxTransaction}
// @Failure      400  {object}  response.Response
// @Router       /api/transactions/{id}/cancel [put]
func (h *TransactionHandler) CancelTransaction(c *gin.Context) {
	txn, err := h.calcService.CancelTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, txn))
}
