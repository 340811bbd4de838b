package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxengine/internal/service"
	"taxengine/pkg/pagination"
	"taxengine/pkg/response"
)

type TaxPayerHandler struct {
	taxPayerService service.TaxPayerService
}

func NewTaxPayerHandler(taxPayerService service.TaxPayerService) *TaxPayerHandler {
	return &TaxPayerHandler{taxPayerService: taxPayerService}
}

func (h *TaxPayerHandler) RegisterRoutes(router *gin.RouterGroup) {
	taxpayers := router.Group("/api/taxpayers")
	{
		taxpayers.GET("", h.ListTaxPayers)
		taxpayers.GET("/:id", h.GetTaxPayer)
		taxpayers.GET("/by-tax-id/:taxId", h.GetByTaxID)
		taxpayers.POST("", h.CreateTaxPayer)
		taxpayers.PUT("/:id", h.UpdateTaxPayer)
		taxpayers.DELETE("/:id", h.DeactivateTaxPayer)
	}
}

// ListTaxPayers godoc
// @Summary      List taxpayers
// @Tags         taxpayers
// @Produce      json
// @Param        entity_type  query     string  false  "Filter by entity type (Individual, Corporate, Partnership)"
// @Param        search       query     string  false  "Search by name, tax id or email"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Paged}
// @Router       /api/taxpayers [get]
func (h *TaxPayerHandler) ListTaxPayers(c *gin.Context) {
	params := pagination.Parse(c)

	taxpayers, total, err := h.taxPayerService.ListTaxPayers(
		c.Request.Context(), c.Query("entity_type"), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessPaged(http.StatusOK, taxpayers, total, params.Page, params.Limit))
}

// GetTaxPayer godoc
// @Summary      Get a taxpayer
// @Tags         taxpayers
// @Produce      json
// @Param        id   path      string  true  "Taxpayer ID"
// @Success      200  {object}  response.Response{data=model.TaxPayer}
// @Failure      404  {object}  response.Response
// @Router       /api/taxpayers/{id} [get]
func (h *TaxPayerHandler) GetTaxPayer(c *gin.Context) {
	taxpayer, err := h.taxPayerService.GetTaxPayer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, taxpayer))
}

// GetByTaxID godoc
// @Summary      Get a taxpayer by tax ID
// @Tags         taxpayers
// @Produce      json
// @Param        taxId  path      string  true  "Public tax identifier"
// @Success      200    {object}  response.Response{data=model.TaxPayer}
// @Failure      404    {object}  response.Response
// @Router       /api/taxpayers/by-tax-id/{taxId} [get]
func (h *TaxPayerHandler) GetByTaxID(c *gin.Context) {
	taxpayer, err := h.taxPayerService.GetByTaxID(c.Request.Context(), c.Param("taxId"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, taxpayer))
}

// CreateTaxPayer godoc
// @Summary      Register a taxpayer
// @Tags         taxpayers
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTaxPayerRequest  true  "Create Taxpayer Payload"
// @Success      201      {object}  response.Response{data=model.TaxPayer}
// @Failure      400      {object}  response.Response
// @Router       /api/taxpayers [post]
func (h *TaxPayerHandler) CreateTaxPayer(c *gin.Context) {
	var req service.CreateTaxPayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	taxpayer, err := h.taxPayerService.CreateTaxPayer(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, taxpayer))
}

// UpdateTaxPayer godoc
// @Summary      Update a taxpayer
// @Tags         taxpayers
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Taxpayer ID"
// @Param        payload  body      service.UpdateTaxPayerRequest  true  "Update Taxpayer Payload"
// @Success      200      {object}  response.Response{data=model.TaxPayer}
// @Failure      400      {object}  response.Response
// @Router       /api/taxpayers/{id} [put]
func (h *TaxPayerHandler) UpdateTaxPayer(c *gin.Context) {
	var req service.UpdateTaxPayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	taxpayer, err := h.taxPayerService.UpdateTaxPayer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, taxpayer))
}

// DeactivateTaxPayer godoc
// @Summary      Deactivate a taxpayer
// @Description  Soft delete: the taxpayer is marked inactive and rejected by future calculations
// @Tags         taxpayers
// @Produce      json
// @Param        id   path      string  true  "Taxpayer ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/taxpayers/{id} [delete]
func (h *TaxPayerHandler) DeactivateTaxPayer(c *gin.Context) {
	if err := h.taxPayerService.DeactivateTaxPayer(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": true}))
}
