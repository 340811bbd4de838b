package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxengine/internal/service"
	"taxengine/pkg/pagination"
	"taxengine/pkg/response"
)

type TaxRuleHandler struct {
	ruleService service.TaxRuleService
}

func NewTaxRuleHandler(ruleService service.TaxRuleService) *TaxRuleHandler {
	return &TaxRuleHandler{ruleService: ruleService}
}

func (h *TaxRuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/tax-rules")
	{
		rules.GET("", h.ListRules)
		rules.GET("/active", h.ActiveRules)
		rules.GET("/:id", h.GetRule)
		rules.POST("", h.CreateRule)
		rules.PUT("/:id", h.UpdateRule)
		rules.DELETE("/:id", h.DeactivateRule)
	}
}

// ListRules godoc
// @Summary      List tax rules
// @Description  Lists tax rules, optionally filtered by type, active flag and effective date
// @Tags         tax-rules
// @Produce      json
// @Param        tax_type        query     string  false  "Filter by tax type (Income, Sales, Property, Corporate)"
// @Param        is_active       query     bool    false  "Filter by active flag"
// @Param        effective_date  query     string  false  "Only rules effective on this date (YYYY-MM-DD)"
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Paged}
// @Failure      400  {object}  response.Response
// @Router       /api/tax-rules [get]
func (h *TaxRuleHandler) ListRules(c *gin.Context) {
	params := pagination.Parse(c)

	query := service.RuleListQuery{
		TaxType:       c.Query("tax_type"),
		EffectiveDate: c.Query("effective_date"),
		Page:          params.Page,
		Limit:         params.Limit,
	}
	if raw, ok := c.GetQuery("is_active"); ok {
		active := raw == "true"
		query.IsActive = &active
	}

	rules, total, err := h.ruleService.ListRules(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessPaged(http.StatusOK, rules, total, params.Page, params.Limit))
}

// ActiveRules godoc
// @Summary      List rules in force
// @Description  Returns the active rules for a tax type on a date, in the order the engine applies them
// @Tags         tax-rules
// @Produce      json
// @Param        tax_type  query     string  true   "Tax type"
// @Param        date      query     string  false  "Effective date (YYYY-MM-DD, default today)"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tax-rules/active [get]
func (h *TaxRuleHandler) ActiveRules(c *gin.Context) {
	taxType := c.Query("tax_type")
	if taxType == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "tax_type is required"))
		return
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid date format (expected YYYY-MM-DD)"))
			return
		}
		date = parsed
	}

	rules, err := h.ruleService.ActiveRules(c.Request.Context(), taxType, date)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rules))
}

// GetRule godoc
// @Summary      Get a tax rule
// @Tags         tax-rules
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response{data=model.TaxRule}
// @Failure      404  {object}  response.Response
// @Router       /api/tax-rules/{id} [get]
func (h *TaxRuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// CreateRule godoc
// @Summary      Create a tax rule
// @Tags         tax-rules
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTaxRuleRequest  true  "Create Tax Rule Payload"
// @Success      201      {object}  response.Response{data=model.TaxRule}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-rules [post]
func (h *TaxRuleHandler) CreateRule(c *gin.Context) {
	var req service.CreateTaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// UpdateRule godoc
// @Summary      Update a tax rule
// @Tags         tax-rules
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Rule ID"
// @Param        payload  body      service.CreateTaxRuleRequest  true  "Update Tax Rule Payload"
// @Success      200      {object}  response.Response{data=model.TaxRule}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-rules/{id} [put]
func (h *TaxRuleHandler) UpdateRule(c *gin.Context) {
	var req service.UpdateTaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// DeactivateRule godoc
// @Summary      Deactivate a tax rule
// @Description  Soft delete: marks the rule inactive and closes its effective window
// @Tags         tax-rules
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/tax-rules/{id} [delete]
func (h *TaxRuleHandler) DeactivateRule(c *gin.Context) {
	if err := h.ruleService.DeactivateRule(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": true}))
}
