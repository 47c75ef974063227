package handler

import (
	"net/http"
	"strconv"

	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type PayrollHandler struct {
	payrolls service.PayrollService
	guard    *middleware.Authenticator
}

func NewPayrollHandler(payrolls service.PayrollService, guard *middleware.Authenticator) *PayrollHandler {
	return &PayrollHandler{payrolls: payrolls, guard: guard}
}

// periodQuery selects one payroll month, e.g. ?periodo=2024-05
type periodQuery struct {
	Period string `form:"periodo" binding:"required,periodo_mes"`
}

func (h *PayrollHandler) RegisterRoutes(router *gin.RouterGroup) {
	writers := h.guard.RequireRole(writerRoles...)

	g := router.Group("/nominas", h.guard.Authenticate())
	{
		g.GET("", h.List)
		g.GET("/periodo", h.Period)
		g.GET("/:id", h.Get)
		g.POST("", writers, h.Create)
		g.PUT("/:id", writers, h.Update)
		g.DELETE("/:id", writers, h.Delete)
	}
}

// Create handles POST /nominas
// @Summary      Create payroll
// @Description  salario_neto = salario_base + bonificaciones - deducciones. One payroll per employee and month.
// @Tags         nominas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePayrollRequest  true  "Payroll"
// @Success      201      {object}  response.Response{data=model.Payroll}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/nominas [post]
func (h *PayrollHandler) Create(c *gin.Context) {
	var req service.CreatePayrollRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.payrolls.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, p))
}

// List handles GET /nominas
// @Summary      List payrolls
// @Tags         nominas
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/nominas [get]
func (h *PayrollHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.payrolls.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// Period handles GET /nominas/periodo
// @Summary      Payrolls of a month
// @Description  All payrolls of the month with their totals
// @Tags         nominas
// @Produce      json
// @Security     BearerAuth
// @Param        periodo  query  string  true  "Month as YYYY-MM"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/nominas/periodo [get]
func (h *PayrollHandler) Period(c *gin.Context) {
	var q periodQuery
	if !bindQuery(c, &q) {
		return
	}
	// periodo_mes guarantees YYYY-MM
	year, _ := strconv.Atoi(q.Period[:4])
	month, _ := strconv.Atoi(q.Period[5:])

	items, totals, err := h.payrolls.Period(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"nominas": items, "totales": totals}))
}

// Get handles GET /nominas/:id
// @Summary      Get payroll
// @Tags         nominas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Payroll ID"
// @Success      200  {object}  response.Response{data=model.Payroll}
// @Failure      404  {object}  response.Response
// @Router       /api/nominas/{id} [get]
func (h *PayrollHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.payrolls.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p))
}

// Update handles PUT /nominas/:id
// @Summary      Update payroll
// @Description  salario_neto is recomputed from the merged amounts
// @Tags         nominas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                           true  "Payroll ID"
// @Param        payload  body      service.UpdatePayrollRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Payroll}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/nominas/{id} [put]
func (h *PayrollHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePayrollRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.payrolls.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p))
}

// Delete handles DELETE /nominas/:id
// @Summary      Delete payroll
// @Tags         nominas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Payroll ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/nominas/{id} [delete]
func (h *PayrollHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.payrolls.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "nomina", id)
}
