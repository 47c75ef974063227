package handler

import (
	"net/http"

	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type VacationHandler struct {
	vacations service.VacationService
	guard     *middleware.Authenticator
}

func NewVacationHandler(vacations service.VacationService, guard *middleware.Authenticator) *VacationHandler {
	return &VacationHandler{vacations: vacations, guard: guard}
}

func (h *VacationHandler) RegisterRoutes(router *gin.RouterGroup) {
	writers := h.guard.RequireRole(writerRoles...)
	reviewers := h.guard.RequirePermission("vacaciones.approve")

	g := router.Group("/vacaciones", h.guard.Authenticate())
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", writers, h.Create)
		g.PUT("/:id", writers, h.Update)
		g.DELETE("/:id", writers, h.Delete)
		g.PUT("/:id/aprobar", reviewers, h.Approve)
		g.PUT("/:id/rechazar", reviewers, h.Reject)
	}
}

// Create handles POST /vacaciones
// @Summary      Request leave
// @Description  Creates a pending request; dias counts both ends of the range
// @Tags         vacaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateVacationRequest  true  "Leave request"
// @Success      201      {object}  response.Response{data=model.Vacation}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/vacaciones [post]
func (h *VacationHandler) Create(c *gin.Context) {
	var req service.CreateVacationRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.vacations.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, v))
}

// List handles GET /vacaciones
// @Summary      List leave requests
// @Tags         vacaciones
// @Produce      json
// @Security     BearerAuth
// @Param        estado  query  string  false  "pendiente, aprobada or rechazada"
// @Param        page    query  int     false  "Page"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/vacaciones [get]
func (h *VacationHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.vacations.List(c.Request.Context(), c.Query("estado"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// Get handles GET /vacaciones/:id
// @Summary      Get leave request
// @Tags         vacaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.Vacation}
// @Failure      404  {object}  response.Response
// @Router       /api/vacaciones/{id} [get]
func (h *VacationHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	v, err := h.vacations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, v))
}

// Update handles PUT /vacaciones/:id
// @Summary      Update leave request
// @Description  Only pending requests can change
// @Tags         vacaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                            true  "Request ID"
// @Param        payload  body      service.UpdateVacationRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Vacation}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/vacaciones/{id} [put]
func (h *VacationHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateVacationRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.vacations.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, v))
}

// Delete handles DELETE /vacaciones/:id
// @Summary      Delete leave request
// @Tags         vacaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vacaciones/{id} [delete]
func (h *VacationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.vacations.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "vacacion", id)
}

// Approve handles PUT /vacaciones/:id/aprobar
// @Summary      Approve leave request
// @Tags         vacaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.Vacation}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/vacaciones/{id}/aprobar [put]
func (h *VacationHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	v, err := h.vacations.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, v))
}

// Reject handles PUT /vacaciones/:id/rechazar
// @Summary      Reject leave request
// @Tags         vacaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                            true  "Request ID"
// @Param        payload  body      service.RejectVacationRequest  true  "Reason"
// @Success      200      {object}  response.Response{data=model.Vacation}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/vacaciones/{id}/rechazar [put]
func (h *VacationHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.RejectVacationRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.vacations.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, v))
}
