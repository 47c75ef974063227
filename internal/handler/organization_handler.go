package handler

import (
	"net/http"

	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	departments service.DepartmentService
	positions   service.PositionService
	guard       *middleware.Authenticator
}

// NewOrganizationHandler serves /departamentos and /puestos
func NewOrganizationHandler(departments service.DepartmentService, positions service.PositionService, guard *middleware.Authenticator) *OrganizationHandler {
	return &OrganizationHandler{departments: departments, positions: positions, guard: guard}
}

func (h *OrganizationHandler) RegisterRoutes(router *gin.RouterGroup) {
	writers := h.guard.RequireRole(writerRoles...)

	depts := router.Group("/departamentos", h.guard.Authenticate())
	{
		depts.GET("", h.ListDepartments)
		depts.GET("/:id", h.GetDepartment)
		depts.POST("", writers, h.CreateDepartment)
		depts.PUT("/:id", writers, h.UpdateDepartment)
		depts.DELETE("/:id", writers, h.DeleteDepartment)
	}

	positions := router.Group("/puestos", h.guard.Authenticate())
	{
		positions.GET("", h.ListPositions)
		positions.GET("/:id", h.GetPosition)
		positions.POST("", writers, h.CreatePosition)
		positions.PUT("/:id", writers, h.UpdatePosition)
		positions.DELETE("/:id", writers, h.DeletePosition)
	}
}

// CreateDepartment handles POST /departamentos
// @Summary      Create department
// @Tags         departamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDepartmentRequest  true  "Department"
// @Success      201      {object}  response.Response{data=model.Department}
// @Failure      409      {object}  response.Response
// @Router       /api/departamentos [post]
func (h *OrganizationHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	dept, err := h.departments.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, dept))
}

// ListDepartments handles GET /departamentos
// @Summary      List departments
// @Tags         departamentos
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/departamentos [get]
func (h *OrganizationHandler) ListDepartments(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.departments.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// GetDepartment handles GET /departamentos/:id
// @Summary      Get department
// @Description  Includes the number of employees assigned
// @Tags         departamentos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Department ID"
// @Success      200  {object}  response.Response{data=service.DepartmentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/departamentos/{id} [get]
func (h *OrganizationHandler) GetDepartment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dept, err := h.departments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dept))
}

// UpdateDepartment handles PUT /departamentos/:id
// @Summary      Update department
// @Tags         departamentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                              true  "Department ID"
// @Param        payload  body      service.UpdateDepartmentRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Department}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/departamentos/{id} [put]
func (h *OrganizationHandler) UpdateDepartment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	dept, err := h.departments.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dept))
}

// DeleteDepartment handles DELETE /departamentos/:id
// @Summary      Delete department
// @Description  Employees of the department are kept without one
// @Tags         departamentos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Department ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/departamentos/{id} [delete]
func (h *OrganizationHandler) DeleteDepartment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.departments.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "departamento", id)
}

// CreatePosition handles POST /puestos
// @Summary      Create position
// @Tags         puestos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePositionRequest  true  "Position"
// @Success      201      {object}  response.Response{data=model.Position}
// @Failure      422      {object}  response.Response
// @Router       /api/puestos [post]
func (h *OrganizationHandler) CreatePosition(c *gin.Context) {
	var req service.CreatePositionRequest
	if !bindJSON(c, &req) {
		return
	}
	pos, err := h.positions.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, pos))
}

// ListPositions handles GET /puestos
// @Summary      List positions
// @Tags         puestos
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/puestos [get]
func (h *OrganizationHandler) ListPositions(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.positions.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// GetPosition handles GET /puestos/:id
// @Summary      Get position
// @Description  Includes the roles granted to the position
// @Tags         puestos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Position ID"
// @Success      200  {object}  response.Response{data=model.Position}
// @Failure      404  {object}  response.Response
// @Router       /api/puestos/{id} [get]
func (h *OrganizationHandler) GetPosition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pos, err := h.positions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pos))
}

// UpdatePosition handles PUT /puestos/:id
// @Summary      Update position
// @Description  rol_ids replaces the role assignment when present
// @Tags         puestos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                            true  "Position ID"
// @Param        payload  body      service.UpdatePositionRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Position}
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/puestos/{id} [put]
func (h *OrganizationHandler) UpdatePosition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePositionRequest
	if !bindJSON(c, &req) {
		return
	}
	pos, err := h.positions.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pos))
}

// DeletePosition handles DELETE /puestos/:id
// @Summary      Delete position
// @Tags         puestos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Position ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/puestos/{id} [delete]
func (h *OrganizationHandler) DeletePosition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.positions.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "puesto", id)
}
