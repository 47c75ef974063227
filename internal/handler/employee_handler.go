package handler

import (
	"net/http"

	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	employees   service.EmployeeService
	contracts   service.ContractService
	attendance  service.AttendanceService
	payrolls    service.PayrollService
	vacations   service.VacationService
	evaluations service.EvaluationService
	trainings   service.TrainingService
	guard       *middleware.Authenticator
}

// NewEmployeeHandler serves /empleados and the per-employee record listings
func NewEmployeeHandler(svc *service.Services, guard *middleware.Authenticator) *EmployeeHandler {
	return &EmployeeHandler{
		employees:   svc.Employees,
		contracts:   svc.Contracts,
		attendance:  svc.Attendance,
		payrolls:    svc.Payrolls,
		vacations:   svc.Vacations,
		evaluations: svc.Evaluations,
		trainings:   svc.Trainings,
		guard:       guard,
	}
}

func (h *EmployeeHandler) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/empleados", h.guard.Authenticate())
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.GET("/:id/resumen", h.Summary)
		g.GET("/:id/contratos", h.Contracts)
		g.GET("/:id/asistencias", h.Attendance)
		g.GET("/:id/nominas", h.Payrolls)
		g.GET("/:id/vacaciones", h.Vacations)
		g.GET("/:id/evaluaciones", h.Evaluations)
		g.GET("/:id/capacitaciones", h.Trainings)

		g.POST("", h.guard.RequireRole(writerRoles...), h.Create)
		g.PUT("/:id", h.guard.RequireRole(writerRoles...), h.Update)
		g.DELETE("/:id", h.guard.RequireRole(writerRoles...), h.Delete)
	}
}

// Create handles POST /empleados
// @Summary      Create employee
// @Description  Creates an employee. Department and position must exist.
// @Tags         empleados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateEmployeeRequest  true  "Employee"
// @Success      201      {object}  response.Response{data=model.Employee}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/empleados [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	emp, err := h.employees.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, emp))
}

// List handles GET /empleados
// @Summary      List employees
// @Description  Paginated listing with accent-insensitive search over name and email
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        q                query  string  false  "Search text"
// @Param        departamento_id  query  int     false  "Department filter"
// @Param        estado           query  string  false  "activo or inactivo"
// @Param        page             query  int     false  "Page"
// @Param        limit            query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/empleados [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	deptID, ok := optionalUintQuery(c, "departamento_id")
	if !ok {
		return
	}
	p := pagination.Parse(c)
	items, total, err := h.employees.List(c.Request.Context(), service.EmployeeListFilter{
		Search:       c.Query("q"),
		DepartmentID: deptID,
		Status:       c.Query("estado"),
		Page:         p.Page,
		Limit:        p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// Get handles GET /empleados/:id
// @Summary      Get employee
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  response.Response{data=model.Employee}
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	emp, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, emp))
}

// Summary handles GET /empleados/:id/resumen
// @Summary      Employee summary
// @Description  Record counts, active contract and average evaluation score
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  response.Response{data=service.EmployeeSummary}
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id}/resumen [get]
func (h *EmployeeHandler) Summary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	summary, err := h.employees.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// Update handles PUT /empleados/:id
// @Summary      Update employee
// @Description  Partial update, only the supplied fields change
// @Tags         empleados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                            true  "Employee ID"
// @Param        payload  body      service.UpdateEmployeeRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Employee}
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/empleados/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	emp, err := h.employees.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, emp))
}

// Delete handles DELETE /empleados/:id
// @Summary      Delete employee
// @Description  Removes the employee and all of their records
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.employees.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "empleado", id)
}

// Contracts handles GET /empleados/:id/contratos
// @Summary      Contracts of an employee
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  response.Response{data=[]model.Contract}
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id}/contratos [get]
func (h *EmployeeHandler) Contracts(c *gin.Context) {
	listChildren(c, h.contracts.ListByEmployee)
}

// Attendance handles GET /empleados/:id/asistencias
// @Summary      Attendance of an employee
// @Description  With desde/hasta the listing is limited to that date range
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id     path   int     true   "Employee ID"
// @Param        desde  query  string  false  "From (YYYY-MM-DD)"
// @Param        hasta  query  string  false  "To (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=[]model.Attendance}
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id}/asistencias [get]
func (h *EmployeeHandler) Attendance(c *gin.Context) {
	if c.Query("desde") == "" && c.Query("hasta") == "" {
		listChildren(c, h.attendance.ListByEmployee)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	from, ok := dateQuery(c, "desde", minDate)
	if !ok {
		return
	}
	to, ok := dateQuery(c, "hasta", maxDate)
	if !ok {
		return
	}
	items, err := h.attendance.ListByRange(c.Request.Context(), id, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// Payrolls handles GET /empleados/:id/nominas
// @Summary      Payrolls of an employee
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  response.Response{data=[]model.Payroll}
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id}/nominas [get]
func (h *EmployeeHandler) Payrolls(c *gin.Context) {
	listChildren(c, h.payrolls.ListByEmployee)
}

// Vacations handles GET /empleados/:id/vacaciones
// @Summary      Leave requests of an employee
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  response.Response{data=[]model.Vacation}
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id}/vacaciones [get]
func (h *EmployeeHandler) Vacations(c *gin.Context) {
	listChildren(c, h.vacations.ListByEmployee)
}

// Evaluations handles GET /empleados/:id/evaluaciones
// @Summary      Evaluations of an employee
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  response.Response{data=[]model.Evaluation}
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id}/evaluaciones [get]
func (h *EmployeeHandler) Evaluations(c *gin.Context) {
	listChildren(c, h.evaluations.ListByEmployee)
}

// Trainings handles GET /empleados/:id/capacitaciones
// @Summary      Trainings of an employee
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee ID"
// @Success      200  {object}  response.Response{data=[]model.Training}
// @Failure      404  {object}  response.Response
// @Router       /api/empleados/{id}/capacitaciones [get]
func (h *EmployeeHandler) Trainings(c *gin.Context) {
	listChildren(c, h.trainings.ListByEmployee)
}
