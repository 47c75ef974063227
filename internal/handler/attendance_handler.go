package handler

import (
	"net/http"

	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	attendance service.AttendanceService
	guard      *middleware.Authenticator
}

func NewAttendanceHandler(attendance service.AttendanceService, guard *middleware.Authenticator) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, guard: guard}
}

func (h *AttendanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	writers := h.guard.RequireRole(writerRoles...)

	g := router.Group("/asistencias", h.guard.Authenticate())
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", writers, h.Create)
		g.POST("/entrada", writers, h.CheckIn)
		g.POST("/salida", writers, h.CheckOut)
		g.PUT("/:id", writers, h.Update)
		g.DELETE("/:id", writers, h.Delete)
	}
}

// Create handles POST /asistencias
// @Summary      Register attendance
// @Description  One row per employee and day; hora_salida must be after hora_entrada
// @Tags         asistencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAttendanceRequest  true  "Attendance"
// @Success      201      {object}  response.Response{data=model.Attendance}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/asistencias [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	var req service.CreateAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendance.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, a))
}

// CheckIn handles POST /asistencias/entrada
// @Summary      Clock in
// @Description  Opens the day of the employee; fecha and hora default to now
// @Tags         asistencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ClockRequest  true  "Clock"
// @Success      201      {object}  response.Response{data=model.Attendance}
// @Failure      409      {object}  response.Response
// @Router       /api/asistencias/entrada [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req service.ClockRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendance.CheckIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, a))
}

// CheckOut handles POST /asistencias/salida
// @Summary      Clock out
// @Tags         asistencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ClockRequest  true  "Clock"
// @Success      200      {object}  response.Response{data=model.Attendance}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/asistencias/salida [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req service.ClockRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendance.CheckOut(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, a))
}

// List handles GET /asistencias
// @Summary      List attendance
// @Tags         asistencias
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/asistencias [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.attendance.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// Get handles GET /asistencias/:id
// @Summary      Get attendance
// @Tags         asistencias
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Attendance ID"
// @Success      200  {object}  response.Response{data=model.Attendance}
// @Failure      404  {object}  response.Response
// @Router       /api/asistencias/{id} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.attendance.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, a))
}

// Update handles PUT /asistencias/:id
// @Summary      Update attendance
// @Tags         asistencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                              true  "Attendance ID"
// @Param        payload  body      service.UpdateAttendanceRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Attendance}
// @Failure      404      {object}  response.Response
// @Router       /api/asistencias/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendance.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, a))
}

// Delete handles DELETE /asistencias/:id
// @Summary      Delete attendance
// @Tags         asistencias
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Attendance ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/asistencias/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.attendance.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "asistencia", id)
}
