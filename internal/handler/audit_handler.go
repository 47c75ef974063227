package handler

import (
	"net/http"

	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	guard        *middleware.Authenticator
}

func NewAuditHandler(auditService service.AuditService, guard *middleware.Authenticator) *AuditHandler {
	return &AuditHandler{auditService: auditService, guard: guard}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/auditoria", h.guard.Authenticate(), h.guard.RequireRole(writerRoles...))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs lists audit rows, newest first
// @Summary      Get audit logs
// @Description  Filterable by entity, entity id and action
// @Tags         auditoria
// @Security     BearerAuth
// @Produce      json
// @Param        entidad     query     string  false  "Entity, e.g. contratos"
// @Param        entidad_id  query     string  false  "Entity id"
// @Param        accion      query     string  false  "Action, e.g. CLOSE_CONTRACT"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=response.Page}
// @Router       /api/auditoria [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), service.AuditLogFilter{
		Entity:   c.Query("entidad"),
		EntityID: c.Query("entidad_id"),
		Action:   c.Query("accion"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, p.Page, p.Limit))
}
