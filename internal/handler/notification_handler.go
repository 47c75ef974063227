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

// NotificationHandler serves the notifications of the authenticated user
type NotificationHandler struct {
	notifications service.NotificationService
	guard         *middleware.Authenticator
}

func NewNotificationHandler(notifications service.NotificationService, guard *middleware.Authenticator) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, guard: guard}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/notificaciones", h.guard.Authenticate())
	{
		g.GET("", h.ListMine)
		g.GET("/no-leidas", h.UnreadCount)
		g.PUT("/leer-todas", h.MarkAllRead)
		g.PUT("/:id/leida", h.MarkRead)
		g.DELETE("/:id", h.Delete)
		g.POST("", h.guard.RequireRole(writerRoles...), h.Create)
	}
}

// Create handles POST /notificaciones
// @Summary      Send notification
// @Description  Stores the notification and pushes it to the user's open websockets
// @Tags         notificaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateNotificationRequest  true  "Notification"
// @Success      201      {object}  response.Response{data=model.Notification}
// @Failure      422      {object}  response.Response
// @Router       /api/notificaciones [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req service.CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notifications.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, n))
}

// ListMine handles GET /notificaciones
// @Summary      My notifications
// @Tags         notificaciones
// @Produce      json
// @Security     BearerAuth
// @Param        no_leidas  query  bool  false  "Only unread"
// @Param        page       query  int   false  "Page"
// @Param        limit      query  int   false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/notificaciones [get]
func (h *NotificationHandler) ListMine(c *gin.Context) {
	p := pagination.Parse(c)
	unreadOnly, _ := strconv.ParseBool(c.Query("no_leidas"))

	items, total, err := h.notifications.ListMine(c.Request.Context(), middleware.CurrentUserID(c), unreadOnly, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// UnreadCount handles GET /notificaciones/no-leidas
// @Summary      Unread notification count
// @Tags         notificaciones
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/notificaciones/no-leidas [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"no_leidas": count}))
}

// MarkRead handles PUT /notificaciones/:id/leida
// @Summary      Mark notification read
// @Tags         notificaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notificaciones/{id}/leida [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updated, err := h.notifications.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !updated {
		respondDeleted(c, false, "notificacion", id)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id, "leida": true}))
}

// MarkAllRead handles PUT /notificaciones/leer-todas
// @Summary      Mark all notifications read
// @Tags         notificaciones
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/notificaciones/leer-todas [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"actualizadas": n}))
}

// Delete handles DELETE /notificaciones/:id
// @Summary      Delete notification
// @Tags         notificaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notificaciones/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.notifications.Delete(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "notificacion", id)
}
