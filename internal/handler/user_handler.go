package handler

import (
	"net/http"
	"strconv"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	guard       *middleware.Authenticator
	limiter     *middleware.LoginRateLimiter
}

// NewUserHandler sets up the routing dependencies for User endpoints.
// limiter may be nil.
func NewUserHandler(userService service.UserService, guard *middleware.Authenticator, limiter *middleware.LoginRateLimiter) *UserHandler {
	return &UserHandler{userService: userService, guard: guard, limiter: limiter}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/usuarios")

	// Public routes
	g.POST("/login", h.limiter.Middleware(), h.Login)
	g.POST("/logout", h.Logout)

	authed := g.Group("", h.guard.Authenticate())
	authed.GET("/me", h.GetMe)

	admin := authed.Group("", h.guard.RequireRole(adminRoles...))
	{
		admin.GET("", h.ListUsers)
		admin.GET("/:id", h.GetUserByID)
		admin.POST("", h.CreateUser)
		admin.PUT("/:id", h.UpdateUser)
		admin.DELETE("/:id", h.DeleteUser)
		admin.PUT("/:id/rol", h.ChangeRole)
		admin.PUT("/:id/activo", h.SetActive)
		admin.GET("/:id/historial-roles", h.RoleHistory)
	}
}

// Login handles POST /usuarios/login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password. The token is also set as an HttpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest  true  "Login Credentials"
// @Success      200      {object}  service.LoginResult
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /api/usuarios/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	setTokenCookie(c, res.AccessToken, time.Until(res.ExpiresAt))
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         res.User,
		"access_token": res.AccessToken,
		"token_type":   res.TokenType,
		"expires_at":   res.ExpiresAt,
	})
}

// Logout handles POST /usuarios/logout to clear the auth cookie
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/usuarios/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	setTokenCookie(c, "", -time.Second)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// GetMe handles GET /usuarios/me
// @Summary      Get current user
// @Description  The authenticated user with the permission codes of their role
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/usuarios/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	me, err := h.userService.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, me))
}

// CreateUser handles POST /usuarios
// @Summary      Create a new user
// @Description  Hashes the password; the account is linked to the employee with the same email
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/usuarios [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// ListUsers handles GET /usuarios
// @Summary      List users
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        rol     query     string  false  "Role filter"
// @Param        activo  query     bool    false  "Active filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/usuarios [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.UserListFilter{Role: c.Query("rol"), Page: p.Page, Limit: p.Limit}
	if raw := c.Query("activo"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, apperror.ValidationFields(map[string]string{"activo": "must be true or false"}))
			return
		}
		filter.Active = &active
	}

	users, total, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, users, total, p.Page, p.Limit))
}

// GetUserByID handles GET /usuarios/:id
// @Summary      Get user by ID
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response{data=model.User}
// @Failure      404  {object}  response.Response
// @Router       /api/usuarios/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// UpdateUser handles PUT /usuarios/:id
// @Summary      Update user
// @Description  Partial update of name, email, password and employee link
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                        true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Update User Payload"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/usuarios/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ChangeRole handles PUT /usuarios/:id/rol
// @Summary      Change user role
// @Description  The change is written to historial_roles
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                        true  "User ID"
// @Param        payload  body      service.ChangeRoleRequest  true  "New role"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/usuarios/{id}/rol [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// SetActive handles PUT /usuarios/:id/activo
// @Summary      Activate or deactivate user
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                       true  "User ID"
// @Param        payload  body      service.SetActiveRequest  true  "State"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      409      {object}  response.Response
// @Router       /api/usuarios/{id}/activo [put]
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// RoleHistory handles GET /usuarios/:id/historial-roles
// @Summary      Role history
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response{data=[]model.RoleChange}
// @Failure      404  {object}  response.Response
// @Router       /api/usuarios/{id}/historial-roles [get]
func (h *UserHandler) RoleHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	history, err := h.userService.RoleHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// DeleteUser handles DELETE /usuarios/:id
// @Summary      Delete user
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/usuarios/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.userService.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "usuario", id)
}

// setTokenCookie stores the access token as an HttpOnly cookie. A negative
// ttl removes it.
func setTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)

	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetCookie("access_token", token, maxAge, "/", "", secure, true)
}
