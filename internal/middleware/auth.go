package middleware

import (
	"errors"
	"net/http"
	"strings"

	"rrhh/internal/apperror"
	"rrhh/internal/auth"
	"rrhh/internal/logger"
	"rrhh/internal/model"
	"rrhh/internal/repository"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// gin context keys
const (
	KeyUserID   = "userID"
	KeyUserRole = "userRole"
	KeyUser     = "user"
)

// Authenticator verifies bearer tokens and enforces role and permission
// checks. The user row is loaded on every request.
type Authenticator struct {
	tokens *auth.TokenManager
	users  repository.UserRepository
	roles  repository.RoleRepository
}

func NewAuthenticator(tokens *auth.TokenManager, users repository.UserRepository, roles repository.RoleRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, roles: roles}
}

// Authenticate rejects the request with 401 unless it carries a valid token
// of an existing, active user
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			abort(c, err)
			return
		}

		claims, err := a.tokens.Parse(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abort(c, apperror.Unauthorized("token expired"))
				return
			}
			abort(c, apperror.Unauthorized("invalid token"))
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			abort(c, apperror.Unauthorized("invalid token"))
			return
		}

		ctx := c.Request.Context()
		user, err := a.users.FindByID(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abort(c, apperror.Unauthorized("user not found"))
			return
		}
		if err != nil {
			abort(c, apperror.Classify(err, "load user"))
			return
		}
		if !user.Active {
			abort(c, apperror.Unauthorized("user is deactivated"))
			return
		}

		ctx = auth.WithActor(ctx, auth.Actor{ID: user.ID, Role: user.Role})
		ctx = logger.WithLogger(ctx, map[string]interface{}{"user_id": user.ID})
		c.Request = c.Request.WithContext(ctx)

		c.Set(KeyUserID, user.ID)
		c.Set(KeyUserRole, user.Role)
		c.Set(KeyUser, user)
		c.Next()
	}
}

// RequireRole lets the request through when the user's role is in allowedRoles
func (a *Authenticator) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyUserRole)
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abort(c, apperror.Forbidden("access denied: insufficient role"))
	}
}

// RequirePermission checks every code against rol_permisos. Admin always passes.
func (a *Authenticator) RequirePermission(requiredPerms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyUserRole)
		if role == model.RoleAdmin {
			c.Next()
			return
		}
		for _, code := range requiredPerms {
			ok, err := a.roles.HasPermission(c.Request.Context(), role, code)
			if err != nil {
				abort(c, apperror.Classify(err, "verify permissions"))
				return
			}
			if !ok {
				abort(c, apperror.Forbidden("access denied: missing permission '"+code+"'"))
				return
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the id stored by Authenticate
func CurrentUserID(c *gin.Context) uint {
	id, _ := c.Get(KeyUserID)
	userID, _ := id.(uint)
	return userID
}

// CurrentUser returns the user loaded by Authenticate
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// bearerToken reads the Authorization header, falling back to the
// access_token cookie
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
			return cookie, nil
		}
		return "", apperror.Unauthorized("authorization is missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperror.Unauthorized("invalid authorization format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}

func abort(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	status := apperror.HTTPStatus(code)
	message := err.Error()
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("auth middleware failed")
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, response.ErrorWithCode(status, string(code), message, nil))
}
