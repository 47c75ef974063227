package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/auth"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"

	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name       string `json:"nombre" binding:"required,max=150"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"rol" binding:"omitempty,max=50"`
	EmployeeID *uint  `json:"empleado_id"`
}

type UpdateUserRequest struct {
	Name       *string `json:"nombre" binding:"omitempty,max=150"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Password   *string `json:"password" binding:"omitempty,min=6"`
	EmployeeID *uint   `json:"empleado_id"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangeRoleRequest struct {
	Role   string `json:"rol" binding:"required,max=50"`
	Reason string `json:"motivo"`
}

type SetActiveRequest struct {
	Active *bool `json:"activo" binding:"required"`
}

// UserSummary is the public part of a user returned on login
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Role  string `json:"rol"`
}

// LoginResult carries the issued access token
type LoginResult struct {
	User        UserSummary `json:"data"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// MeResponse describes the caller with the permissions of its role
type MeResponse struct {
	*model.User
	Permissions []string `json:"permisos"`
}

// UserListFilter is the query of GET /api/usuarios
type UserListFilter struct {
	Role   string
	Active *bool
	Page   int
	Limit  int
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (*model.User, error)
	Login(ctx context.Context, req LoginUserRequest) (*LoginResult, error)
	Me(ctx context.Context, id uint) (*MeResponse, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context, filter UserListFilter) ([]model.User, int64, error)
	Update(ctx context.Context, id uint, req UpdateUserRequest) (*model.User, error)
	ChangeRole(ctx context.Context, id uint, req ChangeRoleRequest) (*model.User, error)
	RoleHistory(ctx context.Context, id uint) ([]model.RoleChange, error)
	SetActive(ctx context.Context, id uint, active bool) (*model.User, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type userService struct {
	repos  *repository.Repositories
	tokens *auth.TokenManager
	audit  auditor
	pub    events.Publisher
	now    func() time.Time
}

// NewUserService returns a new instance of UserService
func NewUserService(repos *repository.Repositories, tokens *auth.TokenManager, pub events.Publisher) UserService {
	return &userService{repos: repos, tokens: tokens, audit: auditor{repo: repos.Audit}, pub: pub, now: time.Now}
}

var errBadCredentials = apperror.Unauthorized("invalid email or password")

func (s *userService) requireRole(ctx context.Context, name string) error {
	if _, err := s.repos.Roles.FindByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ReferenceNotFound("rol", name)
		}
		return apperror.Classify(err, "check role")
	}
	return nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, exceptID uint) error {
	existing, err := s.repos.Users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Classify(err, "check user email")
	}
	if existing.ID != exceptID {
		return apperror.Conflict("a user with email %s already exists", email)
	}
	return nil
}

// mirrorEmployee returns the id of the employee sharing the email, if any
func (s *userService) mirrorEmployee(ctx context.Context, email string) (*uint, error) {
	emp, err := s.repos.Employees.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Classify(err, "find mirrored employee")
	}
	return &emp.ID, nil
}

// ensureAdminRemains refuses to remove the last active administrator
func (s *userService) ensureAdminRemains(ctx context.Context, user *model.User) error {
	if user.Role != model.RoleAdmin || !user.Active {
		return nil
	}
	active := true
	_, total, err := s.repos.Users.Search(ctx, repository.UserFilter{Role: model.RoleAdmin, Active: &active, Page: 1, Limit: 1})
	if err != nil {
		return apperror.Classify(err, "count administrators")
	}
	if total <= 1 {
		return apperror.Conflict("user %d is the last active administrator", user.ID)
	}
	return nil
}

func (s *userService) Create(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = model.RoleEmployee
	}
	if err := s.requireRole(ctx, role); err != nil {
		return nil, err
	}
	if req.EmployeeID != nil {
		if err := requireReference(ctx, s.repos.Employees, "empleado", *req.EmployeeID); err != nil {
			return nil, err
		}
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, apperror.ValidationFields(map[string]string{"password": err.Error()})
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "hash password")
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		EmployeeID:   req.EmployeeID,
	}
	if user.EmployeeID == nil {
		if user.EmployeeID, err = s.mirrorEmployee(ctx, email); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, apperror.Classify(err, "create user")
	}

	emit(ctx, s.pub, EntityUser, events.ActionCreated, user.ID, user)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*LoginResult, error) {
	user, err := s.repos.Users.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, apperror.Classify(err, "load user")
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, errBadCredentials
	}
	if !user.Active {
		return nil, apperror.Unauthorized("user is deactivated")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "issue token")
	}
	if err := s.repos.Users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, apperror.Classify(err, "record last login")
	}

	return &LoginResult{
		User:        UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *userService) Me(ctx context.Context, id uint) (*MeResponse, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.repos.Roles.GetPermissionsByRoleName(ctx, user.Role)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Classify(err, "load permissions")
	}
	if perms == nil {
		perms = []string{}
	}
	return &MeResponse{User: user, Permissions: perms}, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "usuario", id)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filter UserListFilter) ([]model.User, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	users, total, err := s.repos.Users.Search(ctx, repository.UserFilter{
		Role:   filter.Role,
		Active: filter.Active,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, apperror.Classify(err, "list users")
	}
	return users, total, nil
}

func (s *userService) Update(ctx context.Context, id uint, req UpdateUserRequest) (*model.User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.ValidationFields(map[string]string{"nombre": "must not be empty"})
		}
		fields["nombre"] = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != current.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
			fields["email"] = email
			if req.EmployeeID == nil && current.EmployeeID == nil {
				mirrored, err := s.mirrorEmployee(ctx, email)
				if err != nil {
					return nil, err
				}
				if mirrored != nil {
					fields["empleado_id"] = *mirrored
				}
			}
		}
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperror.ValidationFields(map[string]string{"password": err.Error()})
		}
		if err != nil {
			return nil, apperror.Wrap(apperror.CodeInternal, err, "hash password")
		}
		fields["password_hash"] = hash
	}
	if req.EmployeeID != nil {
		if err := requireReference(ctx, s.repos.Employees, "empleado", *req.EmployeeID); err != nil {
			return nil, err
		}
		fields["empleado_id"] = *req.EmployeeID
	}
	if len(fields) == 0 {
		return current, nil
	}

	if err := s.repos.Users.UpdateFields(ctx, id, fields); err != nil {
		return nil, loadErr(err, "usuario", id)
	}
	delete(fields, "password_hash")
	emit(ctx, s.pub, EntityUser, events.ActionUpdated, id, fields)
	return s.Get(ctx, id)
}

// ChangeRole writes the historial_roles row and the audit row in the same
// transaction as the update
func (s *userService) ChangeRole(ctx context.Context, id uint, req ChangeRoleRequest) (*model.User, error) {
	role := strings.TrimSpace(req.Role)
	if err := s.requireRole(ctx, role); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Role == role {
		return current, nil
	}
	if err := s.ensureAdminRemains(ctx, current); err != nil {
		return nil, err
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Users.UpdateFields(txCtx, id, map[string]interface{}{"rol": role}); err != nil {
			return loadErr(err, "usuario", id)
		}
		if err := s.repos.RoleChanges.Log(txCtx, &model.RoleChange{
			UserID:       id,
			PreviousRole: current.Role,
			NewRole:      role,
			ChangedBy:    auth.ActorID(txCtx),
			Reason:       strings.TrimSpace(req.Reason),
		}); err != nil {
			return apperror.Classify(err, "log role change")
		}
		return s.audit.record(txCtx, model.ActionChangeUserRole, EntityUser, id, map[string]interface{}{
			"rol_anterior": current.Role,
			"rol_nuevo":    role,
		})
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityUser, events.ActionUpdated, id, map[string]interface{}{"rol": role})
	return s.Get(ctx, id)
}

func (s *userService) RoleHistory(ctx context.Context, id uint) ([]model.RoleChange, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	changes, err := s.repos.RoleChanges.ListByUser(ctx, id)
	if err != nil {
		return nil, apperror.Classify(err, "list role history")
	}
	return changes, nil
}

func (s *userService) SetActive(ctx context.Context, id uint, active bool) (*model.User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Active == active {
		return current, nil
	}
	if !active {
		if err := s.ensureAdminRemains(ctx, current); err != nil {
			return nil, err
		}
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Users.UpdateFields(txCtx, id, map[string]interface{}{"activo": active}); err != nil {
			return loadErr(err, "usuario", id)
		}
		if active {
			return nil
		}
		return s.audit.record(txCtx, model.ActionDeactivateUser, EntityUser, id, map[string]interface{}{"email": current.Email})
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityUser, events.ActionUpdated, id, map[string]interface{}{"activo": active})
	return s.Get(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id uint) (bool, error) {
	current, err := s.repos.Users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Classify(err, "load user")
	}
	if err := s.ensureAdminRemains(ctx, current); err != nil {
		return false, err
	}

	deleted, err := s.repos.Users.Delete(ctx, id)
	if err != nil {
		return false, apperror.Classify(err, "delete user")
	}
	if deleted {
		emit(ctx, s.pub, EntityUser, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}
