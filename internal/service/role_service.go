package service

import (
	"context"
	"errors"
	"strings"

	"rrhh/internal/apperror"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"
	"rrhh/internal/seed"

	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name          string `json:"nombre" binding:"required,max=50"`
	Description   string `json:"descripcion"`
	AccessLevel   int    `json:"nivel_acceso" binding:"omitempty,min=0,max=100"`
	PermissionIDs []uint `json:"permiso_ids"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"nombre" binding:"omitempty,max=50"`
	Description *string `json:"descripcion"`
	AccessLevel *int    `json:"nivel_acceso" binding:"omitempty,min=0,max=100"`
}

type UpdateRolePermissionsRequest struct {
	PermissionIDs []uint `json:"permiso_ids" binding:"required"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	GetRole(ctx context.Context, id uint) (*model.Role, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*model.Role, error)
	UpdateRole(ctx context.Context, id uint, req UpdateRoleRequest) (*model.Role, error)
	DeleteRole(ctx context.Context, id uint) (bool, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	UpdateRolePermissions(ctx context.Context, roleID uint, req UpdateRolePermissionsRequest) (*model.Role, error)
	GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error)
	SeedDefaultRolesAndPermissions(ctx context.Context, data *seed.Data) error
}

type roleService struct {
	repos *repository.Repositories
	audit auditor
	pub   events.Publisher
}

func NewRoleService(repos *repository.Repositories, pub events.Publisher) RoleService {
	return &roleService{repos: repos, audit: auditor{repo: repos.Audit}, pub: pub}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := s.repos.Roles.ListAll(ctx)
	if err != nil {
		return nil, apperror.Classify(err, "list roles")
	}
	return roles, nil
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.repos.Roles.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "rol", id)
	}
	return role, nil
}

func (s *roleService) ensureNameFree(ctx context.Context, name string, exceptID uint) error {
	existing, err := s.repos.Roles.FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Classify(err, "check role name")
	}
	if existing.ID != exceptID {
		return apperror.Conflict("role %q already exists", name)
	}
	return nil
}

func (s *roleService) checkPermissions(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	perms, err := s.repos.Roles.ListPermissions(ctx)
	if err != nil {
		return apperror.Classify(err, "load permissions")
	}
	known := make(map[uint]bool, len(perms))
	for _, p := range perms {
		known[p.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return apperror.ReferenceNotFound("permiso", id)
		}
	}
	return nil
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*model.Role, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		return nil, apperror.ValidationFields(map[string]string{"nombre": "required"})
	}
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	if err := s.checkPermissions(ctx, req.PermissionIDs); err != nil {
		return nil, err
	}

	role := &model.Role{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		AccessLevel: req.AccessLevel,
		IsSystem:    false,
	}
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Roles.Create(txCtx, role); err != nil {
			return apperror.Classify(err, "create role")
		}
		if err := s.repos.Roles.AssociatePermissions(txCtx, role.ID, req.PermissionIDs); err != nil {
			return apperror.Classify(err, "assign permissions")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityRole, events.ActionCreated, role.ID, map[string]interface{}{"nombre": role.Name})
	// Reload with permissions
	return s.GetRole(ctx, role.ID)
}

func (s *roleService) UpdateRole(ctx context.Context, id uint, req UpdateRoleRequest) (*model.Role, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.ToLower(strings.TrimSpace(*req.Name))
		if name != role.Name {
			if role.IsSystem {
				return nil, apperror.Conflict("system role %q cannot be renamed", role.Name)
			}
			if name == "" {
				return nil, apperror.ValidationFields(map[string]string{"nombre": "must not be empty"})
			}
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
			fields["nombre"] = name
		}
	}
	if req.Description != nil {
		fields["descripcion"] = strings.TrimSpace(*req.Description)
	}
	if req.AccessLevel != nil {
		fields["nivel_acceso"] = *req.AccessLevel
	}
	if len(fields) == 0 {
		return role, nil
	}

	if err := s.repos.Roles.UpdateFields(ctx, id, fields); err != nil {
		return nil, loadErr(err, "rol", id)
	}
	emit(ctx, s.pub, EntityRole, events.ActionUpdated, id, fields)
	return s.GetRole(ctx, id)
}

// DeleteRole refuses system roles and roles still assigned to users
func (s *roleService) DeleteRole(ctx context.Context, id uint) (bool, error) {
	role, err := s.repos.Roles.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Classify(err, "load role")
	}
	if role.IsSystem {
		return false, apperror.Conflict("cannot delete system role %q", role.Name)
	}
	inUse, err := s.repos.Users.CountByRole(ctx, role.Name)
	if err != nil {
		return false, apperror.Classify(err, "count role users")
	}
	if inUse > 0 {
		return false, apperror.Conflict("role %q is assigned to %d users", role.Name, inUse)
	}

	var deleted bool
	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = s.repos.Roles.Delete(txCtx, id)
		return err
	})
	if err != nil {
		return false, apperror.Classify(err, "delete role")
	}
	if deleted {
		emit(ctx, s.pub, EntityRole, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	perms, err := s.repos.Roles.ListPermissions(ctx)
	if err != nil {
		return nil, apperror.Classify(err, "list permissions")
	}
	return perms, nil
}

func (s *roleService) UpdateRolePermissions(ctx context.Context, roleID uint, req UpdateRolePermissionsRequest) (*model.Role, error) {
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.Name == model.RoleAdmin {
		return nil, apperror.Conflict("permissions of role %q cannot be changed", role.Name)
	}
	if err := s.checkPermissions(ctx, req.PermissionIDs); err != nil {
		return nil, err
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Roles.ReplacePermissions(txCtx, roleID, req.PermissionIDs); err != nil {
			return apperror.Classify(err, "update permissions")
		}
		return s.audit.record(txCtx, model.ActionUpdatePermission, EntityRole, roleID, map[string]interface{}{
			"rol":         role.Name,
			"permiso_ids": req.PermissionIDs,
		})
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityRole, events.ActionUpdated, roleID, map[string]interface{}{"permiso_ids": req.PermissionIDs})
	return s.GetRole(ctx, roleID)
}

func (s *roleService) GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error) {
	codes, err := s.repos.Roles.GetPermissionsByRoleName(ctx, roleName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("rol", roleName)
	}
	if err != nil {
		return nil, apperror.Classify(err, "load role permissions")
	}
	return codes, nil
}

// SeedDefaultRolesAndPermissions creates the default permissions and roles
// if not already present. Existing roles keep their permission set, except
// admin which always holds every permission.
func (s *roleService) SeedDefaultRolesAndPermissions(ctx context.Context, data *seed.Data) error {
	return s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		permByCode := make(map[string]uint, len(data.Permissions))
		for _, p := range data.Permissions {
			perm := &model.Permission{Code: p.Code, Name: p.Name, Group: p.Group}
			if err := s.repos.Roles.FindOrCreatePermission(txCtx, perm); err != nil {
				return apperror.Classify(err, "seed permission "+p.Code)
			}
			permByCode[p.Code] = perm.ID
		}

		for _, def := range data.Roles {
			_, err := s.repos.Roles.FindByName(txCtx, def.Name)
			isNew := errors.Is(err, gorm.ErrRecordNotFound)
			if err != nil && !isNew {
				return apperror.Classify(err, "seed role "+def.Name)
			}

			role := &model.Role{
				Name:        def.Name,
				Description: def.Description,
				AccessLevel: def.AccessLevel,
				IsSystem:    true,
			}
			if err := s.repos.Roles.FindOrCreateRole(txCtx, role); err != nil {
				return apperror.Classify(err, "seed role "+def.Name)
			}
			if !isNew && def.Name != model.RoleAdmin {
				continue
			}

			codes := data.PermissionCodes(def)
			ids := make([]uint, 0, len(codes))
			for _, code := range codes {
				if id, ok := permByCode[code]; ok {
					ids = append(ids, id)
				}
			}
			if err := s.repos.Roles.AssociatePermissions(txCtx, role.ID, ids); err != nil {
				return apperror.Classify(err, "assign permissions to role "+def.Name)
			}
		}
		return nil
	})
}
