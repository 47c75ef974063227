package repository

import (
	"context"

	"rrhh/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	ListAll(ctx context.Context) ([]model.Role, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	ReplacePermissions(ctx context.Context, roleID uint, permissionIDs []uint) error
	GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error)
	// HasPermission reads rol_permisos directly on every call
	HasPermission(ctx context.Context, roleName, code string) (bool, error)
	FindOrCreatePermission(ctx context.Context, perm *model.Permission) error
	FindOrCreateRole(ctx context.Context, role *model.Role) error
	AssociatePermissions(ctx context.Context, roleID uint, permIDs []uint) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := GetDB(ctx, r.db).Model(&model.Role{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the role together with its rol_permisos and puesto_roles rows
func (r *roleRepository) Delete(ctx context.Context, id uint) (bool, error) {
	db := GetDB(ctx, r.db)
	if err := db.Exec("DELETE FROM rol_permisos WHERE rol_id = ?", id).Error; err != nil {
		return false, err
	}
	if err := db.Exec("DELETE FROM puesto_roles WHERE rol_id = ?", id).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&model.Role{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *roleRepository) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").Where("nombre = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").Order("nivel_acceso desc, nombre asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Order("grupo asc, codigo asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *roleRepository) ReplacePermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	db := GetDB(ctx, r.db)
	var role model.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		return err
	}

	if len(permissionIDs) == 0 {
		return db.Model(&role).Association("Permissions").Clear()
	}

	var perms []model.Permission
	if err := db.Where("id IN ?", permissionIDs).Find(&perms).Error; err != nil {
		return err
	}

	return db.Model(&role).Association("Permissions").Replace(perms)
}

func (r *roleRepository) GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").Where("nombre = ?", roleName).First(&role).Error; err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		codes = append(codes, p.Code)
	}
	return codes, nil
}

func (r *roleRepository) HasPermission(ctx context.Context, roleName, code string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Table("rol_permisos").
		Joins("JOIN roles ON roles.id = rol_permisos.rol_id").
		Joins("JOIN permisos ON permisos.id = rol_permisos.permiso_id").
		Where("roles.nombre = ? AND permisos.codigo = ?", roleName, code).
		Count(&count).Error
	return count > 0, err
}

func (r *roleRepository) FindOrCreatePermission(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).
		Where("codigo = ?", perm.Code).
		FirstOrCreate(perm).Error
}

func (r *roleRepository) FindOrCreateRole(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).
		Omit("Permissions").
		Where("nombre = ?", role.Name).
		FirstOrCreate(role).Error
}

func (r *roleRepository) AssociatePermissions(ctx context.Context, roleID uint, permIDs []uint) error {
	if len(permIDs) == 0 {
		return nil
	}
	db := GetDB(ctx, r.db)
	var role model.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		return err
	}

	var perms []model.Permission
	if err := db.Where("id IN ?", permIDs).Find(&perms).Error; err != nil {
		return err
	}

	return db.Model(&role).Association("Permissions").Append(perms)
}
