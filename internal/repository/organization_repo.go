package repository

import (
	"context"

	"rrhh/internal/model"

	"gorm.io/gorm"
)

type DepartmentRepository interface {
	CRUDRepository[model.Department]
	FindByName(ctx context.Context, name string) (*model.Department, error)
	CountEmployees(ctx context.Context, id uint) (int64, error)
}

type departmentRepository struct {
	*crudRepository[model.Department]
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{crudRepository: newCRUDRepository[model.Department](db, "nombre asc")}
}

func (r *departmentRepository) FindByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).Where("LOWER(nombre) = LOWER(?)", name).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) CountEmployees(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Employee{}).Where("departamento_id = ?", id).Count(&count).Error
	return count, err
}

type PositionRepository interface {
	CRUDRepository[model.Position]
	FindByIDWithRoles(ctx context.Context, id uint) (*model.Position, error)
	ReplaceRoles(ctx context.Context, id uint, roleIDs []uint) error
}

type positionRepository struct {
	*crudRepository[model.Position]
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{crudRepository: newCRUDRepository[model.Position](db, "titulo asc")}
}

func (r *positionRepository) FindByIDWithRoles(ctx context.Context, id uint) (*model.Position, error) {
	var pos model.Position
	if err := GetDB(ctx, r.db).Preload("Roles").First(&pos, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pos, nil
}

func (r *positionRepository) ReplaceRoles(ctx context.Context, id uint, roleIDs []uint) error {
	db := GetDB(ctx, r.db)
	var pos model.Position
	if err := db.First(&pos, "id = ?", id).Error; err != nil {
		return err
	}

	if len(roleIDs) == 0 {
		return db.Model(&pos).Association("Roles").Clear()
	}

	var roles []model.Role
	if err := db.Where("id IN ?", roleIDs).Find(&roles).Error; err != nil {
		return err
	}
	return db.Model(&pos).Association("Roles").Replace(roles)
}

// Delete drops the puesto_roles rows before the position itself
func (r *positionRepository) Delete(ctx context.Context, id uint) (bool, error) {
	db := GetDB(ctx, r.db)
	if err := db.Exec("DELETE FROM puesto_roles WHERE puesto_id = ?", id).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&model.Position{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
