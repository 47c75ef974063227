package repository

import (
	"context"

	"gorm.io/gorm"
)

// CRUDRepository is the data access shared by every entity table
type CRUDRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, page, limit int) ([]T, int64, error)
	// UpdateFields sets only the given columns. Returns gorm.ErrRecordNotFound
	// when no row has that id.
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	// Delete reports whether a row was removed; a missing id is not an error.
	Delete(ctx context.Context, id uint) (bool, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// ChildRepository is implemented by tables owned by an employee
type ChildRepository[T any] interface {
	CRUDRepository[T]
	ListByEmployee(ctx context.Context, employeeID uint) ([]T, error)
}

type crudRepository[T any] struct {
	db    *gorm.DB
	order string
}

func newCRUDRepository[T any](db *gorm.DB, order string) *crudRepository[T] {
	if order == "" {
		order = "id asc"
	}
	return &crudRepository[T]{db: db, order: order}
}

func (r *crudRepository[T]) Create(ctx context.Context, entity *T) error {
	return GetDB(ctx, r.db).Create(entity).Error
}

func (r *crudRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := GetDB(ctx, r.db).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *crudRepository[T]) List(ctx context.Context, page, limit int) ([]T, int64, error) {
	var items []T
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order(r.order).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *crudRepository[T]) ListByEmployee(ctx context.Context, employeeID uint) ([]T, error) {
	var items []T
	if err := GetDB(ctx, r.db).Where("empleado_id = ?", employeeID).Order(r.order).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *crudRepository[T]) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := GetDB(ctx, r.db).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *crudRepository[T]) Delete(ctx context.Context, id uint) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *crudRepository[T]) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
