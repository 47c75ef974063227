package repository

import (
	"context"
	"strings"
	"time"

	"rrhh/internal/model"

	"gorm.io/gorm"
)

// UserFilter narrows user listings
type UserFilter struct {
	Role   string
	Active *bool
	Page   int
	Limit  int
}

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	CRUDRepository[model.User]
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Search(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	CountByRole(ctx context.Context, role string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	*crudRepository[model.User]
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{crudRepository: newCRUDRepository[model.User](db, "id asc")}
}

// FindByEmail matches case-insensitively; emails are stored lower-cased
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Search(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db)
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Role != "" {
			q = q.Where("rol = ?", filter.Role)
		}
		if filter.Active != nil {
			q = q.Where("activo = ?", *filter.Active)
		}
		return q
	}

	// Count total records
	if err := db.Model(&model.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	// Fetch paginated data
	if err := db.Scopes(scope).Order(r.order).Offset(offset).Limit(filter.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", id).UpdateColumn("ultimo_acceso", at).Error
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).Where("rol = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).Count(&count).Error
	return count, err
}

// RoleChangeRepository stores the role history of users
type RoleChangeRepository interface {
	Log(ctx context.Context, entry *model.RoleChange) error
	ListByUser(ctx context.Context, userID uint) ([]model.RoleChange, error)
}

type roleChangeRepository struct {
	db *gorm.DB
}

func NewRoleChangeRepository(db *gorm.DB) RoleChangeRepository {
	return &roleChangeRepository{db: db}
}

func (r *roleChangeRepository) Log(ctx context.Context, entry *model.RoleChange) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *roleChangeRepository) ListByUser(ctx context.Context, userID uint) ([]model.RoleChange, error) {
	var changes []model.RoleChange
	err := GetDB(ctx, r.db).Where("usuario_id = ?", userID).Order("fecha desc, id desc").Find(&changes).Error
	return changes, err
}
