package service

import (
	"context"
	"errors"
	"strings"

	"rrhh/internal/apperror"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- Department DTOs ---

type CreateDepartmentRequest struct {
	Name        string `json:"nombre" binding:"required,max=100"`
	Description string `json:"descripcion"`
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"nombre" binding:"omitempty,max=100"`
	Description *string `json:"descripcion"`
}

// DepartmentResponse adds the headcount to the stored department
type DepartmentResponse struct {
	model.Department
	EmployeeCount int64 `json:"total_empleados"`
}

// --- Position DTOs ---

type CreatePositionRequest struct {
	Title      string           `json:"titulo" binding:"required,max=100"`
	Level      string           `json:"nivel" binding:"omitempty,max=50"`
	BaseSalary *decimal.Decimal `json:"salario_base" binding:"required"`
	RoleIDs    []uint           `json:"rol_ids"`
}

type UpdatePositionRequest struct {
	Title      *string          `json:"titulo" binding:"omitempty,max=100"`
	Level      *string          `json:"nivel" binding:"omitempty,max=50"`
	BaseSalary *decimal.Decimal `json:"salario_base"`
	RoleIDs    *[]uint          `json:"rol_ids"` // nil = not sent, [] = clear
}

// --- Interfaces ---

type DepartmentService interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (*model.Department, error)
	List(ctx context.Context, page, limit int) ([]model.Department, int64, error)
	Get(ctx context.Context, id uint) (*DepartmentResponse, error)
	Update(ctx context.Context, id uint, req UpdateDepartmentRequest) (*model.Department, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type PositionService interface {
	Create(ctx context.Context, req CreatePositionRequest) (*model.Position, error)
	List(ctx context.Context, page, limit int) ([]model.Position, int64, error)
	Get(ctx context.Context, id uint) (*model.Position, error)
	Update(ctx context.Context, id uint, req UpdatePositionRequest) (*model.Position, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// --- Department implementation ---

type departmentService struct {
	repos *repository.Repositories
	pub   events.Publisher
}

func NewDepartmentService(repos *repository.Repositories, pub events.Publisher) DepartmentService {
	return &departmentService{repos: repos, pub: pub}
}

func (s *departmentService) ensureNameFree(ctx context.Context, name string, exceptID uint) error {
	existing, err := s.repos.Departments.FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Classify(err, "check department name")
	}
	if existing.ID != exceptID {
		return apperror.Conflict("department %q already exists", name)
	}
	return nil
}

func (s *departmentService) Create(ctx context.Context, req CreateDepartmentRequest) (*model.Department, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.ValidationFields(map[string]string{"nombre": "required"})
	}
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	dept := &model.Department{Name: name, Description: strings.TrimSpace(req.Description)}
	if err := s.repos.Departments.Create(ctx, dept); err != nil {
		return nil, apperror.Classify(err, "create department")
	}

	emit(ctx, s.pub, EntityDepartment, events.ActionCreated, dept.ID, dept)
	return dept, nil
}

func (s *departmentService) List(ctx context.Context, page, limit int) ([]model.Department, int64, error) {
	items, total, err := s.repos.Departments.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Classify(err, "list departments")
	}
	return items, total, nil
}

func (s *departmentService) Get(ctx context.Context, id uint) (*DepartmentResponse, error) {
	dept, err := s.repos.Departments.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "departamento", id)
	}
	count, err := s.repos.Departments.CountEmployees(ctx, id)
	if err != nil {
		return nil, apperror.Classify(err, "count department employees")
	}
	return &DepartmentResponse{Department: *dept, EmployeeCount: count}, nil
}

func (s *departmentService) Update(ctx context.Context, id uint, req UpdateDepartmentRequest) (*model.Department, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.ValidationFields(map[string]string{"nombre": "must not be empty"})
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		fields["nombre"] = name
	}
	if req.Description != nil {
		fields["descripcion"] = strings.TrimSpace(*req.Description)
	}

	if len(fields) > 0 {
		if err := s.repos.Departments.UpdateFields(ctx, id, fields); err != nil {
			return nil, loadErr(err, "departamento", id)
		}
		emit(ctx, s.pub, EntityDepartment, events.ActionUpdated, id, fields)
	}

	dept, err := s.repos.Departments.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "departamento", id)
	}
	return dept, nil
}

// Delete leaves the department's employees without a department
func (s *departmentService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repos.Departments.Delete(ctx, id)
	if err != nil {
		return false, apperror.Classify(err, "delete department")
	}
	if deleted {
		emit(ctx, s.pub, EntityDepartment, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}

// --- Position implementation ---

type positionService struct {
	repos *repository.Repositories
	pub   events.Publisher
}

func NewPositionService(repos *repository.Repositories, pub events.Publisher) PositionService {
	return &positionService{repos: repos, pub: pub}
}

func (s *positionService) checkRoles(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		if _, err := s.repos.Roles.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ReferenceNotFound("rol", id)
			}
			return apperror.Classify(err, "check role")
		}
	}
	return nil
}

func (s *positionService) Create(ctx context.Context, req CreatePositionRequest) (*model.Position, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.ValidationFields(map[string]string{"titulo": "required"})
	}
	if req.BaseSalary == nil {
		return nil, apperror.ValidationFields(map[string]string{"salario_base": "required"})
	}
	if err := requireNonNegative("salario_base", *req.BaseSalary); err != nil {
		return nil, err
	}
	if err := s.checkRoles(ctx, req.RoleIDs); err != nil {
		return nil, err
	}

	pos := &model.Position{Title: title, Level: strings.TrimSpace(req.Level), BaseSalary: *req.BaseSalary}
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Positions.Create(txCtx, pos); err != nil {
			return apperror.Classify(err, "create position")
		}
		if len(req.RoleIDs) == 0 {
			return nil
		}
		if err := s.repos.Positions.ReplaceRoles(txCtx, pos.ID, req.RoleIDs); err != nil {
			return apperror.Classify(err, "assign position roles")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityPosition, events.ActionCreated, pos.ID, pos)
	return s.Get(ctx, pos.ID)
}

func (s *positionService) List(ctx context.Context, page, limit int) ([]model.Position, int64, error) {
	items, total, err := s.repos.Positions.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Classify(err, "list positions")
	}
	return items, total, nil
}

func (s *positionService) Get(ctx context.Context, id uint) (*model.Position, error) {
	pos, err := s.repos.Positions.FindByIDWithRoles(ctx, id)
	if err != nil {
		return nil, loadErr(err, "puesto", id)
	}
	return pos, nil
}

func (s *positionService) Update(ctx context.Context, id uint, req UpdatePositionRequest) (*model.Position, error) {
	if ok, err := s.repos.Positions.Exists(ctx, id); err != nil {
		return nil, apperror.Classify(err, "load position")
	} else if !ok {
		return nil, apperror.NotFound("puesto", id)
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.ValidationFields(map[string]string{"titulo": "must not be empty"})
		}
		fields["titulo"] = title
	}
	if req.Level != nil {
		fields["nivel"] = strings.TrimSpace(*req.Level)
	}
	if req.BaseSalary != nil {
		if err := requireNonNegative("salario_base", *req.BaseSalary); err != nil {
			return nil, err
		}
		fields["salario_base"] = *req.BaseSalary
	}
	if req.RoleIDs != nil {
		if err := s.checkRoles(ctx, *req.RoleIDs); err != nil {
			return nil, err
		}
	}

	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if len(fields) > 0 {
			if err := s.repos.Positions.UpdateFields(txCtx, id, fields); err != nil {
				return loadErr(err, "puesto", id)
			}
		}
		if req.RoleIDs != nil {
			if err := s.repos.Positions.ReplaceRoles(txCtx, id, *req.RoleIDs); err != nil {
				return apperror.Classify(err, "assign position roles")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 || req.RoleIDs != nil {
		emit(ctx, s.pub, EntityPosition, events.ActionUpdated, id, fields)
	}
	return s.Get(ctx, id)
}

func (s *positionService) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = s.repos.Positions.Delete(txCtx, id)
		return err
	})
	if err != nil {
		return false, apperror.Classify(err, "delete position")
	}
	if deleted {
		emit(ctx, s.pub, EntityPosition, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}
