package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rrhh/internal/apperror"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"
	"rrhh/pkg/textnorm"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateEmployeeRequest struct {
	FirstName     string           `json:"nombre" binding:"required,max=100"`
	LastName      string           `json:"apellido" binding:"required,max=100"`
	Email         string           `json:"email" binding:"required,email"`
	Phone         string           `json:"telefono" binding:"omitempty,max=30"`
	Address       string           `json:"direccion"`
	BirthDate     *model.Date      `json:"fecha_nacimiento"`
	HireDate      *model.Date      `json:"fecha_ingreso" binding:"required"`
	DepartmentID  *uint            `json:"departamento_id"`
	PositionID    *uint            `json:"puesto_id"`
	PositionTitle string           `json:"puesto" binding:"omitempty,max=100"`
	Salary        *decimal.Decimal `json:"salario" binding:"required"`
	Status        string           `json:"estado" binding:"omitempty,oneof=activo inactivo"`
}

// UpdateEmployeeRequest only changes the fields that are present
type UpdateEmployeeRequest struct {
	FirstName     *string          `json:"nombre" binding:"omitempty,max=100"`
	LastName      *string          `json:"apellido" binding:"omitempty,max=100"`
	Email         *string          `json:"email" binding:"omitempty,email"`
	Phone         *string          `json:"telefono" binding:"omitempty,max=30"`
	Address       *string          `json:"direccion"`
	BirthDate     *model.Date      `json:"fecha_nacimiento"`
	HireDate      *model.Date      `json:"fecha_ingreso"`
	DepartmentID  *uint            `json:"departamento_id"`
	PositionID    *uint            `json:"puesto_id"`
	PositionTitle *string          `json:"puesto" binding:"omitempty,max=100"`
	Salary        *decimal.Decimal `json:"salario"`
	Status        *string          `json:"estado" binding:"omitempty,oneof=activo inactivo"`
}

// EmployeeListFilter is the query of GET /api/empleados
type EmployeeListFilter struct {
	Search       string
	DepartmentID *uint
	Status       string
	Page         int
	Limit        int
}

// EmployeeSummary aggregates the records held by one employee
type EmployeeSummary struct {
	Employee       *model.Employee                  `json:"empleado"`
	Records        *repository.EmployeeRecordCounts `json:"registros"`
	ActiveContract *model.Contract                  `json:"contrato_activo"`
	AverageScore   float64                          `json:"puntuacion_promedio"`
}

type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (*model.Employee, error)
	List(ctx context.Context, filter EmployeeListFilter) ([]model.Employee, int64, error)
	Get(ctx context.Context, id uint) (*model.Employee, error)
	Update(ctx context.Context, id uint, req UpdateEmployeeRequest) (*model.Employee, error)
	Delete(ctx context.Context, id uint) (bool, error)
	Summary(ctx context.Context, id uint) (*EmployeeSummary, error)
}

type employeeService struct {
	repos *repository.Repositories
	audit auditor
	pub   events.Publisher
}

func NewEmployeeService(repos *repository.Repositories, pub events.Publisher) EmployeeService {
	return &employeeService{repos: repos, audit: auditor{repo: repos.Audit}, pub: pub}
}

func searchKey(e *model.Employee) string {
	return textnorm.Key(e.FirstName, e.LastName, e.Email)
}

func (s *employeeService) checkReferences(ctx context.Context, departmentID, positionID *uint) (*model.Position, error) {
	if departmentID != nil {
		if err := requireReference(ctx, s.repos.Departments, "departamento", *departmentID); err != nil {
			return nil, err
		}
	}
	if positionID != nil {
		pos, err := s.repos.Positions.FindByID(ctx, *positionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ReferenceNotFound("puesto", *positionID)
		}
		if err != nil {
			return nil, apperror.Classify(err, "check position")
		}
		return pos, nil
	}
	return nil, nil
}

func (s *employeeService) ensureEmailFree(ctx context.Context, email string, exceptID uint) error {
	existing, err := s.repos.Employees.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Classify(err, "check employee email")
	}
	if existing.ID != exceptID {
		return apperror.Conflict("an employee with email %s already exists", email)
	}
	return nil
}

func (s *employeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*model.Employee, error) {
	if req.HireDate == nil || req.HireDate.IsZero() {
		return nil, apperror.ValidationFields(map[string]string{"fecha_ingreso": "required"})
	}
	if req.Salary == nil {
		return nil, apperror.ValidationFields(map[string]string{"salario": "required"})
	}
	if err := requireNonNegative("salario", *req.Salary); err != nil {
		return nil, err
	}
	if req.BirthDate != nil && !req.BirthDate.IsZero() && !req.BirthDate.Before(req.HireDate.Time) {
		return nil, apperror.ValidationFields(map[string]string{"fecha_nacimiento": "must be before fecha_ingreso"})
	}

	pos, err := s.checkReferences(ctx, req.DepartmentID, req.PositionID)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	emp := &model.Employee{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         email,
		Phone:         strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		BirthDate:     req.BirthDate,
		HireDate:      *req.HireDate,
		DepartmentID:  req.DepartmentID,
		PositionID:    req.PositionID,
		PositionTitle: strings.TrimSpace(req.PositionTitle),
		Salary:        *req.Salary,
		Status:        req.Status,
	}
	if emp.Status == "" {
		emp.Status = model.EmployeeActive
	}
	if emp.PositionTitle == "" && pos != nil {
		emp.PositionTitle = pos.Title
	}
	emp.SearchKey = searchKey(emp)

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Employees.Create(txCtx, emp); err != nil {
			return apperror.Classify(err, "create employee")
		}
		if err := s.linkUser(txCtx, emp); err != nil {
			return err
		}
		return s.audit.record(txCtx, model.ActionCreateEmployee, EntityEmployee, emp.ID, map[string]interface{}{
			"nombre": emp.FullName(),
			"email":  emp.Email,
		})
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityEmployee, events.ActionCreated, emp.ID, emp)
	return s.Get(ctx, emp.ID)
}

// linkUser points the user account sharing the employee's email at it
func (s *employeeService) linkUser(ctx context.Context, emp *model.Employee) error {
	user, err := s.repos.Users.FindByEmail(ctx, emp.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Classify(err, "find mirrored user")
	}
	if user.EmployeeID != nil && *user.EmployeeID == emp.ID {
		return nil
	}
	if err := s.repos.Users.UpdateFields(ctx, user.ID, map[string]interface{}{"empleado_id": emp.ID}); err != nil {
		return apperror.Classify(err, "link user to employee")
	}
	return nil
}

func (s *employeeService) List(ctx context.Context, filter EmployeeListFilter) ([]model.Employee, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	items, total, err := s.repos.Employees.Search(ctx, repository.EmployeeFilter{
		Search:       textnorm.Fold(filter.Search),
		DepartmentID: filter.DepartmentID,
		Status:       filter.Status,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, 0, apperror.Classify(err, "list employees")
	}
	return items, total, nil
}

func (s *employeeService) Get(ctx context.Context, id uint) (*model.Employee, error) {
	emp, err := s.repos.Employees.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "empleado", id)
	}
	return emp, nil
}

func (s *employeeService) Update(ctx context.Context, id uint, req UpdateEmployeeRequest) (*model.Employee, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pos, err := s.checkReferences(ctx, req.DepartmentID, req.PositionID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	merged := *current

	if req.FirstName != nil {
		merged.FirstName = strings.TrimSpace(*req.FirstName)
		fields["nombre"] = merged.FirstName
	}
	if req.LastName != nil {
		merged.LastName = strings.TrimSpace(*req.LastName)
		fields["apellido"] = merged.LastName
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != current.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
		}
		merged.Email = email
		fields["email"] = email
	}
	if req.Phone != nil {
		fields["telefono"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		fields["direccion"] = strings.TrimSpace(*req.Address)
	}
	if req.BirthDate != nil {
		fields["fecha_nacimiento"] = *req.BirthDate
	}
	if req.HireDate != nil {
		if req.HireDate.IsZero() {
			return nil, apperror.ValidationFields(map[string]string{"fecha_ingreso": "must not be empty"})
		}
		fields["fecha_ingreso"] = *req.HireDate
	}
	if req.DepartmentID != nil {
		fields["departamento_id"] = *req.DepartmentID
	}
	if req.PositionID != nil {
		fields["puesto_id"] = *req.PositionID
		if req.PositionTitle == nil && pos != nil {
			fields["puesto"] = pos.Title
		}
	}
	if req.PositionTitle != nil {
		fields["puesto"] = strings.TrimSpace(*req.PositionTitle)
	}
	if req.Salary != nil {
		if err := requireNonNegative("salario", *req.Salary); err != nil {
			return nil, err
		}
		fields["salario"] = *req.Salary
	}
	if req.Status != nil {
		if *req.Status != model.EmployeeActive && *req.Status != model.EmployeeInactive {
			return nil, apperror.ValidationFields(map[string]string{"estado": "must be activo or inactivo"})
		}
		fields["estado"] = *req.Status
	}

	if len(fields) == 0 {
		return current, nil
	}
	if req.FirstName != nil || req.LastName != nil || req.Email != nil {
		fields["busqueda"] = searchKey(&merged)
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Employees.UpdateFields(txCtx, id, fields); err != nil {
			return loadErr(err, "empleado", id)
		}
		if req.Email != nil {
			merged.ID = id
			return s.linkUser(txCtx, &merged)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityEmployee, events.ActionUpdated, id, fields)
	return s.Get(ctx, id)
}

func (s *employeeService) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = s.repos.Employees.Delete(txCtx, id)
		if err != nil {
			return apperror.Classify(err, "delete employee")
		}
		if !deleted {
			return nil
		}
		return s.audit.record(txCtx, model.ActionDeleteEmployee, EntityEmployee, id, nil)
	})
	if err != nil {
		return false, err
	}

	if deleted {
		emit(ctx, s.pub, EntityEmployee, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}

func (s *employeeService) Summary(ctx context.Context, id uint) (*EmployeeSummary, error) {
	emp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	counts, err := s.repos.Employees.CountRecords(ctx, id)
	if err != nil {
		return nil, apperror.Classify(err, "count employee records")
	}

	summary := &EmployeeSummary{Employee: emp, Records: counts}

	active, err := s.repos.Contracts.ListActive(ctx, id)
	if err != nil {
		return nil, apperror.Classify(err, "load active contract")
	}
	if len(active) > 0 {
		summary.ActiveContract = &active[0]
	}

	if summary.AverageScore, err = s.repos.Evaluations.AverageScore(ctx, id); err != nil {
		return nil, fmt.Errorf("average score: %w", apperror.Classify(err, "average score"))
	}
	return summary, nil
}
