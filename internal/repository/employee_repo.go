package repository

import (
	"context"
	"strings"

	"rrhh/internal/model"

	"gorm.io/gorm"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EmployeeFilter narrows employee listings. Search must already be folded
// with textnorm.Fold.
type EmployeeFilter struct {
	Search       string
	DepartmentID *uint
	Status       string
	Page         int
	Limit        int
}

// EmployeeRecordCounts is the number of child records held by one employee
type EmployeeRecordCounts struct {
	Contracts   int64 `json:"contratos"`
	Attendance  int64 `json:"asistencias"`
	Payrolls    int64 `json:"nominas"`
	Vacations   int64 `json:"vacaciones"`
	Evaluations int64 `json:"evaluaciones"`
	Trainings   int64 `json:"capacitaciones"`
}

type EmployeeRepository interface {
	CRUDRepository[model.Employee]
	Search(ctx context.Context, filter EmployeeFilter) ([]model.Employee, int64, error)
	FindByEmail(ctx context.Context, email string) (*model.Employee, error)
	CountRecords(ctx context.Context, id uint) (*EmployeeRecordCounts, error)
}

type employeeRepository struct {
	*crudRepository[model.Employee]
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{crudRepository: newCRUDRepository[model.Employee](db, "apellido asc, nombre asc, id asc")}
}

// FindByID loads the employee together with its department
func (r *employeeRepository) FindByID(ctx context.Context, id uint) (*model.Employee, error) {
	var emp model.Employee
	if err := GetDB(ctx, r.db).Preload("Department").First(&emp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var emp model.Employee
	if err := GetDB(ctx, r.db).Where("LOWER(email) = LOWER(?)", email).First(&emp).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) Search(ctx context.Context, filter EmployeeFilter) ([]model.Employee, int64, error) {
	var employees []model.Employee
	var total int64

	db := GetDB(ctx, r.db)
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			q = q.Where(`busqueda LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(filter.Search)+"%")
		}
		if filter.DepartmentID != nil {
			q = q.Where("departamento_id = ?", *filter.DepartmentID)
		}
		if filter.Status != "" {
			q = q.Where("estado = ?", filter.Status)
		}
		return q
	}

	if err := db.Model(&model.Employee{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Scopes(scope).Preload("Department").Order(r.order).Offset(offset).Limit(filter.Limit).Find(&employees).Error; err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (r *employeeRepository) CountRecords(ctx context.Context, id uint) (*EmployeeRecordCounts, error) {
	db := GetDB(ctx, r.db)
	counts := &EmployeeRecordCounts{}

	targets := []struct {
		model interface{}
		dest  *int64
	}{
		{&model.Contract{}, &counts.Contracts},
		{&model.Attendance{}, &counts.Attendance},
		{&model.Payroll{}, &counts.Payrolls},
		{&model.Vacation{}, &counts.Vacations},
		{&model.Evaluation{}, &counts.Evaluations},
		{&model.Training{}, &counts.Trainings},
	}
	for _, t := range targets {
		if err := db.Model(t.model).Where("empleado_id = ?", id).Count(t.dest).Error; err != nil {
			return nil, err
		}
	}
	return counts, nil
}
