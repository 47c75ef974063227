package repository

import (
	"context"
	"database/sql"
	"fmt"

	"rrhh/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountEmployees(ctx context.Context, status string) (int64, error)
	CountActiveContracts(ctx context.Context) (int64, error)
	CountPendingVacations(ctx context.Context) (int64, error)
	CountAttendance(ctx context.Context, start, end model.Date) (int64, error)
	// PayrollNetTotal sums salario_neto of the periods between start and end
	PayrollNetTotal(ctx context.Context, start, end model.Date) (decimal.Decimal, error)
	AverageScore(ctx context.Context, start, end model.Date) (float64, error)
	HeadcountByDepartment(ctx context.Context) ([]model.DepartmentHeadcount, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountEmployees(ctx context.Context, status string) (int64, error) {
	var count int64
	q := GetDB(ctx, r.db).Model(&model.Employee{})
	if status != "" {
		q = q.Where("estado = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *statisticsRepository) CountActiveContracts(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Contract{}).Where("estado = ?", model.ContractActive).Count(&count).Error
	return count, err
}

func (r *statisticsRepository) CountPendingVacations(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Vacation{}).Where("estado = ?", model.VacationPending).Count(&count).Error
	return count, err
}

func (r *statisticsRepository) CountAttendance(ctx context.Context, start, end model.Date) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Attendance{}).
		Where("fecha >= ? AND fecha <= ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *statisticsRepository) PayrollNetTotal(ctx context.Context, start, end model.Date) (decimal.Decimal, error) {
	from := start.Year()*100 + int(start.Month())
	to := end.Year()*100 + int(end.Month())

	var total sql.NullString
	err := GetDB(ctx, r.db).Model(&model.Payroll{}).
		Select("CAST(COALESCE(SUM(salario_neto), 0) AS TEXT)").
		Where("anio * 100 + mes BETWEEN ? AND ?", from, to).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid || total.String == "" {
		return decimal.Zero, nil
	}
	sum, err := decimal.NewFromString(total.String)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse payroll total %q: %w", total.String, err)
	}
	return sum, nil
}

func (r *statisticsRepository) AverageScore(ctx context.Context, start, end model.Date) (float64, error) {
	var avg sql.NullFloat64
	err := GetDB(ctx, r.db).Model(&model.Evaluation{}).
		Select("AVG(puntuacion)").
		Where("fecha >= ? AND fecha <= ?", start, end).
		Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func (r *statisticsRepository) HeadcountByDepartment(ctx context.Context) ([]model.DepartmentHeadcount, error) {
	var rows []model.DepartmentHeadcount
	if err := GetDB(ctx, r.db).Table("empleados").
		Select("empleados.departamento_id AS department_id, COALESCE(departamentos.nombre, '') AS department_name, COUNT(empleados.id) AS employees").
		Joins("LEFT JOIN departamentos ON departamentos.id = empleados.departamento_id").
		Group("empleados.departamento_id, departamentos.nombre").
		Order("employees DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query headcount by department: %w", err)
	}
	return rows, nil
}
