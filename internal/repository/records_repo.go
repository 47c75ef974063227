package repository

import (
	"context"
	"database/sql"

	"rrhh/internal/model"

	"gorm.io/gorm"
)

type ContractRepository interface {
	ChildRepository[model.Contract]
	ListActive(ctx context.Context, employeeID uint) ([]model.Contract, error)
	// CloseActive marks every active contract of the employee that started on
	// or before endDate, except keepID, as finished and returns the closed ids.
	CloseActive(ctx context.Context, employeeID, keepID uint, endDate model.Date) ([]uint, error)
}

type contractRepository struct {
	*crudRepository[model.Contract]
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{crudRepository: newCRUDRepository[model.Contract](db, "fecha_inicio desc, id desc")}
}

func (r *contractRepository) ListActive(ctx context.Context, employeeID uint) ([]model.Contract, error) {
	var contracts []model.Contract
	err := GetDB(ctx, r.db).
		Where("empleado_id = ? AND estado = ?", employeeID, model.ContractActive).
		Order(r.order).
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) CloseActive(ctx context.Context, employeeID, keepID uint, endDate model.Date) ([]uint, error) {
	db := GetDB(ctx, r.db)

	var ids []uint
	if err := db.Model(&model.Contract{}).
		Where("empleado_id = ? AND estado = ? AND id <> ? AND fecha_inicio <= ?", employeeID, model.ContractActive, keepID, endDate).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := db.Model(&model.Contract{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"estado":    model.ContractFinished,
		"fecha_fin": gorm.Expr("COALESCE(fecha_fin, ?)", endDate),
	}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

type AttendanceRepository interface {
	ChildRepository[model.Attendance]
	FindByEmployeeAndDate(ctx context.Context, employeeID uint, date model.Date) (*model.Attendance, error)
	ListByRange(ctx context.Context, employeeID uint, from, to model.Date) ([]model.Attendance, error)
}

type attendanceRepository struct {
	*crudRepository[model.Attendance]
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{crudRepository: newCRUDRepository[model.Attendance](db, "fecha desc, id desc")}
}

func (r *attendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID uint, date model.Date) (*model.Attendance, error) {
	var att model.Attendance
	if err := GetDB(ctx, r.db).Where("empleado_id = ? AND fecha = ?", employeeID, date).First(&att).Error; err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepository) ListByRange(ctx context.Context, employeeID uint, from, to model.Date) ([]model.Attendance, error) {
	var items []model.Attendance
	err := GetDB(ctx, r.db).
		Where("empleado_id = ? AND fecha BETWEEN ? AND ?", employeeID, from, to).
		Order("fecha asc").
		Find(&items).Error
	return items, err
}

type PayrollRepository interface {
	ChildRepository[model.Payroll]
	FindByPeriod(ctx context.Context, employeeID uint, month, year int) (*model.Payroll, error)
	ListByPeriod(ctx context.Context, month, year int) ([]model.Payroll, error)
}

type payrollRepository struct {
	*crudRepository[model.Payroll]
}

func NewPayrollRepository(db *gorm.DB) PayrollRepository {
	return &payrollRepository{crudRepository: newCRUDRepository[model.Payroll](db, "anio desc, mes desc, id desc")}
}

func (r *payrollRepository) FindByPeriod(ctx context.Context, employeeID uint, month, year int) (*model.Payroll, error) {
	var p model.Payroll
	if err := GetDB(ctx, r.db).Where("empleado_id = ? AND mes = ? AND anio = ?", employeeID, month, year).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, month, year int) ([]model.Payroll, error) {
	var items []model.Payroll
	err := GetDB(ctx, r.db).Where("mes = ? AND anio = ?", month, year).Order("empleado_id asc").Find(&items).Error
	return items, err
}

type VacationRepository interface {
	ChildRepository[model.Vacation]
	ListByStatus(ctx context.Context, status string, page, limit int) ([]model.Vacation, int64, error)
	// CountOverlapping counts pending or approved requests of the employee
	// intersecting [start, end], ignoring excludeID.
	CountOverlapping(ctx context.Context, employeeID uint, start, end model.Date, excludeID uint) (int64, error)
}

type vacationRepository struct {
	*crudRepository[model.Vacation]
}

func NewVacationRepository(db *gorm.DB) VacationRepository {
	return &vacationRepository{crudRepository: newCRUDRepository[model.Vacation](db, "fecha_inicio desc, id desc")}
}

func (r *vacationRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]model.Vacation, int64, error) {
	var items []model.Vacation
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Vacation{}).Where("estado = ?", status).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("estado = ?", status).Order(r.order).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *vacationRepository) CountOverlapping(ctx context.Context, employeeID uint, start, end model.Date, excludeID uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Vacation{}).
		Where("empleado_id = ? AND id <> ?", employeeID, excludeID).
		Where("estado IN ?", []string{model.VacationPending, model.VacationApproved}).
		Where("fecha_inicio <= ? AND fecha_fin >= ?", end, start).
		Count(&count).Error
	return count, err
}

type EvaluationRepository interface {
	ChildRepository[model.Evaluation]
	AverageScore(ctx context.Context, employeeID uint) (float64, error)
}

type evaluationRepository struct {
	*crudRepository[model.Evaluation]
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{crudRepository: newCRUDRepository[model.Evaluation](db, "fecha desc, id desc")}
}

func (r *evaluationRepository) AverageScore(ctx context.Context, employeeID uint) (float64, error) {
	var avg sql.NullFloat64
	err := GetDB(ctx, r.db).Model(&model.Evaluation{}).
		Select("AVG(puntuacion)").
		Where("empleado_id = ?", employeeID).
		Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// NewTrainingRepository has no queries beyond the shared ones
func NewTrainingRepository(db *gorm.DB) ChildRepository[model.Training] {
	return newCRUDRepository[model.Training](db, "fecha_inicio desc, id desc")
}
