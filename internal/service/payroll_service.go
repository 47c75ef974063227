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

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreatePayrollRequest struct {
	EmployeeID  uint             `json:"empleado_id" binding:"required"`
	Month       int              `json:"mes" binding:"required,min=1,max=12"`
	Year        int              `json:"anio" binding:"required,min=1900,max=9999"`
	BaseSalary  *decimal.Decimal `json:"salario_base"` // defaults to the employee's salary
	Bonuses     *decimal.Decimal `json:"bonificaciones"`
	Deductions  *decimal.Decimal `json:"deducciones"`
	PaymentDate *model.Date      `json:"fecha_pago"`
	Notes       string           `json:"observaciones"`
}

type UpdatePayrollRequest struct {
	Month       *int             `json:"mes" binding:"omitempty,min=1,max=12"`
	Year        *int             `json:"anio" binding:"omitempty,min=1900,max=9999"`
	BaseSalary  *decimal.Decimal `json:"salario_base"`
	Bonuses     *decimal.Decimal `json:"bonificaciones"`
	Deductions  *decimal.Decimal `json:"deducciones"`
	PaymentDate *model.Date      `json:"fecha_pago"`
	Notes       *string          `json:"observaciones"`
}

// PayrollPeriodTotals sums the pay slips of one month
type PayrollPeriodTotals struct {
	Month      int             `json:"mes"`
	Year       int             `json:"anio"`
	Count      int             `json:"total_nominas"`
	BaseSalary decimal.Decimal `json:"salario_base"`
	Bonuses    decimal.Decimal `json:"bonificaciones"`
	Deductions decimal.Decimal `json:"deducciones"`
	NetSalary  decimal.Decimal `json:"salario_neto"`
}

type PayrollService interface {
	Create(ctx context.Context, req CreatePayrollRequest) (*model.Payroll, error)
	List(ctx context.Context, page, limit int) ([]model.Payroll, int64, error)
	Get(ctx context.Context, id uint) (*model.Payroll, error)
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.Payroll, error)
	Period(ctx context.Context, month, year int) ([]model.Payroll, *PayrollPeriodTotals, error)
	Update(ctx context.Context, id uint, req UpdatePayrollRequest) (*model.Payroll, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type payrollService struct {
	repos  *repository.Repositories
	audit  auditor
	pub    events.Publisher
	notify NotificationService
}

func NewPayrollService(repos *repository.Repositories, pub events.Publisher, notify NotificationService) PayrollService {
	return &payrollService{repos: repos, audit: auditor{repo: repos.Audit}, pub: pub, notify: notify}
}

func checkPayAmounts(base, bonuses, deductions decimal.Decimal) error {
	fields := map[string]string{}
	if base.IsNegative() {
		fields["salario_base"] = "must not be negative"
	}
	if bonuses.IsNegative() {
		fields["bonificaciones"] = "must not be negative"
	}
	if deductions.IsNegative() {
		fields["deducciones"] = "must not be negative"
	}
	if len(fields) > 0 {
		return apperror.ValidationFields(fields)
	}
	if model.NetPay(base, bonuses, deductions).IsNegative() {
		return apperror.ValidationFields(map[string]string{"deducciones": "exceed salario_base plus bonificaciones"})
	}
	return nil
}

func (s *payrollService) ensurePeriodFree(ctx context.Context, employeeID uint, month, year int, exceptID uint) error {
	existing, err := s.repos.Payrolls.FindByPeriod(ctx, employeeID, month, year)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Classify(err, "check payroll period")
	}
	if existing.ID != exceptID {
		return apperror.Conflict("payroll of employee %d for %02d/%d already exists", employeeID, month, year)
	}
	return nil
}

func (s *payrollService) Create(ctx context.Context, req CreatePayrollRequest) (*model.Payroll, error) {
	emp, err := s.repos.Employees.FindByID(ctx, req.EmployeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ReferenceNotFound("empleado", req.EmployeeID)
	}
	if err != nil {
		return nil, apperror.Classify(err, "check employee")
	}

	base := emp.Salary
	if req.BaseSalary != nil {
		base = *req.BaseSalary
	}
	bonuses := derefDecimal(req.Bonuses)
	deductions := derefDecimal(req.Deductions)
	if err := checkPayAmounts(base, bonuses, deductions); err != nil {
		return nil, err
	}
	if err := s.ensurePeriodFree(ctx, req.EmployeeID, req.Month, req.Year, 0); err != nil {
		return nil, err
	}

	p := &model.Payroll{
		EmployeeID:  req.EmployeeID,
		Month:       req.Month,
		Year:        req.Year,
		BaseSalary:  base,
		Bonuses:     bonuses,
		Deductions:  deductions,
		NetSalary:   model.NetPay(base, bonuses, deductions),
		PaymentDate: req.PaymentDate,
		Notes:       strings.TrimSpace(req.Notes),
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Payrolls.Create(txCtx, p); err != nil {
			return apperror.Classify(err, "create payroll")
		}
		return s.audit.record(txCtx, model.ActionCreatePayroll, EntityPayroll, p.ID, map[string]interface{}{
			"empleado_id":  p.EmployeeID,
			"mes":          p.Month,
			"anio":         p.Year,
			"salario_neto": p.NetSalary,
		})
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityPayroll, events.ActionCreated, p.ID, p)
	if s.notify != nil {
		s.notify.NotifyEmployee(ctx, p.EmployeeID, model.NotificationInfo,
			"Nómina disponible", "Se registró la nómina del periodo "+periodLabel(p.Month, p.Year))
	}
	return p, nil
}

func periodLabel(month, year int) string {
	return fmt.Sprintf("%02d/%d", month, year)
}

func (s *payrollService) List(ctx context.Context, page, limit int) ([]model.Payroll, int64, error) {
	items, total, err := s.repos.Payrolls.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Classify(err, "list payrolls")
	}
	return items, total, nil
}

func (s *payrollService) Get(ctx context.Context, id uint) (*model.Payroll, error) {
	p, err := s.repos.Payrolls.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "nomina", id)
	}
	return p, nil
}

func (s *payrollService) ListByEmployee(ctx context.Context, employeeID uint) ([]model.Payroll, error) {
	if err := requireParent(ctx, s.repos.Employees, employeeID); err != nil {
		return nil, err
	}
	items, err := s.repos.Payrolls.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Classify(err, "list employee payrolls")
	}
	return items, nil
}

func (s *payrollService) Period(ctx context.Context, month, year int) ([]model.Payroll, *PayrollPeriodTotals, error) {
	if month < 1 || month > 12 {
		return nil, nil, apperror.ValidationFields(map[string]string{"mes": "must be between 1 and 12"})
	}
	items, err := s.repos.Payrolls.ListByPeriod(ctx, month, year)
	if err != nil {
		return nil, nil, apperror.Classify(err, "list payroll period")
	}

	totals := &PayrollPeriodTotals{Month: month, Year: year, Count: len(items)}
	for _, p := range items {
		totals.BaseSalary = totals.BaseSalary.Add(p.BaseSalary)
		totals.Bonuses = totals.Bonuses.Add(p.Bonuses)
		totals.Deductions = totals.Deductions.Add(p.Deductions)
		totals.NetSalary = totals.NetSalary.Add(p.NetSalary)
	}
	return items, totals, nil
}

// Update recomputes salario_neto from the merged amounts
func (s *payrollService) Update(ctx context.Context, id uint, req UpdatePayrollRequest) (*model.Payroll, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	fields := map[string]interface{}{}

	if req.Month != nil {
		merged.Month = *req.Month
		fields["mes"] = *req.Month
	}
	if req.Year != nil {
		merged.Year = *req.Year
		fields["anio"] = *req.Year
	}
	if req.BaseSalary != nil {
		merged.BaseSalary = *req.BaseSalary
		fields["salario_base"] = *req.BaseSalary
	}
	if req.Bonuses != nil {
		merged.Bonuses = *req.Bonuses
		fields["bonificaciones"] = *req.Bonuses
	}
	if req.Deductions != nil {
		merged.Deductions = *req.Deductions
		fields["deducciones"] = *req.Deductions
	}
	if req.PaymentDate != nil {
		fields["fecha_pago"] = *req.PaymentDate
	}
	if req.Notes != nil {
		fields["observaciones"] = strings.TrimSpace(*req.Notes)
	}
	if len(fields) == 0 {
		return current, nil
	}

	if err := checkPayAmounts(merged.BaseSalary, merged.Bonuses, merged.Deductions); err != nil {
		return nil, err
	}
	if req.Month != nil || req.Year != nil {
		if err := s.ensurePeriodFree(ctx, merged.EmployeeID, merged.Month, merged.Year, id); err != nil {
			return nil, err
		}
	}
	fields["salario_neto"] = model.NetPay(merged.BaseSalary, merged.Bonuses, merged.Deductions)

	if err := s.repos.Payrolls.UpdateFields(ctx, id, fields); err != nil {
		return nil, loadErr(err, "nomina", id)
	}
	emit(ctx, s.pub, EntityPayroll, events.ActionUpdated, id, fields)
	return s.Get(ctx, id)
}

func (s *payrollService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repos.Payrolls.Delete(ctx, id)
	if err != nil {
		return false, apperror.Classify(err, "delete payroll")
	}
	if deleted {
		emit(ctx, s.pub, EntityPayroll, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}
