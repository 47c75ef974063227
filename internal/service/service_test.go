package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/auth"
	"rrhh/internal/database/dbtest"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"
	"rrhh/internal/seed"
	"rrhh/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePusher struct {
	mu   sync.Mutex
	sent map[uint][]interface{}
}

func (p *fakePusher) SendToUser(userID uint, payload interface{}) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[uint][]interface{}{}
	}
	p.sent[userID] = append(p.sent[userID], payload)
	return 1
}

func (p *fakePusher) count(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent[userID])
}

type fixture struct {
	ctx      context.Context
	repos    *repository.Repositories
	svc      *service.Services
	tokens   *auth.TokenManager
	recorder *events.Recorder
	pusher   *fakePusher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	data, err := seed.Defaults()
	require.NoError(t, err)

	repos := repository.NewRepositories(dbtest.New(t))
	f := &fixture{
		ctx:      context.Background(),
		repos:    repos,
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
		recorder: &events.Recorder{},
		pusher:   &fakePusher{},
	}
	f.svc = service.NewServices(repos, f.tokens, f.recorder, f.pusher, data)

	_, err = f.svc.Seed.Run(f.ctx, false)
	require.NoError(t, err)
	return f
}

func datePtr(s string) *model.Date {
	d := model.MustDate(s)
	return &d
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func (f *fixture) employee(t *testing.T, email string) *model.Employee {
	t.Helper()
	emp, err := f.svc.Employees.Create(f.ctx, service.CreateEmployeeRequest{
		FirstName: "José",
		LastName:  "Núñez",
		Email:     email,
		HireDate:  datePtr("2022-03-01"),
		Salary:    money("20000.00"),
	})
	require.NoError(t, err)
	return emp
}

func (f *fixture) countRows(t *testing.T, table string) int64 {
	t.Helper()
	var (
		n   int64
		err error
	)
	switch table {
	case "empleados":
		_, n, err = f.repos.Employees.List(f.ctx, 1, 1)
	case "contratos":
		_, n, err = f.repos.Contracts.List(f.ctx, 1, 1)
	case "nominas":
		_, n, err = f.repos.Payrolls.List(f.ctx, 1, 1)
	case "asistencias":
		_, n, err = f.repos.Attendance.List(f.ctx, 1, 1)
	case "vacaciones":
		_, n, err = f.repos.Vacations.List(f.ctx, 1, 1)
	case "evaluaciones":
		_, n, err = f.repos.Evaluations.List(f.ctx, 1, 1)
	case "capacitaciones":
		_, n, err = f.repos.Trainings.List(f.ctx, 1, 1)
	default:
		t.Fatalf("unknown table %s", table)
	}
	require.NoError(t, err)
	return n
}

func TestEmployeeCreateRejectsUnknownDepartment(t *testing.T) {
	f := newFixture(t)
	dept := uint(9999)

	_, err := f.svc.Employees.Create(f.ctx, service.CreateEmployeeRequest{
		FirstName:    "Ana",
		LastName:     "López",
		Email:        "ana@example.com",
		HireDate:     datePtr("2024-01-15"),
		Salary:       money("1000"),
		DepartmentID: &dept,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))
	assert.Zero(t, f.countRows(t, "empleados"))
}

func TestEmployeeCreateDefaultsAndConflicts(t *testing.T) {
	f := newFixture(t)

	depts, _, err := f.svc.Departments.List(f.ctx, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, depts)

	pos, err := f.svc.Positions.Create(f.ctx, service.CreatePositionRequest{Title: "Analista", BaseSalary: money("18000")})
	require.NoError(t, err)

	emp, err := f.svc.Employees.Create(f.ctx, service.CreateEmployeeRequest{
		FirstName:    "Ana",
		LastName:     "López",
		Email:        "  Ana@Example.com ",
		HireDate:     datePtr("2024-01-15"),
		Salary:       money("18000"),
		DepartmentID: &depts[0].ID,
		PositionID:   &pos.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, emp.ID)
	assert.Equal(t, "ana@example.com", emp.Email)
	assert.Equal(t, model.EmployeeActive, emp.Status)
	assert.Equal(t, "Analista", emp.PositionTitle)
	require.NotNil(t, emp.Department)
	assert.Equal(t, depts[0].Name, emp.Department.Name)

	_, err = f.svc.Employees.Create(f.ctx, service.CreateEmployeeRequest{
		FirstName: "Otra",
		LastName:  "Persona",
		Email:     "ana@example.com",
		HireDate:  datePtr("2024-01-15"),
		Salary:    money("1"),
	})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	evts := f.recorder.Events()
	require.NotEmpty(t, evts)
	assert.Equal(t, "rrhh.empleados.created", evts[len(evts)-1].Subject())
}

func TestEmployeePartialUpdateRoundTrip(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "jose@example.com")

	updated, err := f.svc.Employees.Update(f.ctx, emp.ID, service.UpdateEmployeeRequest{Phone: strPtr("555-0101")})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, emp.FirstName, updated.FirstName)
	assert.Equal(t, emp.LastName, updated.LastName)
	assert.Equal(t, emp.Email, updated.Email)
	assert.Equal(t, emp.HireDate.String(), updated.HireDate.String())
	assert.True(t, emp.Salary.Equal(updated.Salary))

	_, err = f.svc.Employees.Update(f.ctx, emp.ID, service.UpdateEmployeeRequest{LastName: strPtr("Ibáñez")})
	require.NoError(t, err)

	found, total, err := f.svc.Employees.List(f.ctx, service.EmployeeListFilter{Search: "IBANEZ"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, emp.ID, found[0].ID)

	_, err = f.svc.Employees.Update(f.ctx, 777, service.UpdateEmployeeRequest{Phone: strPtr("1")})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	bad := uint(4040)
	_, err = f.svc.Employees.Update(f.ctx, emp.ID, service.UpdateEmployeeRequest{DepartmentID: &bad})
	assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))
}

func TestDeleteMissingReturnsFalse(t *testing.T) {
	f := newFixture(t)

	deleted, err := f.svc.Employees.Delete(f.ctx, 12345)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = f.svc.Contracts.Delete(f.ctx, 12345)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = f.svc.Trainings.Delete(f.ctx, 12345)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestEmployeeDeleteCascadesAndAudits(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "cascade@example.com")

	_, err := f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: emp.ID,
		Type:       model.ContractIndefinite,
		Salary:     money("20000"),
		StartDate:  datePtr("2022-03-01"),
	})
	require.NoError(t, err)

	deleted, err := f.svc.Employees.Delete(f.ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, f.countRows(t, "contratos"))

	logs, _, err := f.svc.Audit.GetAuditLogs(f.ctx, service.AuditLogFilter{Action: model.ActionDeleteEmployee})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestEmployeeSummary(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "summary@example.com")

	_, err := f.svc.Evaluations.Create(f.ctx, service.CreateEvaluationRequest{
		EmployeeID: emp.ID, Date: datePtr("2024-06-30"), Evaluator: "Jefa", Score: func() *float64 { v := 80.0; return &v }(),
	})
	require.NoError(t, err)
	_, err = f.svc.Evaluations.Create(f.ctx, service.CreateEvaluationRequest{
		EmployeeID: emp.ID, Date: datePtr("2024-12-31"), Evaluator: "Jefa", Score: func() *float64 { v := 90.0; return &v }(),
	})
	require.NoError(t, err)

	summary, err := f.svc.Employees.Summary(f.ctx, emp.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Records.Evaluations)
	assert.InDelta(t, 85.0, summary.AverageScore, 0.001)
	assert.Nil(t, summary.ActiveContract)
}

func TestContractKeepsSingleActive(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "contract@example.com")

	first, err := f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: emp.ID,
		Type:       model.ContractTemporary,
		Salary:     money("15000"),
		StartDate:  datePtr("2022-03-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ContractActive, first.Status)

	second, err := f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: emp.ID,
		Type:       model.ContractIndefinite,
		Salary:     money("21000"),
		StartDate:  datePtr("2023-03-01"),
	})
	require.NoError(t, err)

	reloaded, err := f.svc.Contracts.Get(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractFinished, reloaded.Status)
	require.NotNil(t, reloaded.EndDate)
	assert.Equal(t, "2023-03-01", reloaded.EndDate.String())

	active, err := f.repos.Contracts.ListActive(f.ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	closed, _, err := f.svc.Audit.GetAuditLogs(f.ctx, service.AuditLogFilter{Action: model.ActionCloseContract})
	require.NoError(t, err)
	assert.Len(t, closed, 1)

	_, err = f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: emp.ID,
		Type:       model.ContractTemporary,
		Salary:     money("100"),
		StartDate:  datePtr("2024-05-01"),
		EndDate:    datePtr("2024-04-01"),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	_, err = f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: 999,
		Type:       model.ContractTemporary,
		Salary:     money("100"),
		StartDate:  datePtr("2024-05-01"),
	})
	assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))
}

func TestContractBackdatedActiveIsRejected(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "backdated@example.com")

	current, err := f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: emp.ID,
		Type:       model.ContractIndefinite,
		Salary:     money("21000"),
		StartDate:  datePtr("2024-06-01"),
	})
	require.NoError(t, err)

	_, err = f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: emp.ID,
		Type:       model.ContractTemporary,
		Salary:     money("15000"),
		StartDate:  datePtr("2023-01-01"),
	})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	got, err := f.svc.Contracts.Get(f.ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractActive, got.Status)
	assert.Nil(t, got.EndDate)

	all, err := f.svc.Contracts.ListByEmployee(f.ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// a finished contract may still be recorded for the past
	_, err = f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: emp.ID,
		Type:       model.ContractTemporary,
		Salary:     money("15000"),
		StartDate:  datePtr("2023-01-01"),
		EndDate:    datePtr("2023-12-31"),
		Status:     model.ContractFinished,
	})
	require.NoError(t, err)

	got, err = f.svc.Contracts.Get(f.ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractActive, got.Status)
}

func TestChildCreateRejectsMissingEmployee(t *testing.T) {
	f := newFixture(t)
	f.employee(t, "owner@example.com")
	const missing = uint(9999)
	score := 80.0

	tests := []struct {
		table  string
		create func() error
	}{
		{table: "contratos", create: func() error {
			_, err := f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
				EmployeeID: missing, Type: model.ContractTemporary, Salary: money("100"), StartDate: datePtr("2024-01-01"),
			})
			return err
		}},
		{table: "asistencias", create: func() error {
			_, err := f.svc.Attendance.Create(f.ctx, service.CreateAttendanceRequest{
				EmployeeID: missing, Date: datePtr("2024-05-02"), CheckIn: "08:00",
			})
			return err
		}},
		{table: "nominas", create: func() error {
			_, err := f.svc.Payrolls.Create(f.ctx, service.CreatePayrollRequest{EmployeeID: missing, Month: 5, Year: 2024})
			return err
		}},
		{table: "vacaciones", create: func() error {
			_, err := f.svc.Vacations.Create(f.ctx, service.CreateVacationRequest{
				EmployeeID: missing, StartDate: datePtr("2024-07-01"), EndDate: datePtr("2024-07-05"),
			})
			return err
		}},
		{table: "evaluaciones", create: func() error {
			_, err := f.svc.Evaluations.Create(f.ctx, service.CreateEvaluationRequest{
				EmployeeID: missing, Date: datePtr("2024-06-30"), Evaluator: "Marta", Score: &score,
			})
			return err
		}},
		{table: "capacitaciones", create: func() error {
			_, err := f.svc.Trainings.Create(f.ctx, service.CreateTrainingRequest{
				EmployeeID: missing, Course: "Excel", StartDate: datePtr("2024-03-01"),
			})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			before := f.countRows(t, tt.table)
			err := tt.create()
			assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))
			assert.Equal(t, before, f.countRows(t, tt.table))
		})
	}
}

func TestChildUpdateRejectsMissingEmployee(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "keeper@example.com")
	missing := uint(9999)

	contract, err := f.svc.Contracts.Create(f.ctx, service.CreateContractRequest{
		EmployeeID: emp.ID, Type: model.ContractTemporary, Salary: money("100"), StartDate: datePtr("2024-01-01"),
	})
	require.NoError(t, err)
	attendance, err := f.svc.Attendance.Create(f.ctx, service.CreateAttendanceRequest{
		EmployeeID: emp.ID, Date: datePtr("2024-05-02"), CheckIn: "08:00",
	})
	require.NoError(t, err)

	t.Run("contract", func(t *testing.T) {
		_, err := f.svc.Contracts.Update(f.ctx, contract.ID, service.UpdateContractRequest{
			EmployeeID: &missing, Salary: money("999"),
		})
		assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))

		got, err := f.svc.Contracts.Get(f.ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, emp.ID, got.EmployeeID)
		assert.True(t, got.Salary.Equal(decimal.RequireFromString("100")))
	})

	t.Run("attendance", func(t *testing.T) {
		_, err := f.svc.Attendance.Update(f.ctx, attendance.ID, service.UpdateAttendanceRequest{
			EmployeeID: &missing, CheckIn: strPtr("09:30"),
		})
		assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))

		got, err := f.svc.Attendance.Get(f.ctx, attendance.ID)
		require.NoError(t, err)
		assert.Equal(t, emp.ID, got.EmployeeID)
		assert.Equal(t, "08:00", got.CheckIn)
	})

	t.Run("employee department and position", func(t *testing.T) {
		_, err := f.svc.Employees.Update(f.ctx, emp.ID, service.UpdateEmployeeRequest{
			DepartmentID: &missing, FirstName: strPtr("Cambiado"),
		})
		assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))

		_, err = f.svc.Employees.Update(f.ctx, emp.ID, service.UpdateEmployeeRequest{PositionID: &missing})
		assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))

		got, err := f.svc.Employees.Get(f.ctx, emp.ID)
		require.NoError(t, err)
		assert.Equal(t, emp.FirstName, got.FirstName)
		assert.Equal(t, emp.DepartmentID, got.DepartmentID)
		assert.Equal(t, emp.PositionID, got.PositionID)
	})
}

func TestAttendanceRules(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "clock@example.com")

	_, err := f.svc.Attendance.Create(f.ctx, service.CreateAttendanceRequest{
		EmployeeID: emp.ID, Date: datePtr("2024-05-02"), CheckIn: "17:00", CheckOut: strPtr("08:00"),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	in, err := f.svc.Attendance.CheckIn(f.ctx, service.ClockRequest{EmployeeID: emp.ID, Date: datePtr("2024-05-02"), Time: "08:00"})
	require.NoError(t, err)
	assert.Nil(t, in.CheckOut)

	_, err = f.svc.Attendance.CheckIn(f.ctx, service.ClockRequest{EmployeeID: emp.ID, Date: datePtr("2024-05-02"), Time: "09:00"})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	out, err := f.svc.Attendance.CheckOut(f.ctx, service.ClockRequest{EmployeeID: emp.ID, Date: datePtr("2024-05-02"), Time: "16:30"})
	require.NoError(t, err)
	require.NotNil(t, out.CheckOut)
	assert.Equal(t, "16:30", *out.CheckOut)
	assert.InDelta(t, 8.5, out.WorkedHours(), 0.001)

	_, err = f.svc.Attendance.CheckOut(f.ctx, service.ClockRequest{EmployeeID: emp.ID, Date: datePtr("2024-05-02"), Time: "17:00"})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	_, err = f.svc.Attendance.CheckOut(f.ctx, service.ClockRequest{EmployeeID: emp.ID, Date: datePtr("2024-05-03"), Time: "17:00"})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	rows, err := f.svc.Attendance.ListByRange(f.ctx, emp.ID, model.MustDate("2024-05-01"), model.MustDate("2024-05-31"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPayrollNetAndUniquePeriod(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "pay@example.com")

	p, err := f.svc.Payrolls.Create(f.ctx, service.CreatePayrollRequest{
		EmployeeID: emp.ID,
		Month:      5,
		Year:       2024,
		Bonuses:    money("1500.50"),
		Deductions: money("2500.25"),
	})
	require.NoError(t, err)
	assert.True(t, p.BaseSalary.Equal(decimal.RequireFromString("20000")), "base defaults to employee salary")
	assert.True(t, p.NetSalary.Equal(decimal.RequireFromString("19000.25")), p.NetSalary.String())

	_, err = f.svc.Payrolls.Create(f.ctx, service.CreatePayrollRequest{EmployeeID: emp.ID, Month: 5, Year: 2024})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
	assert.EqualValues(t, 1, f.countRows(t, "nominas"))

	updated, err := f.svc.Payrolls.Update(f.ctx, p.ID, service.UpdatePayrollRequest{Deductions: money("0")})
	require.NoError(t, err)
	assert.True(t, updated.NetSalary.Equal(decimal.RequireFromString("21500.50")), updated.NetSalary.String())
	assert.True(t, updated.Bonuses.Equal(decimal.RequireFromString("1500.50")))

	_, totals, err := f.svc.Payrolls.Period(f.ctx, 5, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Count)
	assert.True(t, totals.NetSalary.Equal(updated.NetSalary))

	_, err = f.svc.Payrolls.Create(f.ctx, service.CreatePayrollRequest{
		EmployeeID: emp.ID, Month: 6, Year: 2024, Deductions: money("-1"),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestVacationReviewFlow(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "leave@example.com")

	user, err := f.svc.Users.Create(f.ctx, service.CreateUserRequest{
		Name: "José Núñez", Email: "LEAVE@example.com", Password: "secreto1",
	})
	require.NoError(t, err)
	require.NotNil(t, user.EmployeeID, "user mirrors the employee with the same email")
	assert.Equal(t, emp.ID, *user.EmployeeID)

	v, err := f.svc.Vacations.Create(f.ctx, service.CreateVacationRequest{
		EmployeeID: emp.ID, StartDate: datePtr("2024-07-01"), EndDate: datePtr("2024-07-10"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.VacationPending, v.Status)
	assert.Equal(t, 10, v.Days)
	assert.Equal(t, model.LeaveVacation, v.Type)

	_, err = f.svc.Vacations.Create(f.ctx, service.CreateVacationRequest{
		EmployeeID: emp.ID, StartDate: datePtr("2024-07-05"), EndDate: datePtr("2024-07-12"),
	})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	reviewer := auth.WithActor(f.ctx, auth.Actor{ID: user.ID, Role: model.RoleHR})
	approved, err := f.svc.Vacations.Approve(reviewer, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VacationApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, user.ID, *approved.ReviewedBy)

	_, err = f.svc.Vacations.Approve(reviewer, v.ID)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
	_, err = f.svc.Vacations.Reject(reviewer, v.ID, "sin cupo")
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	notes, total, err := f.svc.Notifications.ListMine(f.ctx, user.ID, true, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationVacation, notes[0].Type)
	assert.Equal(t, 1, f.pusher.count(user.ID))

	other, err := f.svc.Vacations.Create(f.ctx, service.CreateVacationRequest{
		EmployeeID: emp.ID, Type: model.LeavePermission, StartDate: datePtr("2024-09-02"), EndDate: datePtr("2024-09-02"),
	})
	require.NoError(t, err)
	_, err = f.svc.Vacations.Reject(reviewer, other.ID, "  ")
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	rejected, err := f.svc.Vacations.Reject(reviewer, other.ID, "cierre contable")
	require.NoError(t, err)
	assert.Equal(t, model.VacationRejected, rejected.Status)
	assert.Equal(t, "cierre contable", rejected.RejectionReason)

	_, err = f.svc.Vacations.Update(f.ctx, other.ID, service.UpdateVacationRequest{Reason: strPtr("x")})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
}

func TestEvaluationScoreRange(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "eval@example.com")
	score := 101.0

	_, err := f.svc.Evaluations.Create(f.ctx, service.CreateEvaluationRequest{
		EmployeeID: emp.ID, Date: datePtr("2024-01-01"), Evaluator: "X", Score: &score,
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	_, err = f.svc.Evaluations.ListByEmployee(f.ctx, 5555)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.Users.Create(f.ctx, service.CreateUserRequest{
		Name: "Admin", Email: "root@example.com", Password: "admin123", Role: model.RoleAdmin,
	})
	require.NoError(t, err)

	res, err := f.svc.Users.Login(f.ctx, service.LoginUserRequest{Email: "ROOT@example.com", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, model.RoleAdmin, res.User.Role)

	claims, err := f.tokens.Parse(res.AccessToken)
	require.NoError(t, err)
	sub, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, sub)

	_, err = f.svc.Users.Login(f.ctx, service.LoginUserRequest{Email: "root@example.com", Password: "wrong-pass"})
	assert.Equal(t, apperror.CodeUnauthorized, apperror.CodeOf(err))
	_, err = f.svc.Users.Login(f.ctx, service.LoginUserRequest{Email: "nobody@example.com", Password: "admin123"})
	assert.Equal(t, apperror.CodeUnauthorized, apperror.CodeOf(err))

	second, err := f.svc.Users.Create(f.ctx, service.CreateUserRequest{Name: "B", Email: "b@example.com", Password: "bbbbbb"})
	require.NoError(t, err)
	_, err = f.svc.Users.SetActive(f.ctx, second.ID, false)
	require.NoError(t, err)
	_, err = f.svc.Users.Login(f.ctx, service.LoginUserRequest{Email: "b@example.com", Password: "bbbbbb"})
	assert.Equal(t, apperror.CodeUnauthorized, apperror.CodeOf(err))

	me, err := f.svc.Users.Me(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, me.Permissions, "roles.manage")
	require.NotNil(t, me.LastLoginAt)
}

func TestUserRoleChanges(t *testing.T) {
	f := newFixture(t)

	admin, err := f.svc.Users.Create(f.ctx, service.CreateUserRequest{
		Name: "Admin", Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin,
	})
	require.NoError(t, err)
	target, err := f.svc.Users.Create(f.ctx, service.CreateUserRequest{Name: "T", Email: "t@example.com", Password: "tttttt"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, target.Role)

	_, err = f.svc.Users.Create(f.ctx, service.CreateUserRequest{Name: "Dup", Email: "T@example.com", Password: "tttttt"})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	_, err = f.svc.Users.ChangeRole(f.ctx, target.ID, service.ChangeRoleRequest{Role: "ghost"})
	assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))

	ctx := auth.WithActor(f.ctx, auth.Actor{ID: admin.ID, Role: model.RoleAdmin})
	changed, err := f.svc.Users.ChangeRole(ctx, target.ID, service.ChangeRoleRequest{Role: model.RoleSupervisor, Reason: "ascenso"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSupervisor, changed.Role)

	history, err := f.svc.Users.RoleHistory(f.ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.RoleEmployee, history[0].PreviousRole)
	assert.Equal(t, model.RoleSupervisor, history[0].NewRole)
	require.NotNil(t, history[0].ChangedBy)
	assert.Equal(t, admin.ID, *history[0].ChangedBy)

	_, err = f.svc.Users.ChangeRole(ctx, admin.ID, service.ChangeRoleRequest{Role: model.RoleHR})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err), "last admin keeps the role")
	_, err = f.svc.Users.SetActive(ctx, admin.ID, false)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
}

func TestRoleSeedingAndProtection(t *testing.T) {
	f := newFixture(t)

	// a second run is a no-op
	_, err := f.svc.Seed.Run(f.ctx, false)
	require.NoError(t, err)

	roles, err := f.svc.Roles.ListRoles(f.ctx)
	require.NoError(t, err)
	require.Len(t, roles, 4)
	assert.Equal(t, model.RoleAdmin, roles[0].Name, "ordered by access level")

	data, err := seed.Defaults()
	require.NoError(t, err)
	assert.Len(t, roles[0].Permissions, len(data.Permissions))

	_, err = f.svc.Roles.DeleteRole(f.ctx, roles[0].ID)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	custom, err := f.svc.Roles.CreateRole(f.ctx, service.CreateRoleRequest{Name: "Auditor", AccessLevel: 20})
	require.NoError(t, err)
	assert.Equal(t, "auditor", custom.Name)
	assert.False(t, custom.IsSystem)

	perms, err := f.svc.Roles.ListPermissions(f.ctx)
	require.NoError(t, err)
	require.NotEmpty(t, perms)

	updated, err := f.svc.Roles.UpdateRolePermissions(f.ctx, custom.ID, service.UpdateRolePermissionsRequest{PermissionIDs: []uint{perms[0].ID}})
	require.NoError(t, err)
	require.Len(t, updated.Permissions, 1)

	ok, err := f.repos.Roles.HasPermission(f.ctx, "auditor", perms[0].Code)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.Roles.UpdateRolePermissions(f.ctx, custom.ID, service.UpdateRolePermissionsRequest{PermissionIDs: []uint{99999}})
	assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))

	deleted, err := f.svc.Roles.DeleteRole(f.ctx, custom.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestSeedExampleAccountsOnlyOnEmptyTable(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Seed.Run(f.ctx, true)
	require.NoError(t, err)
	assert.Positive(t, res.Accounts)

	res, err = f.svc.Seed.Run(f.ctx, true)
	require.NoError(t, err)
	assert.Zero(t, res.Accounts)
	assert.Zero(t, res.Departments)
}

func TestNotificationOwnership(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Users.Create(f.ctx, service.CreateUserRequest{Name: "A", Email: "a@example.com", Password: "aaaaaa"})
	require.NoError(t, err)
	b, err := f.svc.Users.Create(f.ctx, service.CreateUserRequest{Name: "B", Email: "b@example.com", Password: "bbbbbb"})
	require.NoError(t, err)

	n, err := f.svc.Notifications.Create(f.ctx, service.CreateNotificationRequest{UserID: a.ID, Title: "Hola"})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationInfo, n.Type)
	assert.Equal(t, 1, f.pusher.count(a.ID))

	ok, err := f.svc.Notifications.MarkRead(f.ctx, b.ID, n.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.Notifications.MarkRead(f.ctx, a.ID, n.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	unread, err := f.svc.Notifications.UnreadCount(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = f.svc.Notifications.Create(f.ctx, service.CreateNotificationRequest{UserID: 999, Title: "x"})
	assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(err))
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	emp := f.employee(t, "stats@example.com")
	_, err := f.svc.Payrolls.Create(f.ctx, service.CreatePayrollRequest{EmployeeID: emp.ID, Month: 3, Year: 2024})
	require.NoError(t, err)
	_, err = f.svc.Vacations.Create(f.ctx, service.CreateVacationRequest{
		EmployeeID: emp.ID, StartDate: datePtr("2024-03-10"), EndDate: datePtr("2024-03-12"),
	})
	require.NoError(t, err)

	stats, err := f.svc.Statistics.GetStatistics(f.ctx, model.MustDate("2024-01-01"), model.MustDate("2024-12-31"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalEmployees)
	assert.EqualValues(t, 1, stats.ActiveEmployees)
	assert.EqualValues(t, 1, stats.PendingVacations)
	assert.True(t, stats.PayrollNetTotal.Equal(decimal.RequireFromString("20000")), stats.PayrollNetTotal.String())
	require.Len(t, stats.ByDepartment, 1)
	assert.Nil(t, stats.ByDepartment[0].DepartmentID)

	_, err = f.svc.Statistics.GetStatistics(f.ctx, model.MustDate("2024-12-31"), model.MustDate("2024-01-01"))
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}
