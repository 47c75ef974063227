package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/database/dbtest"
	"rrhh/internal/model"
	"rrhh/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newEmployee(t *testing.T, db *gorm.DB, email string) *model.Employee {
	t.Helper()
	emp := &model.Employee{
		FirstName: "Ana",
		LastName:  "Pérez",
		Email:     email,
		HireDate:  model.MustDate("2023-02-01"),
		Salary:    decimal.NewFromInt(15000),
		Status:    model.EmployeeActive,
		SearchKey: "ana perez " + email,
	}
	require.NoError(t, repository.NewEmployeeRepository(db).Create(context.Background(), emp))
	return emp
}

func TestCRUDUpdateFieldsIsPartial(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewEmployeeRepository(db)
	emp := newEmployee(t, db, "ana@example.com")

	require.NoError(t, repo.UpdateFields(ctx, emp.ID, map[string]interface{}{"telefono": "9999-0000"}))

	got, err := repo.FindByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "9999-0000", got.Phone)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.True(t, got.Salary.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, "2023-02-01", got.HireDate.String())

	err = repo.UpdateFields(ctx, 424242, map[string]interface{}{"telefono": "1"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCRUDDeleteMissingReturnsFalse(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewEmployeeRepository(db)

	deleted, err := repo.Delete(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, deleted)

	emp := newEmployee(t, db, "borrar@example.com")
	deleted, err = repo.Delete(ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err := repo.Exists(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteEmployeeCascadesToChildren(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	emp := newEmployee(t, db, "cascada@example.com")

	contracts := repository.NewContractRepository(db)
	require.NoError(t, contracts.Create(ctx, &model.Contract{
		EmployeeID: emp.ID, Type: model.ContractIndefinite, Salary: decimal.NewFromInt(1),
		StartDate: model.MustDate("2024-01-01"), Status: model.ContractActive,
	}))

	deleted, err := repository.NewEmployeeRepository(db).Delete(ctx, emp.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	items, err := contracts.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestForeignKeysAreEnforced(t *testing.T) {
	db := dbtest.New(t)
	err := repository.NewContractRepository(db).Create(context.Background(), &model.Contract{
		EmployeeID: 777, Type: model.ContractTemporary, Salary: decimal.NewFromInt(1),
		StartDate: model.MustDate("2024-01-01"), Status: model.ContractActive,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeReferenceNotFound, apperror.CodeOf(apperror.Classify(err, "create contract")))
}

func TestEmployeeSearch(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewEmployeeRepository(db)

	newEmployee(t, db, "uno@example.com")
	other := &model.Employee{
		FirstName: "Luis", LastName: "Gómez", Email: "luis@example.com",
		HireDate: model.MustDate("2022-01-01"), Salary: decimal.NewFromInt(1),
		Status: model.EmployeeInactive, SearchKey: "luis gomez luis@example.com",
	}
	require.NoError(t, repo.Create(ctx, other))

	items, total, err := repo.Search(ctx, repository.EmployeeFilter{Search: "gomez", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Luis", items[0].FirstName)

	_, total, err = repo.Search(ctx, repository.EmployeeFilter{Status: model.EmployeeActive, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestEmployeeSearchMatchesWildcardsLiterally(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewEmployeeRepository(db)

	newEmployee(t, db, "ana@example.com")
	newEmployee(t, db, "ana_b@example.com")
	newEmployee(t, db, `ana\c@example.com`)

	tests := []struct {
		search string
		want   int64
	}{
		{search: "_", want: 1},
		{search: "a_b", want: 1},
		{search: "%", want: 0},
		{search: `\`, want: 1},
		{search: "ana", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			_, total, err := repo.Search(ctx, repository.EmployeeFilter{Search: tt.search, Page: 1, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestContractCloseActive(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewContractRepository(db)
	emp := newEmployee(t, db, "contratos@example.com")

	old := &model.Contract{EmployeeID: emp.ID, Type: model.ContractTemporary, Salary: decimal.NewFromInt(10),
		StartDate: model.MustDate("2023-01-01"), Status: model.ContractActive}
	current := &model.Contract{EmployeeID: emp.ID, Type: model.ContractIndefinite, Salary: decimal.NewFromInt(20),
		StartDate: model.MustDate("2024-01-01"), Status: model.ContractActive}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, current))

	closed, err := repo.CloseActive(ctx, emp.ID, current.ID, model.MustDate("2023-12-31"))
	require.NoError(t, err)
	assert.Equal(t, []uint{old.ID}, closed)

	active, err := repo.ListActive(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, current.ID, active[0].ID)

	got, err := repo.FindByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractFinished, got.Status)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, "2023-12-31", got.EndDate.String())
}

func TestContractCloseActiveSkipsLaterContracts(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewContractRepository(db)
	emp := newEmployee(t, db, "posterior@example.com")

	later := &model.Contract{EmployeeID: emp.ID, Type: model.ContractIndefinite, Salary: decimal.NewFromInt(20),
		StartDate: model.MustDate("2024-06-01"), Status: model.ContractActive}
	require.NoError(t, repo.Create(ctx, later))

	closed, err := repo.CloseActive(ctx, emp.ID, 0, model.MustDate("2023-01-01"))
	require.NoError(t, err)
	assert.Empty(t, closed)

	got, err := repo.FindByID(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractActive, got.Status)
	assert.Nil(t, got.EndDate)
}

func TestPayrollPeriodIsUnique(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewPayrollRepository(db)
	emp := newEmployee(t, db, "nomina@example.com")

	slip := func() *model.Payroll {
		return &model.Payroll{EmployeeID: emp.ID, Month: 5, Year: 2024,
			BaseSalary: decimal.NewFromInt(100), Bonuses: decimal.Zero, Deductions: decimal.Zero, NetSalary: decimal.NewFromInt(100)}
	}
	require.NoError(t, repo.Create(ctx, slip()))
	err := repo.Create(ctx, slip())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(apperror.Classify(err, "create payroll")))

	found, err := repo.FindByPeriod(ctx, emp.ID, 5, 2024)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Month)
}

func TestVacationOverlap(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewVacationRepository(db)
	emp := newEmployee(t, db, "vacaciones@example.com")

	require.NoError(t, repo.Create(ctx, &model.Vacation{
		EmployeeID: emp.ID, Type: model.LeaveVacation, Days: 5, Status: model.VacationPending,
		StartDate: model.MustDate("2024-07-01"), EndDate: model.MustDate("2024-07-05"),
	}))

	n, err := repo.CountOverlapping(ctx, emp.ID, model.MustDate("2024-07-05"), model.MustDate("2024-07-08"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountOverlapping(ctx, emp.ID, model.MustDate("2024-07-06"), model.MustDate("2024-07-08"), 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRolePermissions(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := repository.NewRoleRepository(db)

	role := &model.Role{Name: "auditor", AccessLevel: 10}
	require.NoError(t, repo.FindOrCreateRole(ctx, role))
	perm := &model.Permission{Code: "auditoria.read", Name: "Ver auditoría", Group: "auditoria"}
	require.NoError(t, repo.FindOrCreatePermission(ctx, perm))
	require.NoError(t, repo.ReplacePermissions(ctx, role.ID, []uint{perm.ID}))

	ok, err := repo.HasPermission(ctx, "auditor", "auditoria.read")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasPermission(ctx, "auditor", "usuarios.write")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.ReplacePermissions(ctx, role.ID, nil))
	codes, err := repo.GetPermissionsByRoleName(ctx, "auditor")
	require.NoError(t, err)
	assert.Empty(t, codes)

	deleted, err := repo.Delete(ctx, role.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestNotificationsAreScopedToOwner(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	repo := repository.NewNotificationRepository(db)

	owner := &model.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x", Role: model.RoleEmployee, Active: true}
	other := &model.User{Name: "Other", Email: "other@example.com", PasswordHash: "x", Role: model.RoleEmployee, Active: true}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	n := &model.Notification{UserID: owner.ID, Type: model.NotificationInfo, Title: "Hola"}
	require.NoError(t, repo.Create(ctx, n))

	ok, err := repo.MarkRead(ctx, n.ID, other.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	unread, err := repo.CountUnread(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	marked, err := repo.MarkAllRead(ctx, owner.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	items, total, err := repo.ListByUser(ctx, owner.ID, true, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestRunInTxRollsBack(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	tm := repository.NewTransactionManager(db)
	depts := repository.NewDepartmentRepository(db)

	boom := errors.New("boom")
	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := depts.Create(txCtx, &model.Department{Name: "Ventas"}); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tm.RunInTx(txCtx, func(inner context.Context) error {
			if err := depts.Create(inner, &model.Department{Name: "Compras"}); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := depts.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}
