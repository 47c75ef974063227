package repository

import (
	"rrhh/internal/model"

	"gorm.io/gorm"
)

// Repositories bundles every repository built over one connection
type Repositories struct {
	Tx            TransactionManager
	Employees     EmployeeRepository
	Departments   DepartmentRepository
	Positions     PositionRepository
	Contracts     ContractRepository
	Attendance    AttendanceRepository
	Payrolls      PayrollRepository
	Vacations     VacationRepository
	Evaluations   EvaluationRepository
	Trainings     ChildRepository[model.Training]
	Users         UserRepository
	RoleChanges   RoleChangeRepository
	Roles         RoleRepository
	Notifications NotificationRepository
	Audit         AuditRepository
	Statistics    StatisticsRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tx:            NewTransactionManager(db),
		Employees:     NewEmployeeRepository(db),
		Departments:   NewDepartmentRepository(db),
		Positions:     NewPositionRepository(db),
		Contracts:     NewContractRepository(db),
		Attendance:    NewAttendanceRepository(db),
		Payrolls:      NewPayrollRepository(db),
		Vacations:     NewVacationRepository(db),
		Evaluations:   NewEvaluationRepository(db),
		Trainings:     NewTrainingRepository(db),
		Users:         NewUserRepository(db),
		RoleChanges:   NewRoleChangeRepository(db),
		Roles:         NewRoleRepository(db),
		Notifications: NewNotificationRepository(db),
		Audit:         NewAuditRepository(db),
		Statistics:    NewStatisticsRepository(db),
	}
}
