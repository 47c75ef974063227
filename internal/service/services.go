package service

import (
	"rrhh/internal/auth"
	"rrhh/internal/events"
	"rrhh/internal/repository"
	"rrhh/internal/seed"
)

// Services bundles the business layer built over one set of repositories
type Services struct {
	Employees     EmployeeService
	Departments   DepartmentService
	Positions     PositionService
	Contracts     ContractService
	Attendance    AttendanceService
	Payrolls      PayrollService
	Vacations     VacationService
	Evaluations   EvaluationService
	Trainings     TrainingService
	Users         UserService
	Roles         RoleService
	Notifications NotificationService
	Audit         AuditService
	Statistics    StatisticsService
	Seed          SeedService
}

// NewServices wires every service. pusher may be nil when no websocket hub
// runs; pub may be events.NopPublisher.
func NewServices(repos *repository.Repositories, tokens *auth.TokenManager, pub events.Publisher, pusher Pusher, seedData *seed.Data) *Services {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	notifications := NewNotificationService(repos, pusher, pub)
	roles := NewRoleService(repos, pub)

	return &Services{
		Employees:     NewEmployeeService(repos, pub),
		Departments:   NewDepartmentService(repos, pub),
		Positions:     NewPositionService(repos, pub),
		Contracts:     NewContractService(repos, pub, notifications),
		Attendance:    NewAttendanceService(repos, pub),
		Payrolls:      NewPayrollService(repos, pub, notifications),
		Vacations:     NewVacationService(repos, pub, notifications),
		Evaluations:   NewEvaluationService(repos, pub),
		Trainings:     NewTrainingService(repos, pub),
		Users:         NewUserService(repos, tokens, pub),
		Roles:         roles,
		Notifications: notifications,
		Audit:         NewAuditService(repos.Audit),
		Statistics:    NewStatisticsService(repos.Statistics),
		Seed:          NewSeedService(repos, roles, seedData),
	}
}
