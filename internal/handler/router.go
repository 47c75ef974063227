package handler

import (
	"rrhh/internal/middleware"
	"rrhh/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterAPI mounts every resource of the API under /api.
// limiter may be nil.
func RegisterAPI(router gin.IRouter, svc *service.Services, guard *middleware.Authenticator, limiter *middleware.LoginRateLimiter) {
	api := router.Group("/api")

	NewUserHandler(svc.Users, guard, limiter).RegisterRoutes(api)
	NewRoleHandler(svc.Roles, guard).RegisterRoutes(api)
	NewEmployeeHandler(svc, guard).RegisterRoutes(api)
	NewOrganizationHandler(svc.Departments, svc.Positions, guard).RegisterRoutes(api)
	NewContractHandler(svc.Contracts, guard).RegisterRoutes(api)
	NewAttendanceHandler(svc.Attendance, guard).RegisterRoutes(api)
	NewPayrollHandler(svc.Payrolls, guard).RegisterRoutes(api)
	NewVacationHandler(svc.Vacations, guard).RegisterRoutes(api)
	NewDevelopmentHandler(svc.Evaluations, svc.Trainings, guard).RegisterRoutes(api)
	NewNotificationHandler(svc.Notifications, guard).RegisterRoutes(api)
	NewAuditHandler(svc.Audit, guard).RegisterRoutes(api)
	NewStatisticsHandler(svc.Statistics, guard).RegisterRoutes(api)
}
