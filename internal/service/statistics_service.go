package service

import (
	"context"

	"rrhh/internal/apperror"
	"rrhh/internal/model"
	"rrhh/internal/repository"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate model.Date) (model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics reports current headcount figures plus the activity recorded
// between startDate and endDate
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate model.Date) (model.StatisticsResponse, error) {
	var response model.StatisticsResponse
	if endDate.Before(startDate.Time) {
		return response, apperror.ValidationFields(map[string]string{"hasta": "must not be before desde"})
	}
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	var err error
	if response.TotalEmployees, err = s.repo.CountEmployees(ctx, ""); err != nil {
		return response, apperror.Classify(err, "count employees")
	}
	if response.ActiveEmployees, err = s.repo.CountEmployees(ctx, model.EmployeeActive); err != nil {
		return response, apperror.Classify(err, "count active employees")
	}
	if response.ActiveContracts, err = s.repo.CountActiveContracts(ctx); err != nil {
		return response, apperror.Classify(err, "count active contracts")
	}
	if response.PendingVacations, err = s.repo.CountPendingVacations(ctx); err != nil {
		return response, apperror.Classify(err, "count pending vacations")
	}
	if response.AttendanceEntries, err = s.repo.CountAttendance(ctx, startDate, endDate); err != nil {
		return response, apperror.Classify(err, "count attendance")
	}
	if response.PayrollNetTotal, err = s.repo.PayrollNetTotal(ctx, startDate, endDate); err != nil {
		return response, apperror.Classify(err, "sum payroll")
	}
	if response.AverageScore, err = s.repo.AverageScore(ctx, startDate, endDate); err != nil {
		return response, apperror.Classify(err, "average evaluation score")
	}
	if response.ByDepartment, err = s.repo.HeadcountByDepartment(ctx); err != nil {
		return response, apperror.Classify(err, "headcount by department")
	}

	return response, nil
}
