package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"

	"gorm.io/gorm"
)

type CreateAttendanceRequest struct {
	EmployeeID uint        `json:"empleado_id" binding:"required"`
	Date       *model.Date `json:"fecha" binding:"required"`
	CheckIn    string      `json:"hora_entrada" binding:"required,hora"`
	CheckOut   *string     `json:"hora_salida" binding:"omitempty,hora"`
	Notes      string      `json:"observaciones"`
}

type UpdateAttendanceRequest struct {
	EmployeeID *uint       `json:"empleado_id"`
	Date       *model.Date `json:"fecha"`
	CheckIn    *string     `json:"hora_entrada" binding:"omitempty,hora"`
	CheckOut   *string     `json:"hora_salida" binding:"omitempty,hora"`
	Notes      *string     `json:"observaciones"`
}

// ClockRequest registers a check-in or check-out. Missing values default to
// the current day and time.
type ClockRequest struct {
	EmployeeID uint        `json:"empleado_id" binding:"required"`
	Date       *model.Date `json:"fecha"`
	Time       string      `json:"hora" binding:"omitempty,hora"`
}

type AttendanceService interface {
	Create(ctx context.Context, req CreateAttendanceRequest) (*model.Attendance, error)
	List(ctx context.Context, page, limit int) ([]model.Attendance, int64, error)
	Get(ctx context.Context, id uint) (*model.Attendance, error)
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.Attendance, error)
	ListByRange(ctx context.Context, employeeID uint, from, to model.Date) ([]model.Attendance, error)
	Update(ctx context.Context, id uint, req UpdateAttendanceRequest) (*model.Attendance, error)
	Delete(ctx context.Context, id uint) (bool, error)
	CheckIn(ctx context.Context, req ClockRequest) (*model.Attendance, error)
	CheckOut(ctx context.Context, req ClockRequest) (*model.Attendance, error)
}

type attendanceService struct {
	repos *repository.Repositories
	pub   events.Publisher
	now   func() time.Time
}

func NewAttendanceService(repos *repository.Repositories, pub events.Publisher) AttendanceService {
	return &attendanceService{repos: repos, pub: pub, now: time.Now}
}

// validClockRange checks the HH:MM values and that salida is after entrada
func validClockRange(checkIn string, checkOut *string) error {
	in, err := time.Parse(model.TimeLayout, checkIn)
	if err != nil {
		return apperror.ValidationFields(map[string]string{"hora_entrada": "must be HH:MM"})
	}
	if checkOut == nil {
		return nil
	}
	out, err := time.Parse(model.TimeLayout, *checkOut)
	if err != nil {
		return apperror.ValidationFields(map[string]string{"hora_salida": "must be HH:MM"})
	}
	if !out.After(in) {
		return apperror.ValidationFields(map[string]string{"hora_salida": "must be after hora_entrada"})
	}
	return nil
}

func (s *attendanceService) ensureDayFree(ctx context.Context, employeeID uint, date model.Date, exceptID uint) error {
	existing, err := s.repos.Attendance.FindByEmployeeAndDate(ctx, employeeID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Classify(err, "check attendance day")
	}
	if existing.ID != exceptID {
		return apperror.Conflict("attendance of employee %d on %s already registered", employeeID, date)
	}
	return nil
}

func (s *attendanceService) Create(ctx context.Context, req CreateAttendanceRequest) (*model.Attendance, error) {
	if req.Date == nil || req.Date.IsZero() {
		return nil, apperror.ValidationFields(map[string]string{"fecha": "required"})
	}
	if err := validClockRange(req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}
	if err := requireReference(ctx, s.repos.Employees, "empleado", req.EmployeeID); err != nil {
		return nil, err
	}
	if err := s.ensureDayFree(ctx, req.EmployeeID, *req.Date, 0); err != nil {
		return nil, err
	}

	a := &model.Attendance{
		EmployeeID: req.EmployeeID,
		Date:       *req.Date,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if err := s.repos.Attendance.Create(ctx, a); err != nil {
		return nil, apperror.Classify(err, "create attendance")
	}

	emit(ctx, s.pub, EntityAttendance, events.ActionCreated, a.ID, a)
	return a, nil
}

func (s *attendanceService) List(ctx context.Context, page, limit int) ([]model.Attendance, int64, error) {
	items, total, err := s.repos.Attendance.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Classify(err, "list attendance")
	}
	return items, total, nil
}

func (s *attendanceService) Get(ctx context.Context, id uint) (*model.Attendance, error) {
	a, err := s.repos.Attendance.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "asistencia", id)
	}
	return a, nil
}

func (s *attendanceService) ListByEmployee(ctx context.Context, employeeID uint) ([]model.Attendance, error) {
	if err := requireParent(ctx, s.repos.Employees, employeeID); err != nil {
		return nil, err
	}
	items, err := s.repos.Attendance.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Classify(err, "list employee attendance")
	}
	return items, nil
}

func (s *attendanceService) ListByRange(ctx context.Context, employeeID uint, from, to model.Date) ([]model.Attendance, error) {
	if to.Before(from.Time) {
		return nil, apperror.ValidationFields(map[string]string{"hasta": "must not be before desde"})
	}
	if err := requireParent(ctx, s.repos.Employees, employeeID); err != nil {
		return nil, err
	}
	items, err := s.repos.Attendance.ListByRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, apperror.Classify(err, "list attendance range")
	}
	return items, nil
}

func (s *attendanceService) Update(ctx context.Context, id uint, req UpdateAttendanceRequest) (*model.Attendance, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	fields := map[string]interface{}{}

	if req.EmployeeID != nil {
		if err := requireReference(ctx, s.repos.Employees, "empleado", *req.EmployeeID); err != nil {
			return nil, err
		}
		merged.EmployeeID = *req.EmployeeID
		fields["empleado_id"] = *req.EmployeeID
	}
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, apperror.ValidationFields(map[string]string{"fecha": "must not be empty"})
		}
		merged.Date = *req.Date
		fields["fecha"] = *req.Date
	}
	if req.CheckIn != nil {
		merged.CheckIn = *req.CheckIn
		fields["hora_entrada"] = *req.CheckIn
	}
	if req.CheckOut != nil {
		merged.CheckOut = req.CheckOut
		fields["hora_salida"] = *req.CheckOut
	}
	if req.Notes != nil {
		fields["observaciones"] = strings.TrimSpace(*req.Notes)
	}
	if len(fields) == 0 {
		return current, nil
	}

	if err := validClockRange(merged.CheckIn, merged.CheckOut); err != nil {
		return nil, err
	}
	if req.EmployeeID != nil || req.Date != nil {
		if err := s.ensureDayFree(ctx, merged.EmployeeID, merged.Date, id); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Attendance.UpdateFields(ctx, id, fields); err != nil {
		return nil, loadErr(err, "asistencia", id)
	}
	emit(ctx, s.pub, EntityAttendance, events.ActionUpdated, id, fields)
	return s.Get(ctx, id)
}

func (s *attendanceService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repos.Attendance.Delete(ctx, id)
	if err != nil {
		return false, apperror.Classify(err, "delete attendance")
	}
	if deleted {
		emit(ctx, s.pub, EntityAttendance, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}

func (s *attendanceService) clock(req ClockRequest) (model.Date, string) {
	now := s.now()
	date := model.NewDate(now)
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}
	at := now.Format(model.TimeLayout)
	if req.Time != "" {
		at = req.Time
	}
	return date, at
}

// CheckIn opens the workday of the employee
func (s *attendanceService) CheckIn(ctx context.Context, req ClockRequest) (*model.Attendance, error) {
	date, at := s.clock(req)
	return s.Create(ctx, CreateAttendanceRequest{EmployeeID: req.EmployeeID, Date: &date, CheckIn: at})
}

// CheckOut closes the open workday of the employee
func (s *attendanceService) CheckOut(ctx context.Context, req ClockRequest) (*model.Attendance, error) {
	date, at := s.clock(req)
	if err := requireReference(ctx, s.repos.Employees, "empleado", req.EmployeeID); err != nil {
		return nil, err
	}

	current, err := s.repos.Attendance.FindByEmployeeAndDate(ctx, req.EmployeeID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Validation("no check-in registered for employee %d on %s", req.EmployeeID, date)
	}
	if err != nil {
		return nil, apperror.Classify(err, "load attendance day")
	}
	if current.CheckOut != nil {
		return nil, apperror.Conflict("check-out already registered at %s", *current.CheckOut)
	}

	return s.Update(ctx, current.ID, UpdateAttendanceRequest{CheckOut: &at})
}
