package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/auth"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"
)

type CreateVacationRequest struct {
	EmployeeID uint        `json:"empleado_id" binding:"required"`
	Type       string      `json:"tipo" binding:"omitempty,oneof=vacaciones permiso incapacidad licencia"`
	StartDate  *model.Date `json:"fecha_inicio" binding:"required"`
	EndDate    *model.Date `json:"fecha_fin" binding:"required"`
	Reason     string      `json:"motivo"`
}

type UpdateVacationRequest struct {
	Type      *string     `json:"tipo" binding:"omitempty,oneof=vacaciones permiso incapacidad licencia"`
	StartDate *model.Date `json:"fecha_inicio"`
	EndDate   *model.Date `json:"fecha_fin"`
	Reason    *string     `json:"motivo"`
}

type RejectVacationRequest struct {
	Reason string `json:"motivo_rechazo" binding:"required"`
}

type VacationService interface {
	Create(ctx context.Context, req CreateVacationRequest) (*model.Vacation, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Vacation, int64, error)
	Get(ctx context.Context, id uint) (*model.Vacation, error)
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.Vacation, error)
	Update(ctx context.Context, id uint, req UpdateVacationRequest) (*model.Vacation, error)
	Delete(ctx context.Context, id uint) (bool, error)
	Approve(ctx context.Context, id uint) (*model.Vacation, error)
	Reject(ctx context.Context, id uint, reason string) (*model.Vacation, error)
}

type vacationService struct {
	repos  *repository.Repositories
	audit  auditor
	pub    events.Publisher
	notify NotificationService
	now    func() time.Time
}

func NewVacationService(repos *repository.Repositories, pub events.Publisher, notify NotificationService) VacationService {
	return &vacationService{repos: repos, audit: auditor{repo: repos.Audit}, pub: pub, notify: notify, now: time.Now}
}

func validLeaveRange(start, end model.Date) error {
	if start.IsZero() || end.IsZero() {
		return apperror.ValidationFields(map[string]string{"fecha_inicio": "required", "fecha_fin": "required"})
	}
	if end.Before(start.Time) {
		return apperror.ValidationFields(map[string]string{"fecha_fin": "must not be before fecha_inicio"})
	}
	return nil
}

func (s *vacationService) ensureNoOverlap(ctx context.Context, employeeID uint, start, end model.Date, exceptID uint) error {
	n, err := s.repos.Vacations.CountOverlapping(ctx, employeeID, start, end, exceptID)
	if err != nil {
		return apperror.Classify(err, "check overlapping requests")
	}
	if n > 0 {
		return apperror.Conflict("employee %d already has a request between %s and %s", employeeID, start, end)
	}
	return nil
}

func (s *vacationService) Create(ctx context.Context, req CreateVacationRequest) (*model.Vacation, error) {
	if req.StartDate == nil || req.EndDate == nil {
		return nil, apperror.ValidationFields(map[string]string{"fecha_inicio": "required", "fecha_fin": "required"})
	}
	if err := validLeaveRange(*req.StartDate, *req.EndDate); err != nil {
		return nil, err
	}
	if err := requireReference(ctx, s.repos.Employees, "empleado", req.EmployeeID); err != nil {
		return nil, err
	}
	if err := s.ensureNoOverlap(ctx, req.EmployeeID, *req.StartDate, *req.EndDate, 0); err != nil {
		return nil, err
	}

	v := &model.Vacation{
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		StartDate:  *req.StartDate,
		EndDate:    *req.EndDate,
		Days:       req.StartDate.DaysUntil(*req.EndDate),
		Reason:     strings.TrimSpace(req.Reason),
		Status:     model.VacationPending,
	}
	if v.Type == "" {
		v.Type = model.LeaveVacation
	}
	if err := s.repos.Vacations.Create(ctx, v); err != nil {
		return nil, apperror.Classify(err, "create vacation request")
	}

	emit(ctx, s.pub, EntityVacation, events.ActionCreated, v.ID, v)
	return v, nil
}

// List filters by estado when status is set
func (s *vacationService) List(ctx context.Context, status string, page, limit int) ([]model.Vacation, int64, error) {
	var (
		items []model.Vacation
		total int64
		err   error
	)
	if status != "" {
		items, total, err = s.repos.Vacations.ListByStatus(ctx, status, page, limit)
	} else {
		items, total, err = s.repos.Vacations.List(ctx, page, limit)
	}
	if err != nil {
		return nil, 0, apperror.Classify(err, "list vacation requests")
	}
	return items, total, nil
}

func (s *vacationService) Get(ctx context.Context, id uint) (*model.Vacation, error) {
	v, err := s.repos.Vacations.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "vacacion", id)
	}
	return v, nil
}

func (s *vacationService) ListByEmployee(ctx context.Context, employeeID uint) ([]model.Vacation, error) {
	if err := requireParent(ctx, s.repos.Employees, employeeID); err != nil {
		return nil, err
	}
	items, err := s.repos.Vacations.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Classify(err, "list employee vacation requests")
	}
	return items, nil
}

// Update only applies to pending requests; the day count follows the range
func (s *vacationService) Update(ctx context.Context, id uint, req UpdateVacationRequest) (*model.Vacation, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != model.VacationPending {
		return nil, apperror.Conflict("request %d is %s and can no longer be edited", id, current.Status)
	}

	merged := *current
	fields := map[string]interface{}{}
	if req.Type != nil {
		fields["tipo"] = *req.Type
	}
	if req.StartDate != nil {
		merged.StartDate = *req.StartDate
		fields["fecha_inicio"] = *req.StartDate
	}
	if req.EndDate != nil {
		merged.EndDate = *req.EndDate
		fields["fecha_fin"] = *req.EndDate
	}
	if req.Reason != nil {
		fields["motivo"] = strings.TrimSpace(*req.Reason)
	}
	if len(fields) == 0 {
		return current, nil
	}

	if req.StartDate != nil || req.EndDate != nil {
		if err := validLeaveRange(merged.StartDate, merged.EndDate); err != nil {
			return nil, err
		}
		if err := s.ensureNoOverlap(ctx, merged.EmployeeID, merged.StartDate, merged.EndDate, id); err != nil {
			return nil, err
		}
		fields["dias"] = merged.StartDate.DaysUntil(merged.EndDate)
	}

	if err := s.repos.Vacations.UpdateFields(ctx, id, fields); err != nil {
		return nil, loadErr(err, "vacacion", id)
	}
	emit(ctx, s.pub, EntityVacation, events.ActionUpdated, id, fields)
	return s.Get(ctx, id)
}

func (s *vacationService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repos.Vacations.Delete(ctx, id)
	if err != nil {
		return false, apperror.Classify(err, "delete vacation request")
	}
	if deleted {
		emit(ctx, s.pub, EntityVacation, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}

func (s *vacationService) Approve(ctx context.Context, id uint) (*model.Vacation, error) {
	return s.review(ctx, id, model.VacationApproved, "")
}

func (s *vacationService) Reject(ctx context.Context, id uint, reason string) (*model.Vacation, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.ValidationFields(map[string]string{"motivo_rechazo": "required"})
	}
	return s.review(ctx, id, model.VacationRejected, reason)
}

// review moves a pending request to its final state
func (s *vacationService) review(ctx context.Context, id uint, status, reason string) (*model.Vacation, error) {
	action, eventAction := model.ActionApproveVacation, events.ActionApproved
	if status == model.VacationRejected {
		action, eventAction = model.ActionRejectVacation, events.ActionRejected
	}

	var v *model.Vacation
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		v, err = s.repos.Vacations.FindByID(txCtx, id)
		if err != nil {
			return loadErr(err, "vacacion", id)
		}
		if v.Status != model.VacationPending {
			return apperror.Conflict("request %d is already %s", id, v.Status)
		}

		now := s.now()
		fields := map[string]interface{}{
			"estado":         status,
			"fecha_revision": now,
			"revisado_por":   auth.ActorID(txCtx),
		}
		if reason != "" {
			fields["motivo_rechazo"] = reason
		}
		if err := s.repos.Vacations.UpdateFields(txCtx, id, fields); err != nil {
			return loadErr(err, "vacacion", id)
		}

		v.Status = status
		v.ReviewedAt = &now
		v.ReviewedBy = auth.ActorID(txCtx)
		v.RejectionReason = reason
		return s.audit.record(txCtx, action, EntityVacation, id, map[string]interface{}{
			"empleado_id": v.EmployeeID,
			"estado":      status,
			"motivo":      reason,
		})
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityVacation, eventAction, id, v)
	if s.notify != nil {
		title, msg := "Solicitud aprobada", fmt.Sprintf("Tu solicitud del %s al %s fue aprobada", v.StartDate, v.EndDate)
		if status == model.VacationRejected {
			title = "Solicitud rechazada"
			msg = fmt.Sprintf("Tu solicitud del %s al %s fue rechazada: %s", v.StartDate, v.EndDate, reason)
		}
		s.notify.NotifyEmployee(ctx, v.EmployeeID, model.NotificationVacation, title, msg)
	}
	return v, nil
}
