package service

import (
	"context"
	"fmt"
	"strings"

	"rrhh/internal/apperror"
	"rrhh/internal/events"
	"rrhh/internal/model"
	"rrhh/internal/repository"

	"github.com/shopspring/decimal"
)

type CreateContractRequest struct {
	EmployeeID uint             `json:"empleado_id" binding:"required"`
	Type       string           `json:"tipo" binding:"required,oneof=indefinido temporal por_obra practicas"`
	Salary     *decimal.Decimal `json:"salario" binding:"required"`
	StartDate  *model.Date      `json:"fecha_inicio" binding:"required"`
	EndDate    *model.Date      `json:"fecha_fin"`
	Status     string           `json:"estado" binding:"omitempty,oneof=activo finalizado cancelado"`
	Notes      string           `json:"observaciones"`
}

type UpdateContractRequest struct {
	EmployeeID *uint            `json:"empleado_id"`
	Type       *string          `json:"tipo" binding:"omitempty,oneof=indefinido temporal por_obra practicas"`
	Salary     *decimal.Decimal `json:"salario"`
	StartDate  *model.Date      `json:"fecha_inicio"`
	EndDate    *model.Date      `json:"fecha_fin"`
	Status     *string          `json:"estado" binding:"omitempty,oneof=activo finalizado cancelado"`
	Notes      *string          `json:"observaciones"`
}

type ContractService interface {
	Create(ctx context.Context, req CreateContractRequest) (*model.Contract, error)
	List(ctx context.Context, page, limit int) ([]model.Contract, int64, error)
	Get(ctx context.Context, id uint) (*model.Contract, error)
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.Contract, error)
	Update(ctx context.Context, id uint, req UpdateContractRequest) (*model.Contract, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type contractService struct {
	repos  *repository.Repositories
	audit  auditor
	pub    events.Publisher
	notify NotificationService
}

func NewContractService(repos *repository.Repositories, pub events.Publisher, notify NotificationService) ContractService {
	return &contractService{repos: repos, audit: auditor{repo: repos.Audit}, pub: pub, notify: notify}
}

func validContractRange(start model.Date, end *model.Date) error {
	if end != nil && !end.IsZero() && end.Before(start.Time) {
		return apperror.ValidationFields(map[string]string{"fecha_fin": "must not be before fecha_inicio"})
	}
	return nil
}

// closeOthers finishes every other active contract of the employee and
// audits each one. An active contract that starts after c is never closed:
// c is rejected instead. Runs inside the caller's transaction.
func (s *contractService) closeOthers(ctx context.Context, c *model.Contract) error {
	active, err := s.repos.Contracts.ListActive(ctx, c.EmployeeID)
	if err != nil {
		return apperror.Classify(err, "load active contracts")
	}
	for _, other := range active {
		if other.ID != c.ID && other.StartDate.After(c.StartDate.Time) {
			return apperror.Conflict("contract %d is active from %s, after %s", other.ID, other.StartDate, c.StartDate)
		}
	}

	closed, err := s.repos.Contracts.CloseActive(ctx, c.EmployeeID, c.ID, c.StartDate)
	if err != nil {
		return apperror.Classify(err, "close previous contracts")
	}
	for _, id := range closed {
		if err := s.audit.record(ctx, model.ActionCloseContract, EntityContract, id, map[string]interface{}{
			"reemplazado_por": c.ID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *contractService) Create(ctx context.Context, req CreateContractRequest) (*model.Contract, error) {
	if req.StartDate == nil || req.StartDate.IsZero() {
		return nil, apperror.ValidationFields(map[string]string{"fecha_inicio": "required"})
	}
	if req.Salary == nil {
		return nil, apperror.ValidationFields(map[string]string{"salario": "required"})
	}
	if err := requireNonNegative("salario", *req.Salary); err != nil {
		return nil, err
	}
	if err := validContractRange(*req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := requireReference(ctx, s.repos.Employees, "empleado", req.EmployeeID); err != nil {
		return nil, err
	}

	c := &model.Contract{
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		Salary:     *req.Salary,
		StartDate:  *req.StartDate,
		EndDate:    req.EndDate,
		Status:     req.Status,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if c.Status == "" {
		c.Status = model.ContractActive
	}

	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Contracts.Create(txCtx, c); err != nil {
			return apperror.Classify(err, "create contract")
		}
		if c.Status == model.ContractActive {
			if err := s.closeOthers(txCtx, c); err != nil {
				return err
			}
		}
		return s.audit.record(txCtx, model.ActionCreateContract, EntityContract, c.ID, map[string]interface{}{
			"empleado_id": c.EmployeeID,
			"tipo":        c.Type,
			"salario":     c.Salary,
		})
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityContract, events.ActionCreated, c.ID, c)
	if s.notify != nil && c.Status == model.ContractActive {
		s.notify.NotifyEmployee(ctx, c.EmployeeID, model.NotificationContract,
			"Nuevo contrato", fmt.Sprintf("Contrato %s vigente desde %s", c.Type, c.StartDate))
	}
	return c, nil
}

func (s *contractService) List(ctx context.Context, page, limit int) ([]model.Contract, int64, error) {
	items, total, err := s.repos.Contracts.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Classify(err, "list contracts")
	}
	return items, total, nil
}

func (s *contractService) Get(ctx context.Context, id uint) (*model.Contract, error) {
	c, err := s.repos.Contracts.FindByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "contrato", id)
	}
	return c, nil
}

func (s *contractService) ListByEmployee(ctx context.Context, employeeID uint) ([]model.Contract, error) {
	if err := requireParent(ctx, s.repos.Employees, employeeID); err != nil {
		return nil, err
	}
	items, err := s.repos.Contracts.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Classify(err, "list employee contracts")
	}
	return items, nil
}

func (s *contractService) Update(ctx context.Context, id uint, req UpdateContractRequest) (*model.Contract, error) {
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
	if req.Type != nil {
		fields["tipo"] = *req.Type
	}
	if req.Salary != nil {
		if err := requireNonNegative("salario", *req.Salary); err != nil {
			return nil, err
		}
		fields["salario"] = *req.Salary
	}
	if req.StartDate != nil {
		if req.StartDate.IsZero() {
			return nil, apperror.ValidationFields(map[string]string{"fecha_inicio": "must not be empty"})
		}
		merged.StartDate = *req.StartDate
		fields["fecha_inicio"] = *req.StartDate
	}
	if req.EndDate != nil {
		merged.EndDate = req.EndDate
		fields["fecha_fin"] = *req.EndDate
	}
	if req.Status != nil {
		merged.Status = *req.Status
		fields["estado"] = *req.Status
	}
	if req.Notes != nil {
		fields["observaciones"] = strings.TrimSpace(*req.Notes)
	}
	if len(fields) == 0 {
		return current, nil
	}
	if err := validContractRange(merged.StartDate, merged.EndDate); err != nil {
		return nil, err
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Contracts.UpdateFields(txCtx, id, fields); err != nil {
			return loadErr(err, "contrato", id)
		}
		if merged.Status == model.ContractActive {
			if err := s.closeOthers(txCtx, &merged); err != nil {
				return err
			}
		}
		return s.audit.record(txCtx, model.ActionUpdateContract, EntityContract, id, fields)
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.pub, EntityContract, events.ActionUpdated, id, fields)
	return s.Get(ctx, id)
}

func (s *contractService) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = s.repos.Contracts.Delete(txCtx, id)
		if err != nil {
			return apperror.Classify(err, "delete contract")
		}
		if !deleted {
			return nil
		}
		return s.audit.record(txCtx, model.ActionDeleteContract, EntityContract, id, nil)
	})
	if err != nil {
		return false, err
	}
	if deleted {
		emit(ctx, s.pub, EntityContract, events.ActionDeleted, id, nil)
	}
	return deleted, nil
}
