package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"rrhh/internal/apperror"
	"rrhh/internal/auth"
	"rrhh/internal/events"
	"rrhh/internal/logger"
	"rrhh/internal/model"
	"rrhh/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entity names used in errors, audit rows and event subjects
const (
	EntityEmployee     = "empleados"
	EntityDepartment   = "departamentos"
	EntityPosition     = "puestos"
	EntityContract     = "contratos"
	EntityAttendance   = "asistencias"
	EntityPayroll      = "nominas"
	EntityVacation     = "vacaciones"
	EntityEvaluation   = "evaluaciones"
	EntityTraining     = "capacitaciones"
	EntityUser         = "usuarios"
	EntityRole         = "roles"
	EntityNotification = "notificaciones"
)

type existsChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// requireReference fails with REFERENCE_NOT_FOUND when the row is missing
func requireReference(ctx context.Context, repo existsChecker, entity string, id uint) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return apperror.Classify(err, "check "+entity)
	}
	if !ok {
		return apperror.ReferenceNotFound(entity, id)
	}
	return nil
}

// requireParent fails with NOT_FOUND when the employee of a nested listing
// does not exist
func requireParent(ctx context.Context, repo existsChecker, employeeID uint) error {
	ok, err := repo.Exists(ctx, employeeID)
	if err != nil {
		return apperror.Classify(err, "check empleado")
	}
	if !ok {
		return apperror.NotFound("empleado", employeeID)
	}
	return nil
}

// loadErr maps a failed lookup by id to NOT_FOUND or a storage error
func loadErr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(entity, id)
	}
	return apperror.Classify(err, "load "+entity)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func requireNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return apperror.ValidationFields(map[string]string{field: "must not be negative"})
	}
	return nil
}

func derefDecimal(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

// auditor writes audit rows; inside RunInTx they join the transaction
type auditor struct {
	repo repository.AuditRepository
}

func (a auditor) record(ctx context.Context, action, entity string, id uint, details interface{}) error {
	var raw datatypes.JSON
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return apperror.Wrap(apperror.CodeInternal, err, "encode audit details")
		}
		raw = datatypes.JSON(b)
	}

	entry := &model.AuditLog{
		UserID:   auth.ActorID(ctx),
		Action:   action,
		Entity:   entity,
		EntityID: uintToString(id),
		Details:  raw,
	}
	if err := a.repo.Log(ctx, entry); err != nil {
		return apperror.Classify(err, "write audit log")
	}
	return nil
}

// emit publishes after a successful commit. Delivery failures are logged
// and never undo the write.
func emit(ctx context.Context, pub events.Publisher, entity, action string, id uint, payload interface{}) {
	if pub == nil {
		return
	}
	err := pub.Publish(ctx, events.Event{
		Entity:  entity,
		Action:  action,
		ID:      id,
		ActorID: auth.ActorID(ctx),
		Payload: payload,
	})
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("entidad", entity).Str("accion", action).Msg("event not published")
	}
}

func uintToString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}
