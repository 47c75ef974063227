package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionCreateContract   = "CREATE_CONTRACT"
	ActionUpdateContract   = "UPDATE_CONTRACT"
	ActionDeleteContract   = "DELETE_CONTRACT"
	ActionCloseContract    = "CLOSE_CONTRACT"
	ActionCreateEmployee   = "CREATE_EMPLOYEE"
	ActionDeleteEmployee   = "DELETE_EMPLOYEE"
	ActionCreatePayroll    = "CREATE_PAYROLL"
	ActionApproveVacation  = "APPROVE_VACATION"
	ActionRejectVacation   = "REJECT_VACATION"
	ActionChangeUserRole   = "CHANGE_USER_ROLE"
	ActionDeactivateUser   = "DEACTIVATE_USER"
	ActionUpdatePermission = "UPDATE_ROLE_PERMISSIONS"
)

// AuditLog tracks who changed what and when
type AuditLog struct {
	ID        uint           `gorm:"column:id;primaryKey" json:"id"`
	UserID    *uint          `gorm:"column:usuario_id;index" json:"usuario_id"` // nil for system actions
	User      *User          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Action    string         `gorm:"column:accion;type:varchar(50);not null;index" json:"accion"`
	Entity    string         `gorm:"column:entidad;type:varchar(50);not null" json:"entidad"`
	EntityID  string         `gorm:"column:entidad_id;type:varchar(50);index" json:"entidad_id"`
	Details   datatypes.JSON `gorm:"column:detalles" json:"detalles"`
	CreatedAt time.Time      `gorm:"column:created_at;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "auditoria" }
