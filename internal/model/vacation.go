package model

import (
	"time"
)

// Leave request status values
const (
	VacationPending  = "pendiente"
	VacationApproved = "aprobada"
	VacationRejected = "rechazada"
)

// Leave request types
const (
	LeaveVacation   = "vacaciones"
	LeavePermission = "permiso"
	LeaveSickness   = "incapacidad"
	LeaveOther      = "licencia"
)

// Vacation is a vacation or permission request of an employee
type Vacation struct {
	ID              uint       `gorm:"column:id;primaryKey" json:"id"`
	EmployeeID      uint       `gorm:"column:empleado_id;not null;index" json:"empleado_id"`
	Employee        *Employee  `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Type            string     `gorm:"column:tipo;type:varchar(30);not null" json:"tipo"`
	StartDate       Date       `gorm:"column:fecha_inicio;not null" json:"fecha_inicio"`
	EndDate         Date       `gorm:"column:fecha_fin;not null" json:"fecha_fin"`
	Days            int        `gorm:"column:dias;not null" json:"dias"`
	Reason          string     `gorm:"column:motivo;type:text" json:"motivo"`
	Status          string     `gorm:"column:estado;type:varchar(20);not null;index" json:"estado"`
	ReviewedBy      *uint      `gorm:"column:revisado_por" json:"revisado_por"`
	ReviewedAt      *time.Time `gorm:"column:fecha_revision" json:"fecha_revision"`
	RejectionReason string     `gorm:"column:motivo_rechazo;type:text" json:"motivo_rechazo"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Vacation) TableName() string { return "vacaciones" }
