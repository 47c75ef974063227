package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract status values
const (
	ContractActive    = "activo"
	ContractFinished  = "finalizado"
	ContractCancelled = "cancelado"
)

// Contract types
const (
	ContractIndefinite = "indefinido"
	ContractTemporary  = "temporal"
	ContractByProject  = "por_obra"
	ContractInternship = "practicas"
)

type Contract struct {
	ID         uint            `gorm:"column:id;primaryKey" json:"id"`
	EmployeeID uint            `gorm:"column:empleado_id;not null;index" json:"empleado_id"`
	Employee   *Employee       `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Type       string          `gorm:"column:tipo;type:varchar(30);not null" json:"tipo"`
	Salary     decimal.Decimal `gorm:"column:salario;type:decimal(12,2);not null" json:"salario"`
	StartDate  Date            `gorm:"column:fecha_inicio;not null" json:"fecha_inicio"`
	EndDate    *Date           `gorm:"column:fecha_fin" json:"fecha_fin"`
	Status     string          `gorm:"column:estado;type:varchar(20);not null;index" json:"estado"`
	Notes      string          `gorm:"column:observaciones;type:text" json:"observaciones"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Contract) TableName() string { return "contratos" }
