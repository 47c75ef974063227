package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payroll is the pay slip of one employee for one month. The period
// (empleado_id, mes, anio) is unique.
type Payroll struct {
	ID          uint            `gorm:"column:id;primaryKey" json:"id"`
	EmployeeID  uint            `gorm:"column:empleado_id;not null;index" json:"empleado_id"`
	Employee    *Employee       `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Month       int             `gorm:"column:mes;not null" json:"mes"`
	Year        int             `gorm:"column:anio;not null" json:"anio"`
	BaseSalary  decimal.Decimal `gorm:"column:salario_base;type:decimal(12,2);not null" json:"salario_base"`
	Bonuses     decimal.Decimal `gorm:"column:bonificaciones;type:decimal(12,2);not null" json:"bonificaciones"`
	Deductions  decimal.Decimal `gorm:"column:deducciones;type:decimal(12,2);not null" json:"deducciones"`
	NetSalary   decimal.Decimal `gorm:"column:salario_neto;type:decimal(12,2);not null" json:"salario_neto"`
	PaymentDate *Date           `gorm:"column:fecha_pago" json:"fecha_pago"`
	Notes       string          `gorm:"column:observaciones;type:text" json:"observaciones"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Payroll) TableName() string { return "nominas" }

// NetPay computes base + bonuses - deductions
func NetPay(base, bonuses, deductions decimal.Decimal) decimal.Decimal {
	return base.Add(bonuses).Sub(deductions)
}
