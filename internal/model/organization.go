package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department groups employees
type Department struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:nombre;type:varchar(100);uniqueIndex;not null" json:"nombre"`
	Description string    `gorm:"column:descripcion;type:text" json:"descripcion"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Department) TableName() string { return "departamentos" }

// Position is a job title with a reference salary. Roles listed on a
// position are suggested for users holding it.
type Position struct {
	ID         uint            `gorm:"column:id;primaryKey" json:"id"`
	Title      string          `gorm:"column:titulo;type:varchar(100);not null" json:"titulo"`
	Level      string          `gorm:"column:nivel;type:varchar(50)" json:"nivel"`
	BaseSalary decimal.Decimal `gorm:"column:salario_base;type:decimal(12,2);not null" json:"salario_base"`
	Roles      []Role          `gorm:"many2many:puesto_roles;joinForeignKey:PuestoID;joinReferences:RolID" json:"roles,omitempty"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Position) TableName() string { return "puestos" }
