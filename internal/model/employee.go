package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee status values
const (
	EmployeeActive   = "activo"
	EmployeeInactive = "inactivo"
)

// Employee is the central HR record. Contracts, attendance, payroll and the
// other child records are removed with it.
type Employee struct {
	ID            uint            `gorm:"column:id;primaryKey" json:"id"`
	FirstName     string          `gorm:"column:nombre;type:varchar(100);not null" json:"nombre"`
	LastName      string          `gorm:"column:apellido;type:varchar(100);not null" json:"apellido"`
	Email         string          `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone         string          `gorm:"column:telefono;type:varchar(30)" json:"telefono"`
	Address       string          `gorm:"column:direccion;type:text" json:"direccion"`
	BirthDate     *Date           `gorm:"column:fecha_nacimiento" json:"fecha_nacimiento"`
	HireDate      Date            `gorm:"column:fecha_ingreso;not null" json:"fecha_ingreso"`
	DepartmentID  *uint           `gorm:"column:departamento_id;index" json:"departamento_id"`
	Department    *Department     `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"departamento,omitempty"`
	PositionID    *uint           `gorm:"column:puesto_id;index" json:"puesto_id"`
	Position      *Position       `gorm:"foreignKey:PositionID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	PositionTitle string          `gorm:"column:puesto;type:varchar(100)" json:"puesto"`
	Salary        decimal.Decimal `gorm:"column:salario;type:decimal(12,2);not null" json:"salario"`
	Status        string          `gorm:"column:estado;type:varchar(20);not null;index" json:"estado"`
	SearchKey     string          `gorm:"column:busqueda;type:varchar(500)" json:"-"` // accent-folded name and email
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Employee) TableName() string { return "empleados" }

// FullName joins first and last name
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
