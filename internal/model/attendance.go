package model

import (
	"time"
)

// TimeLayout is the clock format of attendance times
const TimeLayout = "15:04"

// Attendance is one workday entry of an employee. Times are "HH:MM".
type Attendance struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	EmployeeID uint      `gorm:"column:empleado_id;not null;uniqueIndex:idx_asistencia_empleado_fecha" json:"empleado_id"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Date       Date      `gorm:"column:fecha;not null;uniqueIndex:idx_asistencia_empleado_fecha" json:"fecha"`
	CheckIn    string    `gorm:"column:hora_entrada;type:varchar(5);not null" json:"hora_entrada"`
	CheckOut   *string   `gorm:"column:hora_salida;type:varchar(5)" json:"hora_salida"`
	Notes      string    `gorm:"column:observaciones;type:text" json:"observaciones"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Attendance) TableName() string { return "asistencias" }

// WorkedHours returns the hours between check-in and check-out, zero while
// the day is still open.
func (a Attendance) WorkedHours() float64 {
	if a.CheckOut == nil {
		return 0
	}
	in, err := time.Parse(TimeLayout, a.CheckIn)
	if err != nil {
		return 0
	}
	out, err := time.Parse(TimeLayout, *a.CheckOut)
	if err != nil || !out.After(in) {
		return 0
	}
	return out.Sub(in).Hours()
}
