package model

import (
	"time"
)

// Score bounds of an evaluation
const (
	MinScore = 0
	MaxScore = 100
)

// Evaluation is a performance review
type Evaluation struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	EmployeeID uint      `gorm:"column:empleado_id;not null;index" json:"empleado_id"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Date       Date      `gorm:"column:fecha;not null" json:"fecha"`
	Period     string    `gorm:"column:periodo;type:varchar(20)" json:"periodo"`
	Evaluator  string    `gorm:"column:evaluador;type:varchar(150);not null" json:"evaluador"`
	Score      float64   `gorm:"column:puntuacion;not null" json:"puntuacion"`
	Comments   string    `gorm:"column:comentarios;type:text" json:"comentarios"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Evaluation) TableName() string { return "evaluaciones" }

// Training is a course attended by an employee
type Training struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	EmployeeID  uint      `gorm:"column:empleado_id;not null;index" json:"empleado_id"`
	Employee    *Employee `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course      string    `gorm:"column:curso;type:varchar(200);not null" json:"curso"`
	Institution string    `gorm:"column:institucion;type:varchar(200)" json:"institucion"`
	StartDate   Date      `gorm:"column:fecha_inicio;not null" json:"fecha_inicio"`
	EndDate     *Date     `gorm:"column:fecha_fin" json:"fecha_fin"`
	Hours       int       `gorm:"column:horas" json:"horas"`
	Certified   bool      `gorm:"column:certificado;not null" json:"certificado"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Training) TableName() string { return "capacitaciones" }
