package model

import (
	"time"
)

// Built-in role names
const (
	RoleAdmin      = "admin"
	RoleHR         = "rrhh"
	RoleSupervisor = "supervisor"
	RoleEmployee   = "empleado"
)

// User is an account able to log into the API. It may mirror an Employee
// record that shares its email.
type User struct {
	ID           uint       `gorm:"column:id;primaryKey" json:"id"`
	Name         string     `gorm:"column:nombre;type:varchar(150);not null" json:"nombre"`
	Email        string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"column:rol;type:varchar(50);not null;index" json:"rol"`
	Active       bool       `gorm:"column:activo;not null" json:"activo"`
	EmployeeID   *uint      `gorm:"column:empleado_id;index" json:"empleado_id"`
	Employee     *Employee  `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	LastLoginAt  *time.Time `gorm:"column:ultimo_acceso" json:"ultimo_acceso"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "usuarios" }

// RoleChange records every change of a user's role
type RoleChange struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID       uint      `gorm:"column:usuario_id;not null;index" json:"usuario_id"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	PreviousRole string    `gorm:"column:rol_anterior;type:varchar(50)" json:"rol_anterior"`
	NewRole      string    `gorm:"column:rol_nuevo;type:varchar(50);not null" json:"rol_nuevo"`
	ChangedBy    *uint     `gorm:"column:cambiado_por" json:"cambiado_por"`
	Reason       string    `gorm:"column:motivo;type:text" json:"motivo"`
	CreatedAt    time.Time `gorm:"column:fecha;autoCreateTime" json:"fecha"`
}

func (RoleChange) TableName() string { return "historial_roles" }
