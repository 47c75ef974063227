package model

import (
	"time"
)

// Role represents a named access level with associated permissions
type Role struct {
	ID          uint         `gorm:"column:id;primaryKey" json:"id"`
	Name        string       `gorm:"column:nombre;type:varchar(50);uniqueIndex;not null" json:"nombre"`
	Description string       `gorm:"column:descripcion;type:text" json:"descripcion"`
	AccessLevel int          `gorm:"column:nivel_acceso;not null" json:"nivel_acceso"`
	IsSystem    bool         `gorm:"column:es_sistema;not null" json:"es_sistema"` // built-in roles cannot be deleted
	Permissions []Permission `gorm:"many2many:rol_permisos;joinForeignKey:RolID;joinReferences:PermisoID" json:"permisos"`
	CreatedAt   time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

// Permission represents a single capability that can be granted to roles
type Permission struct {
	ID    uint   `gorm:"column:id;primaryKey" json:"id"`
	Code  string `gorm:"column:codigo;type:varchar(100);uniqueIndex;not null" json:"codigo"` // e.g. "empleados.write"
	Name  string `gorm:"column:nombre;type:varchar(255);not null" json:"nombre"`
	Group string `gorm:"column:grupo;type:varchar(50);not null;index" json:"grupo"`
}

func (Permission) TableName() string { return "permisos" }
