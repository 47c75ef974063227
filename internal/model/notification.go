package model

import (
	"time"
)

// Notification types
const (
	NotificationInfo     = "info"
	NotificationAlert    = "alerta"
	NotificationVacation = "vacaciones"
	NotificationContract = "contrato"
)

type Notification struct {
	ID        uint       `gorm:"column:id;primaryKey" json:"id"`
	UserID    uint       `gorm:"column:usuario_id;not null;index" json:"usuario_id"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Type      string     `gorm:"column:tipo;type:varchar(30);not null" json:"tipo"`
	Title     string     `gorm:"column:titulo;type:varchar(200);not null" json:"titulo"`
	Message   string     `gorm:"column:mensaje;type:text" json:"mensaje"`
	Read      bool       `gorm:"column:leida;not null;index" json:"leida"`
	ReadAt    *time.Time `gorm:"column:fecha_lectura" json:"fecha_lectura"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "notificaciones" }
