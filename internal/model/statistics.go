package model

import (
	"github.com/shopspring/decimal"
)

// StatisticsResponse aggregates headcount and activity figures for a date range
type StatisticsResponse struct {
	TotalEmployees     int64                 `json:"total_empleados"`
	ActiveEmployees    int64                 `json:"empleados_activos"`
	ActiveContracts    int64                 `json:"contratos_activos"`
	PendingVacations   int64                 `json:"vacaciones_pendientes"`
	AttendanceEntries  int64                 `json:"asistencias"`
	PayrollNetTotal    decimal.Decimal       `json:"total_nomina_neta"`
	AverageScore       float64               `json:"puntuacion_promedio"`
	ByDepartment       []DepartmentHeadcount `json:"por_departamento"`
	TimeRangeStartDate Date                  `json:"desde"`
	TimeRangeEndDate   Date                  `json:"hasta"`
}

// DepartmentHeadcount counts employees of one department; a nil id groups
// employees without a department
type DepartmentHeadcount struct {
	DepartmentID   *uint  `json:"departamento_id"`
	DepartmentName string `json:"departamento"`
	Employees      int64  `json:"empleados"`
}
