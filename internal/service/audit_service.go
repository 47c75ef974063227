package service

import (
	"context"

	"rrhh/internal/apperror"
	"rrhh/internal/model"
	"rrhh/internal/repository"
)

// AuditLogFilter is the query of GET /api/auditoria
type AuditLogFilter struct {
	Entity   string
	EntityID string
	Action   string
	Page     int
	Limit    int
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs returns the newest entries first
func (s *auditService) GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	logs, total, err := s.repo.List(ctx, repository.AuditFilter{
		Entity:   filter.Entity,
		EntityID: filter.EntityID,
		Action:   filter.Action,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, 0, apperror.Classify(err, "list audit log")
	}
	return logs, total, nil
}
