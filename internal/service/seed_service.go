package service

import (
	"context"
	"errors"

	"rrhh/internal/apperror"
	"rrhh/internal/auth"
	"rrhh/internal/logger"
	"rrhh/internal/model"
	"rrhh/internal/repository"
	"rrhh/internal/seed"

	"gorm.io/gorm"
)

// SeedResult reports what a seed run created
type SeedResult struct {
	Departments int `json:"departamentos"`
	Accounts    int `json:"cuentas"`
}

type SeedService interface {
	// Run always seeds roles, permissions and departments. Example accounts
	// are created only when withAccounts is set and no user exists yet.
	Run(ctx context.Context, withAccounts bool) (*SeedResult, error)
}

type seedService struct {
	repos *repository.Repositories
	roles RoleService
	data  *seed.Data
}

func NewSeedService(repos *repository.Repositories, roles RoleService, data *seed.Data) SeedService {
	return &seedService{repos: repos, roles: roles, data: data}
}

func (s *seedService) Run(ctx context.Context, withAccounts bool) (*SeedResult, error) {
	log := logger.FromContext(ctx)
	result := &SeedResult{}

	if err := s.roles.SeedDefaultRolesAndPermissions(ctx, s.data); err != nil {
		return nil, err
	}
	log.Info().Int("roles", len(s.data.Roles)).Int("permisos", len(s.data.Permissions)).Msg("roles and permissions seeded")

	for _, d := range s.data.Departments {
		_, err := s.repos.Departments.FindByName(ctx, d.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Classify(err, "seed department")
		}
		if err := s.repos.Departments.Create(ctx, &model.Department{Name: d.Name, Description: d.Description}); err != nil {
			return nil, apperror.Classify(err, "seed department "+d.Name)
		}
		result.Departments++
	}

	if !withAccounts {
		return result, nil
	}
	count, err := s.repos.Users.Count(ctx)
	if err != nil {
		return nil, apperror.Classify(err, "count users")
	}
	if count > 0 {
		log.Debug().Int64("usuarios", count).Msg("users present, example accounts skipped")
		return result, nil
	}

	err = s.repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		result.Accounts = 0
		for _, a := range s.data.Accounts {
			hash, err := auth.HashPassword(a.Password)
			if err != nil {
				return apperror.Wrap(apperror.CodeInternal, err, "hash seed password")
			}
			user := &model.User{
				Name:         a.Name,
				Email:        normalizeEmail(a.Email),
				PasswordHash: hash,
				Role:         a.Role,
				Active:       true,
			}
			if err := s.repos.Users.Create(txCtx, user); err != nil {
				return apperror.Classify(err, "seed account "+a.Email)
			}
			result.Accounts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Warn().Int("cuentas", result.Accounts).Msg("example accounts created; change their passwords")
	return result, nil
}
