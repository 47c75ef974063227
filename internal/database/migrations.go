package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"rrhh/internal/logger"
	"rrhh/internal/model"

	"gorm.io/gorm"
)

// ErrChecksumMismatch means an applied migration was edited afterwards
var ErrChecksumMismatch = errors.New("migration checksum mismatch")

const (
	lockRetryAttempts = 5
	lockRetryBackoff  = 200 * time.Millisecond
)

// Migration is one step of the schema history. Models are auto-migrated
// first, then Statements run in order, all inside a single transaction.
type Migration struct {
	Version    int
	Name       string
	Models     []interface{}
	Statements []string
}

// Checksum fingerprints the migration so later edits are detected
func (m Migration) Checksum() string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(m.Version)))
	h.Write([]byte{0})
	h.Write([]byte(m.Name))
	for _, mdl := range m.Models {
		h.Write([]byte{0})
		h.Write([]byte(reflect.TypeOf(mdl).String()))
	}
	for _, stmt := range m.Statements {
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(stmt)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (m Migration) apply(tx *gorm.DB) error {
	if len(m.Models) > 0 {
		if err := tx.AutoMigrate(m.Models...); err != nil {
			return err
		}
	}
	for _, stmt := range m.Statements {
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Migrations is the ordered schema history of the service
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "core_tables",
		Models: []interface{}{
			&model.Department{},
			&model.Permission{},
			&model.Role{},
			&model.Position{},
			&model.Employee{},
			&model.User{},
			&model.RoleChange{},
			&model.Contract{},
			&model.Attendance{},
			&model.Payroll{},
			&model.Vacation{},
			&model.Evaluation{},
			&model.Training{},
			&model.Notification{},
			&model.AuditLog{},
		},
	},
	{
		Version: 2,
		Name:    "payroll_unique_period",
		Statements: []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_nominas_periodo ON nominas (empleado_id, mes, anio)`,
		},
	},
	{
		Version: 3,
		Name:    "search_indexes",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_empleados_busqueda ON empleados (busqueda)`,
			`CREATE INDEX IF NOT EXISTS idx_asistencias_fecha ON asistencias (fecha)`,
			`CREATE INDEX IF NOT EXISTS idx_vacaciones_rango ON vacaciones (fecha_inicio, fecha_fin)`,
			`CREATE INDEX IF NOT EXISTS idx_notificaciones_pendientes ON notificaciones (usuario_id, leida)`,
		},
	},
}

// MigrationStatus describes one entry of the migration list against the
// database
type MigrationStatus struct {
	Version   int        `json:"version"`
	Name      string     `json:"name"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
	Mismatch  bool       `json:"mismatch"`
}

// Migrate applies every pending entry of Migrations
func Migrate(ctx context.Context, db *gorm.DB) error {
	return Apply(ctx, db, Migrations)
}

// Apply runs the given migrations in version order. Applied versions are
// skipped after their checksum is verified.
func Apply(ctx context.Context, db *gorm.DB, migrations []Migration) error {
	ordered, err := sortMigrations(migrations)
	if err != nil {
		return err
	}

	err = WithLockRetry(ctx, lockRetryAttempts, lockRetryBackoff, func() error {
		return db.WithContext(ctx).AutoMigrate(&model.SchemaMigration{})
	})
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range ordered {
		sum := m.Checksum()
		if rec, ok := applied[m.Version]; ok {
			if rec.Checksum != sum {
				return fmt.Errorf("%w: version %d (%s)", ErrChecksumMismatch, m.Version, m.Name)
			}
			continue
		}

		m := m
		err := WithLockRetry(ctx, lockRetryAttempts, lockRetryBackoff, func() error {
			return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := m.apply(tx); err != nil {
					return err
				}
				return tx.Create(&model.SchemaMigration{
					Version:   m.Version,
					Name:      m.Name,
					Checksum:  sum,
					AppliedAt: time.Now().UTC(),
				}).Error
			})
		})
		if err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		logger.FromContext(ctx).Info().Int("version", m.Version).Str("name", m.Name).Msg("migration applied")
	}

	return nil
}

// Status reports which migrations are applied
func Status(ctx context.Context, db *gorm.DB) ([]MigrationStatus, error) {
	ordered, err := sortMigrations(Migrations)
	if err != nil {
		return nil, err
	}

	applied := map[int]model.SchemaMigration{}
	if db.Migrator().HasTable(&model.SchemaMigration{}) {
		if applied, err = appliedMigrations(ctx, db); err != nil {
			return nil, err
		}
	}

	out := make([]MigrationStatus, 0, len(ordered))
	for _, m := range ordered {
		st := MigrationStatus{Version: m.Version, Name: m.Name}
		if rec, ok := applied[m.Version]; ok {
			at := rec.AppliedAt
			st.Applied = true
			st.AppliedAt = &at
			st.Mismatch = rec.Checksum != m.Checksum()
		}
		out = append(out, st)
	}
	return out, nil
}

func appliedMigrations(ctx context.Context, db *gorm.DB) (map[int]model.SchemaMigration, error) {
	var rows []model.SchemaMigration
	if err := db.WithContext(ctx).Order("version").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	out := make(map[int]model.SchemaMigration, len(rows))
	for _, r := range rows {
		out[r.Version] = r
	}
	return out, nil
}

func sortMigrations(migrations []Migration) ([]Migration, error) {
	ordered := make([]Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Version == ordered[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", ordered[i].Version)
		}
	}
	return ordered, nil
}
