package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alora-app/alora/internal/domain/module"
)

// ModuleRepository implements module.Repository
type ModuleRepository struct {
	db *sql.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *sql.DB) module.Repository {
	return &ModuleRepository{db: db}
}

// Create persists a module and its days in one transaction.
func (r *ModuleRepository) Create(ctx context.Context, m *module.Module) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	m.CreatedAt = time.Now()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO modules (user_id, title, description, total_days, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, m.UserID, m.Title, m.Description, m.TotalDays, m.CreatedAt.Unix()).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("creating module: %w", err)
	}

	for _, d := range m.Days {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO module_days
				(module_id, day_number, title, framework_name, framework_description, reflection_prompt, shift_focus)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, m.ID, d.DayNumber, d.Title, d.FrameworkName, d.FrameworkDescription, d.ReflectionPrompt, d.ShiftFocus)
		if err != nil {
			return fmt.Errorf("creating module day %d: %w", d.DayNumber, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves one of the user's modules with its days
func (r *ModuleRepository) GetByID(ctx context.Context, userID, id int64) (*module.Module, error) {
	var m module.Module
	var createdAt int64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, total_days, created_at
		FROM modules WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&m.ID, &m.UserID, &m.Title, &m.Description, &m.TotalDays, &createdAt)
	if err == sql.ErrNoRows {
		return nil, module.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting module: %w", err)
	}
	m.CreatedAt = time.Unix(createdAt, 0)

	if m.Days, err = r.loadDays(ctx, m.ID); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByUser retrieves the user's modules, newest first
func (r *ModuleRepository) ListByUser(ctx context.Context, userID int64) ([]*module.Module, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, total_days, created_at
		FROM modules WHERE user_id = $1
		ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	var modules []*module.Module
	for rows.Next() {
		var m module.Module
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &m.Description, &m.TotalDays, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		modules = append(modules, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range modules {
		if m.Days, err = r.loadDays(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	return modules, nil
}

func (r *ModuleRepository) loadDays(ctx context.Context, moduleID int64) ([]module.Day, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day_number, title, framework_name, framework_description, reflection_prompt, shift_focus
		FROM module_days WHERE module_id = $1
		ORDER BY day_number
	`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("loading module days: %w", err)
	}
	defer rows.Close()

	var days []module.Day
	for rows.Next() {
		var d module.Day
		if err := rows.Scan(&d.DayNumber, &d.Title, &d.FrameworkName,
			&d.FrameworkDescription, &d.ReflectionPrompt, &d.ShiftFocus); err != nil {
			return nil, fmt.Errorf("scanning module day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
