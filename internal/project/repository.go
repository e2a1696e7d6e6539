// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/admin-console/internal/core"
)

type Repository interface {
	List(ctx context.Context) ([]Project, error)
	EnsureProjects(ctx context.Context, names []string) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountAssignments(ctx context.Context) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Project, error) {
	query := `
		SELECT project_id, project_name, created_at
		FROM projects
		ORDER BY project_name ASC`

	projects := []Project{}
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return projects, nil
}

// EnsureProjects inserts the named projects that do not exist yet and
// returns how many were created.
func (r *repository) EnsureProjects(
	ctx context.Context,
	names []string,
) (int64, error) {
	var created int64

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, name := range names {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO projects (project_name)
				VALUES ($1)
				ON CONFLICT (project_name) DO NOTHING`,
				name,
			)
			if err != nil {
				return fmt.Errorf("ensure project %q: %w", name, err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("ensure project %q: %w", name, err)
			}
			created += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (r *repository) CountAssignments(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM user_projects`); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return n, nil
}
