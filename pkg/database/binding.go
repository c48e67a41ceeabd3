package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/nais/sitedeploy/pkg/binding"
)

type bindingStore struct {
	db      *Database
	project string
}

var _ binding.Store = &bindingStore{}

// Bindings returns the site binding store for a single project.
func (db *Database) Bindings(project string) binding.Store {
	return &bindingStore{
		db:      db,
		project: project,
	}
}

func (s *bindingStore) Binding(ctx context.Context) (*binding.SiteBinding, error) {
	query := `SELECT site_id, site_name FROM site_binding WHERE project = $1;`
	row := s.db.timedQueryRow(ctx, query, s.project)

	b := &binding.SiteBinding{}
	err := row.Scan(&b.SiteID, &b.SiteName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, binding.ErrNotFound
		}
		return nil, fmt.Errorf("read site binding: %w", err)
	}

	return b, nil
}

func (s *bindingStore) SaveBinding(ctx context.Context, b binding.SiteBinding) error {
	if err := b.Valid(); err != nil {
		return err
	}

	query := `
INSERT INTO site_binding (project, site_id, site_name, created)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (project) DO UPDATE
SET site_id = EXCLUDED.site_id, site_name = EXCLUDED.site_name;
`
	_, err := s.db.timedExec(ctx, query, s.project, b.SiteID, b.SiteName)
	if err != nil {
		return fmt.Errorf("save site binding: %w", err)
	}

	return nil
}
