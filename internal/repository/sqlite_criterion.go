package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type criterionRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Type string `db:"type"`
}

// SQLiteCriterionRepo implements CriterionRepo using a SQLite database.
type SQLiteCriterionRepo struct {
	db db.DBTX
}

// NewSQLiteCriterionRepo creates a new SQLiteCriterionRepo.
func NewSQLiteCriterionRepo(conn db.DBTX) *SQLiteCriterionRepo {
	return &SQLiteCriterionRepo{db: conn}
}

func (r *SQLiteCriterionRepo) Create(ctx context.Context, c *domain.Criterion) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Type == "" {
		c.Type = domain.CriterionGeneric
	}
	_, err := sqlx.NamedExecContext(ctx, r.db,
		`INSERT INTO criteria (id, name, type) VALUES (:id, :name, :type)`,
		criterionRow{ID: c.ID, Name: c.Name, Type: string(c.Type)})
	if err != nil {
		return fmt.Errorf("inserting criterion: %w", err)
	}
	return nil
}

func (r *SQLiteCriterionRepo) GetByID(ctx context.Context, id string) (*domain.Criterion, error) {
	return r.getBy(ctx, `id = ?`, id)
}

func (r *SQLiteCriterionRepo) GetByName(ctx context.Context, name string) (*domain.Criterion, error) {
	return r.getBy(ctx, `name = ? COLLATE NOCASE`, name)
}

func (r *SQLiteCriterionRepo) getBy(ctx context.Context, where string, arg any) (*domain.Criterion, error) {
	var row criterionRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT id, name, type FROM criteria WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("criterion %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading criterion: %w", err)
	}
	return &domain.Criterion{ID: row.ID, Name: row.Name, Type: domain.CriterionType(row.Type)}, nil
}

func (r *SQLiteCriterionRepo) List(ctx context.Context) ([]*domain.Criterion, error) {
	var rows []criterionRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT id, name, type FROM criteria ORDER BY name`); err != nil {
		return nil, fmt.Errorf("listing criteria: %w", err)
	}
	out := make([]*domain.Criterion, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.Criterion{ID: row.ID, Name: row.Name, Type: domain.CriterionType(row.Type)})
	}
	return out, nil
}
