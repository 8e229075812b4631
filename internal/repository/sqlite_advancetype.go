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

type advanceTypeRow struct {
	ID              string `db:"id"`
	Name            string `db:"name"`
	Unit            string `db:"unit"`
	DefaultMaxValue string `db:"default_max_value"`
	Percentage      int    `db:"percentage"`
}

// SQLiteAdvanceTypeRepo implements AdvanceTypeRepo using a SQLite database.
type SQLiteAdvanceTypeRepo struct {
	db db.DBTX
}

// NewSQLiteAdvanceTypeRepo creates a new SQLiteAdvanceTypeRepo.
func NewSQLiteAdvanceTypeRepo(conn db.DBTX) *SQLiteAdvanceTypeRepo {
	return &SQLiteAdvanceTypeRepo{db: conn}
}

func (r *SQLiteAdvanceTypeRepo) Create(ctx context.Context, t *domain.AdvanceType) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := sqlx.NamedExecContext(ctx, r.db,
		`INSERT INTO advance_types (id, name, unit, default_max_value, percentage)
		VALUES (:id, :name, :unit, :default_max_value, :percentage)`,
		advanceTypeRow{
			ID:              t.ID,
			Name:            t.Name,
			Unit:            t.Unit,
			DefaultMaxValue: t.DefaultMaxValue.String(),
			Percentage:      boolToInt(t.Percentage),
		})
	if err != nil {
		return fmt.Errorf("inserting advance type: %w", err)
	}
	return nil
}

func (r *SQLiteAdvanceTypeRepo) GetByID(ctx context.Context, id string) (*domain.AdvanceType, error) {
	return r.getBy(ctx, `id = ?`, id)
}

func (r *SQLiteAdvanceTypeRepo) GetByName(ctx context.Context, name string) (*domain.AdvanceType, error) {
	return r.getBy(ctx, `name = ? COLLATE NOCASE`, name)
}

func (r *SQLiteAdvanceTypeRepo) getBy(ctx context.Context, where string, arg any) (*domain.AdvanceType, error) {
	var row advanceTypeRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT id, name, unit, default_max_value, percentage FROM advance_types WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("advance type %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading advance type: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteAdvanceTypeRepo) List(ctx context.Context) ([]*domain.AdvanceType, error) {
	var rows []advanceTypeRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT id, name, unit, default_max_value, percentage FROM advance_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing advance types: %w", err)
	}
	out := make([]*domain.AdvanceType, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (row advanceTypeRow) toDomain() *domain.AdvanceType {
	return &domain.AdvanceType{
		ID:              row.ID,
		Name:            row.Name,
		Unit:            row.Unit,
		DefaultMaxValue: parseDecimal(row.DefaultMaxValue),
		Percentage:      intToBool(row.Percentage),
	}
}
