package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type labelTypeRow struct {
	ID                string `db:"id"`
	Code              string `db:"code"`
	Name              string `db:"name"`
	CodeAutogenerated int    `db:"code_autogenerated"`
	Version           int64  `db:"version"`
	CreatedAt         string `db:"created_at"`
	UpdatedAt         string `db:"updated_at"`
}

type labelRow struct {
	ID          string `db:"id"`
	LabelTypeID string `db:"label_type_id"`
	Code        string `db:"code"`
	Name        string `db:"name"`
	Position    int    `db:"position"`
}

const labelTypeColumns = `id, code, name, code_autogenerated, version, created_at, updated_at`

// SQLiteLabelTypeRepo implements LabelTypeRepo using a SQLite database.
type SQLiteLabelTypeRepo struct {
	db db.DBTX
}

// NewSQLiteLabelTypeRepo creates a new SQLiteLabelTypeRepo.
func NewSQLiteLabelTypeRepo(conn db.DBTX) *SQLiteLabelTypeRepo {
	return &SQLiteLabelTypeRepo{db: conn}
}

func (r *SQLiteLabelTypeRepo) GetAll(ctx context.Context) ([]*domain.LabelType, error) {
	var rows []labelTypeRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT `+labelTypeColumns+` FROM label_types ORDER BY name`); err != nil {
		return nil, fmt.Errorf("listing label types: %w", err)
	}
	var labels []labelRow
	if err := sqlx.SelectContext(ctx, r.db, &labels,
		`SELECT id, label_type_id, code, name, position FROM labels ORDER BY position`); err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}

	types := make([]*domain.LabelType, 0, len(rows))
	byID := make(map[string]*domain.LabelType, len(rows))
	for _, row := range rows {
		lt := row.toDomain()
		types = append(types, lt)
		byID[lt.ID] = lt
	}
	for _, l := range labels {
		if lt := byID[l.LabelTypeID]; lt != nil {
			lt.Labels = append(lt.Labels, l.toDomain())
		}
	}
	return types, nil
}

func (r *SQLiteLabelTypeRepo) Find(ctx context.Context, id string) (*domain.LabelType, error) {
	return r.findBy(ctx, `id = ?`, id)
}

// FindByName looks a label type up by name, ignoring case.
func (r *SQLiteLabelTypeRepo) FindByName(ctx context.Context, name string) (*domain.LabelType, error) {
	return r.findBy(ctx, `name = ? COLLATE NOCASE`, name)
}

func (r *SQLiteLabelTypeRepo) findBy(ctx context.Context, where string, arg any) (*domain.LabelType, error) {
	var row labelTypeRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+labelTypeColumns+` FROM label_types WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("label type %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading label type: %w", err)
	}
	lt := row.toDomain()

	var labels []labelRow
	if err := sqlx.SelectContext(ctx, r.db, &labels,
		`SELECT id, label_type_id, code, name, position FROM labels WHERE label_type_id = ? ORDER BY position`, lt.ID); err != nil {
		return nil, fmt.Errorf("loading labels of %q: %w", lt.Name, err)
	}
	for _, l := range labels {
		lt.Labels = append(lt.Labels, l.toDomain())
	}
	return lt, nil
}

// Save inserts or updates lt and replaces its label set. Updates are version
// checked; labels dropped from lt are deleted together with their element
// assignments.
func (r *SQLiteLabelTypeRepo) Save(ctx context.Context, lt *domain.LabelType) error {
	now := time.Now().UTC()
	if lt.IsNew() {
		lt.ID = uuid.New().String()
		lt.CreatedAt = now
		lt.UpdatedAt = now
		lt.Version = 1
		_, err := sqlx.NamedExecContext(ctx, r.db,
			`INSERT INTO label_types (`+labelTypeColumns+`)
			VALUES (:id, :code, :name, :code_autogenerated, :version, :created_at, :updated_at)`,
			fromLabelType(lt))
		if err != nil {
			lt.ID, lt.Version = "", 0
			return fmt.Errorf("inserting label type: %w", err)
		}
	} else {
		if err := CheckVersion(ctx, r.db, "label_types", lt.ID, lt.Version); err != nil {
			return err
		}
		row := fromLabelType(lt)
		row.Version = lt.Version + 1
		row.UpdatedAt = formatTime(now)
		_, err := sqlx.NamedExecContext(ctx, r.db,
			`UPDATE label_types SET code = :code, name = :name, code_autogenerated = :code_autogenerated,
				version = :version, updated_at = :updated_at
			WHERE id = :id`, row)
		if err != nil {
			return fmt.Errorf("updating label type: %w", err)
		}
		lt.Version = row.Version
		lt.UpdatedAt = now
	}
	return r.saveLabels(ctx, lt)
}

func (r *SQLiteLabelTypeRepo) saveLabels(ctx context.Context, lt *domain.LabelType) error {
	keep := make(map[string]bool, len(lt.Labels))
	for i, l := range lt.Labels {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.TypeID = lt.ID
		keep[l.ID] = true
		_, err := sqlx.NamedExecContext(ctx, r.db,
			`INSERT INTO labels (id, label_type_id, code, name, position)
			VALUES (:id, :label_type_id, :code, :name, :position)
			ON CONFLICT(id) DO UPDATE SET code = excluded.code, name = excluded.name, position = excluded.position`,
			labelRow{ID: l.ID, LabelTypeID: lt.ID, Code: l.Code, Name: l.Name, Position: i})
		if err != nil {
			return fmt.Errorf("saving label %q: %w", l.Name, err)
		}
	}

	var stored []string
	if err := sqlx.SelectContext(ctx, r.db, &stored, `SELECT id FROM labels WHERE label_type_id = ?`, lt.ID); err != nil {
		return fmt.Errorf("listing stored labels: %w", err)
	}
	for _, id := range stored {
		if keep[id] {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting label %s: %w", id, err)
		}
	}
	return nil
}

func (r *SQLiteLabelTypeRepo) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM label_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting label type: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting label type: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("label type %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteLabelTypeRepo) IsUnique(ctx context.Context, lt *domain.LabelType) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count,
		`SELECT COUNT(*) FROM label_types WHERE name = ? COLLATE NOCASE AND id != ?`, lt.Name, lt.ID)
	if err != nil {
		return false, fmt.Errorf("checking label type name: %w", err)
	}
	return count == 0, nil
}

func (row labelTypeRow) toDomain() *domain.LabelType {
	return &domain.LabelType{
		ID:                row.ID,
		Code:              row.Code,
		Name:              row.Name,
		CodeAutogenerated: intToBool(row.CodeAutogenerated),
		Version:           row.Version,
		CreatedAt:         parseTime(row.CreatedAt),
		UpdatedAt:         parseTime(row.UpdatedAt),
	}
}

func fromLabelType(lt *domain.LabelType) labelTypeRow {
	return labelTypeRow{
		ID:                lt.ID,
		Code:              lt.Code,
		Name:              lt.Name,
		CodeAutogenerated: boolToInt(lt.CodeAutogenerated),
		Version:           lt.Version,
		CreatedAt:         formatTime(lt.CreatedAt),
		UpdatedAt:         formatTime(lt.UpdatedAt),
	}
}

func (row labelRow) toDomain() *domain.Label {
	return &domain.Label{ID: row.ID, Code: row.Code, Name: row.Name, TypeID: row.LabelTypeID}
}
