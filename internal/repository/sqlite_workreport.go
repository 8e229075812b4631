package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type workReportLineRow struct {
	ID        string `db:"id"`
	ElementID string `db:"element_id"`
	Date      string `db:"date"`
	Hours     int    `db:"hours"`
	CreatedAt string `db:"created_at"`
}

// SQLiteWorkReportRepo implements WorkReportRepo using a SQLite database.
type SQLiteWorkReportRepo struct {
	db db.DBTX
}

// NewSQLiteWorkReportRepo creates a new SQLiteWorkReportRepo.
func NewSQLiteWorkReportRepo(conn db.DBTX) *SQLiteWorkReportRepo {
	return &SQLiteWorkReportRepo{db: conn}
}

func (r *SQLiteWorkReportRepo) AddLine(ctx context.Context, l *WorkReportLine) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := sqlx.NamedExecContext(ctx, r.db,
		`INSERT INTO work_report_lines (id, element_id, date, hours, created_at)
		VALUES (:id, :element_id, :date, :hours, :created_at)`,
		workReportLineRow{
			ID:        l.ID,
			ElementID: l.ElementID,
			Date:      l.Date.Format(dateLayout),
			Hours:     l.Hours,
			CreatedAt: formatTime(l.CreatedAt),
		})
	if err != nil {
		return fmt.Errorf("inserting work report line: %w", err)
	}
	return nil
}

func (r *SQLiteWorkReportRepo) ListByElement(ctx context.Context, elementID string) ([]*WorkReportLine, error) {
	var rows []workReportLineRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT id, element_id, date, hours, created_at FROM work_report_lines WHERE element_id = ? ORDER BY date`, elementID)
	if err != nil {
		return nil, fmt.Errorf("listing work report lines: %w", err)
	}
	out := make([]*WorkReportLine, 0, len(rows))
	for _, row := range rows {
		d, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing work report date %q: %w", row.Date, err)
		}
		out = append(out, &WorkReportLine{
			ID:        row.ID,
			ElementID: row.ElementID,
			Date:      d,
			Hours:     row.Hours,
			CreatedAt: parseTime(row.CreatedAt),
		})
	}
	return out, nil
}
