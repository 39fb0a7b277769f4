package feed

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grid-asset-prioritizer/internal/asset"
)

// Querier is the subset of a pgx pool or connection used to read the asset table.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Columns names the table columns holding each field. An empty name means
// the table has no such column and every row falls back to its default.
type Columns struct {
	ID         string
	SAIDI      string
	SAIFI      string
	Health     string
	Cost       string
	Group      string
	Category   string
	Investment string
}

// DefaultColumns uses the canonical column names.
func DefaultColumns() Columns {
	return Columns{
		ID:         ColumnID,
		SAIDI:      ColumnSAIDI,
		SAIFI:      ColumnSAIFI,
		Health:     ColumnHealth,
		Cost:       ColumnCost,
		Group:      ColumnGroup,
		Category:   ColumnCategory,
		Investment: ColumnInvestment,
	}
}

// PostgresSource reads the asset table from Postgres. Rows are returned in
// OrderBy order, which becomes the canonical asset order.
type PostgresSource struct {
	DB      Querier
	Table   string
	OrderBy string
	Columns Columns
}

// OpenPostgres connects a pool for use as a PostgresSource querier.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach postgres: %w", err)
	}
	return pool, nil
}

// Query builds the SELECT statement for the asset table.
func (s PostgresSource) Query() (string, []any, error) {
	if strings.TrimSpace(s.Table) == "" {
		return "", nil, fmt.Errorf("postgres table is required")
	}
	if s.Columns.ID == "" || s.Columns.Health == "" {
		return "", nil, fmt.Errorf("missing required columns: %s, %s", ColumnID, ColumnHealth)
	}

	cols := s.Columns
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(
			castColumn(cols.ID, "TEXT"),
			castColumn(cols.SAIDI, "DOUBLE PRECISION"),
			castColumn(cols.SAIFI, "DOUBLE PRECISION"),
			castColumn(cols.Health, "DOUBLE PRECISION"),
			castColumn(cols.Cost, "DOUBLE PRECISION"),
			castColumn(cols.Group, "TEXT"),
			castColumn(cols.Category, "INTEGER"),
			castColumn(cols.Investment, "INTEGER"),
		).
		From(quoteIdentifier(s.Table))

	orderBy := s.OrderBy
	if orderBy == "" {
		orderBy = cols.ID
	}
	builder = builder.OrderBy(quoteIdentifier(orderBy))
	return builder.ToSql()
}

// Load reads every row of the asset table. Rows without an id or with a
// non-finite number are skipped and reported as warnings.
func (s PostgresSource) Load(ctx context.Context) ([]asset.Record, []string, error) {
	query, args, err := s.Query()
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to query %s: %w", s.Table, err)
	}
	defer rows.Close()

	records := []asset.Record{}
	var warnings []string
	row := 0
	for rows.Next() {
		row++
		var id *string
		var rec asset.Record
		if err := rows.Scan(&id, &rec.SAIDI, &rec.SAIFI, &rec.Health, &rec.Cost, &rec.Group, &rec.Category, &rec.Investment); err != nil {
			return nil, warnings, fmt.Errorf("unable to scan row %d: %w", row, err)
		}
		if id == nil || strings.TrimSpace(*id) == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: missing id", row))
			continue
		}
		if column, bad := nonFiniteColumn(rec); bad {
			warnings = append(warnings, fmt.Sprintf("row %d: invalid %s", row, column))
			continue
		}
		rec.ID = strings.TrimSpace(*id)
		if rec.Group != nil && strings.TrimSpace(*rec.Group) == "" {
			rec.Group = nil
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, warnings, fmt.Errorf("unable to read %s: %w", s.Table, err)
	}
	return records, warnings, nil
}

// nonFiniteColumn returns the first numeric column holding Infinity or NaN.
func nonFiniteColumn(rec asset.Record) (string, bool) {
	fields := []struct {
		column string
		value  *float64
	}{
		{ColumnSAIDI, rec.SAIDI},
		{ColumnSAIFI, rec.SAIFI},
		{ColumnHealth, rec.Health},
		{ColumnCost, rec.Cost},
	}
	for _, field := range fields {
		if field.value != nil && !finite(*field.value) {
			return field.column, true
		}
	}
	return "", false
}

func castColumn(column, sqlType string) string {
	if column == "" {
		return fmt.Sprintf("CAST(NULL AS %s)", sqlType)
	}
	return fmt.Sprintf("CAST(%s AS %s)", quoteIdentifier(column), sqlType)
}

// quoteIdentifier quotes a possibly schema-qualified name.
func quoteIdentifier(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}
