package catalog

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

type Repository struct {
	db     database.DB
	schema string
	logger ectologger.Logger
}

// NewRepository creates a catalog repository reading tables from schema.
// An empty schema uses the connection default.
func NewRepository(db database.DB, schema string, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		schema: schema,
		logger: logger,
	}
}

// FetchTable returns every row of table with all columns, in store order.
func (r *Repository) FetchTable(ctx context.Context, table string) ([]models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "CatalogRepository.FetchTable", attribute.String("db.table", table))
	defer span.End()

	query := database.SelectAll(r.db.Flavor(), r.schema, table)
	start := time.Now()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"table": table,
	}).Debug("Fetching catalog table")

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		tracing.Fail(span, err)
		return nil, r.fail(ctx, "query", table, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		tracing.Fail(span, err)
		return nil, r.fail(ctx, "scan", table, err)
	}

	metrics.RecordTableFetch(table, time.Since(start).Seconds())
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"table": table,
		"rows":  len(result),
	}).Debug("Fetched catalog table")

	return result, nil
}

// Ping runs a trivial query to prove the store answers.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "CatalogRepository.Ping")
	defer span.End()

	rows, err := r.db.QueryxContext(ctx, database.PingQuery)
	if err != nil {
		return r.fail(ctx, "ping", "", err)
	}
	defer rows.Close()

	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return r.fail(ctx, "ping", "", err)
	}
	return nil
}

func (r *Repository) fail(ctx context.Context, op, table string, err error) error {
	r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
		"op":    op,
		"table": table,
	}).Error("error reading catalog")
	return apperrors.NewDataSourceError(op, table, errors.Wrapf(err, "%s %s", op, table))
}

func scanRows(rows *sqlx.Rows) ([]models.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	result := []models.Row{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		for i := range values {
			values[i] = database.ColumnValue(types[i].DatabaseTypeName(), values[i])
		}
		result = append(result, models.NewRow(columns, values))
	}
	return result, rows.Err()
}
