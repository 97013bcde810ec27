package sqlite

import (
	"context"
	"fmt"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

// lister compiles list descriptors against an entity schema and runs the
// count and page queries.
type lister struct {
	db     dbtx
	bounds query.Bounds
}

func listRows[T any](ctx context.Context, l *lister, schema *query.Schema, table, columns string, q repository.ListQuery, scan func(rowScanner) (T, error)) ([]T, int64, error) {
	scopes := make([]query.Scope, 0, len(q.Scopes)+1)
	if q.BakerID != nil {
		scopes = append(scopes, query.Scope{Column: "baker_id", Value: *q.BakerID})
	}
	scopes = append(scopes, q.Scopes...)

	compiled, err := schema.Compile(q.Descriptor, l.bounds, scopes...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", repository.ErrInvalidQuery, err)
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM ` + table + compiled.Where()
	if err := l.db.QueryRowContext(ctx, countSQL, compiled.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}

	pageSQL := `SELECT ` + columns + ` FROM ` + table + compiled.Where() + compiled.Tail()
	rows, err := l.db.QueryContext(ctx, pageSQL, compiled.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	items := make([]T, 0, compiled.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
