// Package boiledrepos implements the domain repositories over sqlx, building list
// queries with sqlboiler query mods so they run unchanged on postgres and sqlite.
package boiledrepos

import (
	"context"
	"database/sql"
	"strings"
	"unicode"

	"github.com/friendsofgo/errors"
	"github.com/lib/pq"
	"github.com/volatiletech/sqlboiler/v4/drivers"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/strmangle"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/trezcool/edvise/core"
)

type base struct {
	exec core.DBExecutor
}

func (b base) dialect() *drivers.Dialect {
	return &drivers.Dialect{
		LQ:                   '"',
		RQ:                   '"',
		UseIndexPlaceholders: b.exec.DriverName() == core.EnginePostgres,
	}
}

func (b base) query(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, b.dialect())
	qm.Apply(q, mods...)
	return q
}

// all binds every row selected by mods into dest, a pointer to a slice of row structs.
func (b base) all(ctx context.Context, dest interface{}, mods ...qm.QueryMod) error {
	if err := b.query(mods...).Bind(ctx, b.exec, dest); err != nil {
		return errors.Wrap(err, "boiledrepos: failed to bind rows")
	}
	return nil
}

func (b base) count(ctx context.Context, mods ...qm.QueryMod) (int, error) {
	q := b.query(mods...)
	queries.SetCount(q)

	var n int64
	if err := q.QueryRowContext(ctx, b.exec).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "boiledrepos: failed to count rows")
	}
	return int(n), nil
}

type groupCount struct {
	Key string `boil:"grp"`
	N   int    `boil:"n"`
}

// countBy counts the rows of table grouped by column, within a tenant.
func (b base) countBy(ctx context.Context, table, column, tenantID string) (map[string]int, error) {
	quote := func(s string) string { return strmangle.IdentQuote('"', '"', s) }
	raw := "SELECT " + quote(column) + " AS grp, COUNT(*) AS n FROM " + quote(table) +
		" WHERE tenant_id = ? GROUP BY " + quote(column)

	var rows []groupCount
	if err := queries.Raw(b.exec.Rebind(raw), tenantID).Bind(ctx, b.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "boiledrepos: failed to count groups")
	}
	res := make(map[string]int, len(rows))
	for _, r := range rows {
		res[r.Key] = r.N
	}
	return res, nil
}

// get scans the single row of query into dest.
func (b base) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return b.exec.GetContext(ctx, dest, b.exec.Rebind(query), args...)
}

func (b base) delete(ctx context.Context, table, tenantID, id string, notFound error) error {
	res, err := b.exec.ExecContext(ctx, b.exec.Rebind(
		"DELETE FROM "+strmangle.IdentQuote('"', '"', table)+" WHERE tenant_id = ? AND id = ?"), tenantID, id)
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound
	}
	return nil
}

// orderBy renders ordering, keeping the fields allowed for the table.
func orderBy(ordering []core.DBOrdering, allowed map[string]string) qm.QueryMod {
	ordering = core.FilterOrderings(ordering, allowed)
	if len(ordering) == 0 {
		return nil
	}
	list := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		list = append(list, ord.String())
	}
	return qm.OrderBy(strings.Join(list, ", "))
}

// allowedFields maps API field names, lower-cased as FilterOrderings looks them up,
// to their (snake_case) columns.
func allowedFields(fields ...string) map[string]string {
	res := make(map[string]string, len(fields))
	for _, f := range fields {
		col := snakeCase(f)
		res[strings.ToLower(f)] = col
		res[col] = col
	}
	return res
}

// snakeCase turns "createdAt" into "created_at".
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func search(term string, columns ...string) qm.QueryMod {
	val := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		clauses = append(clauses, "LOWER("+col+") LIKE ?")
		args = append(args, val)
	}
	return qm.Expr(qm.Where(strings.Join(clauses, " OR "), args...))
}

func whereIn(column string, values []string) qm.QueryMod {
	args := make([]interface{}, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}
	return qm.WhereIn(column+" IN ?", args...)
}

func mods(list ...qm.QueryMod) []qm.QueryMod {
	res := make([]qm.QueryMod, 0, len(list))
	for _, m := range list {
		if m != nil {
			res = append(res, m)
		}
	}
	return res
}

// trapNoRows maps "no rows" to the domain's not-found error.
func trapNoRows(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err is a unique constraint failure of either engine.
func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == "23505"
	case *sqlite.Error:
		return e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || e.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// trapUnique maps unique constraint failures to conflict.
func trapUnique(err error, conflict error, msg string) error {
	if isUniqueViolation(err) {
		return conflict
	}
	return errors.Wrap(err, msg)
}
