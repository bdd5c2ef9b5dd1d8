package sqlconfig

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	psqldialect "github.com/stephenafamo/bob/dialect/psql/dialect"
	psqlim "github.com/stephenafamo/bob/dialect/psql/im"
	psqlsm "github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/sqlite"
	sqlitedialect "github.com/stephenafamo/bob/dialect/sqlite/dialect"
	sqliteim "github.com/stephenafamo/bob/dialect/sqlite/im"
	sqlitesm "github.com/stephenafamo/bob/dialect/sqlite/sm"
)

// Dialect selects the SQL flavour queries are built for. Its value is also
// the golang-migrate database name and the migrations directory.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// selectAll reads every row of table in a stable order.
func (d Dialect) selectAll(ctx context.Context, table string, orderBy ...string) (string, []any, error) {
	if d == DialectSQLite {
		mods := []bob.Mod[*sqlitedialect.SelectQuery]{
			sqlitesm.Columns("*"),
			sqlitesm.From(sqlite.Quote(table)),
		}
		for _, col := range orderBy {
			mods = append(mods, sqlitesm.OrderBy(sqlite.Quote(col)).Asc())
		}
		return sqlite.Select(mods...).Build(ctx)
	}

	mods := []bob.Mod[*psqldialect.SelectQuery]{
		psqlsm.Columns("*"),
		psqlsm.From(psql.Quote(table)),
	}
	for _, col := range orderBy {
		mods = append(mods, psqlsm.OrderBy(psql.Quote(col)).Asc())
	}
	return psql.Select(mods...).Build(ctx)
}

// insert builds one multi-row INSERT.
func (d Dialect) insert(ctx context.Context, table string, columns []string, rows [][]any) (string, []any, error) {
	if d == DialectSQLite {
		mods := []bob.Mod[*sqlitedialect.InsertQuery]{
			sqliteim.Into(sqlite.Quote(table), columns...),
		}
		for _, row := range rows {
			mods = append(mods, sqliteim.Values(sqlite.Arg(row...)))
		}
		return sqlite.Insert(mods...).Build(ctx)
	}

	mods := []bob.Mod[*psqldialect.InsertQuery]{
		psqlim.Into(psql.Quote(table), columns...),
	}
	for _, row := range rows {
		mods = append(mods, psqlim.Values(psql.Arg(row...)))
	}
	return psql.Insert(mods...).Build(ctx)
}
