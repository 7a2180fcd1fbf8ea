package sqlite

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const getPreference = `
select value from preferences where key = ?
`

func (q *Queries) GetPreference(ctx context.Context, key string) (string, error) {
	row := q.db.QueryRowContext(ctx, getPreference, key)
	var value string
	err := row.Scan(&value)
	return value, err
}

const setPreference = `
insert into preferences (key, value) values (?, ?)
on conflict (key) do update set value = excluded.value, updated_at = current_timestamp
`

type SetPreferenceParams struct {
	Key   string
	Value string
}

func (q *Queries) SetPreference(ctx context.Context, arg SetPreferenceParams) error {
	_, err := q.db.ExecContext(ctx, setPreference, arg.Key, arg.Value)
	return err
}

const dumpTables = `
select sql from sqlite_master where type = 'table' and name not like 'sqlite_%' order by name
`

func (q *Queries) DumpTables(ctx context.Context) ([]*string, error) {
	return q.dump(ctx, dumpTables)
}

const dumpRest = `
select sql from sqlite_master where type != 'table' and name not like 'sqlite_%' order by name
`

func (q *Queries) DumpRest(ctx context.Context) ([]*string, error) {
	return q.dump(ctx, dumpRest)
}

func (q *Queries) dump(ctx context.Context, query string) ([]*string, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*string
	for rows.Next() {
		var statement *string
		if err := rows.Scan(&statement); err != nil {
			return nil, err
		}
		items = append(items, statement)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
