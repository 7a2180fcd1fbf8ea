// schemadump applies the preference store migrations to an empty in-memory
// database and prints the resulting schema.
package main

import (
	"codeberg.org/miketth/escswitch/pkg/prefstore/sqlite"
	"codeberg.org/miketth/escswitch/pkg/prefstore/sqlite/migrations"
	"context"
	"database/sql"
	"flag"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"log"
	"os"
	"strings"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() (err error) {
	path := flag.String("path", "", "file to write the schema to, stdout if empty")
	withMigrations := flag.Bool("with-migration-table", false, "include the schema_migrations table")
	debug := flag.Bool("debug", false, "use debug level logging")
	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:schemadump?cache=shared&mode=memory")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(db))

	if err := migrations.Migrate(db, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var out io.Writer = os.Stdout
	if *path != "" {
		var file *os.File
		file, err = os.Create(*path)
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}
		defer multierr.AppendInvoke(&err, multierr.Close(file))
		out = file
	}

	log.Debugw("dumping schema", "path", *path)
	if err := dumpSchema(sqlite.New(db), out, *withMigrations); err != nil {
		return fmt.Errorf("dump schema: %w", err)
	}

	return nil
}

func dumpSchema(db *sqlite.Queries, out io.Writer, withMigrations bool) error {
	ctx := context.Background()

	tables, err := db.DumpTables(ctx)
	if err != nil {
		return fmt.Errorf("dump tables: %w", err)
	}

	rest, err := db.DumpRest(ctx)
	if err != nil {
		return fmt.Errorf("dump indexes and triggers: %w", err)
	}

	if _, err := fmt.Fprintln(out, "-- generated by schemadump, do not edit"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, statement := range append(tables, rest...) {
		if statement == nil {
			continue
		}
		if !withMigrations && strings.Contains(*statement, "schema_migrations") {
			continue
		}

		if _, err := fmt.Fprintf(out, "\n%s;\n", *statement); err != nil {
			return fmt.Errorf("write statement: %w", err)
		}
	}

	return nil
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stderr"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
