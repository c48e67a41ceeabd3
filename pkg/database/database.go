package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/nais/sitedeploy/pkg/crypto"
	"github.com/nais/sitedeploy/pkg/metrics"
)

// Database stores site bindings and credentials for any number of projects.
type Database struct {
	conn          *pgxpool.Pool
	encryptionKey []byte
}

func New(ctx context.Context, dsn string, encryptionKey []byte) (*Database, error) {
	if len(encryptionKey) != crypto.KeyLength {
		return nil, crypto.ErrKeyLength
	}

	conn, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &Database{
		conn:          conn,
		encryptionKey: encryptionKey,
	}, nil
}

// Connect retries New until it succeeds or ctx expires.
func Connect(ctx context.Context, dsn string, encryptionKey []byte, backoff time.Duration) (*Database, error) {
	for {
		log.Infof("Connecting to database...")
		db, err := New(ctx, dsn, encryptionKey)
		if err == nil {
			log.Infof("Database connection established.")
			return db, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("setup postgres connection: %w", err)
		}
		log.Errorf("unable to connect to database: %s", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("setup postgres connection: %w", err)
		case <-time.After(backoff):
		}
	}
}

func (db *Database) Close() {
	db.conn.Close()
}

func (db *Database) timedQueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	now := time.Now()
	row := db.conn.QueryRow(ctx, sql, args...)
	metrics.DatabaseQuery(now, nil)
	return row
}

func (db *Database) timedExec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	now := time.Now()
	tag, err := db.conn.Exec(ctx, sql, args...)
	metrics.DatabaseQuery(now, err)
	return tag, err
}

func (db *Database) Migrate(ctx context.Context) error {
	var version int

	query := `SELECT MAX(version) FROM migrations`
	row := db.conn.QueryRow(ctx, query)
	err := row.Scan(&version)

	if err != nil {
		// error might be due to no schema.
		// no way to detect this, so log error and continue with migrations.
		log.Warnf("unable to get current migration version: %s", err)
	}

	for version < len(migrations) {
		log.Infof("migrating database schema to version %d", version+1)

		_, err = db.conn.Exec(ctx, migrations[version])
		if err != nil {
			return fmt.Errorf("migrating to version %d: %w", version+1, err)
		}

		version++
	}

	return nil
}
