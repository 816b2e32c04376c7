// Package roster persists the tour between runs.
package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/okian/sportlife/internal/domain/model"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	kindActive  = "active"
	kindRetired = "retired"

	metaSeason   = "season"
	metaProgress = "progress"

	pingTimeout = 5 * time.Second
)

// Roster is everything needed to resume a career.
type Roster struct {
	Season int
	// Progress is how many tournaments of season Season+1 already finished.
	Progress int
	Active   []*model.Competitor
	Retired  []model.Retired
	Records  []model.SeasonRecord
}

// Store loads and saves a Roster.
type Store interface {
	// Load returns ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) (Roster, error)
	Save(ctx context.Context, r Roster) error
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS roster_meta (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS roster_competitors (
	kind     TEXT    NOT NULL,
	position INTEGER NOT NULL,
	id       TEXT    NOT NULL,
	data     TEXT    NOT NULL,
	PRIMARY KEY (kind, position)
);

CREATE TABLE IF NOT EXISTS roster_records (
	position       INTEGER PRIMARY KEY,
	season         INTEGER NOT NULL,
	format         TEXT    NOT NULL,
	champion_id    TEXT    NOT NULL,
	champion_name  TEXT    NOT NULL,
	runner_up_name TEXT    NOT NULL,
	purse          BIGINT  NOT NULL
);`

// SQLStore keeps the roster in sqlite or postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects, verifies the connection and creates the tables.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}
	if driver == DriverSQLite {
		// One writer keeps sqlite from reporting "database is locked".
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{db: db, driver: driver}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return s, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored roster in one transaction.
func (s *SQLStore) Save(ctx context.Context, r Roster) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM roster_meta`,
		`DELETE FROM roster_competitors`,
		`DELETE FROM roster_records`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	insertMeta := s.rebind(`INSERT INTO roster_meta (name, value) VALUES (?, ?)`)
	for _, m := range []struct {
		name  string
		value int
	}{{metaSeason, r.Season}, {metaProgress, r.Progress}} {
		if _, err := tx.ExecContext(ctx, insertMeta, m.name, strconv.Itoa(m.value)); err != nil {
			return fmt.Errorf("save %s: %w", m.name, err)
		}
	}

	insertCompetitor := s.rebind(`INSERT INTO roster_competitors (kind, position, id, data) VALUES (?, ?, ?, ?)`)
	for i, c := range r.Active {
		if err := insertJSON(ctx, tx, insertCompetitor, kindActive, i, c.ID, c); err != nil {
			return err
		}
	}
	for i := range r.Retired {
		if err := insertJSON(ctx, tx, insertCompetitor, kindRetired, i, r.Retired[i].ID, &r.Retired[i]); err != nil {
			return err
		}
	}

	insertRecord := s.rebind(`INSERT INTO roster_records
		(position, season, format, champion_id, champion_name, runner_up_name, purse)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, rec := range r.Records {
		if _, err := tx.ExecContext(ctx, insertRecord,
			i, rec.Season, rec.Format, rec.ChampionID, rec.ChampionName, rec.RunnerUpName, rec.Purse); err != nil {
			return fmt.Errorf("save record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertJSON(ctx context.Context, tx *sql.Tx, query, kind string, pos int, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	if _, err := tx.ExecContext(ctx, query, kind, pos, id, string(data)); err != nil {
		return fmt.Errorf("save %s %s: %w", kind, id, err)
	}
	return nil
}

// Load reads the stored roster.
func (s *SQLStore) Load(ctx context.Context) (Roster, error) {
	var r Roster

	var err error
	if r.Season, err = s.meta(ctx, metaSeason); err != nil {
		return r, err
	}
	// Rosters saved before progress was tracked only hold whole seasons.
	if r.Progress, err = s.meta(ctx, metaProgress); err != nil && !errors.Is(err, ErrNotFound) {
		return r, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, data FROM roster_competitors ORDER BY kind, position`)
	if err != nil {
		return r, fmt.Errorf("load competitors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, data string
		if err := rows.Scan(&kind, &data); err != nil {
			return r, fmt.Errorf("scan competitor: %w", err)
		}
		switch kind {
		case kindActive:
			c := &model.Competitor{}
			if err := json.Unmarshal([]byte(data), c); err != nil {
				return r, fmt.Errorf("%w: %w", ErrCorrupt, err)
			}
			r.Active = append(r.Active, c)
		case kindRetired:
			var ret model.Retired
			if err := json.Unmarshal([]byte(data), &ret); err != nil {
				return r, fmt.Errorf("%w: %w", ErrCorrupt, err)
			}
			r.Retired = append(r.Retired, ret)
		default:
			return r, fmt.Errorf("%w: kind %q", ErrCorrupt, kind)
		}
	}
	if err := rows.Err(); err != nil {
		return r, fmt.Errorf("load competitors: %w", err)
	}

	recRows, err := s.db.QueryContext(ctx, `SELECT season, format, champion_id, champion_name, runner_up_name, purse
		FROM roster_records ORDER BY position`)
	if err != nil {
		return r, fmt.Errorf("load records: %w", err)
	}
	defer recRows.Close()
	for recRows.Next() {
		var rec model.SeasonRecord
		if err := recRows.Scan(&rec.Season, &rec.Format, &rec.ChampionID, &rec.ChampionName, &rec.RunnerUpName, &rec.Purse); err != nil {
			return r, fmt.Errorf("scan record: %w", err)
		}
		r.Records = append(r.Records, rec)
	}
	if err := recRows.Err(); err != nil {
		return r, fmt.Errorf("load records: %w", err)
	}
	return r, nil
}

// meta reads one integer from roster_meta. A missing row is ErrNotFound.
func (s *SQLStore) meta(ctx context.Context, name string) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT value FROM roster_meta WHERE name = ?`), name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", name, err)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrCorrupt, name, value)
	}
	return n, nil
}

// rebind turns ? placeholders into $n for postgres.
func (s *SQLStore) rebind(q string) string {
	return rebind(s.driver, q)
}

func rebind(driver, q string) string {
	if driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
