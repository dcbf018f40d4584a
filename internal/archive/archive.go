// Package archive records resolved configuration snapshots in a SQLite
// database so a pipeline run can later be traced to the exact configuration
// it used.
//
// Payloads are stored once per content digest; every Save adds a record
// pointing at a payload.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
)

// ErrAmbiguous indicates a digest prefix matching more than one payload.
var ErrAmbiguous = errors.New("ambiguous reference")

// minPrefix is the shortest digest prefix accepted by Get.
const minPrefix = 8

// timeLayout has a fixed width so saved_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS payloads (
		digest  TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS records (
		id       TEXT PRIMARY KEY,
		digest   TEXT NOT NULL REFERENCES payloads(digest),
		label    TEXT NOT NULL DEFAULT '',
		sources  TEXT NOT NULL,
		saved_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS records_digest ON records(digest)`,
}

// Record is one archived snapshot.
type Record struct {
	ID      string
	Digest  string
	Label   string
	Sources []string
	SavedAt time.Time
}

// Archive is a SQLite-backed snapshot archive. It is safe for concurrent use.
type Archive struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// Open opens or creates the archive at path.
func Open(ctx context.Context, path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "creating archive directory")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening archive")
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "creating archive schema")
		}
	}
	return &Archive{db: db, now: time.Now, newID: uuid.NewString}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save archives snap under an optional label.
func (a *Archive) Save(ctx context.Context, snap *configstore.Snapshot, label string) (rec Record, retErr error) {
	payload, err := json.Marshal(snap.Export())
	if err != nil {
		return Record{}, errors.Wrap(err, "encoding snapshot")
	}
	sources, err := json.Marshal(snap.Sources())
	if err != nil {
		return Record{}, errors.Wrap(err, "encoding sources")
	}
	rec = Record{
		ID:      a.newID(),
		Digest:  snap.Digest(),
		Label:   label,
		Sources: snap.Sources(),
		SavedAt: a.now().UTC(),
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO payloads (digest, payload) VALUES (?, ?)`,
		rec.Digest, payload); err != nil {
		return Record{}, errors.Wrap(err, "inserting payload")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records (id, digest, label, sources, saved_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Digest, rec.Label, string(sources), rec.SavedAt.Format(timeLayout)); err != nil {
		return Record{}, errors.Wrap(err, "inserting record")
	}
	if err := tx.Commit(); err != nil {
		return Record{}, errors.Wrap(err, "committing")
	}
	return rec, nil
}

// List returns all records, newest first.
func (a *Archive) List(ctx context.Context) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, digest, label, sources, saved_at FROM records ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing records")
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "listing records")
}

// Get finds a record by id, or the newest record of a digest given in full
// or as a prefix of at least eight characters.
func (a *Archive) Get(ctx context.Context, ref string) (Record, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, digest, label, sources, saved_at FROM records WHERE id = ?`, ref)
	rec, err := scanRecord(row)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Record{}, err
	}

	digest, err := a.resolveDigest(ctx, ref)
	if err != nil {
		return Record{}, err
	}
	row = a.db.QueryRowContext(ctx,
		`SELECT id, digest, label, sources, saved_at FROM records WHERE digest = ? ORDER BY saved_at DESC LIMIT 1`, digest)
	return scanRecord(row)
}

func (a *Archive) resolveDigest(ctx context.Context, prefix string) (string, error) {
	if len(prefix) < minPrefix || strings.ContainsAny(prefix, "%_") {
		return "", errors.Wrapf(errors.ErrNotFound, "archive record %q", prefix)
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT digest FROM payloads WHERE digest LIKE ? LIMIT 2`, prefix+"%")
	if err != nil {
		return "", errors.Wrap(err, "resolving digest")
	}
	defer func() { _ = rows.Close() }()

	var found []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return "", errors.Wrap(err, "resolving digest")
		}
		found = append(found, d)
	}
	if err := rows.Err(); err != nil {
		return "", errors.Wrap(err, "resolving digest")
	}
	switch len(found) {
	case 0:
		return "", errors.Wrapf(errors.ErrNotFound, "archive record %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", errors.Wrapf(ErrAmbiguous, "digest prefix %q", prefix)
	}
}

// Document returns the archived payload of digest as a configuration
// document. Loading it on its own reproduces a snapshot with that digest.
func (a *Archive) Document(ctx context.Context, digest string) (*document.Document, error) {
	var payload []byte
	err := a.db.QueryRowContext(ctx, `SELECT payload FROM payloads WHERE digest = ?`, digest).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "archived payload %s", digest)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading payload")
	}
	return document.Parse("archive:"+digest, payload, document.FormatJSON)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec     Record
		sources string
		savedAt string
	)
	if err := s.Scan(&rec.ID, &rec.Digest, &rec.Label, &sources, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, errors.Wrap(err, "scanning record")
	}
	if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
		return Record{}, errors.Wrapf(err, "decoding sources of %s", rec.ID)
	}
	t, err := time.Parse(timeLayout, savedAt)
	if err != nil {
		return Record{}, errors.Wrapf(err, "decoding saved_at of %s", rec.ID)
	}
	rec.SavedAt = t
	return rec, nil
}
