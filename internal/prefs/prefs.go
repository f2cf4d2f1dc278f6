// Package prefs persists user settings between sessions in a small SQLite
// key/value table.
package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Keys of the settings table.
const (
	KeyRamp        = "ramp"
	KeySensitivity = "sensitivity"
	KeyScale       = "scale"
	KeyReference   = "reference"
	KeyTheme       = "theme"
	KeyTestPattern = "test_pattern"
	KeyTuner       = "tuner"
)

// Settings is everything the visualizer remembers. Empty strings and zero
// numbers mean "not set".
type Settings struct {
	Ramp        string
	Sensitivity float64
	Scale       float64
	Reference   float64
	Theme       string
	TestPattern string
	Tuner       bool
}

// Store wraps a SQLite connection holding settings.
type Store struct {
	conn *sqlx.DB
}

type row struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// DefaultPath returns the settings file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cymascope", "prefs.db"), nil
}

// Open opens or creates the settings database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate prefs: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`)
	return err
}

func setValue(e sqlx.Execer, key, value string) error {
	_, err := e.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// get retrieves one value. ok is false when the key was never stored.
func (s *Store) get(key string) (value string, ok bool, err error) {
	err = s.conn.Get(&value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Load overlays stored values onto defaults. Values that fail to parse are
// reported in the joined error and leave the default in place.
func (s *Store) Load(defaults Settings) (Settings, error) {
	var rows []row
	if err := s.conn.Select(&rows, "SELECT key, value FROM settings"); err != nil {
		return defaults, err
	}

	out := defaults
	var errs []error
	parseFloat := func(dst *float64, key, v string) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = f
	}
	for _, r := range rows {
		switch r.Key {
		case KeyRamp:
			out.Ramp = r.Value
		case KeyTheme:
			out.Theme = r.Value
		case KeyTestPattern:
			out.TestPattern = r.Value
		case KeySensitivity:
			parseFloat(&out.Sensitivity, r.Key, r.Value)
		case KeyScale:
			parseFloat(&out.Scale, r.Key, r.Value)
		case KeyReference:
			parseFloat(&out.Reference, r.Key, r.Value)
		case KeyTuner:
			b, err := strconv.ParseBool(r.Value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.Key, err))
				continue
			}
			out.Tuner = b
		}
	}
	return out, errors.Join(errs...)
}

// Save writes every setting in one transaction.
func (s *Store) Save(st Settings) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range st.rows() {
		if err := setValue(tx, r.Key, r.Value); err != nil {
			return fmt.Errorf("save %s: %w", r.Key, err)
		}
	}
	return tx.Commit()
}

func (st Settings) rows() []row {
	rows := []row{{KeyTuner, strconv.FormatBool(st.Tuner)}}
	for _, r := range []row{
		{KeyRamp, st.Ramp},
		{KeyTheme, st.Theme},
		{KeyTestPattern, st.TestPattern},
	} {
		if r.Value != "" {
			rows = append(rows, r)
		}
	}
	for _, f := range []struct {
		key string
		v   float64
	}{
		{KeySensitivity, st.Sensitivity},
		{KeyScale, st.Scale},
		{KeyReference, st.Reference},
	} {
		if f.v > 0 {
			rows = append(rows, row{f.key, strconv.FormatFloat(f.v, 'g', -1, 64)})
		}
	}
	return rows
}
