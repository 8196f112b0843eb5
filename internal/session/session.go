// Package session persists a named preparation setup (source, derivation
// spec, load options) so repeated CLI invocations re-run the same pipeline
// without restating flags.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/surveykit/surveyprep/internal/pipeline"
	"github.com/surveykit/surveyprep/internal/utils"
)

const sessionFileName = "session.json"

// Session is a surveyprep preparation setup persisted on disk.
type Session struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Source    string   `json:"source"`
	SpecPath  string   `json:"spec_path,omitempty"`
	Encodings []string `json:"encodings,omitempty"`
	Delimiter string   `json:"delimiter,omitempty"`
	MaxRows   int      `json:"max_rows,omitempty"`

	// Last-run outcome, filled in by RecordRun.
	Rows           int       `json:"rows,omitempty"`
	DerivedSkipped []string  `json:"derived_skipped,omitempty"`
	LastRunAt      time.Time `json:"last_run_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Not serialized: on-disk location of the session.json
	rootDir string
}

// New constructs an in-memory session. Call Save() to persist.
func New(name, source, rootDir string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   rootDir,
	}
}

// Load reads a session.json from the provided directory.
func Load(dir string) (*Session, error) {
	path := filepath.Join(dir, sessionFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("session not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	s.rootDir = dir
	return &s, nil
}

// RootDir returns the on-disk session directory path.
func (s *Session) RootDir() string { return s.rootDir }

// Save writes session.json using atomic write.
func (s *Session) Save() error {
	if s.rootDir == "" {
		return errors.New("session root directory not set")
	}
	if err := utils.EnsureDir(s.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.rootDir, sessionFileName), data)
}

// RecordRun stores the outcome of a preparation run on the session.
func (s *Session) RecordRun(p *pipeline.Prepared) {
	s.Rows = p.Dataset.Len()
	s.DerivedSkipped = p.Skipped
	s.LastRunAt = p.LoadedAt
	s.UpdatedAt = time.Now()
}
