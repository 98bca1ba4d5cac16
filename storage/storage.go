// Package storage reads and rewrites the target application's storage.json.
//
// Only the four telemetry identifiers are touched. Every other key in the file
// is carried through a save unchanged, and the previous content is copied to a
// timestamped backup beside the file before it is overwritten.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cursor-id-reset/apperr"
	"cursor-id-reset/config"
	"cursor-id-reset/identity"
	"cursor-id-reset/log"

	"dario.cat/mergo"
	"github.com/goccy/go-json"
)

const (
	// FileName is the name of the target application's storage file.
	FileName = "storage.json"

	opRead = "read_config"
	opSave = "save_config"

	filePerm = 0666
	dirPerm  = 0755
)

// GetConfigPath returns where appName keeps storage.json for username. goos
// uses runtime.GOOS values; anything other than darwin gets the Linux layout.
func GetConfigPath(username, goos, appName string) string {
	if goos == "darwin" {
		return filepath.Join("/Users", username, "Library", "Application Support", appName, "User", "globalStorage", FileName)
	}
	return filepath.Join("/home", username, ".config", appName, "User", "globalStorage", FileName)
}

// Document is a parsed storage.json.
type Document struct {
	// Raw holds every key of the file. Numbers are kept as json.Number so they
	// are written back exactly as read.
	Raw map[string]interface{}
	// Set holds the identifier keys. Missing or non-string values are empty.
	Set identity.IdentifierSet
}

func newDocument(raw map[string]interface{}) *Document {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	return &Document{
		Raw: raw,
		Set: identity.IdentifierSet{
			MacMachineID: str(identity.KeyMacMachineID),
			MachineID:    str(identity.KeyMachineID),
			DevDeviceID:  str(identity.KeyDevDeviceID),
			SQMID:        str(identity.KeySQMID),
		},
	}
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to name backups.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store reads and writes one storage.json. It assumes it is the only writer.
type Store struct {
	path   string
	logger *log.Logger
	now    func() time.Time
}

// NewStore returns a Store for the file at path.
func NewStore(path string, logger *log.Logger, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the storage file path.
func (s *Store) Path() string {
	return s.path
}

// ReadExisting parses the storage file. It returns nil and no error when the
// file does not exist.
func (s *Store) ReadExisting() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.Config(opRead, s.path, err)
	}

	raw, err := decodeObject(data)
	if err != nil {
		return nil, apperr.Config(opRead, s.path, err)
	}
	return newDocument(raw), nil
}

func decodeObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	var extra interface{}
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New("failed to parse JSON: unexpected data after top-level object")
	}
	return raw, nil
}

// SaveResult describes the backup taken by Save.
type SaveResult struct {
	// BackupPath is the copy of the previous file, empty if none was made.
	BackupPath string
	// BackupErr is set when the file existed but could not be copied.
	BackupErr error
}

// EmptyDocument returns a document with no keys, for replacing a file that
// could not be parsed.
func EmptyDocument() *Document {
	return newDocument(nil)
}

// Save writes set into the storage file.
//
// prev is the document returned by ReadExisting for this run. When it is nil
// the file is read again; a file that exists but can't be parsed then fails the
// save instead of being replaced by an empty object.
func (s *Store) Save(set identity.IdentifierSet, prev *Document) (SaveResult, error) {
	var result SaveResult
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return result, apperr.Config(opSave, s.path, fmt.Errorf("failed to create config directory: %w", err))
	}

	// Writes go to the file a symlinked storage.json points at.
	target, err := config.ResolveTarget(s.path)
	if err != nil {
		return result, apperr.Config(opSave, s.path, err)
	}
	if target != s.path {
		s.logger.Infof("%s resolves to %s", s.path, target)
	}

	if _, err := os.Stat(target); err == nil {
		if err := os.Chmod(target, filePerm); err != nil {
			return result, apperr.Config(opSave, s.path, fmt.Errorf("failed to make file writable: %w", err))
		}
		backupPath, err := s.backup()
		if err != nil {
			s.logger.Warnf("failed to create backup: %v", err)
			result.BackupErr = err
		} else {
			s.logger.Infof("created backup: %s", backupPath)
			result.BackupPath = backupPath
		}
	}

	base, err := s.baseObject(prev)
	if err != nil {
		return result, err
	}

	merged, err := merge(base, set)
	if err != nil {
		return result, apperr.Config(opSave, s.path, err)
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return result, apperr.Config(opSave, s.path, fmt.Errorf("failed to marshal config: %w", err))
	}

	if err := config.AtomicWriteFile(target, data, filePerm); err != nil {
		return result, apperr.Config(opSave, s.path, err)
	}
	s.logger.Infof("wrote %s", s.path)
	return result, nil
}

func (s *Store) baseObject(prev *Document) (map[string]interface{}, error) {
	if prev != nil {
		return prev.Raw, nil
	}
	doc, err := s.ReadExisting()
	if err != nil {
		var cfgErr *apperr.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, apperr.Config(opSave, s.path, cfgErr.Err)
		}
		return nil, apperr.Config(opSave, s.path, err)
	}
	if doc == nil {
		return map[string]interface{}{}, nil
	}
	return doc.Raw, nil
}

// merge returns a copy of base with the identifier keys replaced by set.
func merge(base map[string]interface{}, set identity.IdentifierSet) (map[string]interface{}, error) {
	merged := make(map[string]interface{}, len(base)+4)
	for k, v := range base {
		merged[k] = v
	}
	if err := mergo.Merge(&merged, set.Map(), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge identifiers: %w", err)
	}
	return merged, nil
}

func (s *Store) backup() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", err
	}
	backupPath := fmt.Sprintf("%s.%d.bak", s.path, s.now().Unix())
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", err
	}
	return backupPath, nil
}
