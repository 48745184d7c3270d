package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/cbodonnell/fakegame/pkg/log"
)

// BackupExtension is appended to the settings path to name the backup file.
const BackupExtension = ".init"

// Store persists exactly one record of type T in a file named after the type.
// The file lives in a user-local cache directory.
//
// A Store is not safe for concurrent use. All calls must come from the
// single owner of the record.
type Store[T any] struct {
	dir      string
	name     string
	codec    Codec
	template fs.FS
}

type NewStoreOptions struct {
	// Dir is the directory holding the settings file.
	// Defaults to DefaultDir("fakegame").
	Dir string
	// Name is the base file name without extension.
	// Defaults to the name of the record type.
	Name string
	// Codec defaults to PlistCodec.
	Codec Codec
	// Template holds the read-only templates bundled with the application,
	// looked up by the settings file name. Optional.
	Template fs.FS
}

// NewStore creates a new Store for records of type T.
func NewStore[T any](opts NewStoreOptions) (*Store[T], error) {
	dir := opts.Dir
	if dir == "" {
		d, err := DefaultDir("fakegame")
		if err != nil {
			return nil, err
		}
		dir = d
	}
	name := opts.Name
	if name == "" {
		name = TypeName[T]()
	}
	codec := opts.Codec
	if codec == nil {
		codec = PlistCodec
	}
	return &Store[T]{
		dir:      dir,
		name:     name,
		codec:    codec,
		template: opts.Template,
	}, nil
}

// DefaultDir returns the application directory inside the user cache directory.
func DefaultDir(app string) (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, app), nil
}

// TypeName returns the name used to derive the settings path of T.
func TypeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// FileName is the settings file name, e.g. GameData.plist.
func (s *Store[T]) FileName() string {
	return s.name + s.codec.Extension()
}

// Path is the settings path.
func (s *Store[T]) Path() string {
	return filepath.Join(s.dir, s.FileName())
}

// BackupPath is the path of the first-write backup.
func (s *Store[T]) BackupPath() string {
	return s.Path() + BackupExtension
}

// Load reads the record from the settings path. When no file exists the
// defaults are persisted, backed up once, and returned.
func (s *Store[T]) Load() (T, error) {
	var zero T

	data, err := os.ReadFile(s.Path())
	if err == nil {
		v, err := s.decode(data)
		if err != nil {
			log.Error("Failed to load settings from %s: %v", s.Path(), err)
			return zero, err
		}
		return v, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		err = &IOError{Op: "read", Path: s.Path(), Err: err}
		log.Error("Failed to load settings: %v", err)
		return zero, err
	}

	log.Debug("No settings at %s, writing defaults", s.Path())
	if err := s.Save(zero); err != nil {
		return zero, err
	}
	s.backup()
	return zero, nil
}

// Save overwrites the settings path with v. The write goes through a
// temporary file that is renamed over the settings path.
func (s *Store[T]) Save(v T) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		err = fmt.Errorf("failed to encode %s: %w", s.name, err)
		log.Error("Failed to save settings: %v", err)
		return err
	}
	if err := s.write(s.Path(), data); err != nil {
		log.Error("Failed to save settings: %v", err)
		return err
	}
	return nil
}

// LoadFromTemplate seeds the settings path from the bundled template when
// no settings file exists, then loads it.
func (s *Store[T]) LoadFromTemplate() (T, error) {
	var zero T
	if s.template == nil {
		return zero, ErrTemplateNotFound
	}

	tmpl, err := fs.ReadFile(s.template, s.FileName())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, ErrTemplateNotFound
		}
		err = &IOError{Op: "read template", Path: s.FileName(), Err: err}
		log.Error("Failed to load settings template: %v", err)
		return zero, err
	}

	if _, err := os.Stat(s.Path()); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(s.Path(), tmpl); err != nil {
			log.Error("Failed to copy settings template: %v", err)
			return zero, err
		}
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		err = &IOError{Op: "read", Path: s.Path(), Err: err}
		log.Error("Failed to load settings template: %v", err)
		return zero, err
	}
	v, err := s.decode(data)
	if err != nil {
		log.Error("Failed to load settings template: %v", err)
		return zero, err
	}
	return v, nil
}

// Delete removes the settings file. A missing file counts as deleted.
func (s *Store[T]) Delete() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		err = &IOError{Op: "remove", Path: s.Path(), Err: err}
		log.Error("Failed to delete settings: %v", err)
		return err
	}
	return nil
}

// Reset deletes the settings file and recreates it from the bundled
// template, falling back to the first-write backup.
func (s *Store[T]) Reset() (T, error) {
	var zero T
	if err := s.Delete(); err != nil {
		return zero, err
	}

	v, err := s.LoadFromTemplate()
	if err == nil {
		log.Info("Reset %s from bundled template", s.name)
		return v, nil
	}
	log.Debug("Template reset of %s failed: %v", s.name, err)

	if err := s.restoreBackup(); err != nil {
		log.Error("Failed to reset settings: %v", err)
		return zero, fmt.Errorf("failed to reset %s: %w", s.name, err)
	}
	log.Info("Reset %s from backup", s.name)
	return s.Load()
}

// Export returns the raw key/value content of the settings file.
// It returns false when no file exists or it cannot be parsed.
func (s *Store[T]) Export() (map[string]any, bool) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Error("Failed to export settings: %v", &IOError{Op: "read", Path: s.Path(), Err: err})
		}
		return nil, false
	}
	m := make(map[string]any)
	if err := s.codec.Unmarshal(data, &m); err != nil {
		log.Error("Failed to export settings from %s: %v", s.Path(), err)
		return nil, false
	}
	return m, true
}

// keyed is implemented by records whose file must hold every listed key.
type keyed interface {
	RequiredKeys() []string
}

func (s *Store[T]) decode(data []byte) (T, error) {
	var v T
	if len(bytes.TrimSpace(data)) == 0 {
		return v, fmt.Errorf("%w: empty file", ErrCorruptState)
	}
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if k, ok := any(v).(keyed); ok {
		var fields map[string]any
		if err := s.codec.Unmarshal(data, &fields); err != nil {
			var zero T
			return zero, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		for _, key := range k.RequiredKeys() {
			if _, ok := fields[key]; !ok {
				var zero T
				return zero, fmt.Errorf("%w: missing key %q", ErrCorruptState, key)
			}
		}
	}
	if validator, ok := any(v).(interface{ Validate() error }); ok {
		if err := validator.Validate(); err != nil {
			var zero T
			return zero, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
	}
	return v, nil
}

// backup copies the settings file to the backup path unless a backup
// already exists. Failures are logged only.
func (s *Store[T]) backup() {
	src, err := os.Open(s.Path())
	if err != nil {
		log.Error("Failed to back up settings: %v", &IOError{Op: "open", Path: s.Path(), Err: err})
		return
	}
	defer src.Close()

	dst, err := os.OpenFile(s.BackupPath(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			log.Debug("Settings backup %s already exists", s.BackupPath())
			return
		}
		log.Error("Failed to back up settings: %v", &IOError{Op: "create", Path: s.BackupPath(), Err: err})
		return
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(s.BackupPath())
		log.Error("Failed to back up settings: %v", &IOError{Op: "copy", Path: s.BackupPath(), Err: err})
		return
	}
	if err := dst.Close(); err != nil {
		log.Error("Failed to back up settings: %v", &IOError{Op: "close", Path: s.BackupPath(), Err: err})
	}
}

func (s *Store[T]) restoreBackup() error {
	data, err := os.ReadFile(s.BackupPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrBackupNotFound
		}
		return &IOError{Op: "read", Path: s.BackupPath(), Err: err}
	}
	return s.write(s.Path(), data)
}

func (s *Store[T]) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &IOError{Op: "create directory for", Path: path, Err: err}
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
