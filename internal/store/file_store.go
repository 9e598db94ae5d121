// Package store persists the active trained model as a single gob artifact.
package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"cardiorisk/internal/data"
	"cardiorisk/internal/training"
)

const (
	DefaultPath = "models/heart_model.gob"

	artifactMagic   = "cardiorisk-model"
	artifactVersion = 1
)

// ErrNotFound means no artifact has been written yet.
var ErrNotFound = errors.New("model artifact not found")

// PersistenceError is any save or load failure other than a missing file,
// including artifacts that exist but cannot be decoded.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("model %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type envelope struct {
	Magic   string
	Version int
	Model   training.TrainedModel
}

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Save writes tm to a temp file next to the artifact and renames it into
// place, so readers see either the old or the new artifact.
func (s *FileStore) Save(ctx context.Context, tm *training.TrainedModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tm == nil || tm.Classifier == nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: errors.New("no classifier to save")}
	}
	if err := s.writeAtomic(tm); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func (s *FileStore) writeAtomic(tm *training.TrainedModel) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			err = multierr.Append(err, ignoreNotExist(os.Remove(tmp)))
		}
	}()

	w := bufio.NewWriter(f)
	if err = gob.NewEncoder(w).Encode(envelope{Magic: artifactMagic, Version: artifactVersion, Model: *tm}); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = w.Flush(); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = f.Sync(); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load returns ErrNotFound when no artifact exists and *PersistenceError for
// every other failure.
func (s *FileStore) Load(ctx context.Context) (*training.TrainedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer f.Close()

	var env envelope
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&env); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := validate(&env); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return &env.Model, nil
}

func validate(env *envelope) error {
	switch {
	case env.Magic != artifactMagic:
		return fmt.Errorf("not a model artifact")
	case env.Version != artifactVersion:
		return fmt.Errorf("unsupported artifact version %d", env.Version)
	case env.Model.Classifier == nil:
		return fmt.Errorf("artifact has no classifier")
	case env.Model.Classifier.Features() != data.NumFeatures:
		return fmt.Errorf("classifier expects %d features, want %d", env.Model.Classifier.Features(), data.NumFeatures)
	case env.Model.Accuracy < 0 || env.Model.Accuracy > 100:
		return fmt.Errorf("recorded accuracy %.2f out of range", env.Model.Accuracy)
	}
	return nil
}

func ignoreNotExist(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
