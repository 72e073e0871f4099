package task

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"hive/hive"
)

type SourceTask struct {
	hive.Source
	Ctx      hive.Context
	EmitNext hive.EmitNext
	Name     string
	// StatusDir keeps the snapshot of Stateful sources between runs.
	StatusDir string
}

func (s *SourceTask) statusPath() string {
	return filepath.Join(s.StatusDir, s.Name+".snapshot")
}

func (s *SourceTask) restore() error {
	stateful, ok := s.Source.(hive.Stateful)
	if !ok || s.StatusDir == "" {
		return nil
	}
	snapshot, err := os.ReadFile(s.statusPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read snapshot")
	}
	return errors.WithMessage(stateful.Restore(snapshot), "restore snapshot")
}

func (s *SourceTask) snapshot() error {
	stateful, ok := s.Source.(hive.Stateful)
	if !ok || s.StatusDir == "" {
		return nil
	}
	snapshot, err := stateful.Snapshot()
	if err != nil {
		return errors.WithMessage(err, "snapshot")
	}
	return errors.Wrap(os.WriteFile(s.statusPath(), snapshot, 0o644), "write snapshot")
}

func (s *SourceTask) Run() error {
	if err := s.Open(s.Ctx); err != nil {
		return err
	}
	if err := s.restore(); err != nil {
		return err
	}
	if err := s.Collect(s.EmitNext); err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}
	return s.snapshot()
}
