package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"progresshub/internal/domain"
)

const (
	permSessionFile = 0600
	permSessionDir  = 0700
)

// Persister guarda la sesion entre ejecuciones. Load devuelve nil si no hay sesion.
type Persister interface {
	Load() (*domain.AuthSession, error)
	Save(s domain.AuthSession) error
	Clear() error
}

// TOMLFilePersister guarda la sesion en un archivo TOML.
type TOMLFilePersister struct {
	FilePath string
}

func NewTOMLFilePersister(path string) *TOMLFilePersister {
	return &TOMLFilePersister{FilePath: path}
}

type sessionFile struct {
	Session *domain.AuthSession `toml:"session"`
}

func (p *TOMLFilePersister) Load() (*domain.AuthSession, error) {
	var data sessionFile
	_, err := toml.DecodeFile(p.FilePath, &data)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session file: %w", err)
	}
	if data.Session == nil || data.Session.AccessToken == "" {
		return nil, nil
	}
	return data.Session, nil
}

// Save escribe a un archivo temporal unico en el mismo directorio y lo renombra.
func (p *TOMLFilePersister) Save(s domain.AuthSession) error {
	dir := filepath.Dir(p.FilePath)
	if err := os.MkdirAll(dir, permSessionDir); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	file, err := os.CreateTemp(dir, filepath.Base(p.FilePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save session file: %w", err)
	}
	tmp := file.Name()
	if err := file.Chmod(permSessionFile); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to save session file: %w", err)
	}
	enc := toml.NewEncoder(file)
	enc.Indent = ""
	if err := enc.Encode(sessionFile{Session: &s}); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode session file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save session file: %w", err)
	}
	if err := os.Rename(tmp, p.FilePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save session file: %w", err)
	}
	return nil
}

func (p *TOMLFilePersister) Clear() error {
	err := os.Remove(p.FilePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session file: %w", err)
	}
	return nil
}
