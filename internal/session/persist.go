package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// ErrSlotNotFound is returned by a Persister when nothing has been stored yet
var ErrSlotNotFound = errors.New("session slot not found")

// Persister is a durable key-value slot for the serialized session
type Persister interface {
	// Load returns the bytes stored under key, or ErrSlotNotFound
	Load(key string) ([]byte, error)

	// Save overwrites the bytes stored under key
	Save(key string, data []byte) error
}

// FilePersister stores each key as <Dir>/<key>.json
type FilePersister struct {
	Dir string
}

// NewFilePersister creates a persister rooted at dir
func NewFilePersister(dir string) *FilePersister {
	return &FilePersister{Dir: dir}
}

// Path returns the file backing key
func (p *FilePersister) Path(key string) string {
	return filepath.Join(p.Dir, key+".json")
}

// Load reads the slot file
func (p *FilePersister) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(p.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSlotNotFound
		}
		return nil, errors.Wrap(err, "failed to read session file")
	}
	return data, nil
}

// Save writes the slot file with restrictive permissions. The write goes to
// a temporary file first and is renamed into place.
func (p *FilePersister) Save(key string, data []byte) error {
	if err := os.MkdirAll(p.Dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	tmp, err := os.CreateTemp(p.Dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp session file")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to write session file")
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to chmod session file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close session file")
	}

	if err := os.Rename(tmpName, p.Path(key)); err != nil {
		return errors.Wrap(err, "failed to replace session file")
	}
	return nil
}

// MemoryPersister keeps slots in memory
type MemoryPersister struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemoryPersister creates an empty in-memory persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{slots: make(map[string][]byte)}
}

// Load returns a copy of the stored bytes
func (p *MemoryPersister) Load(key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, ok := p.slots[key]
	if !ok {
		return nil, ErrSlotNotFound
	}
	dup := make([]byte, len(data))
	copy(dup, data)
	return dup, nil
}

// Save stores a copy of data
func (p *MemoryPersister) Save(key string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.slots == nil {
		p.slots = make(map[string][]byte)
	}
	dup := make([]byte, len(data))
	copy(dup, data)
	p.slots[key] = dup
	return nil
}
