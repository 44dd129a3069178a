package server

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/woozymasta/ktx"
	"github.com/woozymasta/ktx/internal/report"
)

// ErrNotFound is returned for unknown texture IDs.
var ErrNotFound = errors.New("texture not found")

// Summary is the listing entry of a stored texture.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Width     uint32    `json:"width"`
	Height    uint32    `json:"height"`
	Levels    int       `json:"levels"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type entry struct {
	k       *ktx.KTX
	name    string
	created time.Time
}

// Store keeps parsed containers by ID. Readers copy bytes out under the read
// lock; Delete releases storage under the write lock.
type Store struct {
	mu       sync.RWMutex
	textures map[string]*entry
	clock    func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		textures: make(map[string]*entry),
		clock:    time.Now,
	}
}

// Add takes ownership of k and returns its new ID.
func (s *Store) Add(k *ktx.KTX, name string) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.textures[id] = &entry{k: k, name: name, created: s.clock()}
	s.mu.Unlock()

	return id
}

// Len returns the number of stored textures.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.textures)
}

// List returns summaries ordered by creation time, then ID.
func (s *Store) List() []Summary {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.textures))
	for id, e := range s.textures {
		h, _ := e.k.Header()
		out = append(out, Summary{
			ID:        id,
			Name:      e.name,
			Width:     h.PixelWidth,
			Height:    h.PixelHeight,
			Levels:    e.k.NumLevels(),
			Size:      e.k.Storage().Len(),
			CreatedAt: e.created,
		})
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Report builds the inspection report of a stored texture.
func (s *Store) Report(id string) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.textures[id]
	if !ok {
		return nil, ErrNotFound
	}
	return report.New(e.k, e.name)
}

// Level returns a copy of one mip level payload.
func (s *Store) Level(id string, level int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.textures[id]
	if !ok {
		return nil, ErrNotFound
	}
	data := e.k.MipData(level)
	if data == nil {
		return nil, ktx.ErrLevelOutOfRange
	}
	return slices.Clone(data), nil
}

// Container returns a copy of the whole container bytes.
func (s *Store) Container(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.textures[id]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(e.k.Storage().Bytes()), nil
}

// Delete removes a texture and releases its storage.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.textures[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.textures, id)
	return e.k.Close()
}

// Close releases every stored texture.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id, e := range s.textures {
		if err := e.k.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.textures, id)
	}
	return errors.Join(errs...)
}
