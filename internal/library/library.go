package library

import (
	"fmt"
	"sort"
	"sync"

	"github.com/PokeMichele/lumo/internal/timeline"
)

// Library is the registry of imported media sources, keyed by source id.
// It is safe for concurrent use.
type Library struct {
	mu      sync.RWMutex
	sources map[string]*timeline.MediaSource
}

// New creates an empty library.
func New() *Library {
	return &Library{
		sources: make(map[string]*timeline.MediaSource),
	}
}

// Add registers a source. The id must not already be registered.
func (l *Library) Add(src *timeline.MediaSource) error {
	if src == nil {
		return ErrNilSource
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.sources[src.ID]; exists {
		return fmt.Errorf("%w: %s", ErrSourceExists, src.ID)
	}
	l.sources[src.ID] = src
	return nil
}

// Import creates a clip source with a fresh id and registers it. The
// duration comes from the caller's import pipeline, the library does not
// probe media.
func (l *Library) Import(kind timeline.SourceKind, name, handle string, duration float64) (*timeline.MediaSource, error) {
	src := timeline.NewSource(kind, name, handle, duration)
	if err := l.Add(src); err != nil {
		return nil, err
	}
	return src, nil
}

// ImportEffect creates an effect source with a fresh id and registers it.
func (l *Library) ImportEffect(effect timeline.EffectKind, name string, intensity float64) (*timeline.MediaSource, error) {
	src := timeline.NewEffectSource(effect, name, intensity)
	if err := l.Add(src); err != nil {
		return nil, err
	}
	return src, nil
}

// Get returns the source with the given id.
func (l *Library) Get(id string) (*timeline.MediaSource, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src, ok := l.sources[id]
	return src, ok
}

// Has reports whether a source id is registered.
func (l *Library) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.sources[id]
	return ok
}

// Remove unregisters a source. Items already placed on a timeline keep
// their pointer, removal only stops new placements.
func (l *Library) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sources[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}
	delete(l.sources, id)
	return nil
}

// Rename changes a source's display name.
func (l *Library) Rename(id, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}
	src.Name = name
	return nil
}

// All returns every registered source sorted by name, ties broken by id so
// the order is stable.
func (l *Library) All() []*timeline.MediaSource {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*timeline.MediaSource, 0, len(l.sources))
	for _, src := range l.sources {
		result = append(result, src)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// OfKind returns the registered sources of one kind, sorted like All.
func (l *Library) OfKind(kind timeline.SourceKind) []*timeline.MediaSource {
	var result []*timeline.MediaSource
	for _, src := range l.All() {
		if src.Kind == kind {
			result = append(result, src)
		}
	}
	return result
}

// Len returns the number of registered sources.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sources)
}

// replace swaps the whole registry. Used by manifest loading.
func (l *Library) replace(sources map[string]*timeline.MediaSource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources = sources
}
