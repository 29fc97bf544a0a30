// Package store keeps feature toggles, archived toggles and strategy
// definitions in memory, seeded from a YAML or JSON document.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

var (
	// ErrNotFound is returned when a toggle, strategy or definition is unknown.
	ErrNotFound = errors.New("store: not found")
	// ErrExists is returned when creating something whose name is taken.
	ErrExists = errors.New("store: already exists")
	// ErrInvalid is returned for malformed input.
	ErrInvalid = errors.New("store: invalid")
)

// Option configures a Memory store.
type Option func(*Memory)

// WithClock overrides the time source used for history and creation stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides the strategy and event ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Memory) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithLogger sets the logger used to trace mutations.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Memory) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Memory is a concurrency-safe store. Values are copied on the way in and out
// so callers never share slices or maps with it.
type Memory struct {
	mu          sync.RWMutex
	features    map[string]feature.Toggle
	archive     map[string]feature.Toggle
	definitions map[string]strategy.Definition
	history     map[string][]feature.Event

	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// NewMemory returns an empty store.
func NewMemory(options ...Option) *Memory {
	m := &Memory{
		features:    make(map[string]feature.Toggle),
		archive:     make(map[string]feature.Toggle),
		definitions: make(map[string]strategy.Definition),
		history:     make(map[string][]feature.Event),
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Load replaces the whole content of the store with doc.
func (m *Memory) Load(doc Document) error {
	features := make(map[string]feature.Toggle, len(doc.Features))
	archive := make(map[string]feature.Toggle, len(doc.Archive))
	definitions := make(map[string]strategy.Definition, len(doc.Definitions))

	for _, def := range doc.Definitions {
		if !strategy.ValidateName(def.Name) {
			return fmt.Errorf("store: definition %q: %w", def.Name, ErrInvalid)
		}
		if _, dup := definitions[def.Name]; dup {
			return fmt.Errorf("store: definition %q: %w", def.Name, ErrExists)
		}
		definitions[def.Name] = def.Clone()
	}
	for _, set := range []struct {
		items []feature.Toggle
		into  map[string]feature.Toggle
	}{{doc.Features, features}, {doc.Archive, archive}} {
		for _, toggle := range set.items {
			if strings.TrimSpace(toggle.Name) == "" {
				return fmt.Errorf("store: toggle without name: %w", ErrInvalid)
			}
			_, inFeatures := features[toggle.Name]
			_, inArchive := archive[toggle.Name]
			if inFeatures || inArchive {
				return fmt.Errorf("store: toggle %q: %w", toggle.Name, ErrExists)
			}
			set.into[toggle.Name] = m.prepare(toggle)
		}
	}

	m.mu.Lock()
	m.features = features
	m.archive = archive
	m.definitions = definitions
	m.history = make(map[string][]feature.Event)
	m.mu.Unlock()

	m.logger.Debug("store loaded",
		zap.Int("features", len(features)),
		zap.Int("archived", len(archive)),
		zap.Int("definitions", len(definitions)),
	)
	return nil
}

// Snapshot returns the store content as a document, sorted by name.
func (m *Memory) Snapshot() Document {
	return Document{
		Definitions: m.Definitions(),
		Features:    m.Features(),
		Archive:     m.Archived(),
	}
}

// Features lists live toggles sorted by name.
func (m *Memory) Features() []feature.Toggle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedToggles(m.features)
}

// Archived lists archived toggles sorted by name.
func (m *Memory) Archived() []feature.Toggle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedToggles(m.archive)
}

// Feature returns the live toggle named name.
func (m *Memory) Feature(name string) (feature.Toggle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	toggle, ok := m.features[name]
	if !ok {
		return feature.Toggle{}, fmt.Errorf("store: feature %q: %w", name, ErrNotFound)
	}
	return toggle.Clone(), nil
}

// CreateFeature adds a new live toggle.
func (m *Memory) CreateFeature(toggle feature.Toggle) error {
	if strings.TrimSpace(toggle.Name) == "" || strings.ContainsAny(toggle.Name, "/?#") {
		return fmt.Errorf("store: feature name %q: %w", toggle.Name, ErrInvalid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, live := m.features[toggle.Name]
	_, archived := m.archive[toggle.Name]
	if live || archived {
		return fmt.Errorf("store: feature %q: %w", toggle.Name, ErrExists)
	}
	m.features[toggle.Name] = m.prepare(toggle)
	m.record(toggle.Name, feature.EventCreated, "")
	return nil
}

// ReplaceFeature stores an edited copy of an existing live toggle. Strategies
// without an ID receive a fresh one.
func (m *Memory) ReplaceFeature(toggle feature.Toggle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.features[toggle.Name]
	if !ok {
		return fmt.Errorf("store: feature %q: %w", toggle.Name, ErrNotFound)
	}
	next := toggle.Clone()
	next.CreatedAt = current.CreatedAt
	m.assignIDs(next.Strategies)
	m.features[toggle.Name] = next
	m.record(toggle.Name, feature.EventUpdated, "")
	return nil
}

// SetEnabled flips a live toggle on or off.
func (m *Memory) SetEnabled(name string, enabled bool) error {
	return m.mutate(name, func(t *feature.Toggle) (feature.EventType, string, error) {
		t.Enabled = enabled
		if enabled {
			return feature.EventEnabled, "", nil
		}
		return feature.EventDisabled, "", nil
	})
}

// UpdateDescription changes the description of a live toggle.
func (m *Memory) UpdateDescription(name, description string) error {
	return m.mutate(name, func(t *feature.Toggle) (feature.EventType, string, error) {
		t.Description = description
		return feature.EventUpdated, "description", nil
	})
}

// UpdateStrategy replaces the strategy at index. The stored ID is kept when
// the replacement carries none.
func (m *Memory) UpdateStrategy(name string, index int, instance strategy.Instance) error {
	return m.mutate(name, func(t *feature.Toggle) (feature.EventType, string, error) {
		current, ok := t.Strategy(index)
		if !ok {
			return "", "", fmt.Errorf("store: feature %q strategy %d: %w", name, index, ErrNotFound)
		}
		next := instance.Clone()
		if next.ID == "" {
			next.ID = current.ID
		}
		t.Strategies[index] = next
		return feature.EventStrategyUpdated, next.Name, nil
	})
}

// RemoveStrategy drops the strategy at index.
func (m *Memory) RemoveStrategy(name string, index int) error {
	return m.mutate(name, func(t *feature.Toggle) (feature.EventType, string, error) {
		removed, ok := t.Strategy(index)
		if !ok {
			return "", "", fmt.Errorf("store: feature %q strategy %d: %w", name, index, ErrNotFound)
		}
		next, _ := t.WithoutStrategy(index)
		*t = next
		return feature.EventStrategyRemoved, removed.Name, nil
	})
}

// AddStrategy appends a strategy and returns it with its assigned ID.
func (m *Memory) AddStrategy(name string, instance strategy.Instance) (strategy.Instance, error) {
	if !strategy.ValidateName(instance.Name) {
		return strategy.Instance{}, fmt.Errorf("store: strategy name %q: %w", instance.Name, ErrInvalid)
	}
	added := instance.Clone()
	err := m.mutate(name, func(t *feature.Toggle) (feature.EventType, string, error) {
		if added.ID == "" {
			added.ID = m.newID()
		}
		t.Strategies = append(t.Strategies, added)
		return feature.EventStrategyAdded, added.Name, nil
	})
	if err != nil {
		return strategy.Instance{}, err
	}
	return added.Clone(), nil
}

// ArchiveFeature moves a live toggle into the archive.
func (m *Memory) ArchiveFeature(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	toggle, ok := m.features[name]
	if !ok {
		return fmt.Errorf("store: feature %q: %w", name, ErrNotFound)
	}
	delete(m.features, name)
	toggle.Enabled = false
	m.archive[name] = toggle
	m.record(name, feature.EventArchived, "")
	return nil
}

// ReviveFeature moves an archived toggle back to the live list, disabled.
func (m *Memory) ReviveFeature(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	toggle, ok := m.archive[name]
	if !ok {
		return fmt.Errorf("store: archived feature %q: %w", name, ErrNotFound)
	}
	delete(m.archive, name)
	toggle.Enabled = false
	m.features[name] = toggle
	m.record(name, feature.EventRevived, "")
	return nil
}

// History returns the change log of a toggle, oldest first.
func (m *Memory) History(name string) []feature.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]feature.Event(nil), m.history[name]...)
}

// Definitions lists strategy definitions sorted by name.
func (m *Memory) Definitions() []strategy.Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]strategy.Definition, 0, len(m.definitions))
	for _, def := range m.definitions {
		out = append(out, def.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Definition looks up a strategy definition by name.
func (m *Memory) Definition(name string) (strategy.Definition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.definitions[name]
	if !ok {
		return strategy.Definition{}, false
	}
	return def.Clone(), true
}

// CreateDefinition registers a new strategy type.
func (m *Memory) CreateDefinition(def strategy.Definition) error {
	if !strategy.ValidateName(def.Name) {
		return fmt.Errorf("store: definition name %q: %w", def.Name, ErrInvalid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.definitions[def.Name]; ok {
		return fmt.Errorf("store: definition %q: %w", def.Name, ErrExists)
	}
	m.definitions[def.Name] = def.Clone()
	m.logger.Info("strategy definition created", zap.String("strategy", def.Name))
	return nil
}

// DeleteDefinition removes a strategy type. Toggles that still use it keep
// their instances and show them as missing.
func (m *Memory) DeleteDefinition(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.definitions[name]; !ok {
		return fmt.Errorf("store: definition %q: %w", name, ErrNotFound)
	}
	delete(m.definitions, name)
	m.logger.Info("strategy definition deleted", zap.String("strategy", name))
	return nil
}

// ReplaceDefinitions swaps the full definition set, keeping toggles intact.
func (m *Memory) ReplaceDefinitions(defs []strategy.Definition) error {
	next := make(map[string]strategy.Definition, len(defs))
	for _, def := range defs {
		if !strategy.ValidateName(def.Name) {
			return fmt.Errorf("store: definition %q: %w", def.Name, ErrInvalid)
		}
		if _, dup := next[def.Name]; dup {
			return fmt.Errorf("store: definition %q: %w", def.Name, ErrExists)
		}
		next[def.Name] = def.Clone()
	}
	m.mu.Lock()
	m.definitions = next
	m.mu.Unlock()
	return nil
}

func (m *Memory) mutate(name string, fn func(*feature.Toggle) (feature.EventType, string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	toggle, ok := m.features[name]
	if !ok {
		return fmt.Errorf("store: feature %q: %w", name, ErrNotFound)
	}
	next := toggle.Clone()
	event, detail, err := fn(&next)
	if err != nil {
		return err
	}
	m.features[name] = next
	m.record(name, event, detail)
	return nil
}

// record appends a history event; callers hold the write lock.
func (m *Memory) record(name string, typ feature.EventType, detail string) {
	event := feature.Event{
		ID:        m.newID(),
		Toggle:    name,
		Type:      typ,
		Detail:    detail,
		CreatedAt: m.now().UTC(),
	}
	m.history[name] = append(m.history[name], event)
	m.logger.Debug("feature changed",
		zap.String("feature", name),
		zap.String("event", string(typ)),
		zap.String("detail", detail),
	)
}

func (m *Memory) prepare(toggle feature.Toggle) feature.Toggle {
	next := toggle.Clone()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = m.now().UTC()
	}
	m.assignIDs(next.Strategies)
	return next
}

func (m *Memory) assignIDs(instances []strategy.Instance) {
	for i := range instances {
		if instances[i].ID == "" {
			instances[i].ID = m.newID()
		}
	}
}

func sortedToggles(in map[string]feature.Toggle) []feature.Toggle {
	out := make([]feature.Toggle, 0, len(in))
	for _, toggle := range in {
		out = append(out, toggle.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
