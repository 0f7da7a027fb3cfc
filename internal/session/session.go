// Package session holds the machine configuration state machine: the active item
// list for one machine keyword, the draft project number, and the append-only list
// of completed configurations.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Session is the aggregate root. All mutation goes through its methods; readers get copies.
type Session struct {
	mu sync.Mutex

	catalog       Catalog
	activeKeyword Keyword
	activeItems   []ConfigurableItem
	itemsKeyword  Keyword
	projectNumber string
	completed     []CompletedConfiguration

	lastRequest RequestID
	pending     bool

	listeners []func(Event)
	log       *zap.Logger
	clock     clockwork.Clock
	newID     func() string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for fetch failures and contract violations.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the completion timestamp source.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithIDGenerator overrides how completed configuration IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

// New returns a session positioned on the catalog's initial keyword with no items.
func New(catalog Catalog, opts ...Option) *Session {
	s := &Session{
		catalog:       catalog,
		activeKeyword: catalog.Initial,
		log:           zap.NewNop(),
		clock:         clockwork.NewRealClock(),
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to be called after every state change.
func (s *Session) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify(ev Event) {
	s.mu.Lock()
	listeners := make([]func(Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// Catalog returns the keyword and size catalog.
func (s *Session) Catalog() Catalog {
	return s.catalog
}

// SelectMachine makes keyword active and issues a fetch request id for it. The caller
// performs the lookup and reports back through ApplyFetch or FailFetch. Selections
// and sizes on the current items are discarded; the items stay visible until the
// fetch lands but cannot be completed under the new keyword.
func (s *Session) SelectMachine(keyword Keyword) (RequestID, error) {
	if !s.catalog.Contains(keyword) {
		return 0, fmt.Errorf("select machine %q: %w", keyword, ErrUnknownKeyword)
	}
	s.mu.Lock()
	s.activeKeyword = keyword
	for i := range s.activeItems {
		s.activeItems[i].Selected = false
		s.activeItems[i].SelectedSize = NoSize
	}
	s.lastRequest++
	s.pending = true
	id := s.lastRequest
	s.mu.Unlock()

	s.log.Debug("machine selected", zap.String("keyword", string(keyword)), zap.Uint64("request_id", uint64(id)))
	s.notify(Event{Kind: EventMachineSelected, Keyword: keyword, RequestID: id})
	return id, nil
}

// ApplyFetch replaces the active items with a fetch result. Only the latest request is
// applied; older ones, and ids never issued, return ErrStaleResponse and leave the
// session untouched.
func (s *Session) ApplyFetch(id RequestID, items []ConfigurableItem) error {
	s.mu.Lock()
	if !s.isLatest(id) {
		latest := s.lastRequest
		s.mu.Unlock()
		s.log.Debug("dropping stale fetch response", zap.Uint64("request_id", uint64(id)), zap.Uint64("latest", uint64(latest)))
		return ErrStaleResponse
	}
	fresh := make([]ConfigurableItem, len(items))
	for i, it := range items {
		fresh[i] = ConfigurableItem{Text: it.Text, HasSizeOption: it.HasSizeOption}
	}
	s.activeItems = fresh
	s.itemsKeyword = s.activeKeyword
	s.pending = false
	keyword := s.activeKeyword
	s.mu.Unlock()

	s.notify(Event{Kind: EventItemsLoaded, Keyword: keyword, RequestID: id})
	return nil
}

// FailFetch records a failed lookup. The active items are left as they were, still
// belonging to the previous keyword.
func (s *Session) FailFetch(id RequestID, cause error) error {
	s.mu.Lock()
	if !s.isLatest(id) {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	s.pending = false
	keyword := s.activeKeyword
	s.mu.Unlock()

	s.log.Warn("fetch configuration items failed",
		zap.String("keyword", string(keyword)),
		zap.Uint64("request_id", uint64(id)),
		zap.Error(cause),
	)
	s.notify(Event{Kind: EventFetchFailed, Keyword: keyword, RequestID: id, Err: cause})
	return nil
}

// isLatest reports whether id is the most recently issued request. Ids start at 1.
// Callers hold s.mu.
func (s *Session) isLatest(id RequestID) bool {
	return id != 0 && id == s.lastRequest
}

// ToggleItemSelection flips Selected on the item at index.
func (s *Session) ToggleItemSelection(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.activeItems) {
		err := &IndexError{Op: "toggle item", Index: index, Len: len(s.activeItems)}
		s.mu.Unlock()
		return err
	}
	s.activeItems[index].Selected = !s.activeItems[index].Selected
	keyword := s.activeKeyword
	s.mu.Unlock()

	s.notify(Event{Kind: EventItemToggled, Keyword: keyword, Index: index})
	return nil
}

// SetItemSize chooses a size for a sized item. NoSize clears the choice.
func (s *Session) SetItemSize(index int, size Size) error {
	if size != NoSize && !s.catalog.HasSize(size) {
		return fmt.Errorf("set size %q: %w", size, ErrUnknownSize)
	}
	s.mu.Lock()
	if index < 0 || index >= len(s.activeItems) {
		err := &IndexError{Op: "set size", Index: index, Len: len(s.activeItems)}
		s.mu.Unlock()
		return err
	}
	if !s.activeItems[index].HasSizeOption {
		text := s.activeItems[index].Text
		s.mu.Unlock()
		return fmt.Errorf("set size on %q: %w", text, ErrNoSizeOption)
	}
	s.activeItems[index].SelectedSize = size
	keyword := s.activeKeyword
	s.mu.Unlock()

	s.notify(Event{Kind: EventSizeChanged, Keyword: keyword, Index: index})
	return nil
}

// SetProjectNumber stores the draft project number as typed.
func (s *Session) SetProjectNumber(value string) {
	s.mu.Lock()
	if s.projectNumber == value {
		s.mu.Unlock()
		return
	}
	s.projectNumber = value
	keyword := s.activeKeyword
	s.mu.Unlock()

	s.notify(Event{Kind: EventProjectNumberChanged, Keyword: keyword})
}

// CompleteConfiguration snapshots the selected items into a new completed
// configuration and clears the selection. Unmet preconditions return a
// *ValidationError and change nothing.
func (s *Session) CompleteConfiguration() (CompletedConfiguration, error) {
	s.mu.Lock()
	project := strings.TrimSpace(s.projectNumber)
	var reasons []Reason
	if project == "" {
		reasons = append(reasons, ReasonMissingProjectNumber)
	}
	if s.activeKeyword == "" {
		reasons = append(reasons, ReasonMissingKeyword)
	} else if s.pending || s.itemsKeyword != s.activeKeyword {
		reasons = append(reasons, ReasonItemsNotLoaded)
	}
	selected := selectedOf(s.activeItems)
	if len(selected) == 0 {
		reasons = append(reasons, ReasonNoItemsSelected)
	}
	if len(reasons) > 0 {
		s.mu.Unlock()
		return CompletedConfiguration{}, &ValidationError{Reasons: reasons}
	}

	seq := 1
	for _, c := range s.completed {
		if c.Keyword == s.activeKeyword {
			seq++
		}
	}
	cfg := CompletedConfiguration{
		ID:             s.newID(),
		Keyword:        s.activeKeyword,
		ProjectNumber:  project,
		Items:          selected,
		SequenceNumber: seq,
		CompletedAt:    s.clock.Now(),
	}
	s.completed = append(s.completed, cfg)
	for i := range s.activeItems {
		s.activeItems[i].Selected = false
		s.activeItems[i].SelectedSize = NoSize
	}
	idx := len(s.completed) - 1
	out := cloneConfig(cfg)
	s.mu.Unlock()

	s.log.Info("configuration completed",
		zap.String("label", DisplayLabel(out)),
		zap.Int("items", len(out.Items)),
	)
	evCfg := cloneConfig(out)
	s.notify(Event{Kind: EventConfigurationCompleted, Keyword: out.Keyword, Index: idx, Completed: &evCfg})
	return out, nil
}

// ToggleConfigurationExpanded flips Expanded on one completed configuration.
func (s *Session) ToggleConfigurationExpanded(configIndex int) error {
	s.mu.Lock()
	if configIndex < 0 || configIndex >= len(s.completed) {
		err := &IndexError{Op: "toggle configuration", Index: configIndex, Len: len(s.completed)}
		s.mu.Unlock()
		return err
	}
	s.completed[configIndex].Expanded = !s.completed[configIndex].Expanded
	keyword := s.completed[configIndex].Keyword
	s.mu.Unlock()

	s.notify(Event{Kind: EventConfigurationToggled, Keyword: keyword, Index: configIndex})
	return nil
}

// ActiveKeyword returns the selected machine keyword.
func (s *Session) ActiveKeyword() Keyword {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKeyword
}

// ActiveItems returns a copy of the active item list.
func (s *Session) ActiveItems() []ConfigurableItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.activeItems)
}

// ProjectNumber returns the draft project number as typed.
func (s *Session) ProjectNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectNumber
}

// Pending reports whether the latest fetch has not yet been answered.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// PendingRequest returns the id of the latest issued fetch.
func (s *Session) PendingRequest() RequestID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequest
}

// CompletedConfigurations returns copies of the completed configurations in display order.
func (s *Session) CompletedConfigurations() []CompletedConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CompletedConfiguration, len(s.completed))
	for i, c := range s.completed {
		out[i] = cloneConfig(c)
	}
	return out
}

// SelectedActiveItems returns the selected active items in list order.
func (s *Session) SelectedActiveItems() []ConfigurableItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return selectedOf(s.activeItems)
}

// ItemShare is the per-item share of the active list, "1/N" as a percentage.
func (s *Session) ItemShare() string {
	s.mu.Lock()
	n := len(s.activeItems)
	s.mu.Unlock()
	return ItemShare(n)
}

// ItemShare formats 1/n as a percentage with two decimals. n <= 0 yields "0.00%".
func ItemShare(n int) string {
	if n <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", 100/float64(n))
}

func selectedOf(items []ConfigurableItem) []ConfigurableItem {
	var out []ConfigurableItem
	for _, it := range items {
		if it.Selected {
			out = append(out, it)
		}
	}
	return out
}
