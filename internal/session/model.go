package session

import (
	"fmt"
	"time"
)

// Keyword names a machine category, e.g. "conveyor".
type Keyword string

// Size is one of the catalog's fixed size values. The zero value means no size chosen.
type Size string

// NoSize clears a size selection.
const NoSize Size = ""

// RequestID identifies one item fetch. Only the latest issued id is applied.
type RequestID uint64

// ConfigurableItem is one selectable line of the active item list.
type ConfigurableItem struct {
	Text          string
	Selected      bool
	HasSizeOption bool
	SelectedSize  Size
}

// CompletedConfiguration is a finalized snapshot of selected items.
// Everything except Expanded is fixed at creation.
type CompletedConfiguration struct {
	ID             string
	Keyword        Keyword
	ProjectNumber  string
	Items          []ConfigurableItem
	SequenceNumber int
	Expanded       bool
	CompletedAt    time.Time
}

// Label returns the accordion header, e.g. "PRJ1-conveyor-001".
func (c CompletedConfiguration) Label() string {
	return DisplayLabel(c)
}

// DisplayLabel formats {projectNumber}-{keyword}-{sequence padded to 3 digits}.
func DisplayLabel(c CompletedConfiguration) string {
	return fmt.Sprintf("%s-%s-%03d", c.ProjectNumber, c.Keyword, c.SequenceNumber)
}

// ItemText renders an item with its chosen size, if any.
func ItemText(it ConfigurableItem) string {
	if it.SelectedSize == NoSize {
		return it.Text
	}
	return fmt.Sprintf("%s (%s)", it.Text, it.SelectedSize)
}

func cloneItems(items []ConfigurableItem) []ConfigurableItem {
	if items == nil {
		return nil
	}
	out := make([]ConfigurableItem, len(items))
	copy(out, items)
	return out
}

func cloneConfig(c CompletedConfiguration) CompletedConfiguration {
	c.Items = cloneItems(c.Items)
	return c
}

// EventKind identifies which mutation produced an Event.
type EventKind string

const (
	EventMachineSelected        EventKind = "machine_selected"
	EventItemsLoaded            EventKind = "items_loaded"
	EventFetchFailed            EventKind = "fetch_failed"
	EventItemToggled            EventKind = "item_toggled"
	EventSizeChanged            EventKind = "size_changed"
	EventProjectNumberChanged   EventKind = "project_number_changed"
	EventConfigurationCompleted EventKind = "configuration_completed"
	EventConfigurationToggled   EventKind = "configuration_toggled"
)

// Event is delivered to listeners after the session state has changed.
type Event struct {
	Kind      EventKind
	Keyword   Keyword
	RequestID RequestID
	Index     int
	Err       error
	// Completed is set for EventConfigurationCompleted.
	Completed *CompletedConfiguration
}
