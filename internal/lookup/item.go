package lookup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jask/machineconfig/internal/session"
)

// RawKind tells which wire shape a RawItem was decoded from.
type RawKind int

const (
	// RawText is a bare JSON string.
	RawText RawKind = iota
	// RawConfigured is a JSON object with text and flags.
	RawConfigured
)

// RawItem is one element of the lookup response: either a bare string or an object.
type RawItem struct {
	Kind           RawKind
	Text           string
	Selected       bool
	HasPlaceholder bool
}

type wireItem struct {
	Text           *string `json:"text"`
	Selected       bool    `json:"selected"`
	HasPlaceholder bool    `json:"hasPlaceholder"`
}

// UnmarshalJSON accepts "text" or {"text": "...", "selected": bool, "hasPlaceholder": bool}.
func (r *RawItem) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty item")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*r = RawItem{Kind: RawText, Text: s}
	case '{':
		var w wireItem
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return err
		}
		if w.Text == nil {
			return fmt.Errorf("item object missing text")
		}
		*r = RawItem{Kind: RawConfigured, Text: *w.Text, Selected: w.Selected, HasPlaceholder: w.HasPlaceholder}
	default:
		return fmt.Errorf("item must be a string or object, got %s", trimmed)
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("item text is empty")
	}
	return nil
}

// Normalize resolves raw items into configurable items. Every item starts unselected;
// a wire-level "selected" flag is ignored.
func Normalize(raw []RawItem) []session.ConfigurableItem {
	out := make([]session.ConfigurableItem, len(raw))
	for i, r := range raw {
		out[i] = session.ConfigurableItem{Text: r.Text}
		if r.Kind == RawConfigured {
			out[i].HasSizeOption = r.HasPlaceholder
		}
	}
	return out
}
