package lookup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/machineconfig/internal/session"
)

func TestRawItemDecodesBothShapes(t *testing.T) {
	var raw []RawItem
	require.NoError(t, json.Unmarshal([]byte(`["Motor", {"text": "Hopper", "hasPlaceholder": true, "selected": true}]`), &raw))
	require.Equal(t, []RawItem{
		{Kind: RawText, Text: "Motor"},
		{Kind: RawConfigured, Text: "Hopper", Selected: true, HasPlaceholder: true},
	}, raw)
}

func TestNormalizeStartsUnselected(t *testing.T) {
	got := Normalize([]RawItem{
		{Kind: RawText, Text: "Motor"},
		{Kind: RawConfigured, Text: "Hopper", Selected: true, HasPlaceholder: true},
		{Kind: RawConfigured, Text: "Lid"},
	})
	require.Equal(t, []session.ConfigurableItem{
		{Text: "Motor"},
		{Text: "Hopper", HasSizeOption: true},
		{Text: "Lid"},
	}, got)
}
