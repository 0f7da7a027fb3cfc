package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCatalogDedupesAndDefaults(t *testing.T) {
	t.Parallel()
	c, err := NewCatalog([]string{" conveyor", "washer", "conveyor", ""}, []string{"100mm", "100mm", " "}, "")
	require.NoError(t, err)
	require.Equal(t, []Keyword{"conveyor", "washer"}, c.Keywords)
	require.Equal(t, []Size{"100mm"}, c.Sizes)
	require.Equal(t, Keyword("conveyor"), c.Initial)
}

func TestNewCatalogRejectsEmptyAndUnknownInitial(t *testing.T) {
	t.Parallel()
	_, err := NewCatalog(nil, nil, "")
	require.Error(t, err)

	_, err = NewCatalog([]string{"conveyor"}, nil, "forklift")
	require.ErrorIs(t, err, ErrUnknownKeyword)
}

func TestResolve(t *testing.T) {
	t.Parallel()
	c := testCatalog(t)

	k, err := c.Resolve("WASHER")
	require.NoError(t, err)
	require.Equal(t, Keyword("washer"), k)

	_, err = c.Resolve("convyer")
	var uerr *UnknownKeywordError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, Keyword("conveyor"), uerr.Suggestion)
	require.Contains(t, err.Error(), `did you mean "conveyor"`)
	require.ErrorIs(t, err, ErrUnknownKeyword)

	_, err = c.Resolve("hydraulic-press")
	require.ErrorAs(t, err, &uerr)
	require.Empty(t, uerr.Suggestion)
}

func TestNextSizeCycles(t *testing.T) {
	t.Parallel()
	c := testCatalog(t)
	got := []Size{}
	s := NoSize
	for i := 0; i < 5; i++ {
		s = c.NextSize(s)
		got = append(got, s)
	}
	require.Equal(t, []Size{"100mm", "200mm", "300mm", NoSize, "100mm"}, got)
	require.Equal(t, NoSize, Catalog{}.NextSize("100mm"))
}
