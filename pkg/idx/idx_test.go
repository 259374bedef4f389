package idx_test

import (
	"sort"
	"testing"
	"time"

	"github.com/aussiebroadwan/designer/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.NotEqual(t, idx.Zero, id)

	parsed, err := idx.Parse(" " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
}

func TestMonotonicOrdering(t *testing.T) {
	// Ids minted in the same millisecond still sort in creation order.
	at := time.Unix(1700000000, 0).UTC()
	ids := make([]string, 0, 100)
	for range 100 {
		ids = append(ids, idx.NewAt(at).String())
	}
	require.True(t, sort.StringsAreSorted(ids))
}
