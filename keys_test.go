package repoview_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/repoview"
)

func TestByKeyUnique(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    []repoview.Key
		expected []repoview.Key
	}{
		{"Nil", nil, []repoview.Key{}},
		{"Zero-Value", []repoview.Key{}, []repoview.Key{}},
		{"Many-Zero", make([]repoview.Key, 99), []repoview.Key{}},
		{"Sorted", []repoview.Key{"a", "c", "e", "d"}, []repoview.Key{"a", "c", "d", "e"}},
		{"Uniqued", []repoview.Key{"a", "a", "a"}, []repoview.Key{"a"}},
		{"Filtered-Zero-Value", []repoview.Key{"", "a", "", "b", ""}, []repoview.Key{"a", "b"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual := repoview.ByKey(tc.input).UniqueSort()
			require.Equal(t, tc.expected, []repoview.Key(actual))
		})
	}
}

func TestAppPropsContext(t *testing.T) {
	// Arrange
	ctx := context.Background()

	// Act + Assert
	require.Empty(t, repoview.AppPropsFromContext(ctx))

	// Arrange
	first := repoview.NewAppPropsContext(ctx, repoview.AppProps{"a": 1, "b": 2})

	// Act
	second := repoview.NewAppPropsContext(first, repoview.AppProps{"b": 3})

	// Assert
	require.Equal(t, repoview.AppProps{"a": 1, "b": 2}, repoview.AppPropsFromContext(first))
	require.Equal(t, repoview.AppProps{"a": 1, "b": 3}, repoview.AppPropsFromContext(second))
}
