package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickBookCandidate(t *testing.T) {
	t.Run("prefers the single volume over bundles and supplements", func(t *testing.T) {
		candidates := []*BookCandidate{
			{Title: "Mistborn Trilogy Boxset", AuthorNames: []string{"Brandon Sanderson"}},
			{Title: "Mistborn: The Final Empire (Summary & Analysis)", AuthorNames: []string{"Quick Reads"}},
			{Title: "Mistborn: The Final Empire", AuthorNames: []string{"Brandon Sanderson"}},
		}

		picked := PickBookCandidate("Mistborn The Final Empire", "Brandon Sanderson", candidates)
		require.NotNil(t, picked)
		assert.Equal(t, "Mistborn: The Final Empire", picked.Title)
	})

	t.Run("waives the collection penalty when the query is the collection", func(t *testing.T) {
		candidates := []*BookCandidate{
			{Title: "Arcanum", AuthorNames: []string{"Brandon Sanderson"}},
			{Title: "Arcanum Unbounded: The Cosmere Collection", AuthorNames: []string{"Brandon Sanderson"}},
		}

		picked := PickBookCandidate("Arcanum Unbounded", "Brandon Sanderson", candidates)
		require.NotNil(t, picked)
		assert.Equal(t, "Arcanum Unbounded: The Cosmere Collection", picked.Title)
	})

	t.Run("discards author mismatches", func(t *testing.T) {
		candidates := []*BookCandidate{
			{Title: "Elantris", AuthorNames: []string{"Somebody Else"}},
		}

		picked := PickBookCandidate("Elantris", "Brandon Sanderson", candidates)
		assert.Nil(t, picked)
	})

	t.Run("author hint matches a partial name either direction", func(t *testing.T) {
		candidates := []*BookCandidate{
			{Title: "Elantris", AuthorNames: []string{"Brandon Sanderson"}},
		}

		picked := PickBookCandidate("Elantris", "Sanderson", candidates)
		require.NotNil(t, picked)
		assert.Equal(t, "Elantris", picked.Title)
	})

	t.Run("ties keep the provider order", func(t *testing.T) {
		candidates := []*BookCandidate{
			{Title: "Dune", AuthorNames: []string{"Frank Herbert"}},
			{Title: "Dune Messiah Dune", AuthorNames: []string{"Frank Herbert"}},
		}

		picked := PickBookCandidate("Dune", "Frank Herbert", candidates)
		require.NotNil(t, picked)
		assert.Equal(t, "Dune", picked.Title)
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Nil(t, PickBookCandidate("Anything", "Anyone", nil))
	})

	t.Run("no hint skips the author filter", func(t *testing.T) {
		candidates := []*BookCandidate{
			{Title: "Hyperion", AuthorNames: []string{"Dan Simmons"}},
		}

		picked := PickBookCandidate("Hyperion", "", candidates)
		require.NotNil(t, picked)
		assert.Equal(t, "Hyperion", picked.Title)
	})
}
