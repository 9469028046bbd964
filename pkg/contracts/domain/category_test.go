package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRank(t *testing.T) {
	tests := []struct {
		name      string
		label     CategoryLabel
		wantRank  int
		wantKnown bool
	}{
		{name: "barely passed first", label: CategoryBarelyPassed, wantRank: 0, wantKnown: true},
		{name: "passed second", label: CategoryPassed, wantRank: 1, wantKnown: true},
		{name: "fewer women third", label: CategoryFewerWomen, wantRank: 2, wantKnown: true},
		{name: "no talk fourth", label: CategoryNoTalk, wantRank: 3, wantKnown: true},
		{name: "about men last", label: CategoryAboutMen, wantRank: 4, wantKnown: true},
		{name: "unknown label has no rank", label: CategoryLabel("weird"), wantKnown: false},
		{name: "empty label has no rank", label: CategoryLabel(""), wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, known := CategoryRank(tt.label)
			assert.Equal(t, tt.wantKnown, known)
			if tt.wantKnown {
				assert.Equal(t, tt.wantRank, rank)
			}
		})
	}
}

func TestCategoryOrderFixedSequence(t *testing.T) {
	order := CategoryOrder()
	require.Len(t, order, 5)

	want := []CategoryLabel{
		"Barely Passed",
		"Passed",
		"Fewer than two women",
		"Women don't talk to each other",
		"Women only talk about men",
	}
	assert.Equal(t, want, order)
}

func TestLessCategorySorting(t *testing.T) {
	labels := []CategoryLabel{
		CategoryAboutMen,
		CategoryLabel("zeta"),
		CategoryPassed,
		CategoryLabel("alpha"),
		CategoryBarelyPassed,
		CategoryNoTalk,
		CategoryFewerWomen,
	}

	sort.SliceStable(labels, func(i, j int) bool {
		return LessCategory(labels[i], labels[j])
	})

	want := []CategoryLabel{
		CategoryBarelyPassed,
		CategoryPassed,
		CategoryFewerWomen,
		CategoryNoTalk,
		CategoryAboutMen,
		// unknown labels keep their input order after the known five
		CategoryLabel("zeta"),
		CategoryLabel("alpha"),
	}
	assert.Equal(t, want, labels)
}

func TestGenreTokensClosedSet(t *testing.T) {
	tokens := GenreTokens()
	require.Len(t, tokens, 17)
	assert.Contains(t, tokens, "Comedy")
	assert.Contains(t, tokens, "Sci-Fi")

	// returned slice is a copy, mutating it must not leak
	tokens[0] = "Mutated"
	assert.Equal(t, "Action", GenreTokens()[0])
}

func TestGenreWideRowHas(t *testing.T) {
	flags := make([]bool, len(GenreTokens()))
	flags[4] = true // Comedy
	row := GenreWideRow{ImdbID: "tt0000001", Title: "Some Movie", Flags: flags}

	assert.True(t, row.Has("Comedy"))
	assert.False(t, row.Has("Drama"))
	assert.False(t, row.Has("Western"), "tokens outside the vocabulary are never set")
	assert.Equal(t, 1, row.MatchCount())
}
