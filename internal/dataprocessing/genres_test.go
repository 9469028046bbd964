package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bechdelcli/pkg/contracts/domain"
)

func cleanMovie(title, genre string, outcome domain.TestOutcome, category domain.CategoryLabel) domain.CleanMovie {
	return domain.CleanMovie{
		MovieRecord: domain.MovieRecord{
			ImdbID: "tt-" + title,
			Title:  title,
			Year:   2010,
			Binary: outcome,
			Genre:  genre,
		},
		Category: category,
	}
}

func TestExpandSetsFlagOnSubstringMatch(t *testing.T) {
	expander := NewGenreExpander(nil)

	expansion := expander.Expand(context.Background(), []domain.CleanMovie{
		cleanMovie("Bridesmaids", "Comedy, Romance", domain.TestOutcomePass, domain.CategoryPassed),
	})

	require.Len(t, expansion.Wide, 1)
	wide := expansion.Wide[0]
	assert.True(t, wide.Has("Comedy"))
	assert.True(t, wide.Has("Romance"))
	assert.False(t, wide.Has("Horror"))
	assert.Equal(t, 2, wide.MatchCount())
}

func TestExpandLongRowsFollowTokenOrder(t *testing.T) {
	expander := NewGenreExpander(nil)

	// Genre text lists tokens out of vocabulary order on purpose.
	expansion := expander.Expand(context.Background(), []domain.CleanMovie{
		cleanMovie("Dredd", "Sci-Fi, Action, Crime", domain.TestOutcomeFail, domain.CategoryNoTalk),
	})

	require.Len(t, expansion.Long, 3)
	genres := []string{expansion.Long[0].Genre, expansion.Long[1].Genre, expansion.Long[2].Genre}
	assert.Equal(t, []string{"Action", "Crime", "Sci-Fi"}, genres)

	for _, row := range expansion.Long {
		assert.Equal(t, "Dredd", row.Title)
		assert.Equal(t, domain.TestOutcomeFail, row.Binary)
		assert.Equal(t, domain.CategoryNoTalk, row.Category)
	}
}

func TestExpandMissingGenreExcluded(t *testing.T) {
	expander := NewGenreExpander(nil)

	expansion := expander.Expand(context.Background(), []domain.CleanMovie{
		cleanMovie("No Genre", "", domain.TestOutcomePass, domain.CategoryPassed),
		cleanMovie("Has Genre", "Drama", domain.TestOutcomeFail, domain.CategoryAboutMen),
	})

	assert.Equal(t, 1, expansion.Missing)
	require.Len(t, expansion.Wide, 1)
	assert.Equal(t, "Has Genre", expansion.Wide[0].Title)
	require.Len(t, expansion.Long, 1)
	assert.Equal(t, "Drama", expansion.Long[0].Genre)
}

func TestExpandUnmatchedGenreContributesNoLongRows(t *testing.T) {
	expander := NewGenreExpander(nil)

	expansion := expander.Expand(context.Background(), []domain.CleanMovie{
		cleanMovie("Oddball", "Foobar", domain.TestOutcomePass, domain.CategoryPassed),
	})

	// The record survives in the wide layout with every flag unset but
	// drops out of every genre aggregate.
	require.Len(t, expansion.Wide, 1)
	assert.Equal(t, 0, expansion.Wide[0].MatchCount())
	assert.Empty(t, expansion.Long)
	assert.Equal(t, 1, expansion.Unmatched)
}

func TestExpandMatchingIsCaseSensitive(t *testing.T) {
	expander := NewGenreExpander(nil)

	expansion := expander.Expand(context.Background(), []domain.CleanMovie{
		cleanMovie("Lowercase", "comedy", domain.TestOutcomePass, domain.CategoryPassed),
	})

	require.Len(t, expansion.Wide, 1)
	assert.False(t, expansion.Wide[0].Has("Comedy"))
	assert.Equal(t, 1, expansion.Unmatched)
}

func TestExpandFlagsParallelToTokens(t *testing.T) {
	expander := NewGenreExpander(nil)

	expansion := expander.Expand(context.Background(), []domain.CleanMovie{
		cleanMovie("Everything", "Action Adventure Animation Biography Comedy Crime Documentary Drama Family Fantasy History Horror Music Mystery Romance Sci-Fi Thriller", domain.TestOutcomeFail, domain.CategoryFewerWomen),
	})

	require.Len(t, expansion.Wide, 1)
	tokens := domain.GenreTokens()
	require.Len(t, expansion.Wide[0].Flags, len(tokens))
	assert.Equal(t, len(tokens), expansion.Wide[0].MatchCount())
	require.Len(t, expansion.Long, len(tokens))
	for i, row := range expansion.Long {
		assert.Equal(t, tokens[i], row.Genre)
	}
}
