package dataprocessing

import (
	"context"
	"log/slog"
	"strings"

	"bechdelcli/pkg/contracts/domain"
)

// GenreExpansion holds both layouts of the expanded genre table plus
// the exclusion counts the dataset overview reports.
type GenreExpansion struct {
	Wide []domain.GenreWideRow
	Long []domain.GenreLongRow

	// Missing counts records dropped for an empty genre field;
	// Unmatched counts records whose genre text matched none of the
	// known tokens and therefore contributed no long rows.
	Missing   int
	Unmatched int
}

// GenreExpander derives per-genre boolean flags from the free-text
// genre field and reshapes the flagged table into one row per
// (record, genre) pair.
type GenreExpander struct {
	logger *slog.Logger
}

// NewGenreExpander creates a genre expander. A nil logger falls back to
// slog.Default().
func NewGenreExpander(logger *slog.Logger) *GenreExpander {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenreExpander{logger: logger}
}

// Expand builds the wide layout (one boolean per known token, set by
// case-sensitive substring detection) and the long layout (one row per
// set flag). Records without genre text are excluded up front; records
// whose text matches zero tokens stay in the wide layout but contribute
// no long rows, which silently drops them from every genre aggregate.
func (g *GenreExpander) Expand(ctx context.Context, movies []domain.CleanMovie) GenreExpansion {
	tokens := domain.GenreTokens()
	expansion := GenreExpansion{
		Wide: make([]domain.GenreWideRow, 0, len(movies)),
	}

	for _, m := range movies {
		if !m.HasGenre() {
			expansion.Missing++
			continue
		}

		flags := make([]bool, len(tokens))
		matched := 0
		for i, token := range tokens {
			if strings.Contains(m.Genre, token) {
				flags[i] = true
				matched++
			}
		}

		wide := domain.GenreWideRow{
			ImdbID:   m.ImdbID,
			Title:    m.Title,
			Year:     m.Year,
			Binary:   m.Binary,
			Category: m.Category,
			Flags:    flags,
		}
		expansion.Wide = append(expansion.Wide, wide)

		if matched == 0 {
			expansion.Unmatched++
			continue
		}
		for i, token := range tokens {
			if !flags[i] {
				continue
			}
			expansion.Long = append(expansion.Long, domain.GenreLongRow{
				ImdbID:   m.ImdbID,
				Title:    m.Title,
				Year:     m.Year,
				Binary:   m.Binary,
				Category: m.Category,
				Genre:    token,
			})
		}
	}

	g.logger.InfoContext(ctx, "expanded genre flags",
		slog.Int("wide_rows", len(expansion.Wide)),
		slog.Int("long_rows", len(expansion.Long)),
		slog.Int("missing_genre", expansion.Missing),
		slog.Int("unmatched_genre", expansion.Unmatched))

	return expansion
}
