package domain

// genreTokens is the closed vocabulary of genre indicators. A flag is
// derived per token by substring detection against the free-text genre
// field, so multi-genre strings like "Comedy, Drama" set several flags.
var genreTokens = []string{
	"Action",
	"Adventure",
	"Animation",
	"Biography",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Family",
	"Fantasy",
	"History",
	"Horror",
	"Music",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Thriller",
}

var genreIndex = func() map[string]int {
	idx := make(map[string]int, len(genreTokens))
	for i, tok := range genreTokens {
		idx[tok] = i
	}
	return idx
}()

// GenreTokens returns the known genre tokens in column order
func GenreTokens() []string {
	out := make([]string, len(genreTokens))
	copy(out, genreTokens)
	return out
}

// GenreWideRow represents one record of the wide genre layout: one
// boolean per known token, parallel to GenreTokens().
type GenreWideRow struct {
	ImdbID   string        `json:"imdb_id"`
	Title    string        `json:"title"`
	Year     int           `json:"year"`
	Binary   TestOutcome   `json:"binary"`
	Category CategoryLabel `json:"category"`
	Flags    []bool        `json:"flags"`
}

// Has reports whether the flag for the given token is set. Unknown
// tokens are never set.
func (r GenreWideRow) Has(token string) bool {
	i, ok := genreIndex[token]
	if !ok || i >= len(r.Flags) {
		return false
	}
	return r.Flags[i]
}

// MatchCount returns the number of set flags
func (r GenreWideRow) MatchCount() int {
	n := 0
	for _, f := range r.Flags {
		if f {
			n++
		}
	}
	return n
}

// GenreLongRow represents one (record, matched genre) pair of the long
// layout. Records whose genre text matches no known token contribute no
// long rows at all.
type GenreLongRow struct {
	ImdbID   string        `json:"imdb_id"`
	Title    string        `json:"title"`
	Year     int           `json:"year"`
	Binary   TestOutcome   `json:"binary"`
	Category CategoryLabel `json:"category"`
	Genre    string        `json:"genre"`
}
