package domain

// BechdelRating represents one row of the supplemental raw Bechdel
// dataset: the 0-3 criteria score assigned to a movie.
type BechdelRating struct {
	Year   int    `json:"year" validate:"gte=1870,lte=2100"`
	ID     int    `json:"id"`
	ImdbID string `json:"imdb_id"`
	Title  string `json:"title" validate:"required"`
	Rating int    `json:"rating" validate:"gte=0,lte=3"`
}

// RatingDescriptions maps the 0-3 score to its meaning
var RatingDescriptions = map[int]string{
	0: "Fewer than two named women",
	1: "Two named women",
	2: "Women talk to each other",
	3: "Talk about something besides a man",
}
