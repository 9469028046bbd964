package domain

// MovieRecord represents one row of the joined movie/Bechdel dataset.
// Numeric fields that may be absent in the source are NaN when missing;
// the 2013-adjusted gross columns are kept as raw text because the
// published dataset stores them as text (including "#N/A" markers), and
// coercion is the aggregation step's responsibility.
type MovieRecord struct {
	Year         int         `json:"year" validate:"gte=1870,lte=2100"`
	Imdb         string      `json:"imdb"`
	Title        string      `json:"title" validate:"required"`
	Test         string      `json:"test"`
	CleanTest    ReasonCode  `json:"clean_test"`
	Binary       TestOutcome `json:"binary" validate:"omitempty,oneof=PASS FAIL"`
	Budget       float64     `json:"budget"`
	DomGross     string      `json:"domgross"`
	IntGross     string      `json:"intgross"`
	Code         string      `json:"code"`
	Budget2013   float64     `json:"budget_2013"`
	DomGross2013 string      `json:"domgross_2013"`
	IntGross2013 string      `json:"intgross_2013"`
	PeriodCode   int         `json:"period_code"` // 0 when missing
	DecadeCode   int         `json:"decade_code"` // 0 when missing
	ImdbID       string      `json:"imdb_id"`
	Plot         string      `json:"plot"`
	Rating       string      `json:"rating"`
	Response     string      `json:"response"`
	Language     string      `json:"language"`
	Country      string      `json:"country"`
	Writer       string      `json:"writer"`
	Metascore    float64     `json:"metascore"`
	ImdbRating   float64     `json:"imdb_rating"`
	Director     string      `json:"director"`
	Released     string      `json:"released"`
	Actors       string      `json:"actors"`
	Genre        string      `json:"genre"`
	Awards       string      `json:"awards"`
	Runtime      string      `json:"runtime"`
	Type         string      `json:"type"`
	Poster       string      `json:"poster"`
	ImdbVotes    float64     `json:"imdb_votes"`
	Error        string      `json:"error"`
}

// TestOutcome represents the binary pass/fail flag of the Bechdel test
type TestOutcome string

const (
	TestOutcomePass TestOutcome = "PASS"
	TestOutcomeFail TestOutcome = "FAIL"
)

// ReasonCode represents the raw five-valued test result code. Values
// outside the known five are possible and are carried through unchanged.
type ReasonCode string

const (
	ReasonOK      ReasonCode = "ok"
	ReasonDubious ReasonCode = "dubious"
	ReasonMen     ReasonCode = "men"
	ReasonNoTalk  ReasonCode = "notalk"
	ReasonNoWomen ReasonCode = "nowomen"
)

// CleanMovie represents a movie record after category recoding. The
// embedded record is never modified; cleaning produces a new table.
type CleanMovie struct {
	MovieRecord
	Category CategoryLabel `json:"category"`
}

// HasGenre reports whether the record carries a non-empty genre field
func (m MovieRecord) HasGenre() bool {
	return m.Genre != ""
}
