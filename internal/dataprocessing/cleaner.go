package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"bechdelcli/pkg/contracts/domain"
)

// categoryByReason is the fixed recode lookup from the raw five-valued
// test code to its display label. The set is closed: codes outside it
// pass through unchanged so a future dataset revision cannot silently
// lose rows.
var categoryByReason = map[domain.ReasonCode]domain.CategoryLabel{
	domain.ReasonDubious: domain.CategoryBarelyPassed,
	domain.ReasonOK:      domain.CategoryPassed,
	domain.ReasonNoWomen: domain.CategoryFewerWomen,
	domain.ReasonNoTalk:  domain.CategoryNoTalk,
	domain.ReasonMen:     domain.CategoryAboutMen,
}

// Cleaner recodes the raw test-result codes of decoded movie records
// into display categories. Cleaning never mutates its input; it builds
// a new table so later stages can trust the decoded records unchanged.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner. A nil logger falls back to slog.Default().
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean recodes every record's clean_test code into a display category
// and returns the result sorted in the fixed category display order.
// Unknown codes keep their raw text as the category and sort after the
// known five, stable among themselves.
func (c *Cleaner) Clean(ctx context.Context, records []domain.MovieRecord) []domain.CleanMovie {
	cleaned := make([]domain.CleanMovie, 0, len(records))
	unknown := 0

	for _, record := range records {
		label, ok := categoryByReason[record.CleanTest]
		if !ok {
			// Identity recode: the raw code becomes the label.
			label = domain.CategoryLabel(record.CleanTest)
			unknown++
		}
		cleaned = append(cleaned, domain.CleanMovie{
			MovieRecord: record,
			Category:    label,
		})
	}

	SortByCategory(cleaned)

	c.logger.InfoContext(ctx, "recoded test categories",
		slog.Int("rows", len(cleaned)),
		slog.Int("unknown_codes", unknown))
	if unknown > 0 {
		c.logger.WarnContext(ctx, "clean_test codes outside the known five passed through unmapped",
			slog.Int("count", unknown))
	}

	return cleaned
}

// SortByCategory orders cleaned records by category display rank. The
// sort is stable so records inside one category, and records with
// unknown categories, keep their input order.
func SortByCategory(movies []domain.CleanMovie) {
	sort.SliceStable(movies, func(i, j int) bool {
		return domain.LessCategory(movies[i].Category, movies[j].Category)
	})
}

// CategoryCounts returns the record count per category in display
// order. Known categories are always present, even at zero, so chart
// axes stay aligned across runs; unknown categories found in the data
// follow the known five in first-seen order.
func CategoryCounts(movies []domain.CleanMovie) []CategoryCount {
	counts := make(map[domain.CategoryLabel]int, len(categoryByReason))
	var unknownOrder []domain.CategoryLabel

	for _, m := range movies {
		if _, seen := counts[m.Category]; !seen {
			if _, known := domain.CategoryRank(m.Category); !known {
				unknownOrder = append(unknownOrder, m.Category)
			}
		}
		counts[m.Category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for _, label := range domain.CategoryOrder() {
		out = append(out, CategoryCount{Category: label, Count: counts[label]})
	}
	for _, label := range unknownOrder {
		out = append(out, CategoryCount{Category: label, Count: counts[label]})
	}
	return out
}

// CategoryCount is the record count of one display category.
type CategoryCount struct {
	Category domain.CategoryLabel `json:"category"`
	Count    int                  `json:"count"`
}
