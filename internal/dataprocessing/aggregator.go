package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"bechdelcli/internal/stats"
	"bechdelcli/pkg/contracts/domain"
)

// Aggregator computes the grouped reductions of the cleaned and
// expanded dataset. Every method is a pure function of its input; the
// receiver only carries the logger.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger falls back to
// slog.Default().
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// AggregateInput bundles the tables one analyzer run reduces.
type AggregateInput struct {
	Movies  []domain.CleanMovie
	Genres  GenreExpansion
	Ratings []domain.BechdelRating
}

// Aggregate runs every reduction over the input tables. The overview
// document is not part of the result here; the summarizer fills it in.
func (a *Aggregator) Aggregate(ctx context.Context, in AggregateInput) domain.AnalysisResult {
	result := domain.AnalysisResult{
		MedianBudget:       a.MedianBudgetByCategory(in.Movies),
		GenreOutcome:       a.CountByGenreOutcome(in.Genres.Long),
		CategoryGenre:      a.CountByCategoryGenre(in.Genres.Long),
		YearlyFinance:      a.YearlyFinanceByOutcome(in.Movies),
		RatingDistribution: a.RatingDistribution(ctx, in.Ratings),
	}

	a.logger.InfoContext(ctx, "computed aggregate tables",
		slog.Int("median_budget_rows", len(result.MedianBudget)),
		slog.Int("genre_outcome_rows", len(result.GenreOutcome)),
		slog.Int("category_genre_rows", len(result.CategoryGenre)),
		slog.Int("yearly_finance_rows", len(result.YearlyFinance)),
		slog.Int("rating_rows", len(result.RatingDistribution)))

	return result
}

// MedianBudgetByCategory computes the median 2013-adjusted budget per
// category over the categories present in the input, in display order.
// Missing budgets are excluded from the median but still counted in the
// category's sample size.
func (a *Aggregator) MedianBudgetByCategory(movies []domain.CleanMovie) []domain.MedianBudgetRow {
	budgets := make(map[domain.CategoryLabel][]float64)
	samples := make(map[domain.CategoryLabel]int)
	var order []domain.CategoryLabel

	for _, m := range movies {
		if _, seen := samples[m.Category]; !seen {
			order = append(order, m.Category)
		}
		samples[m.Category]++
		budgets[m.Category] = append(budgets[m.Category], m.Budget2013)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return domain.LessCategory(order[i], order[j])
	})

	rows := make([]domain.MedianBudgetRow, 0, len(order))
	for _, label := range order {
		rows = append(rows, domain.MedianBudgetRow{
			Category:     label,
			MedianBudget: stats.Median(budgets[label]),
			SampleCount:  samples[label],
		})
	}
	return rows
}

// CountByGenreOutcome counts (record, genre) pairs per genre and
// pass/fail outcome. The full token vocabulary appears in the output,
// zero-filled, so grouped chart axes stay aligned; outcomes beyond
// FAIL and PASS found in the data follow them in sorted order.
func (a *Aggregator) CountByGenreOutcome(long []domain.GenreLongRow) []domain.GenreOutcomeCount {
	type key struct {
		genre   string
		outcome domain.TestOutcome
	}
	counts := make(map[key]int, len(long))
	outcomes := []domain.TestOutcome{domain.TestOutcomeFail, domain.TestOutcomePass}
	seen := map[domain.TestOutcome]bool{
		domain.TestOutcomeFail: true,
		domain.TestOutcomePass: true,
	}
	var extras []domain.TestOutcome
	for _, row := range long {
		counts[key{row.Genre, row.Binary}]++
		if !seen[row.Binary] {
			seen[row.Binary] = true
			extras = append(extras, row.Binary)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	outcomes = append(outcomes, extras...)

	tokens := domain.GenreTokens()
	rows := make([]domain.GenreOutcomeCount, 0, len(tokens)*len(outcomes))
	for _, token := range tokens {
		for _, outcome := range outcomes {
			rows = append(rows, domain.GenreOutcomeCount{
				Genre:  token,
				Binary: outcome,
				Count:  counts[key{token, outcome}],
			})
		}
	}
	return rows
}

// CountByCategoryGenre counts (record, genre) pairs per category and
// genre: the heatmap grid. The five known categories are always
// present, zero-filled and in display order; unknown categories found
// in the data follow in first-seen order.
func (a *Aggregator) CountByCategoryGenre(long []domain.GenreLongRow) []domain.CategoryGenreCount {
	type key struct {
		category domain.CategoryLabel
		genre    string
	}
	counts := make(map[key]int, len(long))
	seen := make(map[domain.CategoryLabel]bool)
	var unknown []domain.CategoryLabel

	for _, row := range long {
		counts[key{row.Category, row.Genre}]++
		if !seen[row.Category] {
			seen[row.Category] = true
			if _, known := domain.CategoryRank(row.Category); !known {
				unknown = append(unknown, row.Category)
			}
		}
	}

	categories := append(domain.CategoryOrder(), unknown...)
	tokens := domain.GenreTokens()
	rows := make([]domain.CategoryGenreCount, 0, len(categories)*len(tokens))
	for _, category := range categories {
		for _, token := range tokens {
			rows = append(rows, domain.CategoryGenreCount{
				Category: category,
				Genre:    token,
				Count:    counts[key{category, token}],
			})
		}
	}
	return rows
}

// YearlyFinanceByOutcome sums the 2013-adjusted budget and the coerced
// 2013-adjusted domestic gross per release year and outcome. Missing
// budgets and unparseable gross text are excluded from their sum and
// count; the group row itself remains. Rows are ordered by year, then
// outcome.
func (a *Aggregator) YearlyFinanceByOutcome(movies []domain.CleanMovie) []domain.YearlyFinance {
	type key struct {
		year    int
		outcome domain.TestOutcome
	}
	groups := make(map[key]*domain.YearlyFinance)
	var order []key

	for _, m := range movies {
		k := key{m.Year, m.Binary}
		group, ok := groups[k]
		if !ok {
			group = &domain.YearlyFinance{Year: m.Year, Binary: m.Binary}
			groups[k] = group
			order = append(order, k)
		}
		if !math.IsNaN(m.Budget2013) {
			group.BudgetTotal += m.Budget2013
			group.BudgetCount++
		}
		if gross, ok := CoerceGross(m.DomGross2013); ok {
			group.GrossTotal += gross
			group.GrossCount++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].outcome < order[j].outcome
	})

	rows := make([]domain.YearlyFinance, 0, len(order))
	for _, k := range order {
		rows = append(rows, *groups[k])
	}
	return rows
}

// RatingDistribution counts movies per raw Bechdel score. All four
// scores appear in the output, zero-filled; scores outside 0-3 are
// skipped with a warning since the published dataset never produces
// them.
func (a *Aggregator) RatingDistribution(ctx context.Context, ratings []domain.BechdelRating) []domain.RatingCount {
	counts := make(map[int]int, 4)
	skipped := 0
	for _, r := range ratings {
		if r.Rating < 0 || r.Rating > 3 {
			skipped++
			continue
		}
		counts[r.Rating]++
	}
	if skipped > 0 {
		a.logger.WarnContext(ctx, "skipped ratings outside the 0-3 scale",
			slog.Int("count", skipped))
	}

	rows := make([]domain.RatingCount, 0, 4)
	for rating := 0; rating <= 3; rating++ {
		rows = append(rows, domain.RatingCount{
			Rating:      rating,
			Description: domain.RatingDescriptions[rating],
			Count:       counts[rating],
		})
	}
	return rows
}

// CorrelationColumns extracts the numeric columns of the cleaned table
// in a fixed order, paired with their display names. Raw gross text is
// coerced here; failures become NaN so the correlation step can apply
// its complete-case rule.
func (a *Aggregator) CorrelationColumns(movies []domain.CleanMovie) ([]string, [][]float64) {
	names := []string{"year", "budget", "domgross", "intgross", "metascore", "imdb_rating"}
	columns := make([][]float64, len(names))
	for i := range columns {
		columns[i] = make([]float64, len(movies))
	}

	for i, m := range movies {
		columns[0][i] = float64(m.Year)
		columns[1][i] = m.Budget
		columns[2][i] = coerceOrNaN(m.DomGross)
		columns[3][i] = coerceOrNaN(m.IntGross)
		columns[4][i] = m.Metascore
		columns[5][i] = m.ImdbRating
	}
	return names, columns
}

// BudgetGrossPairs extracts the (budget, coerced gross) pairs that are
// complete on both sides, sorted by budget so the scatter's trend line
// runs along the x axis. Both series use the 2013-adjusted columns.
func (a *Aggregator) BudgetGrossPairs(movies []domain.CleanMovie) (budgets, grosses []float64) {
	type pair struct {
		budget, gross float64
	}
	pairs := make([]pair, 0, len(movies))
	for _, m := range movies {
		if math.IsNaN(m.Budget2013) {
			continue
		}
		gross, ok := CoerceGross(m.DomGross2013)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{m.Budget2013, gross})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].budget < pairs[j].budget
	})

	budgets = make([]float64, len(pairs))
	grosses = make([]float64, len(pairs))
	for i, p := range pairs {
		budgets[i] = p.budget
		grosses[i] = p.gross
	}
	return budgets, grosses
}

// CoerceGross parses the raw text of a gross column into a number.
// The published dataset stores these columns as text with "#N/A"
// markers and occasional thousands separators; anything that does not
// parse to a finite number reports ok=false and is excluded from the
// caller's sum.
func CoerceGross(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func coerceOrNaN(raw string) float64 {
	v, ok := CoerceGross(raw)
	if !ok {
		return math.NaN()
	}
	return v
}
