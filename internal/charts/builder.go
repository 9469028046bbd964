package charts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"bechdelcli/internal/config"
	"bechdelcli/internal/dataprocessing"
	"bechdelcli/internal/stats"
	"bechdelcli/pkg/contracts/domain"
)

// Chart element ids, fixed so the snapshot step can address each chart
// on the rendered page. The id doubles as the PNG file stem.
const (
	ChartCountByCategory    = "count-by-category"
	ChartGenreByOutcome     = "genre-by-outcome"
	ChartCategoryGenre      = "category-genre-heatmap"
	ChartBudgetHistogram    = "budget-histogram"
	ChartBudgetByCategory   = "budget-by-category"
	ChartCorrelationMatrix  = "correlation-matrix"
	ChartYearlyBudget       = "yearly-budget"
	ChartYearlyGross        = "yearly-gross"
	ChartBudgetVsGross      = "budget-vs-gross"
	ChartRatingDistribution = "rating-distribution"
)

// Builder turns the aggregate tables into renderer-agnostic chart
// configurations in the fixed report order.
type Builder struct {
	cfg        config.AnalysisConfig
	aggregator *dataprocessing.Aggregator
	logger     *slog.Logger
}

// NewBuilder creates a chart builder. A nil logger falls back to
// slog.Default().
func NewBuilder(cfg config.AnalysisConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HistogramBins < 2 {
		cfg.HistogramBins = config.DefaultHistogramBins
	}
	if cfg.TrendWindow < 1 {
		cfg.TrendWindow = config.DefaultTrendWindow
	}
	return &Builder{
		cfg:        cfg,
		aggregator: dataprocessing.NewAggregator(logger),
		logger:     logger,
	}
}

// BuildInput bundles the tables the report draws from.
type BuildInput struct {
	Movies []domain.CleanMovie
	Result domain.AnalysisResult
}

// Build assembles every chart of the report in its fixed page order.
// Charts whose statistics cannot be computed (no usable budgets, too
// few complete rows for a correlation) are skipped with a warning; the
// report never fails because a column is too sparse to plot.
func (b *Builder) Build(ctx context.Context, in BuildInput) []domain.ChartConfig {
	configs := make([]domain.ChartConfig, 0, 10)
	configs = append(configs,
		b.CategoryCountBar(in.Movies),
		b.GenreOutcomeBar(in.Result.GenreOutcome),
		b.CategoryGenreHeatmap(in.Result.CategoryGenre),
	)

	if hist, err := b.BudgetHistogram(in.Movies); err != nil {
		b.logger.WarnContext(ctx, "skipping budget histogram", slog.String("error", err.Error()))
	} else {
		configs = append(configs, hist)
	}

	configs = append(configs, b.BudgetBoxplot(in.Movies))

	if corr, err := b.CorrelationHeatmap(in.Movies); err != nil {
		b.logger.WarnContext(ctx, "skipping correlation matrix", slog.String("error", err.Error()))
	} else {
		configs = append(configs, corr)
	}

	configs = append(configs, b.YearlyLines(in.Result.YearlyFinance)...)
	configs = append(configs,
		b.BudgetGrossScatter(in.Movies),
		b.RatingBar(in.Result.RatingDistribution),
	)

	b.logger.InfoContext(ctx, "built chart configurations",
		slog.Int("charts", len(configs)))
	return configs
}

// CategoryCountBar counts cleaned records per category in display
// order.
func (b *Builder) CategoryCountBar(movies []domain.CleanMovie) domain.ChartConfig {
	counts := dataprocessing.CategoryCounts(movies)

	x := make([]string, 0, len(counts))
	points := make([]domain.ChartPoint, 0, len(counts))
	for _, c := range counts {
		x = append(x, string(c.Category))
		points = append(points, domain.ChartPoint{Label: string(c.Category), Value: float64(c.Count)})
	}

	return domain.ChartConfig{
		ID:          ChartCountByCategory,
		Kind:        domain.ChartKindBar,
		Title:       "Movies by Bechdel test result",
		XLabel:      "Test result",
		YLabel:      "Movies",
		XCategories: x,
		Series:      []domain.ChartSeries{{Name: "Movies", Points: points}},
	}
}

// GenreOutcomeBar groups the (genre, outcome) counts into one bar
// series per outcome over the genre vocabulary.
func (b *Builder) GenreOutcomeBar(rows []domain.GenreOutcomeCount) domain.ChartConfig {
	var genres []string
	var outcomes []domain.TestOutcome
	seenGenre := make(map[string]bool)
	seenOutcome := make(map[domain.TestOutcome]bool)
	counts := make(map[domain.TestOutcome]map[string]int)

	for _, row := range rows {
		if !seenGenre[row.Genre] {
			seenGenre[row.Genre] = true
			genres = append(genres, row.Genre)
		}
		if !seenOutcome[row.Binary] {
			seenOutcome[row.Binary] = true
			outcomes = append(outcomes, row.Binary)
			counts[row.Binary] = make(map[string]int)
		}
		counts[row.Binary][row.Genre] = row.Count
	}

	series := make([]domain.ChartSeries, 0, len(outcomes))
	for _, outcome := range outcomes {
		points := make([]domain.ChartPoint, 0, len(genres))
		for _, genre := range genres {
			points = append(points, domain.ChartPoint{Label: genre, Value: float64(counts[outcome][genre])})
		}
		series = append(series, domain.ChartSeries{Name: string(outcome), Points: points})
	}

	return domain.ChartConfig{
		ID:          ChartGenreByOutcome,
		Kind:        domain.ChartKindBar,
		Title:       "Genres by test outcome",
		Subtitle:    "Each movie counts once per matched genre",
		XLabel:      "Genre",
		YLabel:      "Movie-genre pairs",
		XCategories: genres,
		Series:      series,
	}
}

// CategoryGenreHeatmap lays the (category, genre) counts onto a grid:
// genres across, categories down.
func (b *Builder) CategoryGenreHeatmap(rows []domain.CategoryGenreCount) domain.ChartConfig {
	var genres []string
	var categories []string
	genreIndex := make(map[string]int)
	categoryIndex := make(map[string]int)

	points := make([]domain.ChartPoint, 0, len(rows))
	for _, row := range rows {
		if _, ok := genreIndex[row.Genre]; !ok {
			genreIndex[row.Genre] = len(genres)
			genres = append(genres, row.Genre)
		}
		category := string(row.Category)
		if _, ok := categoryIndex[category]; !ok {
			categoryIndex[category] = len(categories)
			categories = append(categories, category)
		}
		points = append(points, domain.ChartPoint{
			XIndex: genreIndex[row.Genre],
			YIndex: categoryIndex[category],
			Value:  float64(row.Count),
		})
	}

	return domain.ChartConfig{
		ID:          ChartCategoryGenre,
		Kind:        domain.ChartKindHeatMap,
		Title:       "Test result by genre",
		XLabel:      "Genre",
		YLabel:      "Test result",
		XCategories: genres,
		YCategories: categories,
		Series:      []domain.ChartSeries{{Name: "Movie-genre pairs", Points: points}},
	}
}

// BudgetHistogram bins the 2013-adjusted budgets. Missing budgets are
// ignored; an error means no budget was usable at all.
func (b *Builder) BudgetHistogram(movies []domain.CleanMovie) (domain.ChartConfig, error) {
	values := make([]float64, 0, len(movies))
	for _, m := range movies {
		values = append(values, m.Budget2013)
	}

	hist, err := stats.Histogram(values, b.cfg.HistogramBins)
	if err != nil {
		return domain.ChartConfig{}, fmt.Errorf("failed to bin budgets: %w", err)
	}

	x := make([]string, len(hist.Counts))
	points := make([]domain.ChartPoint, len(hist.Counts))
	for i, count := range hist.Counts {
		label := formatMoney(hist.Dividers[i]) + "–" + formatMoney(hist.Dividers[i+1])
		x[i] = label
		points[i] = domain.ChartPoint{Label: label, Value: count}
	}

	return domain.ChartConfig{
		ID:          ChartBudgetHistogram,
		Kind:        domain.ChartKindHistogram,
		Title:       "Budget distribution",
		Subtitle:    fmt.Sprintf("2013-adjusted, %d movies", hist.Total),
		XLabel:      "Budget (2013 USD)",
		YLabel:      "Movies",
		XCategories: x,
		Series:      []domain.ChartSeries{{Name: "Movies", Points: points}},
	}, nil
}

// BudgetBoxplot summarizes the 2013-adjusted budgets per category with
// five-number summaries. Categories without a single usable budget are
// left off the plot.
func (b *Builder) BudgetBoxplot(movies []domain.CleanMovie) domain.ChartConfig {
	budgets := make(map[domain.CategoryLabel][]float64)
	var order []domain.CategoryLabel
	for _, m := range movies {
		if _, seen := budgets[m.Category]; !seen {
			order = append(order, m.Category)
		}
		budgets[m.Category] = append(budgets[m.Category], m.Budget2013)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return domain.LessCategory(order[i], order[j])
	})

	var x []string
	var points []domain.ChartPoint
	for _, category := range order {
		five := stats.FiveNumber(budgets[category])
		if five.Count == 0 {
			continue
		}
		x = append(x, string(category))
		points = append(points, domain.ChartPoint{
			Label: string(category),
			Box:   []float64{five.Min, five.Q1, five.Median, five.Q3, five.Max},
		})
	}

	return domain.ChartConfig{
		ID:          ChartBudgetByCategory,
		Kind:        domain.ChartKindBoxPlot,
		Title:       "Budget by test result",
		Subtitle:    "2013-adjusted USD",
		XLabel:      "Test result",
		YLabel:      "Budget (2013 USD)",
		XCategories: x,
		Series:      []domain.ChartSeries{{Name: "Budget", Points: points}},
	}
}

// CorrelationHeatmap computes the correlation matrix of the numeric
// columns over complete cases and lays it onto a symmetric grid.
func (b *Builder) CorrelationHeatmap(movies []domain.CleanMovie) (domain.ChartConfig, error) {
	names, columns := b.aggregator.CorrelationColumns(movies)
	matrix, complete, err := stats.Correlation(columns)
	if err != nil {
		return domain.ChartConfig{}, fmt.Errorf("failed to correlate numeric columns: %w", err)
	}

	points := make([]domain.ChartPoint, 0, len(names)*len(names))
	for i := range matrix {
		for j := range matrix[i] {
			points = append(points, domain.ChartPoint{
				XIndex: j,
				YIndex: i,
				Value:  math.Round(matrix[i][j]*100) / 100,
			})
		}
	}

	return domain.ChartConfig{
		ID:          ChartCorrelationMatrix,
		Kind:        domain.ChartKindHeatMap,
		Title:       "Correlation of numeric columns",
		Subtitle:    fmt.Sprintf("%d complete rows", complete),
		XCategories: names,
		YCategories: names,
		Series:      []domain.ChartSeries{{Name: "Correlation", Points: points}},
	}, nil
}

// YearlyLines builds the two yearly-sum line charts: budget and coerced
// domestic gross, each split by outcome. Years missing one outcome get
// a zero, the sum over no movies.
func (b *Builder) YearlyLines(rows []domain.YearlyFinance) []domain.ChartConfig {
	var years []int
	seenYear := make(map[int]bool)
	budgetTotals := make(map[int]map[domain.TestOutcome]float64)
	grossTotals := make(map[int]map[domain.TestOutcome]float64)

	for _, row := range rows {
		if !seenYear[row.Year] {
			seenYear[row.Year] = true
			years = append(years, row.Year)
			budgetTotals[row.Year] = make(map[domain.TestOutcome]float64)
			grossTotals[row.Year] = make(map[domain.TestOutcome]float64)
		}
		budgetTotals[row.Year][row.Binary] = row.BudgetTotal
		grossTotals[row.Year][row.Binary] = row.GrossTotal
	}
	sort.Ints(years)

	x := make([]string, len(years))
	for i, year := range years {
		x[i] = strconv.Itoa(year)
	}

	outcomes := []domain.TestOutcome{domain.TestOutcomePass, domain.TestOutcomeFail}
	lineSeries := func(totals map[int]map[domain.TestOutcome]float64) []domain.ChartSeries {
		series := make([]domain.ChartSeries, 0, len(outcomes))
		for _, outcome := range outcomes {
			points := make([]domain.ChartPoint, len(years))
			for i, year := range years {
				points[i] = domain.ChartPoint{Label: x[i], Value: totals[year][outcome]}
			}
			series = append(series, domain.ChartSeries{Name: string(outcome), Points: points})
		}
		return series
	}

	return []domain.ChartConfig{
		{
			ID:          ChartYearlyBudget,
			Kind:        domain.ChartKindLine,
			Title:       "Yearly budget by test outcome",
			Subtitle:    "Sum of 2013-adjusted budgets",
			XLabel:      "Year",
			YLabel:      "Budget (2013 USD)",
			XCategories: x,
			Series:      lineSeries(budgetTotals),
		},
		{
			ID:          ChartYearlyGross,
			Kind:        domain.ChartKindLine,
			Title:       "Yearly domestic gross by test outcome",
			Subtitle:    "Sum of coerced 2013-adjusted gross",
			XLabel:      "Year",
			YLabel:      "Gross (2013 USD)",
			XCategories: x,
			Series:      lineSeries(grossTotals),
		},
	}
}

// BudgetGrossScatter plots budget against coerced domestic gross with a
// centered moving-average trend over the budget-ordered points.
func (b *Builder) BudgetGrossScatter(movies []domain.CleanMovie) domain.ChartConfig {
	budgets, grosses := b.aggregator.BudgetGrossPairs(movies)
	trend := stats.MovingAverage(grosses, b.cfg.TrendWindow)

	scatter := make([]domain.ChartPoint, len(budgets))
	smoothed := make([]domain.ChartPoint, 0, len(budgets))
	for i := range budgets {
		scatter[i] = domain.ChartPoint{X: budgets[i], Y: grosses[i]}
		if !math.IsNaN(trend[i]) {
			smoothed = append(smoothed, domain.ChartPoint{X: budgets[i], Y: trend[i]})
		}
	}

	return domain.ChartConfig{
		ID:       ChartBudgetVsGross,
		Kind:     domain.ChartKindScatter,
		Title:    "Budget vs domestic gross",
		Subtitle: fmt.Sprintf("2013-adjusted, trend window %d", b.cfg.TrendWindow),
		XLabel:   "Budget (2013 USD)",
		YLabel:   "Gross (2013 USD)",
		Series: []domain.ChartSeries{
			{Name: "Movies", Points: scatter},
			{Name: "Trend", Smooth: true, Points: smoothed},
		},
	}
}

// RatingBar plots the supplemental raw Bechdel score distribution.
func (b *Builder) RatingBar(rows []domain.RatingCount) domain.ChartConfig {
	x := make([]string, len(rows))
	points := make([]domain.ChartPoint, len(rows))
	for i, row := range rows {
		x[i] = strconv.Itoa(row.Rating)
		points[i] = domain.ChartPoint{Label: row.Description, Value: float64(row.Count)}
	}

	return domain.ChartConfig{
		ID:          ChartRatingDistribution,
		Kind:        domain.ChartKindBar,
		Title:       "Raw Bechdel score distribution",
		Subtitle:    "0 = fewest criteria met, 3 = all met",
		XLabel:      "Score",
		YLabel:      "Movies",
		XCategories: x,
		Series:      []domain.ChartSeries{{Name: "Movies", Points: points}},
	}
}

// formatMoney renders a dollar amount with a compact magnitude suffix
// for axis labels.
func formatMoney(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.0fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.0fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
