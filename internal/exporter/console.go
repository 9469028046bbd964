package exporter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"bechdelcli/pkg/contracts/domain"
)

// ConsolePrinter renders the headline aggregates as colored tables on
// a terminal. Rendering is best-effort: a table that fails to render
// reports the failure inline and never aborts the run.
type ConsolePrinter struct {
	out io.Writer
}

// NewConsolePrinter creates a console printer. A nil writer defaults
// to stdout.
func NewConsolePrinter(out io.Writer) *ConsolePrinter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsolePrinter{out: out}
}

// PrintSummary renders the overview and the headline aggregate tables
func (p *ConsolePrinter) PrintSummary(result *domain.AnalysisResult) {
	p.PrintOverview(result.Overview)
	p.PrintMedianBudget(result.MedianBudget)
	p.PrintRatingDistribution(result.RatingDistribution)
}

// PrintOverview renders the run-level dataset facts
func (p *ConsolePrinter) PrintOverview(overview domain.DatasetOverview) {
	color.New(color.FgHiCyan, color.Bold, color.Underline).Fprintln(p.out, "Dataset Overview")

	table := tablewriter.NewWriter(p.out)
	if err := table.Append([]string{"Field", "Value"}); err != nil {
		fmt.Fprintf(p.out, "failed to append header row: %v\n", err)
		return
	}

	passRate := color.New(color.FgHiGreen, color.Bold).Sprint(formatFloat(overview.PassRate*100) + "%")
	rows := [][]string{
		{"Run", overview.RunID},
		{"Source rows", formatInt(overview.SourceRows)},
		{"Years", fmt.Sprintf("%d-%d", overview.YearMin, overview.YearMax)},
		{"Passed", formatInt(overview.PassCount)},
		{"Failed", formatInt(overview.FailCount)},
		{"Pass rate", passRate},
		{"Missing genre", formatInt(overview.GenreMissing)},
		{"Unmatched genre", formatInt(overview.GenreUnmatched)},
		{"Schema violations", formatInt(overview.SchemaViolations)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			fmt.Fprintf(p.out, "failed to append row: %v\n", err)
			return
		}
	}

	if err := table.Render(); err != nil {
		fmt.Fprintf(p.out, "failed to render table: %v\n", err)
		return
	}
	fmt.Fprintln(p.out)
}

// PrintMedianBudget renders the median-budget-by-category table
func (p *ConsolePrinter) PrintMedianBudget(rows []domain.MedianBudgetRow) {
	color.New(color.FgHiMagenta, color.Bold, color.Underline).Fprintln(p.out, "Median Budget by Category (2013 USD)")

	table := tablewriter.NewWriter(p.out)
	if err := table.Append([]string{"Category", "Median Budget", "Movies"}); err != nil {
		fmt.Fprintf(p.out, "failed to append header row: %v\n", err)
		return
	}

	for _, row := range rows {
		median := formatOptionalFloat(row.MedianBudget)
		if median == "" {
			median = color.New(color.FgHiBlack).Sprint("n/a")
		} else {
			median = color.New(color.FgHiBlue, color.Bold).Sprint("$" + median)
		}
		record := []string{string(row.Category), median, formatInt(row.SampleCount)}
		if err := table.Append(record); err != nil {
			fmt.Fprintf(p.out, "failed to append row: %v\n", err)
			return
		}
	}

	if err := table.Render(); err != nil {
		fmt.Fprintf(p.out, "failed to render table: %v\n", err)
		return
	}
	fmt.Fprintln(p.out)
}

// PrintRatingDistribution renders the supplemental 0-3 rating counts
func (p *ConsolePrinter) PrintRatingDistribution(rows []domain.RatingCount) {
	if len(rows) == 0 {
		return
	}
	color.New(color.FgHiYellow, color.Bold, color.Underline).Fprintln(p.out, "Raw Bechdel Rating Distribution")

	table := tablewriter.NewWriter(p.out)
	if err := table.Append([]string{"Rating", "Description", "Movies"}); err != nil {
		fmt.Fprintf(p.out, "failed to append header row: %v\n", err)
		return
	}

	for _, row := range rows {
		record := []string{
			formatInt(row.Rating),
			row.Description,
			color.New(color.FgHiBlue, color.Bold).Sprint(formatInt(row.Count)),
		}
		if err := table.Append(record); err != nil {
			fmt.Fprintf(p.out, "failed to append row: %v\n", err)
			return
		}
	}

	if err := table.Render(); err != nil {
		fmt.Fprintf(p.out, "failed to render table: %v\n", err)
		return
	}
	fmt.Fprintln(p.out)
}
