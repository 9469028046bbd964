package domain

// ChartKind identifies how a chart configuration is rendered
type ChartKind string

const (
	ChartKindBar       ChartKind = "bar"
	ChartKindLine      ChartKind = "line"
	ChartKindScatter   ChartKind = "scatter"
	ChartKindHeatMap   ChartKind = "heatmap"
	ChartKindBoxPlot   ChartKind = "boxplot"
	ChartKindHistogram ChartKind = "histogram"
)

// ChartConfig represents one renderer-agnostic chart: titles, axes and
// ordered series. The rendering library consumes this and nothing else.
type ChartConfig struct {
	ID          string        `json:"id"` // stable element id, also the snapshot file stem
	Kind        ChartKind     `json:"kind"`
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle,omitempty"`
	XLabel      string        `json:"x_label,omitempty"`
	YLabel      string        `json:"y_label,omitempty"`
	XCategories []string      `json:"x_categories,omitempty"`
	YCategories []string      `json:"y_categories,omitempty"` // heatmap rows
	Series      []ChartSeries `json:"series"`
}

// ChartSeries represents one named series of a chart
type ChartSeries struct {
	Name   string       `json:"name"`
	Stack  string       `json:"stack,omitempty"` // bar series sharing a stack id pile up
	Smooth bool         `json:"smooth,omitempty"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint represents one datum. Which fields matter depends on the
// chart kind: category charts use Value per x-category, scatter and
// line-over-values charts use X/Y, heatmap cells use XIndex/YIndex with
// Value, and boxplots use Box (min, q1, median, q3, max).
type ChartPoint struct {
	Label  string    `json:"label,omitempty"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	XIndex int       `json:"x_index,omitempty"`
	YIndex int       `json:"y_index,omitempty"`
	Value  float64   `json:"value,omitempty"`
	Box    []float64 `json:"box,omitempty"`
}
