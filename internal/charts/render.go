package charts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"bechdelcli/internal/config"
	"bechdelcli/internal/errors"
	"bechdelcli/internal/infrastructure"
	"bechdelcli/pkg/contracts/domain"
)

// heatColors is the low-to-high ramp shared by both heatmaps.
var heatColors = []string{"#50a3ba", "#eac736", "#d94e5d"}

// Renderer turns chart configurations into one self-contained HTML
// report page via go-echarts. Every chart keeps its configured element
// id so the snapshot step can address it.
type Renderer struct {
	cfg     config.ChartsConfig
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewRenderer creates a report renderer. A nil logger falls back to
// slog.Default().
func NewRenderer(cfg config.ChartsConfig, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{cfg: cfg, logger: logger}
}

// WithMetrics attaches pipeline metrics; rendered chart counts are
// recorded when set.
func (r *Renderer) WithMetrics(metrics *infrastructure.PipelineMetrics) *Renderer {
	r.metrics = metrics
	return r
}

// RenderHTML writes the report page containing every chart in input
// order.
func (r *Renderer) RenderHTML(ctx context.Context, path string, configs []domain.ChartConfig) error {
	page := components.NewPage()
	page.PageTitle = r.cfg.PageTitle
	page.SetLayout(components.PageCenterLayout)

	for _, cfg := range configs {
		chart, err := r.buildChart(cfg)
		if err != nil {
			return err
		}
		page.AddCharts(chart)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create report directory", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create report file", err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return errors.NewRenderError("failed to render report page", err)
	}

	if r.metrics != nil {
		r.metrics.ChartsRenderedTotal.Add(ctx, int64(len(configs)))
	}
	r.logger.InfoContext(ctx, "rendered report page",
		slog.String("path", path),
		slog.Int("charts", len(configs)))
	return nil
}

// buildChart maps one renderer-agnostic configuration onto its
// go-echarts chart type.
func (r *Renderer) buildChart(cfg domain.ChartConfig) (components.Charter, error) {
	switch cfg.Kind {
	case domain.ChartKindBar, domain.ChartKindHistogram:
		return r.buildBar(cfg), nil
	case domain.ChartKindLine:
		return r.buildLine(cfg), nil
	case domain.ChartKindScatter:
		return r.buildScatter(cfg), nil
	case domain.ChartKindHeatMap:
		return r.buildHeatMap(cfg), nil
	case domain.ChartKindBoxPlot:
		return r.buildBoxPlot(cfg), nil
	default:
		return nil, errors.NewRenderError(fmt.Sprintf("unsupported chart kind %q for chart %s", cfg.Kind, cfg.ID), nil)
	}
}

// baseOptions carries the options shared by every chart kind.
func (r *Renderer) baseOptions(cfg domain.ChartConfig) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: cfg.ID,
			Width:   r.cfg.Width,
			Height:  r.cfg.Height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    cfg.Title,
			Subtitle: cfg.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(cfg.Series) > 1)}),
	}
}

func (r *Renderer) buildBar(cfg domain.ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	options := append(r.baseOptions(cfg),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      cfg.XLabel,
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: cfg.YLabel}),
	)
	bar.SetGlobalOptions(options...)
	bar.SetXAxis(cfg.XCategories)

	for _, s := range cfg.Series {
		data := make([]opts.BarData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.BarData{Name: p.Label, Value: p.Value})
		}
		if s.Stack != "" {
			bar.AddSeries(s.Name, data, charts.WithBarChartOpts(opts.BarChart{Stack: s.Stack}))
		} else {
			bar.AddSeries(s.Name, data)
		}
	}
	return bar
}

func (r *Renderer) buildLine(cfg domain.ChartConfig) *charts.Line {
	line := charts.NewLine()
	options := append(r.baseOptions(cfg),
		charts.WithXAxisOpts(opts.XAxis{Name: cfg.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: cfg.YLabel}),
	)
	line.SetGlobalOptions(options...)
	line.SetXAxis(cfg.XCategories)

	for _, s := range cfg.Series {
		data := make([]opts.LineData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.LineData{Name: p.Label, Value: p.Value})
		}
		line.AddSeries(s.Name, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(s.Smooth)}))
	}
	return line
}

// buildScatter plots point series as scatter marks; series flagged
// Smooth become overlaid trend lines instead.
func (r *Renderer) buildScatter(cfg domain.ChartConfig) *charts.Scatter {
	scatter := charts.NewScatter()
	options := append(r.baseOptions(cfg),
		charts.WithXAxisOpts(opts.XAxis{Name: cfg.XLabel, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: cfg.YLabel, Type: "value"}),
	)
	scatter.SetGlobalOptions(options...)

	for _, s := range cfg.Series {
		if s.Smooth {
			line := charts.NewLine()
			data := make([]opts.LineData, 0, len(s.Points))
			for _, p := range s.Points {
				data = append(data, opts.LineData{Value: []interface{}{p.X, p.Y}})
			}
			line.AddSeries(s.Name, data,
				charts.WithLineChartOpts(opts.LineChart{
					Smooth:     opts.Bool(true),
					ShowSymbol: opts.Bool(false),
				}))
			scatter.Overlap(line)
			continue
		}

		data := make([]opts.ScatterData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}, SymbolSize: 6})
		}
		scatter.AddSeries(s.Name, data)
	}
	return scatter
}

func (r *Renderer) buildHeatMap(cfg domain.ChartConfig) *charts.HeatMap {
	heatmap := charts.NewHeatMap()

	min, max := valueRange(cfg.Series)
	options := append(r.baseOptions(cfg),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      cfg.XLabel,
			Type:      "category",
			Data:      cfg.XCategories,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      cfg.YLabel,
			Type:      "category",
			Data:      cfg.YCategories,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(min),
			Max:        float32(max),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	heatmap.SetGlobalOptions(options...)

	for _, s := range cfg.Series {
		data := make([]opts.HeatMapData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{p.XIndex, p.YIndex, p.Value}})
		}
		heatmap.AddSeries(s.Name, data)
	}
	return heatmap
}

func (r *Renderer) buildBoxPlot(cfg domain.ChartConfig) *charts.BoxPlot {
	boxplot := charts.NewBoxPlot()
	options := append(r.baseOptions(cfg),
		charts.WithXAxisOpts(opts.XAxis{Name: cfg.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: cfg.YLabel}),
	)
	boxplot.SetGlobalOptions(options...)
	boxplot.SetXAxis(cfg.XCategories)

	for _, s := range cfg.Series {
		data := make([]opts.BoxPlotData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.BoxPlotData{Name: p.Label, Value: p.Box})
		}
		boxplot.AddSeries(s.Name, data)
	}
	return boxplot
}

// valueRange spans the point values of every series, for the heatmap
// visual map. An all-empty input yields the 0..1 fallback.
func valueRange(series []domain.ChartSeries) (float64, float64) {
	first := true
	var min, max float64
	for _, s := range series {
		for _, p := range s.Points {
			if first {
				min, max = p.Value, p.Value
				first = false
				continue
			}
			if p.Value < min {
				min = p.Value
			}
			if p.Value > max {
				max = p.Value
			}
		}
	}
	if first {
		return 0, 1
	}
	return min, max
}
