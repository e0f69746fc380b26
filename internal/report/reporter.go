// Package report assembles charts and the console summary for a dataset.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"epitrend/internal/aggregate"
	"epitrend/internal/dataset"
	"epitrend/internal/domain"
	"epitrend/internal/infra"
	"epitrend/internal/report/chart"
)

const (
	yLabel             = "Number of People"
	globalDailyTitle   = "Global Total cases/deaths"
	globalCumTitle     = "Global Accumulative sum cases/deaths"
	globalXLabel       = "Date: (Month/Day)"
	entityXLabelFormat = "Date: %s ~ %s (Month/Day)"
	axisDateLayout     = "2006/01/02"
)

// Config is fixed for the lifetime of a Reporter.
type Config struct {
	Locale         string
	WatchList      []string
	AnnotateOffset int
	Describe       bool
}

// Reporter renders the per-entity and global charts and prints the summary.
type Reporter struct {
	watchList []string
	offset    float64
	describe  bool
	tag       language.Tag
	printer   *message.Printer
	renderer  chart.Renderer
	out       io.Writer
	logger    *infra.Logger
}

// Result lists what a report run produced.
type Result struct {
	Charts  []string
	Skipped []string
}

// NewReporter constructs a Reporter with injected dependencies.
func NewReporter(cfg Config, renderer chart.Renderer, out io.Writer, logger *infra.Logger) (*Reporter, error) {
	if renderer == nil {
		return nil, errors.New("report: renderer is required")
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		l := infra.NopLogger()
		logger = &l
	}
	tag := resolveLocale(cfg.Locale)
	printer, err := newPrinter(tag)
	if err != nil {
		return nil, fmt.Errorf("report: build message catalog: %w", err)
	}
	return &Reporter{
		watchList: append([]string(nil), cfg.WatchList...),
		offset:    float64(cfg.AnnotateOffset),
		describe:  cfg.Describe,
		tag:       tag,
		printer:   printer,
		renderer:  renderer,
		out:       out,
		logger:    logger,
	}, nil
}

// Report builds every chart first and only then renders them, followed by the
// console summary.
func (r *Reporter) Report(ds *dataset.Dataset) (Result, error) {
	if ds.Len() == 0 {
		return Result{}, fmt.Errorf("report: dataset is empty: %w", domain.ErrDataIntegrity)
	}
	charts, skipped := r.Charts(ds)

	res := Result{Skipped: skipped}
	for _, c := range charts {
		path, err := r.renderer.Render(c)
		if err != nil {
			return res, fmt.Errorf("report: render %q: %w", c.Title, err)
		}
		r.logger.Info().Str("stage", "report").Str("chart", c.Title).Str("path", path).Msg("report: chart rendered")
		res.Charts = append(res.Charts, path)
	}

	if err := r.Summary(ds); err != nil {
		return res, err
	}
	return res, nil
}

// Charts assembles the per-entity charts for the watch list followed by the
// global daily and cumulative charts. Watch-list entries absent from the
// dataset are returned as skipped.
func (r *Reporter) Charts(ds *dataset.Dataset) (charts []chart.Chart, skipped []string) {
	xLabel := fmt.Sprintf(entityXLabelFormat, ds.FirstDate().Format(axisDateLayout), ds.LastDate().Format(axisDateLayout))
	for _, id := range r.watchList {
		series := aggregate.EntityDaily(ds, id)
		if len(series) == 0 {
			r.logger.Warn().Str("stage", "report").Str("entity", id).Msg("report: watch-list entity not in dataset")
			skipped = append(skipped, id)
			continue
		}
		name, _ := ds.EntityName(id)
		c := r.seriesChart(DisplayName(name), xLabel, series)
		c.XMin, c.XMax = ds.FirstDate(), ds.LastDate()
		charts = append(charts, c)
	}

	daily := aggregate.GlobalDaily(ds)
	charts = append(charts, r.seriesChart(globalDailyTitle, globalXLabel, daily))
	charts = append(charts, r.seriesChart(globalCumTitle, globalXLabel, aggregate.Cumulative(daily)))
	return charts, skipped
}

func (r *Reporter) seriesChart(title, xLabel string, series domain.Series) chart.Chart {
	c := chart.Chart{
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Lines: []chart.Line{
			{Name: domain.FieldCases.String(), Points: points(series, domain.FieldCases)},
			{Name: domain.FieldDeaths.String(), Points: points(series, domain.FieldDeaths)},
		},
	}
	for _, field := range []domain.Field{domain.FieldCases, domain.FieldDeaths} {
		peak, ok := aggregate.Peak(series, field)
		if !ok {
			continue
		}
		c.Annotations = append(c.Annotations, chart.Annotation{
			Date:  peak.Date,
			Value: float64(peak.Value) + r.offset,
			Text:  r.printer.Sprintf("%d", peak.Value),
		})
	}
	return c
}

// Summary prints the most recent date, global figures and the watch-list
// figures. With Describe set it also lists every entity name and the
// distribution of the daily columns.
func (r *Reporter) Summary(ds *dataset.Dataset) error {
	p := r.printer
	var b strings.Builder

	p.Fprintf(&b, msgLastDate, formatDate(r.tag, ds.LastDate()))
	b.WriteString("\n\n")
	p.Fprintf(&b, msgEntityCount, ds.EntityCount())
	b.WriteByte('\n')

	global := aggregate.GlobalTotals(ds)
	p.Fprintf(&b, msgGlobalCases, global.TotalCases)
	b.WriteByte('\n')
	p.Fprintf(&b, msgGlobalDeath, global.TotalDeaths)
	b.WriteByte('\n')
	if rate, ok := global.CaseFatalityRate(); ok {
		p.Fprintf(&b, msgGlobalRate, rate*100)
	} else {
		p.Fprintf(&b, msgGlobalNoRate)
	}
	b.WriteByte('\n')

	for _, id := range r.watchList {
		agg := aggregate.EntityTotals(ds, id)
		name := DisplayName(agg.EntityName)
		if name == "" {
			name = id
		}
		b.WriteByte('\n')
		p.Fprintf(&b, msgEntityCases, name, agg.TotalCases)
		b.WriteByte('\n')
		p.Fprintf(&b, msgEntityDeath, name, agg.TotalDeaths)
		b.WriteByte('\n')
		if rate, ok := agg.CaseFatalityRate(); ok {
			p.Fprintf(&b, msgEntityRate, name, rate)
		} else {
			p.Fprintf(&b, msgEntityNoRate, name)
		}
		b.WriteByte('\n')
	}

	if r.describe {
		names := ds.EntityNames()
		for i, name := range names {
			names[i] = DisplayName(name)
		}
		b.WriteByte('\n')
		p.Fprintf(&b, msgEntityList, strings.Join(names, ", "))
		b.WriteByte('\n')

		desc := aggregate.Describe(ds)
		b.WriteByte('\n')
		for _, f := range []struct {
			name string
			s    domain.FieldSummary
		}{{domain.FieldCases.String(), desc.Cases}, {domain.FieldDeaths.String(), desc.Deaths}} {
			p.Fprintf(&b, msgDescribe, f.name, f.s.Count, f.s.Mean, f.s.StdDev, f.s.Min, f.s.Max)
			b.WriteByte('\n')
		}
	}

	if _, err := io.WriteString(r.out, b.String()); err != nil {
		return fmt.Errorf("report: write summary: %w", err)
	}
	return nil
}

// DisplayName turns source names such as "South_Korea" into "South Korea".
func DisplayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func points(series domain.Series, field domain.Field) []chart.Point {
	out := make([]chart.Point, len(series))
	for i, p := range series {
		out[i] = chart.Point{Date: p.Date, Value: float64(p.Value(field))}
	}
	return out
}
