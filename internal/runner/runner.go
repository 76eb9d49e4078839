// Package runner drives the per-dataset load, aggregate, render and write cycle.
package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"

	"github.com/user/accuracy_plotter_go/internal/analysis"
	"github.com/user/accuracy_plotter_go/internal/config"
	"github.com/user/accuracy_plotter_go/internal/errcollection"
	"github.com/user/accuracy_plotter_go/internal/parser"
	"github.com/user/accuracy_plotter_go/internal/report"
)

// DatasetOutcome records what happened to one dataset.
type DatasetOutcome struct {
	Dataset   string
	ChartPath string
	Analysis  *analysis.DatasetAnalysis
	Images    report.ReportImages
	Err       error
}

// RunSummary is the result of a whole batch.
type RunSummary struct {
	Outcomes   []DatasetOutcome
	ReportPath string // empty when no report was written
}

// Analyses returns the analyses of every dataset that was plotted.
func (s *RunSummary) Analyses() []*analysis.DatasetAnalysis {
	var out []*analysis.DatasetAnalysis
	for _, o := range s.Outcomes {
		if o.Err == nil && o.Analysis != nil {
			out = append(out, o.Analysis)
		}
	}
	return out
}

// Failed returns the number of datasets that could not be plotted.
func (s *RunSummary) Failed() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// ResultPlotter renders one accuracy chart per configured dataset.
type ResultPlotter struct {
	cfg  config.Config
	log  *logrus.Entry
	opts report.ChartOptions

	renderHeatmap func(dataset string, grid analysis.LevelGrid) ([]byte, error)
}

// NewResultPlotter returns a plotter for cfg. A nil logger uses the standard logrus logger.
func NewResultPlotter(cfg config.Config, logger *logrus.Logger) *ResultPlotter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ResultPlotter{
		cfg: cfg,
		log: logger.WithField("component", "result_plotter"),
		opts: report.ChartOptions{
			Format: cfg.Format,
			Width:  vg.Length(cfg.WidthInches) * vg.Inch,
			Height: vg.Length(cfg.HeightInches) * vg.Inch,
		},
		renderHeatmap: report.CreateLevelHeatmap,
	}
}

// Run processes every dataset in configured order. A failing dataset is
// logged and skipped unless FailFast is set; the combined error is returned
// once all datasets were attempted. ctx is checked between datasets.
func (rp *ResultPlotter) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{}
	var errs errcollection.ErrorCollection

	if err := os.MkdirAll(rp.cfg.OutputDir, 0o755); err != nil {
		return summary, pkgerrors.Wrap(err, "create output directory")
	}

	for _, dataset := range rp.cfg.Datasets {
		if err := ctx.Err(); err != nil {
			errs.Add(pkgerrors.Wrap(err, "run interrupted"))
			break
		}

		outcome, err := rp.PlotDataset(dataset)
		if err != nil {
			err = pkgerrors.Wrapf(err, "dataset %s", dataset)
			rp.log.WithField("dataset", dataset).WithField("kind", describeError(err)).Error(err)
			summary.Outcomes = append(summary.Outcomes, DatasetOutcome{Dataset: dataset, Err: err})
			errs.Add(err)
			if rp.cfg.FailFast {
				break
			}
			continue
		}
		summary.Outcomes = append(summary.Outcomes, *outcome)
	}

	if path := rp.cfg.ReportPath(); path != "" {
		if err := rp.writeReport(path, summary); err != nil {
			errs.Add(pkgerrors.Wrap(err, "write report"))
		} else {
			summary.ReportPath = path
		}
	}

	return summary, errs.GetErrIfAny()
}

// LoadDataset parses every method's result file for dataset, in method order.
func (rp *ResultPlotter) LoadDataset(dataset string) ([]analysis.MethodInput, error) {
	inputs := make([]analysis.MethodInput, 0, len(rp.cfg.Methods))
	for _, m := range rp.cfg.Methods {
		path := rp.cfg.ResultPath(m.ID, dataset)
		rp.log.WithFields(logrus.Fields{"dataset": dataset, "method": m.ID, "file": path}).Debug("loading result file")

		file, err := parser.ParseResultFile(path)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, analysis.MethodInput{Method: m.Spec(), File: file})
	}
	return inputs, nil
}

// PlotDataset loads, aggregates and renders one dataset and writes its chart.
func (rp *ResultPlotter) PlotDataset(dataset string) (*DatasetOutcome, error) {
	entry := rp.log.WithField("dataset", dataset)

	inputs, err := rp.LoadDataset(dataset)
	if err != nil {
		return nil, err
	}
	result, err := analysis.AnalyzeDataset(dataset, inputs)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		entry.Warn(w)
	}

	chart, err := report.CreateAccuracyPlot(result, rp.opts)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "render chart")
	}

	// A dataset that fails while rendering must not leave a chart on disk.
	outcome := &DatasetOutcome{Dataset: dataset, Analysis: result}
	if rp.cfg.ReportPath() != "" {
		images, err := rp.reportImages(result, chart)
		if err != nil {
			return nil, err
		}
		outcome.Images = images
	}

	path := rp.cfg.ChartPath(dataset)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, pkgerrors.Wrap(err, "create chart directory")
		}
	}
	if err := os.WriteFile(path, chart, 0o644); err != nil {
		return nil, pkgerrors.Wrapf(err, "write chart %s", path)
	}

	plotted := 0
	for _, s := range result.Series {
		if !s.IsEmpty() {
			plotted++
		}
	}
	entry.WithFields(logrus.Fields{"file": path, "series": plotted}).Info("chart written")

	outcome.ChartPath = path
	return outcome, nil
}

// reportImages renders the PNG versions embedded in the PDF report.
func (rp *ResultPlotter) reportImages(result *analysis.DatasetAnalysis, chart []byte) (report.ReportImages, error) {
	images := report.ReportImages{Heatmaps: make(map[string][]byte)}

	if rp.opts.Format == "png" {
		images.Chart = chart
	} else {
		pngOpts := rp.opts
		pngOpts.Format = "png"
		png, err := report.CreateAccuracyPlot(result, pngOpts)
		if err != nil {
			return images, pkgerrors.Wrap(err, "render report chart")
		}
		images.Chart = png
	}

	for _, g := range result.Grids {
		if len(g.Levels) == 0 || len(g.Keys) == 0 {
			continue
		}
		heat, err := rp.renderHeatmap(result.Dataset, g)
		if err != nil {
			return images, pkgerrors.Wrapf(err, "render heatmap for %s", g.MethodID)
		}
		images.Heatmaps[g.MethodID] = heat
	}
	return images, nil
}

func (rp *ResultPlotter) writeReport(path string, summary *RunSummary) error {
	analyses := summary.Analyses()
	images := make(map[string]report.ReportImages, len(analyses))
	for _, o := range summary.Outcomes {
		if o.Err == nil {
			images[o.Dataset] = o.Images
		}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := report.BuildPDFReport(path, analyses, images); err != nil {
		return err
	}
	rp.log.WithField("file", path).Info("report written")
	return nil
}

// describeError names the failure class for log output.
func describeError(err error) string {
	var (
		accessErr  *parser.FileAccessError
		parseErr   *parser.ParseError
		missingErr *parser.MissingColumnError
	)
	switch {
	case errors.As(err, &accessErr) && errors.Is(err, os.ErrNotExist):
		return "missing_file"
	case errors.As(err, &accessErr):
		return "file_access"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &missingErr):
		return "missing_column"
	default:
		return "other"
	}
}
