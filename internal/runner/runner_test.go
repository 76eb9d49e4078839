package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/accuracy_plotter_go/internal/analysis"
	"github.com/user/accuracy_plotter_go/internal/config"
	"github.com/user/accuracy_plotter_go/internal/parser"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig(inputDir, outputDir string, datasets ...string) config.Config {
	return config.Config{
		Datasets:         datasets,
		Methods:          config.DefaultMethods,
		InputDir:         inputDir,
		OutputDir:        outputDir,
		FilenameTemplate: config.DefaultFilenameTemplate,
		Format:           "png",
		WidthInches:      6,
		HeightInches:     4,
	}
}

func writeInputs(t *testing.T, dir, dataset string) {
	t.Helper()
	files := map[string]string{
		"full-1hl":      "neurons,accuracy\n3,80\n3,90\n5,70\n",
		"full-2hl":      "neurons,accuracy\n3,60\n5,65\n",
		"full-min_supp": "neurons,accuracy,max_level,min_supp\n4,50,2,0.1\n4,70,2,0.2\n4,10,1,0.1\n6,30,1,0.3\n",
		"full-min_cv":   "neurons,accuracy,max_level,min_cv\n4,55,1,0.5\n",
		"full-min_cfc":  "",
	}
	for method, content := range files {
		path := filepath.Join(dir, method+"-"+dataset+".txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func seriesByLabel(d *analysis.DatasetAnalysis, label string) (analysis.AggregatedSeries, bool) {
	for _, s := range d.Series {
		if s.Label == label {
			return s, true
		}
	}
	return analysis.AggregatedSeries{}, false
}

func TestRunWritesOneChartPerDataset(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "charts")
	writeInputs(t, in, "zoo")
	writeInputs(t, in, "breast_cancer")

	rp := NewResultPlotter(testConfig(in, out, "zoo", "breast_cancer"), quietLogger())
	summary, err := rp.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, 0, summary.Failed())

	for _, ds := range []string{"zoo", "breast_cancer"} {
		info, err := os.Stat(filepath.Join(out, ds+"-accuracy.png"))
		require.NoError(t, err, ds)
		assert.Greater(t, info.Size(), int64(0), ds)
	}

	zoo := summary.Analyses()[0]
	assert.Equal(t, "zoo", zoo.Dataset)
	s, ok := seriesByLabel(zoo, "Fully connected (1 hidden layer)")
	require.True(t, ok)
	assert.Equal(t, []analysis.Point{{Key: 3, Mean: 85, Count: 2}, {Key: 5, Mean: 70, Count: 1}}, s.Points)

	_, ok = seriesByLabel(zoo, "Min supp (lvl=1)")
	assert.True(t, ok)
	_, ok = seriesByLabel(zoo, "Min supp (lvl=2)")
	assert.True(t, ok)
	assert.Len(t, zoo.Grids, 2, "min_supp and min_cv have levels, min_cfc is empty")
}

func TestRunContinuesAfterMissingFile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")
	writeInputs(t, in, "seismic_bumps")
	require.NoError(t, os.Remove(filepath.Join(in, "full-2hl-seismic_bumps.txt")))

	rp := NewResultPlotter(testConfig(in, out, "seismic_bumps", "zoo"), quietLogger())
	summary, err := rp.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	var accessErr *parser.FileAccessError
	assert.True(t, errors.As(err, &accessErr))
	assert.Equal(t, "missing_file", describeError(err))

	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, 1, summary.Failed())
	_, statErr := os.Stat(filepath.Join(out, "zoo-accuracy.png"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(out, "seismic_bumps-accuracy.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunFailFast(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")

	cfg := testConfig(in, out, "mammographic_masses", "zoo")
	cfg.FailFast = true
	summary, err := NewResultPlotter(cfg, quietLogger()).Run(context.Background())

	require.Error(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, "mammographic_masses", summary.Outcomes[0].Dataset)
	_, statErr := os.Stat(filepath.Join(out, "zoo-accuracy.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunReportsMalformedInput(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")
	require.NoError(t, os.WriteFile(filepath.Join(in, "full-1hl-zoo.txt"), []byte("neurons,accuracy\n3,eighty\n"), 0o644))

	_, err := NewResultPlotter(testConfig(in, out, "zoo"), quietLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "parse", describeError(err))
	assert.Contains(t, err.Error(), "dataset zoo")
}

func TestRunReportsMissingColumn(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")
	require.NoError(t, os.WriteFile(filepath.Join(in, "full-min_cv-zoo.txt"), []byte("neurons,accuracy\n3,80\n"), 0o644))

	_, err := NewResultPlotter(testConfig(in, out, "zoo"), quietLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "missing_column", describeError(err))
}

func TestRunWithEmptyInputs(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	for _, m := range config.DefaultMethods {
		require.NoError(t, os.WriteFile(filepath.Join(in, m.ID+"-zoo.txt"), nil, 0o644))
	}

	summary, err := NewResultPlotter(testConfig(in, out, "zoo"), quietLogger()).Run(context.Background())
	require.NoError(t, err)

	zoo := summary.Analyses()[0]
	for _, s := range zoo.Series {
		assert.True(t, s.IsEmpty(), s.Label)
	}
	info, err := os.Stat(filepath.Join(out, "zoo-accuracy.png"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunWritesReport(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")

	cfg := testConfig(in, out, "zoo")
	cfg.Format = "svg"
	cfg.Report = "report.pdf"
	summary, err := NewResultPlotter(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "report.pdf"), summary.ReportPath)
	data, err := os.ReadFile(summary.ReportPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	svg, err := os.ReadFile(filepath.Join(out, "zoo-accuracy.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	imgs := summary.Outcomes[0].Images
	assert.NotEmpty(t, imgs.Chart)
	assert.Contains(t, imgs.Heatmaps, "full-min_supp")
}

func TestRunReportWithBlankLevelAccuracies(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")
	require.NoError(t, os.WriteFile(filepath.Join(in, "full-min_cv-zoo.txt"), []byte("neurons,accuracy,max_level\n4,,1\n"), 0o644))

	cfg := testConfig(in, out, "zoo")
	cfg.Report = "report.pdf"
	summary, err := NewResultPlotter(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Failed())
	imgs := summary.Outcomes[0].Images
	assert.Contains(t, imgs.Heatmaps, "full-min_supp")
	assert.NotContains(t, imgs.Heatmaps, "full-min_cv")
	_, statErr := os.Stat(summary.ReportPath)
	assert.NoError(t, statErr)
}

func TestRunLeavesNoChartWhenReportImagesFail(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")

	cfg := testConfig(in, out, "zoo")
	cfg.Report = "report.pdf"
	rp := NewResultPlotter(cfg, quietLogger())
	rp.renderHeatmap = func(string, analysis.LevelGrid) ([]byte, error) {
		return nil, errors.New("heatmap failed")
	}
	summary, err := rp.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "heatmap failed")
	assert.Equal(t, 1, summary.Failed())
	_, statErr := os.Stat(filepath.Join(out, "zoo-accuracy.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunKeepsErrorChainForSeveralFailures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")
	require.NoError(t, os.WriteFile(filepath.Join(in, "full-1hl-zoo.txt"), []byte("neurons,accuracy\n3,eighty\n"), 0o644))

	_, err := NewResultPlotter(testConfig(in, out, "seismic_bumps", "zoo"), quietLogger()).Run(context.Background())
	require.Error(t, err)

	assert.True(t, errors.Is(err, os.ErrNotExist))
	var parseErr *parser.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Contains(t, err.Error(), "dataset seismic_bumps")
	assert.Contains(t, err.Error(), "dataset zoo")
}

func TestRunStopsWhenCancelled(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, "zoo")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := NewResultPlotter(testConfig(in, out, "zoo"), quietLogger()).Run(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, summary.Outcomes)
}

func TestRunIsDeterministic(t *testing.T) {
	in := t.TempDir()
	writeInputs(t, in, "zoo")

	first, err := NewResultPlotter(testConfig(in, t.TempDir(), "zoo"), quietLogger()).Run(context.Background())
	require.NoError(t, err)
	second, err := NewResultPlotter(testConfig(in, t.TempDir(), "zoo"), quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Analyses()[0].Series, second.Analyses()[0].Series)
}
