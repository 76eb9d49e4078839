package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/user/accuracy_plotter_go/internal/parser"
)

// MethodInput pairs a method with its parsed result file.
type MethodInput struct {
	Method MethodSpec
	File   *parser.ResultFile
}

// group collects values per key in row order.
type group struct {
	keys   []float64
	values map[float64][]float64
}

func newGroup() *group {
	return &group{values: make(map[float64][]float64)}
}

func (g *group) add(key, value float64) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = append(g.values[key], value)
}

// points returns the means ordered by ascending key.
// Keys whose values were all NaN produce no point.
func (g *group) points() ([]Point, error) {
	keys := append([]float64(nil), g.keys...)
	sort.Float64s(keys)

	pts := make([]Point, 0, len(keys))
	for _, key := range keys {
		vals := g.values[key]
		if len(vals) == 0 {
			continue
		}
		mean, err := stats.Mean(vals)
		if err != nil {
			return nil, errors.Wrapf(err, "mean computation failed for key %v", key)
		}
		pts = append(pts, Point{Key: key, Mean: mean, Count: len(vals)})
	}
	return pts, nil
}

// GroupMean groups rows of file by keyColumn and averages valueColumn.
// Rows with a NaN key or value are skipped and reported as warnings.
func GroupMean(file *parser.ResultFile, keyColumn, valueColumn string) ([]Point, []string, error) {
	if file == nil || file.IsEmpty() {
		return []Point{}, nil, nil
	}
	keyIdx, err := file.ColumnIndex(keyColumn)
	if err != nil {
		return nil, nil, err
	}
	valIdx, err := file.ColumnIndex(valueColumn)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	g := newGroup()
	for _, row := range file.Rows {
		key, val := row.Value(keyIdx), row.Value(valIdx)
		if math.IsNaN(key) {
			warnings = append(warnings, fmt.Sprintf("%s:%d: no %s value, row skipped", file.Path, row.Line, keyColumn))
			continue
		}
		if math.IsNaN(val) {
			warnings = append(warnings, fmt.Sprintf("%s:%d: no %s value, row skipped", file.Path, row.Line, valueColumn))
			continue
		}
		g.add(key, val)
	}

	pts, err := g.points()
	if err != nil {
		return nil, warnings, err
	}
	return pts, warnings, nil
}

// AggregateMethod turns one result file into the series it contributes to a chart.
// Leveled methods produce one series per level (ascending) and a LevelGrid;
// other methods produce exactly one series. An empty file produces empty output.
func AggregateMethod(in MethodInput) ([]AggregatedSeries, *LevelGrid, []string, error) {
	m := in.Method
	file := in.File

	if !m.Leveled() {
		pts, warnings, err := GroupMean(file, m.xColumn(), m.valueColumn())
		if err != nil {
			return nil, nil, warnings, err
		}
		s := AggregatedSeries{
			MethodID:         m.ID,
			Label:            m.Label,
			XColumn:          m.xColumn(),
			ThresholdIndexed: m.ThresholdIndexed(),
			Points:           pts,
		}
		return []AggregatedSeries{s}, nil, warnings, nil
	}

	if file == nil || file.IsEmpty() {
		return []AggregatedSeries{}, nil, nil, nil
	}

	levelIdx, err := file.ColumnIndex(m.LevelColumn)
	if err != nil {
		return nil, nil, nil, err
	}
	// Validate the inner columns up front so a bad header fails even if no level matches.
	if _, err := file.ColumnIndex(m.xColumn()); err != nil {
		return nil, nil, nil, err
	}
	if _, err := file.ColumnIndex(m.valueColumn()); err != nil {
		return nil, nil, nil, err
	}

	var warnings []string
	subsets := make(map[float64]*parser.ResultFile)
	var levels []float64
	for _, row := range file.Rows {
		level := row.Value(levelIdx)
		if math.IsNaN(level) {
			warnings = append(warnings, fmt.Sprintf("%s:%d: no %s value, row skipped", file.Path, row.Line, m.LevelColumn))
			continue
		}
		sub, ok := subsets[level]
		if !ok {
			sub = &parser.ResultFile{Path: file.Path, Columns: file.Columns}
			subsets[level] = sub
			levels = append(levels, level)
		}
		sub.Rows = append(sub.Rows, row)
	}
	sort.Float64s(levels)

	series := make([]AggregatedSeries, 0, len(levels))
	for _, level := range levels {
		pts, w, err := GroupMean(subsets[level], m.xColumn(), m.valueColumn())
		warnings = append(warnings, w...)
		if err != nil {
			return nil, nil, warnings, err
		}
		series = append(series, AggregatedSeries{
			MethodID:         m.ID,
			Label:            levelLabel(m.Label, level),
			Leveled:          true,
			Level:            level,
			XColumn:          m.xColumn(),
			ThresholdIndexed: m.ThresholdIndexed(),
			Points:           pts,
		})
	}

	grid := buildLevelGrid(m, series)
	return series, grid, warnings, nil
}

// buildLevelGrid lays the per-level series out as a level x key matrix.
// Methods whose levels produced no points at all have no grid.
func buildLevelGrid(m MethodSpec, series []AggregatedSeries) *LevelGrid {
	if len(series) == 0 {
		return nil
	}
	keySet := make(map[float64]bool)
	for _, s := range series {
		for _, p := range s.Points {
			keySet[p.Key] = true
		}
	}
	keys := make([]float64, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Float64s(keys)
	keyPos := make(map[float64]int, len(keys))
	for i, k := range keys {
		keyPos[k] = i
	}

	grid := &LevelGrid{
		MethodID:    m.ID,
		Label:       m.Label,
		LevelColumn: m.LevelColumn,
		KeyColumn:   m.xColumn(),
		Levels:      make([]float64, len(series)),
		Keys:        keys,
		Means:       make([][]float64, len(series)),
	}
	for i, s := range series {
		grid.Levels[i] = s.Level
		row := make([]float64, len(keys))
		for j := range row {
			row[j] = math.NaN()
		}
		for _, p := range s.Points {
			row[keyPos[p.Key]] = p.Mean
		}
		grid.Means[i] = row
	}
	return grid
}

// AnalyzeDataset aggregates every method of one dataset, in the given order.
func AnalyzeDataset(dataset string, inputs []MethodInput) (*DatasetAnalysis, error) {
	result := NewDatasetAnalysis(dataset)
	for _, in := range inputs {
		if in.File != nil {
			result.Warnings = append(result.Warnings, in.File.Warnings...)
		}
		series, grid, warnings, err := AggregateMethod(in)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset %s, method %s", dataset, in.Method.ID)
		}
		result.Series = append(result.Series, series...)
		if grid != nil {
			result.Grids = append(result.Grids, *grid)
		}
	}
	return result, nil
}

// Summarize reduces a series to its extremes. Series without points report HasValue=false.
func Summarize(dataset string, s AggregatedSeries) SeriesSummary {
	summary := SeriesSummary{
		Dataset: dataset,
		Label:   s.Label,
		Points:  len(s.Points),
		XColumn: s.XColumn,
		MinMean: math.NaN(),
		MaxMean: math.NaN(),
		BestKey: math.NaN(),
	}
	if s.IsEmpty() {
		return summary
	}

	means := make([]float64, len(s.Points))
	for i, p := range s.Points {
		means[i] = p.Mean
		summary.Rows += p.Count
	}
	maxMean, err := stats.Max(means)
	if err != nil {
		return summary
	}
	minMean, err := stats.Min(means)
	if err != nil {
		return summary
	}
	summary.MaxMean = maxMean
	summary.MinMean = minMean
	summary.HasValue = true
	// First key reaching the maximum, keys are ascending.
	for _, p := range s.Points {
		if p.Mean == maxMean {
			summary.BestKey = p.Key
			break
		}
	}
	return summary
}
