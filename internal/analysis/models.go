package analysis

import (
	"fmt"
	"strconv"

	"github.com/user/accuracy_plotter_go/internal/parser"
)

// MethodSpec describes how one method's result file is grouped.
type MethodSpec struct {
	ID          string // file name prefix, e.g. "full-min_supp"
	Label       string // legend label
	LevelColumn string // optional; partitions the file into one series per level
	XColumn     string // group key, "neurons" unless the method is plotted against its threshold
	ValueColumn string // averaged column, "accuracy" when empty
}

// ThresholdIndexed reports whether the method's series use a threshold
// value (0.0 - 1.0) rather than a neuron count as x.
func (m MethodSpec) ThresholdIndexed() bool {
	return m.xColumn() != parser.NeuronsColumn
}

// Leveled reports whether the method has one series per level value.
func (m MethodSpec) Leveled() bool {
	return m.LevelColumn != ""
}

func (m MethodSpec) xColumn() string {
	if m.XColumn == "" {
		return parser.NeuronsColumn
	}
	return m.XColumn
}

func (m MethodSpec) valueColumn() string {
	if m.ValueColumn == "" {
		return parser.AccuracyColumn
	}
	return m.ValueColumn
}

// Point is the mean of every row sharing one group key.
type Point struct {
	Key   float64
	Mean  float64
	Count int // rows that contributed to Mean
}

// AggregatedSeries is one plotted line: a method, optionally restricted to one level.
type AggregatedSeries struct {
	MethodID         string
	Label            string
	Leveled          bool
	Level            float64
	XColumn          string
	ThresholdIndexed bool
	Points           []Point // ascending by Key
}

// IsEmpty reports whether the series has nothing to plot.
func (s AggregatedSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// LevelGrid is the level x key matrix of mean values for a leveled method.
type LevelGrid struct {
	MethodID    string
	Label       string
	LevelColumn string
	KeyColumn   string
	Levels      []float64   // ascending
	Keys        []float64   // ascending union of keys across levels
	Means       [][]float64 // [level][key]; NaN where the combination has no rows
}

// SeriesSummary condenses a series for tables.
type SeriesSummary struct {
	Dataset  string
	Label    string
	Points   int
	Rows     int
	MinMean  float64
	MaxMean  float64
	BestKey  float64
	XColumn  string
	HasValue bool
}

// DatasetAnalysis holds every series computed for one dataset.
type DatasetAnalysis struct {
	Dataset  string
	Series   []AggregatedSeries
	Grids    []LevelGrid
	Warnings []string
}

// NewDatasetAnalysis initializes an empty DatasetAnalysis.
func NewDatasetAnalysis(dataset string) *DatasetAnalysis {
	return &DatasetAnalysis{
		Dataset:  dataset,
		Series:   make([]AggregatedSeries, 0),
		Grids:    make([]LevelGrid, 0),
		Warnings: make([]string, 0),
	}
}

// HasThresholdSeries reports whether any non-empty series is threshold-indexed.
func (d *DatasetAnalysis) HasThresholdSeries() bool {
	for _, s := range d.Series {
		if s.ThresholdIndexed && !s.IsEmpty() {
			return true
		}
	}
	return false
}

// HasNeuronSeries reports whether any non-empty series is indexed by neuron count.
func (d *DatasetAnalysis) HasNeuronSeries() bool {
	for _, s := range d.Series {
		if !s.ThresholdIndexed && !s.IsEmpty() {
			return true
		}
	}
	return false
}

// FormatLevel renders a level value the way legend labels show it.
func FormatLevel(level float64) string {
	return strconv.FormatFloat(level, 'g', -1, 64)
}

func levelLabel(label string, level float64) string {
	return fmt.Sprintf("%s (lvl=%s)", label, FormatLevel(level))
}
