package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
)

// generateTicks returns labeled ticks from min to max inclusive every step.
func generateTicks(min, max, step float64, format string) []plot.Tick {
	var ticks []plot.Tick
	if step <= 0 || max < min {
		return ticks
	}
	n := int(math.Round((max - min) / step))
	for i := 0; i <= n; i++ {
		v := min + float64(i)*step
		// 3*0.1 is 0.30000000000000004; snap to 9 decimals.
		v = math.Round(v*1e9) / 1e9
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(format, v)})
	}
	return ticks
}

// dualTicks labels the neuron axis Lo..Hi with its own values on the first
// line and the 0.0-1.0 threshold scale mapped onto the same range on the
// second line. Threshold positions that fall on a neuron tick share it.
type dualTicks struct {
	Lo, Hi float64
	Step   float64
}

func (d dualTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for _, t := range (plot.DefaultTicks{}).Ticks(min, max) {
		if t.IsMinor() {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: t.Value, Label: t.Label + "\n"})
	}

	span := d.Hi - d.Lo
	eps := math.Abs(span) * 1e-9
	for _, thr := range generateTicks(0, 1, d.Step, "%.1f") {
		pos := d.Lo + thr.Value*span
		merged := false
		for i := range ticks {
			if math.Abs(ticks[i].Value-pos) <= eps {
				ticks[i].Label += thr.Label
				merged = true
				break
			}
		}
		if !merged {
			ticks = append(ticks, plot.Tick{Value: pos, Label: "\n" + thr.Label})
		}
	}

	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Value < ticks[j].Value })
	return ticks
}
