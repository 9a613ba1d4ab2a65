package core

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Per-NPU expert transfer counts for every configured instance with a
// positive device count, derived from an expert plan. Steps referencing
// unknown instances or out-of-range devices are ignored.
type LoadMatrix map[string][]int

// Build the load matrix for the given instance shapes.
func NewLoadMatrix(steps []Step, configs map[string]InstanceConfig) LoadMatrix {
	lm := make(LoadMatrix, len(configs))
	for name, cfg := range configs {
		if cfg.DeviceSize > 0 {
			lm[name] = make([]int, cfg.DeviceSize)
		}
	}
	for _, s := range steps {
		loads, ok := lm[s.Src.Instance]
		if !ok {
			continue
		}
		if s.Src.LocalNpu < 0 || s.Src.LocalNpu >= len(loads) {
			continue
		}
		loads[s.Src.LocalNpu]++
	}
	return lm
}

// Peak load among the NPUs of DP group g of the named instance.
func (lm LoadMatrix) GroupPeak(instance string, cfg InstanceConfig, g int) int {
	loads := lm[instance]
	peak := 0
	perGroup := cfg.NpusPerGroup()
	for k := 0; k < perGroup; k++ {
		idx := g*perGroup + k
		if idx < len(loads) && loads[idx] > peak {
			peak = loads[idx]
		}
	}
	return peak
}

// Highest per-NPU load across the whole fleet.
func (lm LoadMatrix) GlobalPeak() int {
	peak := 0
	for _, loads := range lm {
		for _, l := range loads {
			if l > peak {
				peak = l
			}
		}
	}
	return peak
}

// Mean and standard deviation of per-NPU loads across the fleet, a quick
// measure of how evenly the plan spreads transfers over the D2D links.
func (lm LoadMatrix) Imbalance() (mean, stddev float64) {
	var all []float64
	for _, loads := range lm {
		for _, l := range loads {
			all = append(all, float64(l))
		}
	}
	if len(all) == 0 {
		return 0, 0
	}
	mean, variance := stat.MeanVariance(all, nil)
	return mean, math.Sqrt(variance)
}

func (lm LoadMatrix) String() string {
	var b bytes.Buffer
	names := make([]string, 0, len(lm))
	for name := range lm {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %v \n", name, lm[name])
	}
	return b.String()
}
