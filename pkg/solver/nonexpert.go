package solver

import (
	"sort"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
)

// Pick the source for a layer's non-expert weights: the DP group whose
// busiest NPU (per the expert plan) carries the least load. Instances are
// scanned in sorted-name order and groups in ascending index, with the
// first strict improvement winning, so results are reproducible.
//
// Malformed configs are skipped; unknown instances in the expert plan are
// ignored. Instances the plan never touches carry all-zero loads, which
// makes idle instances the preferred sources. Returns the sentinel step
// when no instance offers a usable group.
func (o *Optimizer) OptimizeNonExpert(expertSteps []core.Step, configs map[string]core.InstanceConfig) core.NonExpertStep {
	loads := core.NewLoadMatrix(expertSteps, configs)

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	best := core.NoNonExpertStep()
	minPeak := int(^uint(0) >> 1)
	for _, name := range names {
		cfg := configs[name]
		if !cfg.Valid() {
			continue
		}
		for g := 0; g < cfg.DpSize; g++ {
			peak := loads.GroupPeak(name, cfg, g)
			if peak < minPeak {
				minPeak = peak
				best = core.NonExpertStep{
					SrcInstance:  name,
					DpGroupIndex: g,
					StartNpu:     g * cfg.NpusPerGroup(),
					DpSize:       cfg.DpSize,
				}
			}
		}
	}
	return best
}
