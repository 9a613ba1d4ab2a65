// Package solver plans device-to-device weight movement for an instance
// joining a warm fleet. OptimizeLayer assigns one source NPU per required
// expert while minimizing the peak number of transfers any source must
// serve; OptimizeNonExpert then picks the DP group with the lightest
// expert traffic as the source for non-expert weights.
package solver

import (
	"errors"
	"fmt"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
)

var (
	// A required expert is missing from the replica map or has an empty
	// replica list. The whole planning call fails; partial plans are
	// never returned.
	ErrUnassignedExpert = errors.New("required expert has no replica")

	// The flow solution did not cover every required expert even though
	// validation passed. Indicates an internal invariant violation.
	ErrInfeasiblePlan = errors.New("no feasible assignment covers all required experts")
)

// Stateless planner. Safe to share across goroutines; every call owns
// its graphs and index maps.
type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Choose a source NPU for every required expert of one layer, minimizing
// the peak source load. Duplicate ids in required are independent demands.
// The returned plan preserves the order of required; empty required yields
// an empty plan.
func (o *Optimizer) OptimizeLayer(required []int, replicas core.ReplicaMap) ([]core.Step, error) {
	if len(required) == 0 {
		return []core.Step{}, nil
	}
	for _, id := range required {
		if len(replicas[id]) == 0 {
			return nil, fmt.Errorf("expert %d: %w", id, ErrUnassignedExpert)
		}
	}

	// Binary search the smallest per-NPU capacity K whose flow network
	// still routes every demand. The residual graph of the best solve is
	// kept so extraction does not re-run the engine.
	low, high := 1, len(required)
	var best *layerGraph
	for low <= high {
		mid := low + (high-low)/2
		lg := buildLayerGraph(mid, required, replicas)
		if lg.feasible() {
			best = lg
			high = mid - 1
		} else {
			low = mid + 1
		}
	}
	if best == nil {
		return nil, ErrInfeasiblePlan
	}
	return best.extract()
}
