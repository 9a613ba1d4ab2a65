package solver

import (
	"fmt"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/flow"
)

// Flow network for one feasibility probe, plus the index maps needed to
// read an assignment back out of its residual graph.
//
// Node layout: source 0, then one node per distinct source NPU, then one
// node per required-expert demand, then the sink.
type layerGraph struct {
	g          *flow.Graph
	npus       []core.GlobalNpu
	reqExperts []int
	npuOffset  int
	reqOffset  int
	sink       int
}

// Build the unit-capacity network for capacity K: source->NPU edges carry
// K, NPU->demand edges carry 1 for each replica relation, demand->sink
// edges carry 1.
func buildLayerGraph(k int, required []int, replicas core.ReplicaMap) *layerGraph {
	npus := replicas.DistinctNpus()
	npuIndex := make(map[core.GlobalNpu]int, len(npus))
	for i, gn := range npus {
		npuIndex[gn] = i
	}

	npuOffset := 1
	reqOffset := npuOffset + len(npus)
	sink := reqOffset + len(required)

	lg := &layerGraph{
		g:          flow.NewGraph(sink+1, 0, sink),
		npus:       npus,
		reqExperts: append([]int(nil), required...),
		npuOffset:  npuOffset,
		reqOffset:  reqOffset,
		sink:       sink,
	}

	for i := range npus {
		lg.g.AddEdge(0, npuOffset+i, k)
	}
	for i, expertID := range required {
		reqNode := reqOffset + i
		for _, gn := range replicas[expertID] {
			lg.g.AddEdge(npuOffset+npuIndex[gn], reqNode, 1)
		}
		lg.g.AddEdge(reqNode, sink, 1)
	}
	return lg
}

// Solve and check that every demand is routed. Mutates the graph into its
// residual form.
func (lg *layerGraph) feasible() bool {
	return lg.g.Solve() >= len(lg.reqExperts)
}

// Read the assignment out of the residual graph: a demand node's reverse
// edge toward an NPU node gained capacity iff the forward edge carried
// the unit of flow.
func (lg *layerGraph) extract() ([]core.Step, error) {
	plan := make([]core.Step, 0, len(lg.reqExperts))
	for i, expertID := range lg.reqExperts {
		reqNode := lg.reqOffset + i
		src, ok := lg.sourceOf(reqNode)
		if !ok {
			return nil, fmt.Errorf("expert %d (demand %d): %w", expertID, i, ErrInfeasiblePlan)
		}
		plan = append(plan, core.Step{Src: src, ExpertID: expertID})
	}
	return plan, nil
}

func (lg *layerGraph) sourceOf(reqNode int) (core.GlobalNpu, bool) {
	for _, e := range lg.g.EdgesFrom(reqNode) {
		if e.To >= lg.npuOffset && e.To < lg.npuOffset+len(lg.npus) && e.Cap > 0 {
			return lg.npus[e.To-lg.npuOffset], true
		}
	}
	return core.GlobalNpu{}, false
}
