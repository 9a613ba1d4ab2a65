package core

import (
	"bytes"
	"fmt"
)

// One element of an expert transfer plan: pull expert ExpertID from Src.
type Step struct {
	Src      GlobalNpu `json:"src" yaml:"src"`
	ExpertID int       `json:"expertId" yaml:"expertId"`
}

func (s Step) String() string {
	return fmt.Sprintf("expert %d <- %s", s.ExpertID, s.Src)
}

// Source selection for the non-expert weights of a layer: the chosen
// instance, the DP group within it, and the group's starting local NPU.
// DpGroupIndex -1 means no viable group was found.
type NonExpertStep struct {
	SrcInstance  string `json:"srcInstance" yaml:"srcInstance"`
	DpGroupIndex int    `json:"dpGroupIndex" yaml:"dpGroupIndex"`
	StartNpu     int    `json:"startNpuIndex" yaml:"startNpuIndex"`
	DpSize       int    `json:"dpSize" yaml:"dpSize"`
}

// Sentinel returned when no instance offers a usable DP group.
func NoNonExpertStep() NonExpertStep {
	return NonExpertStep{DpGroupIndex: -1, StartNpu: -1}
}

func (n NonExpertStep) Found() bool {
	return n.DpGroupIndex >= 0
}

func (n NonExpertStep) String() string {
	if !n.Found() {
		return "non-expert: no viable group"
	}
	return fmt.Sprintf("non-expert <- %s group %d (start npu %d, dp size %d)",
		n.SrcInstance, n.DpGroupIndex, n.StartNpu, n.DpSize)
}

// Transfer decisions for a single MoE layer.
type LayerPlan struct {
	Layer     int           `json:"layer" yaml:"layer"`
	Steps     []Step        `json:"steps" yaml:"steps"`
	NonExpert NonExpertStep `json:"nonExpert" yaml:"nonExpert"`
}

// Maximum number of steps sharing the same source NPU. Zero for an
// empty plan.
func PeakSourceLoad(steps []Step) int {
	counts := make(map[GlobalNpu]int, len(steps))
	peak := 0
	for _, s := range steps {
		counts[s.Src]++
		if counts[s.Src] > peak {
			peak = counts[s.Src]
		}
	}
	return peak
}

// Full weight-movement plan for one joining instance across all layers.
type TransferPlan struct {
	PlanID         string      `json:"planId" yaml:"planId"`
	TargetInstance string      `json:"targetInstance" yaml:"targetInstance"`
	Layers         []LayerPlan `json:"layers" yaml:"layers"`
}

func (p *TransferPlan) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "plan %s -> %s \n", p.PlanID, p.TargetInstance)
	for _, lp := range p.Layers {
		fmt.Fprintf(&b, "layer %d: %d expert steps, peak load %d, %s \n",
			lp.Layer, len(lp.Steps), PeakSourceLoad(lp.Steps), lp.NonExpert)
	}
	return b.String()
}
