package config

import (
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
)

// All data describing the warm fleet a joining instance pulls from
type FleetData struct {
	Spec FleetSpec `json:"fleet" yaml:"fleet"`
}

// Specifications for fleet data
type FleetSpec struct {
	Instances []InstanceSpec `json:"instances" yaml:"instances"` // warm instance shapes
}

// Shape of one warm instance
type InstanceSpec struct {
	Name       string `json:"name" yaml:"name"`             // instance name, unique fleet-wide
	DeviceSize int    `json:"deviceSize" yaml:"deviceSize"` // NPUs on the instance
	DpSize     int    `json:"dpSize" yaml:"dpSize"`         // DP groups on the instance
}

// Per-layer demand and placement data for the joining instance
type LayerData struct {
	Target string      `json:"targetInstance" yaml:"targetInstance"` // the joining instance
	Spec   []LayerSpec `json:"layers" yaml:"layers"`                 // per-layer specs
}

// Demands and replica placements for one MoE layer
type LayerSpec struct {
	Layer    int               `json:"layer" yaml:"layer"`       // layer index
	Required []int             `json:"required" yaml:"required"` // expert ids the target must receive
	Experts  []ExpertPlacement `json:"experts" yaml:"experts"`   // replica placements in the warm fleet
}

// Replica locations of one expert
type ExpertPlacement struct {
	ExpertID int              `json:"expertId" yaml:"expertId"`
	Sources  []core.GlobalNpu `json:"sources" yaml:"sources"`
}

// Replica map for the layer, preserving source order per expert.
func (ls *LayerSpec) ReplicaMap() core.ReplicaMap {
	rm := make(core.ReplicaMap, len(ls.Experts))
	for _, ep := range ls.Experts {
		rm[ep.ExpertID] = append(rm[ep.ExpertID], ep.Sources...)
	}
	return rm
}
