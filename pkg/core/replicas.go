package core

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Placement of expert replicas across the warm fleet for one layer:
// expert id to the NPUs holding a copy. Replica list order is preserved
// from the publishing instance tables.
type ReplicaMap map[int][]GlobalNpu

// Expert ids present in the map, ascending.
func (rm ReplicaMap) SortedExpertIDs() []int {
	ids := make([]int, 0, len(rm))
	for id := range rm {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Distinct source NPUs appearing anywhere in the map, in first-seen order
// when scanning experts ascending and replica lists in input order. The
// fixed scan order keeps downstream graph construction reproducible.
func (rm ReplicaMap) DistinctNpus() []GlobalNpu {
	seen := sets.New[GlobalNpu]()
	npus := make([]GlobalNpu, 0, len(rm))
	for _, id := range rm.SortedExpertIDs() {
		for _, gn := range rm[id] {
			if seen.Has(gn) {
				continue
			}
			seen.Insert(gn)
			npus = append(npus, gn)
		}
	}
	return npus
}

// Instance names appearing in the map, ascending.
func (rm ReplicaMap) Instances() []string {
	names := sets.New[string]()
	for _, replicas := range rm {
		for _, gn := range replicas {
			names.Insert(gn.Instance)
		}
	}
	return sets.List(names)
}
