package main

import (
	"fmt"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/solver"
)

// Walkthrough: 5 warm deepseek-v3 instances, 16 NPUs each, 256 experts
// per layer sharded 16 per NPU. A sixth instance joins and needs every
// expert of one layer.
func main() {
	const existingInstances = 5
	const totalExperts = 256
	const npusPerInstance = 16
	const expertsPerNpu = totalExperts / npusPerInstance

	instNames := make([]string, 0, existingInstances)
	for i := 0; i < existingInstances; i++ {
		instNames = append(instNames, fmt.Sprintf("deepseekv3-%d", i+1))
	}

	replicas := make(core.ReplicaMap, totalExperts)
	for expertID := 0; expertID < totalExperts; expertID++ {
		for _, name := range instNames {
			replicas[expertID] = append(replicas[expertID], core.GlobalNpu{
				Instance: name,
				LocalNpu: expertID / expertsPerNpu,
			})
		}
	}

	required := make([]int, totalExperts)
	for e := range required {
		required[e] = e
	}

	opt := solver.NewOptimizer()
	steps, err := opt.OptimizeLayer(required, replicas)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Target instance: deepseekv3-new")
	fmt.Println("Layer 0 D2D steps (expert_id <- src_instance:src_npu)")
	for _, s := range steps {
		fmt.Printf("  %s\n", s)
	}

	configs := make(map[string]core.InstanceConfig, existingInstances)
	for _, name := range instNames {
		configs[name] = core.InstanceConfig{DeviceSize: npusPerInstance, DpSize: 4}
	}

	loads := core.NewLoadMatrix(steps, configs)
	fmt.Printf("[Expert] Total transferred: %d\n", len(steps))
	fmt.Printf("[Expert] Peak source load: %d\n", core.PeakSourceLoad(steps))
	fmt.Printf("[Expert] Global max NPU load: %d\n", loads.GlobalPeak())
	mean, stddev := loads.Imbalance()
	fmt.Printf("[Expert] Per-NPU load mean %.2f, stddev %.2f\n", mean, stddev)
	fmt.Println("[Expert] Per-instance NPU loads:")
	fmt.Print(loads)

	nonExpert := opt.OptimizeNonExpert(steps, configs)
	fmt.Printf("[Non-Expert] %s\n", nonExpert)
	if nonExpert.Found() {
		cfg := configs[nonExpert.SrcInstance]
		fmt.Printf("[Non-Expert] NPU range: [%d - %d]\n",
			nonExpert.StartNpu, nonExpert.StartNpu+cfg.NpusPerGroup()-1)
		for g := 0; g < cfg.DpSize; g++ {
			fmt.Printf("[Non-Expert] %s group %d max expert load: %d\n",
				nonExpert.SrcInstance, g, loads.GroupPeak(nonExpert.SrcInstance, cfg, g))
		}
	}
}
