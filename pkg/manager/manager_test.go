package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/internal/metrics"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/config"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/solver"
)

var _ = Describe("Manager", func() {
	var (
		configs map[string]core.InstanceConfig
		mgr     *Manager
	)

	placements := func(experts int, instances ...string) []config.ExpertPlacement {
		eps := make([]config.ExpertPlacement, 0, experts)
		for e := 0; e < experts; e++ {
			ep := config.ExpertPlacement{ExpertID: e}
			for _, name := range instances {
				ep.Sources = append(ep.Sources, core.GlobalNpu{Instance: name, LocalNpu: e % 4})
			}
			eps = append(eps, ep)
		}
		return eps
	}

	BeforeEach(func() {
		configs = map[string]core.InstanceConfig{
			"inst-a": {DeviceSize: 4, DpSize: 2},
			"inst-b": {DeviceSize: 4, DpSize: 2},
		}
		mgr = NewManager(solver.NewOptimizer(), configs)
	})

	Context("when planning a join across layers", func() {
		It("should produce one layer plan per layer spec", func() {
			layers := []config.LayerSpec{
				{Layer: 0, Required: []int{0, 1, 2, 3}, Experts: placements(4, "inst-a", "inst-b")},
				{Layer: 1, Required: []int{0, 1}, Experts: placements(4, "inst-a")},
			}

			plan, err := mgr.PlanJoin("inst-new", layers)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.PlanID).NotTo(BeEmpty())
			Expect(plan.TargetInstance).To(Equal("inst-new"))
			Expect(plan.Layers).To(HaveLen(2))

			Expect(plan.Layers[0].Layer).To(Equal(0))
			Expect(plan.Layers[0].Steps).To(HaveLen(4))
			Expect(plan.Layers[0].NonExpert.Found()).To(BeTrue())

			Expect(plan.Layers[1].Steps).To(HaveLen(2))
		})

		It("should keep every step on a replica of its expert", func() {
			layers := []config.LayerSpec{
				{Layer: 0, Required: []int{0, 1, 2, 3}, Experts: placements(4, "inst-a", "inst-b")},
			}

			plan, err := mgr.PlanJoin("inst-new", layers)
			Expect(err).NotTo(HaveOccurred())

			rm := layers[0].ReplicaMap()
			for _, s := range plan.Layers[0].Steps {
				Expect(rm[s.ExpertID]).To(ContainElement(s.Src))
			}
		})

		It("should assign fresh plan ids per join", func() {
			layers := []config.LayerSpec{
				{Layer: 0, Required: []int{0}, Experts: placements(1, "inst-a")},
			}

			first, err := mgr.PlanJoin("inst-new", layers)
			Expect(err).NotTo(HaveOccurred())
			second, err := mgr.PlanJoin("inst-new", layers)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.PlanID).NotTo(Equal(second.PlanID))
		})
	})

	Context("when a layer is unplannable", func() {
		It("should fail the whole join and name the layer", func() {
			layers := []config.LayerSpec{
				{Layer: 0, Required: []int{0}, Experts: placements(1, "inst-a")},
				{Layer: 7, Required: []int{99}, Experts: nil},
			}

			plan, err := mgr.PlanJoin("inst-new", layers)
			Expect(plan).To(BeNil())
			Expect(err).To(MatchError(solver.ErrUnassignedExpert))
			Expect(err.Error()).To(ContainSubstring("layer 7"))
		})
	})

	Context("when a metrics emitter is attached", func() {
		It("should count plans and errors", func() {
			registry := prometheus.NewRegistry()
			emitter := metrics.InitMetricsAndEmitter(registry)
			mgr = NewManager(solver.NewOptimizer(), configs).WithEmitter(emitter)

			layers := []config.LayerSpec{
				{Layer: 0, Required: []int{0, 1}, Experts: placements(2, "inst-a")},
			}
			_, err := mgr.PlanJoin("inst-new", layers)
			Expect(err).NotTo(HaveOccurred())

			_, err = mgr.PlanJoin("inst-new", []config.LayerSpec{
				{Layer: 1, Required: []int{42}},
			})
			Expect(err).To(HaveOccurred())

			families, err := registry.Gather()
			Expect(err).NotTo(HaveOccurred())
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			Expect(names).To(ContainElement("d2d_layer_plans_total"))
			Expect(names).To(ContainElement("d2d_plan_errors_total"))
		})
	})
})
