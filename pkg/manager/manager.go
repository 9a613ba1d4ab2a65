// Package manager drives the solver for a joining instance: one expert
// plan and one non-expert source selection per MoE layer, assembled into
// a uuid-tagged TransferPlan for the transport executor.
package manager

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/internal/logger"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/internal/metrics"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/config"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/solver"
)

type Manager struct {
	optimizer *solver.Optimizer
	configs   map[string]core.InstanceConfig
	emitter   *metrics.MetricsEmitter
}

func NewManager(optimizer *solver.Optimizer, configs map[string]core.InstanceConfig) *Manager {
	return &Manager{
		optimizer: optimizer,
		configs:   configs,
	}
}

// Attach a metrics emitter; planning works without one.
func (m *Manager) WithEmitter(emitter *metrics.MetricsEmitter) *Manager {
	m.emitter = emitter
	return m
}

// Plan weight movement for every layer the joining instance needs. Fails
// on the first layer whose demands cannot be satisfied; no partial plans.
func (m *Manager) PlanJoin(target string, layers []config.LayerSpec) (*core.TransferPlan, error) {
	plan := &core.TransferPlan{
		PlanID:         uuid.NewString(),
		TargetInstance: target,
		Layers:         make([]core.LayerPlan, 0, len(layers)),
	}

	for _, ls := range layers {
		startTime := time.Now()
		steps, err := m.optimizer.OptimizeLayer(ls.Required, ls.ReplicaMap())
		if err != nil {
			m.emitError(target, err)
			return nil, fmt.Errorf("layer %d: %w", ls.Layer, err)
		}
		nonExpert := m.optimizer.OptimizeNonExpert(steps, m.configs)
		elapsed := time.Since(startTime)

		peak := core.PeakSourceLoad(steps)
		if m.emitter != nil {
			m.emitter.EmitLayerPlan(target, peak, elapsed)
		}
		logger.Log.Debugw("planned layer",
			"plan", plan.PlanID,
			"target", target,
			"layer", ls.Layer,
			"steps", len(steps),
			"peakLoad", peak,
			"nonExpertSrc", nonExpert.SrcInstance,
			"elapsed", elapsed,
		)

		plan.Layers = append(plan.Layers, core.LayerPlan{
			Layer:     ls.Layer,
			Steps:     steps,
			NonExpert: nonExpert,
		})
	}

	logger.Log.Infow("planned join",
		"plan", plan.PlanID,
		"target", target,
		"layers", len(plan.Layers),
	)
	return plan, nil
}

func (m *Manager) emitError(target string, err error) {
	if m.emitter == nil {
		return
	}
	errorType := "internal"
	switch {
	case errors.Is(err, solver.ErrUnassignedExpert):
		errorType = "unassigned-expert"
	case errors.Is(err, solver.ErrInfeasiblePlan):
		errorType = "infeasible"
	}
	m.emitter.EmitPlanError(target, errorType)
}
