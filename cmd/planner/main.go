/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/internal/logger"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/internal/metrics"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/config"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/manager"
	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/solver"
)

func main() {
	var fleetPath string
	var layersPath string
	var outPath string
	var metricsPath string

	flag.StringVar(&fleetPath, "fleet", "fleet.json", "Fleet topology spec (json or yaml).")
	flag.StringVar(&layersPath, "layers", "layers.json", "Per-layer demand and placement spec (json or yaml).")
	flag.StringVar(&outPath, "out", "plan.json", "Where to write the transfer plan.")
	flag.StringVar(&metricsPath, "metrics-out", "metrics.prom", "Where to write planning metrics in Prometheus text format.")
	flag.Parse()

	log := logger.InitLogger()
	defer logger.SyncLogger()

	registry := prometheus.NewRegistry()
	emitter := metrics.InitMetricsAndEmitter(registry)

	fleetBytes, err := os.ReadFile(fleetPath)
	if err != nil {
		log.Fatalw("reading fleet spec", "path", fleetPath, "error", err)
	}
	fleetData, err := config.NewFleetDataFromSpec(fleetBytes, specFormat(fleetPath))
	if err != nil {
		log.Fatalw("parsing fleet spec", "path", fleetPath, "error", err)
	}

	layerBytes, err := os.ReadFile(layersPath)
	if err != nil {
		log.Fatalw("reading layer spec", "path", layersPath, "error", err)
	}
	layerData, err := config.NewLayerDataFromSpec(layerBytes, specFormat(layersPath))
	if err != nil {
		log.Fatalw("parsing layer spec", "path", layersPath, "error", err)
	}

	mgr := manager.NewManager(solver.NewOptimizer(), fleetData.Spec.InstanceConfigs()).WithEmitter(emitter)
	plan, err := mgr.PlanJoin(layerData.Target, layerData.Spec)
	if err != nil {
		writeMetrics(registry, metricsPath)
		log.Fatalw("planning failed", "target", layerData.Target, "error", err)
	}

	planBytes, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		log.Fatalw("encoding plan", "error", err)
	}
	if err := os.WriteFile(outPath, planBytes, 0644); err != nil {
		log.Fatalw("writing plan", "path", outPath, "error", err)
	}
	writeMetrics(registry, metricsPath)
	log.Infow("plan written", "path", outPath, "layers", len(plan.Layers))
}

// Dump the registry in text exposition format, textfile-collector style,
// so a node exporter or the operator can pick the counters up.
func writeMetrics(registry *prometheus.Registry, path string) {
	log := logger.Log
	if path == "" {
		return
	}
	families, err := registry.Gather()
	if err != nil {
		log.Errorw("gathering metrics", "error", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Errorw("writing metrics", "path", path, "error", err)
		return
	}
	defer f.Close()
	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			log.Errorw("encoding metrics", "path", path, "error", err)
			return
		}
	}
}

func specFormat(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
