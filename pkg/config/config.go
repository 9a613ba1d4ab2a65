package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
)

// Create fleet data from a JSON or YAML spec
func NewFleetDataFromSpec(byteValue []byte, format string) (*FleetData, error) {
	var d FleetData
	if err := unmarshal(byteValue, format, &d); err != nil {
		return nil, err
	}
	if err := d.Spec.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create layer data from a JSON or YAML spec
func NewLayerDataFromSpec(byteValue []byte, format string) (*LayerData, error) {
	var d LayerData
	if err := unmarshal(byteValue, format, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func unmarshal(byteValue []byte, format string, out any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Unmarshal(byteValue, out)
	default:
		return json.Unmarshal(byteValue, out)
	}
}

// Instance names double as pod names in the fleet, hence the DNS-1123
// check. Shape invariants are left to InstanceConfig.Valid so that a
// malformed instance degrades planning instead of failing the load.
func (fs *FleetSpec) validate() error {
	seen := make(map[string]bool, len(fs.Instances))
	for _, inst := range fs.Instances {
		if errs := validation.IsDNS1123Subdomain(inst.Name); len(errs) > 0 {
			return fmt.Errorf("instance name %q: %s", inst.Name, strings.Join(errs, "; "))
		}
		if seen[inst.Name] {
			return fmt.Errorf("duplicate instance name %q", inst.Name)
		}
		seen[inst.Name] = true
	}
	return nil
}

// Instance configs keyed by name, as consumed by the non-expert planner.
func (fs *FleetSpec) InstanceConfigs() map[string]core.InstanceConfig {
	configs := make(map[string]core.InstanceConfig, len(fs.Instances))
	for _, inst := range fs.Instances {
		configs[inst.Name] = core.InstanceConfig{
			DeviceSize: inst.DeviceSize,
			DpSize:     inst.DpSize,
		}
	}
	return configs
}
