package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d-incubation/d2d-transmission-optimizer/pkg/core"
)

const fleetJSON = `{
  "fleet": {
    "instances": [
      {"name": "deepseekv3-1", "deviceSize": 16, "dpSize": 4},
      {"name": "deepseekv3-2", "deviceSize": 16, "dpSize": 4}
    ]
  }
}`

const fleetYAML = `
fleet:
  instances:
    - name: deepseekv3-1
      deviceSize: 16
      dpSize: 4
    - name: deepseekv3-2
      deviceSize: 8
      dpSize: 2
`

const layersJSON = `{
  "targetInstance": "deepseekv3-new",
  "layers": [
    {
      "layer": 0,
      "required": [0, 1, 1],
      "experts": [
        {"expertId": 0, "sources": [{"instance": "deepseekv3-1", "localNpu": 0}]},
        {"expertId": 1, "sources": [
          {"instance": "deepseekv3-1", "localNpu": 1},
          {"instance": "deepseekv3-2", "localNpu": 1}
        ]}
      ]
    }
  ]
}`

func TestNewFleetDataFromSpecJSON(t *testing.T) {
	d, err := NewFleetDataFromSpec([]byte(fleetJSON), "json")
	require.NoError(t, err)
	require.Len(t, d.Spec.Instances, 2)
	assert.Equal(t, "deepseekv3-1", d.Spec.Instances[0].Name)
	assert.Equal(t, 16, d.Spec.Instances[0].DeviceSize)

	configs := d.Spec.InstanceConfigs()
	assert.Equal(t, core.InstanceConfig{DeviceSize: 16, DpSize: 4}, configs["deepseekv3-2"])
}

func TestNewFleetDataFromSpecYAML(t *testing.T) {
	d, err := NewFleetDataFromSpec([]byte(fleetYAML), "yaml")
	require.NoError(t, err)
	require.Len(t, d.Spec.Instances, 2)
	assert.Equal(t, 8, d.Spec.Instances[1].DeviceSize)
	assert.Equal(t, 2, d.Spec.Instances[1].DpSize)
}

func TestNewFleetDataFromSpecBadName(t *testing.T) {
	spec := `{"fleet": {"instances": [{"name": "Not_A_DNS_Name", "deviceSize": 16, "dpSize": 4}]}}`
	_, err := NewFleetDataFromSpec([]byte(spec), "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not_A_DNS_Name")
}

func TestNewFleetDataFromSpecDuplicateName(t *testing.T) {
	spec := `{"fleet": {"instances": [
	  {"name": "inst-a", "deviceSize": 16, "dpSize": 4},
	  {"name": "inst-a", "deviceSize": 8, "dpSize": 2}
	]}}`
	_, err := NewFleetDataFromSpec([]byte(spec), "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewFleetDataFromSpecMalformedShapeLoads(t *testing.T) {
	// Shape invariants are not load-time errors; the planner skips the
	// instance instead.
	spec := `{"fleet": {"instances": [{"name": "inst-a", "deviceSize": 16, "dpSize": 3}]}}`
	d, err := NewFleetDataFromSpec([]byte(spec), "json")
	require.NoError(t, err)
	assert.False(t, d.Spec.InstanceConfigs()["inst-a"].Valid())
}

func TestNewLayerDataFromSpec(t *testing.T) {
	d, err := NewLayerDataFromSpec([]byte(layersJSON), "json")
	require.NoError(t, err)
	assert.Equal(t, "deepseekv3-new", d.Target)
	require.Len(t, d.Spec, 1)

	ls := d.Spec[0]
	assert.Equal(t, []int{0, 1, 1}, ls.Required)

	rm := ls.ReplicaMap()
	require.Len(t, rm[1], 2)
	assert.Equal(t, core.GlobalNpu{Instance: "deepseekv3-2", LocalNpu: 1}, rm[1][1])
}

func TestNewLayerDataFromSpecBadJSON(t *testing.T) {
	_, err := NewLayerDataFromSpec([]byte("{not json"), "json")
	assert.Error(t, err)
}
