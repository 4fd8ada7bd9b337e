package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// tablesFile is the on-disk YAML shape.
type tablesFile struct {
	Prices        []PriceEntry       `yaml:"prices"`
	GridIntensity map[string]float64 `yaml:"grid_intensity"`
	PowerDraw     []PowerEntry       `yaml:"power_draw"`
}

// Load reads reference tables from a YAML file.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}

	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tables file: %w", err)
	}

	return NewTables(f.Prices, f.GridIntensity, f.PowerDraw), nil
}

// Builtin returns a small built-in table set covering common burstable
// instances and gp3 volumes. Figures are illustrative defaults, meant to be
// replaced by a real tables file in production.
func Builtin() *Tables {
	prices := []PriceEntry{
		{Kind: types.KindComputeInstance, Class: "t2.micro", Region: "eu-west-2", USDPerHour: 0.0116},
		{Kind: types.KindComputeInstance, Class: "t3.micro", Region: "eu-west-2", USDPerHour: 0.0104},
		{Kind: types.KindComputeInstance, Class: "t2.micro", Region: "eu-west-1", USDPerHour: 0.0126},
		{Kind: types.KindComputeInstance, Class: "t3.micro", Region: "eu-west-1", USDPerHour: 0.0114},
		// gp3 storage at ~$0.10 per GB-month over 730 hours.
		{Kind: types.KindBlockVolume, Class: "gp3", Region: "eu-west-2", USDPerHour: 0.10 / 730.0},
		{Kind: types.KindBlockVolume, Class: "gp3", Region: "eu-west-1", USDPerHour: 0.10 / 730.0},
	}
	intensity := map[string]float64{
		"eu-west-2": 0.225,
		"eu-west-1": 0.316,
	}
	power := []PowerEntry{
		{Kind: types.KindComputeInstance, Class: "t2.micro", Watts: 10.0},
		{Kind: types.KindComputeInstance, Class: "t3.micro", Watts: 8.0},
		{Kind: types.KindBlockVolume, Class: "gp3", Watts: 0.01},
	}
	return NewTables(prices, intensity, power)
}
