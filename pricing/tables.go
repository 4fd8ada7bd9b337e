// Package pricing holds the static reference tables the estimators consume:
// on-demand prices, grid carbon intensity, and power-draw figures. Tables
// are loaded once at startup and read-only afterwards, so concurrent scans
// share them without locking.
package pricing

import (
	"fmt"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// UnknownPricingError reports a missing price table entry. Recoverable:
// recorded as a per-resource warning, never aborting the run.
type UnknownPricingError struct {
	Kind   types.ResourceKind
	Class  string
	Region string
}

func (e *UnknownPricingError) Error() string {
	return fmt.Sprintf("no pricing for %s %s in %s", e.Kind, e.Class, e.Region)
}

// UnknownEmissionsFactorError reports missing grid intensity data for a
// region. Handled identically to pricing gaps.
type UnknownEmissionsFactorError struct {
	Region string
}

func (e *UnknownEmissionsFactorError) Error() string {
	return fmt.Sprintf("no grid carbon intensity for region %s", e.Region)
}

// UnknownPowerDrawError reports a missing power-draw entry for a size/type
// class. Handled identically to pricing gaps.
type UnknownPowerDrawError struct {
	Kind  types.ResourceKind
	Class string
}

func (e *UnknownPowerDrawError) Error() string {
	return fmt.Sprintf("no power draw figure for %s %s", e.Kind, e.Class)
}

type priceKey struct {
	kind   types.ResourceKind
	class  string
	region string
}

type powerKey struct {
	kind  types.ResourceKind
	class string
}

// PriceEntry is one on-demand price. For compute instances USDPerHour is
// per instance-hour; for block volumes it is per GB-hour.
type PriceEntry struct {
	Kind       types.ResourceKind `yaml:"kind"`
	Class      string             `yaml:"class"`
	Region     string             `yaml:"region"`
	USDPerHour float64            `yaml:"usd_per_hour"`
}

// PowerEntry is one power-draw figure. For compute instances Watts is per
// instance; for block volumes it is per GB.
type PowerEntry struct {
	Kind  types.ResourceKind `yaml:"kind"`
	Class string             `yaml:"class"`
	Watts float64            `yaml:"watts"`
}

// Tables is the injected, read-only lookup object.
type Tables struct {
	prices    map[priceKey]float64
	intensity map[string]float64
	power     map[powerKey]float64
}

// NewTables builds a lookup object from entries. Intensity maps region to
// kg CO2e per kWh.
func NewTables(prices []PriceEntry, intensity map[string]float64, power []PowerEntry) *Tables {
	t := &Tables{
		prices:    make(map[priceKey]float64, len(prices)),
		intensity: make(map[string]float64, len(intensity)),
		power:     make(map[powerKey]float64, len(power)),
	}
	for _, p := range prices {
		t.prices[priceKey{p.Kind, p.Class, p.Region}] = p.USDPerHour
	}
	for region, v := range intensity {
		t.intensity[region] = v
	}
	for _, p := range power {
		t.power[powerKey{p.Kind, p.Class}] = p.Watts
	}
	return t
}

// HourlyPriceUSD looks up the on-demand unit price for a resource class.
func (t *Tables) HourlyPriceUSD(kind types.ResourceKind, class, region string) (float64, error) {
	price, ok := t.prices[priceKey{kind, class, region}]
	if !ok {
		return 0, &UnknownPricingError{Kind: kind, Class: class, Region: region}
	}
	return price, nil
}

// GridIntensity looks up the regional carbon intensity in kg CO2e per kWh.
func (t *Tables) GridIntensity(region string) (float64, error) {
	v, ok := t.intensity[region]
	if !ok {
		return 0, &UnknownEmissionsFactorError{Region: region}
	}
	return v, nil
}

// PowerDrawWatts looks up the estimated average power draw for a class.
func (t *Tables) PowerDrawWatts(kind types.ResourceKind, class string) (float64, error) {
	v, ok := t.power[powerKey{kind, class}]
	if !ok {
		return 0, &UnknownPowerDrawError{Kind: kind, Class: class}
	}
	return v, nil
}
