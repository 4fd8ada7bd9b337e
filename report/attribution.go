package report

import (
	"sort"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// ownerTags are checked in order when attributing a resource to a team.
var ownerTags = []string{"Owner", "owner", "Team", "team"}

// UnattributedOwner groups resources carrying no owner tag.
const UnattributedOwner = "unattributed"

// OwnerWaste aggregates one owner's share of the report.
type OwnerWaste struct {
	Owner            string  `json:"owner"`
	Resources        int     `json:"resources"`
	AvoidableCostUSD float64 `json:"avoidable_cost_usd"`
	AvoidableCO2Kg   float64 `json:"avoidable_co2_kg"`
	Unknown          int     `json:"unknown,omitempty"`
}

// AttributeByOwner breaks the report's avoidable waste down by owner tag,
// sorted by descending cost so the biggest offender comes first. Ties
// break by owner name to keep the order stable.
func AttributeByOwner(report *types.WasteReport) []OwnerWaste {
	byOwner := make(map[string]*OwnerWaste)

	for _, entry := range report.Resources {
		owner := resourceOwner(entry.Resource)
		w, ok := byOwner[owner]
		if !ok {
			w = &OwnerWaste{Owner: owner}
			byOwner[owner] = w
		}

		w.Resources++
		if entry.Cost.Known() {
			w.AvoidableCostUSD += *entry.Cost.Amount
		}
		if entry.Carbon.Known() {
			w.AvoidableCO2Kg += *entry.Carbon.Amount
		}
		if !entry.Cost.Known() || !entry.Carbon.Known() {
			w.Unknown++
		}
	}

	out := make([]OwnerWaste, 0, len(byOwner))
	for _, w := range byOwner {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].AvoidableCostUSD != out[k].AvoidableCostUSD {
			return out[i].AvoidableCostUSD > out[k].AvoidableCostUSD
		}
		return out[i].Owner < out[k].Owner
	})
	return out
}

func resourceOwner(d types.ResourceDescriptor) string {
	for _, tag := range ownerTags {
		if owner, ok := d.Tags[tag]; ok && owner != "" {
			return owner
		}
	}
	return UnattributedOwner
}
