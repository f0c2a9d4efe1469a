package engine

import (
	"github.com/talgya/hexworks/internal/cell"
	"github.com/talgya/hexworks/internal/resource"
)

// Rules holds the tunable constants of the economy.
type Rules struct {
	HubLogistics     int            `yaml:"hub_logistics"`      // Logistics points per hub per turn
	HubBuilders      int            `yaml:"hub_builders"`       // Builders housed by a hub
	HubBuildTime     int            `yaml:"hub_build_time"`     // Construction work a hub funds per turn
	HubWoodCap       int            `yaml:"hub_wood_cap"`       // Wood a hub can store
	StartWood        int            `yaml:"start_wood"`         // Wood in the starting hub
	HotCycle         int            `yaml:"hot_cycle"`          // Turns a fed Hot cell needs to finish
	WoodCutterCycle  int            `yaml:"woodcutter_cycle"`   // Turns between woodcutter deliveries
	WoodFarmCycle    int            `yaml:"woodfarm_cycle"`     // Turns between wood farm deliveries
	WoodYield        int            `yaml:"wood_yield"`         // Wood delivered per completed cycle
	SellPrice        int            `yaml:"sell_price"`         // Coin per sold Hot output
	BuildTimes       map[string]int `yaml:"build_times"`        // Construction time by variant name
	DefaultBuildTime int            `yaml:"default_build_time"` // Construction time of unlisted variants
}

// DefaultRules returns the standard economy.
func DefaultRules() Rules {
	return Rules{
		HubLogistics:    10,
		HubBuilders:     3,
		HubBuildTime:    5,
		HubWoodCap:      100,
		StartWood:       10,
		HotCycle:        5,
		WoodCutterCycle: 3,
		WoodFarmCycle:   5,
		WoodYield:       1,
		SellPrice:       10,
		BuildTimes: map[string]int{
			cell.Unused.String():     2,
			cell.Hot.String():        4,
			cell.Feeder.String():     1,
			cell.Seller.String():     1,
			cell.Insulation.String(): 2,
			cell.WoodCutter.String(): 3,
			cell.WoodFarm.String():   4,
			cell.Road.String():       1,
			cell.Hub.String():        5,
		},
		DefaultBuildTime: 4,
	}
}

// BuildTime returns the construction time of v, at least one turn.
func (r Rules) BuildTime(v cell.Variant) int {
	t, ok := r.BuildTimes[v.String()]
	if !ok {
		t = r.DefaultBuildTime
	}
	if t < 1 {
		return 1
	}
	return t
}

// HubLedger returns the ledger of a freshly placed hub.
func (r Rules) HubLedger() resource.Ledger {
	return resource.NewLedger().
		Full(resource.LogisticsPoints, r.HubLogistics).
		Full(resource.Builders, r.HubBuilders).
		Full(resource.BuildTime, r.HubBuildTime).
		WithSlot(resource.Wood, 0, r.HubWoodCap)
}
