package simulator

import "github.com/iamarketings/Operator/internal/models"

// demoConferences is shown until conference bridges are tracked.
const demoConferences = 2

type Stats struct {
	ActiveCalls          int `json:"activeCalls"`
	RegisteredExtensions int `json:"registeredExtensions"`
	TotalExtensions      int `json:"totalExtensions"`
	RegisteredTrunks     int `json:"registeredTrunks"`
	TotalTrunks          int `json:"totalTrunks"`
	ActiveConferences    int `json:"activeConferences"`
}

func ComputeStats(exts []models.Extension, trunks []models.Trunk, calls []models.Call) Stats {
	st := Stats{
		ActiveCalls:       len(calls),
		TotalExtensions:   len(exts),
		TotalTrunks:       len(trunks),
		ActiveConferences: demoConferences,
	}
	for _, e := range exts {
		if e.Status == models.ExtensionRegistered {
			st.RegisteredExtensions++
		}
	}
	for _, t := range trunks {
		if t.Status == models.TrunkRegistered {
			st.RegisteredTrunks++
		}
	}
	return st
}
