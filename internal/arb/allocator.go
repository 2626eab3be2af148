// Package arb computes risk-neutral stake allocations for N-way (Dutching)
// and 2-way (Surebet) arbitrage operations. All functions are pure.
package arb

import "math"

// Leg is one outcome of a Dutching allocation. Odd echoes the input; Stake
// and Payout stay zero for odds that were skipped as not yet entered.
type Leg struct {
	Odd    float64 `json:"odd"`
	Stake  float64 `json:"stake"`
	Payout float64 `json:"payout"`
}

// DutchingResult is the allocation of a total stake across N outcomes so the
// payout is identical regardless of which outcome wins.
type DutchingResult struct {
	Legs   []Leg   `json:"legs"`
	Return float64 `json:"return"` // guaranteed gross return under any winning leg
	Profit float64 `json:"profit"` // Return - total; negative for a losing book
}

// AllocateDutching distributes total across the given odds so every leg pays
// out the same amount. Odds <= 1 are treated as not yet entered and skipped.
// A zero total or no valid odds yields an all-zero result, never an error:
// that is the steady empty-form state.
func AllocateDutching(odds []float64, total float64) DutchingResult {
	res := DutchingResult{Legs: make([]Leg, len(odds))}
	for i, o := range odds {
		res.Legs[i].Odd = o
	}

	var invSum float64
	for _, o := range odds {
		if o > 1 {
			invSum += 1 / o
		}
	}
	if invSum == 0 || total <= 0 {
		return res
	}

	ret := total / invSum
	for i, o := range odds {
		if o <= 1 {
			continue
		}
		stake := ret / o
		res.Legs[i].Stake = stake
		res.Legs[i].Payout = stake * o
	}

	res.Return = ret
	res.Profit = ret - total
	return res
}

// SurebetLeg is one side of a 2-way surebet: the actual odd and the stake the
// user actually placed, which may deviate from the ideal allocation.
type SurebetLeg struct {
	Odd   float64 `json:"odd"`
	Stake float64 `json:"stake"`
}

// SurebetResult reports the ideal reallocation of the combined stake over the
// two odds. Profit is a property of the pair, not of either leg.
type SurebetResult struct {
	Total         float64    `json:"total"`
	IdealStakes   [2]float64 `json:"ideal_stakes"`
	Return        float64    `json:"return"`
	Profit        float64    `json:"profit"`
	MarginPercent float64    `json:"margin_percent"`
}

// AllocateSurebet computes the ideal stake split for two legs, taking the
// combined entered stakes as the capital to reallocate. The guaranteed
// return is the lower of the two ideal payouts, so rounding never overstates
// it. Either odd <= 1 or a zero total degrades to an all-zero result.
func AllocateSurebet(a, b SurebetLeg) SurebetResult {
	total := a.Stake + b.Stake
	res := SurebetResult{Total: total}
	if a.Odd <= 1 || b.Odd <= 1 || total <= 0 {
		return res
	}

	ideal := AllocateDutching([]float64{a.Odd, b.Odd}, total)
	res.IdealStakes = [2]float64{ideal.Legs[0].Stake, ideal.Legs[1].Stake}
	res.Return = math.Min(ideal.Legs[0].Payout, ideal.Legs[1].Payout)
	res.Profit = res.Return - total
	res.MarginPercent = res.Profit / total * 100
	return res
}
