// Package capacity derives a trip's consumed and remaining carrying capacity
// from its current transaction set. The numbers are recomputed on every read
// and never stored, so there is no invalidation to coordinate; the only
// requirement on callers is a consistent snapshot of the trip and its
// transactions.
package capacity

import "carrygo/pkg/model"

// Report carries the derived capacity figures attached to trip
// representations returned by the listing and search endpoints.
// Volume fields are nil when the trip declares no volume limit; that is a
// different statement than a zero remaining volume.
// Remaining figures may be negative after an over-booking and are reported
// as-is: a negative remainder is a signal to surface, not to clamp away.
type Report struct {
	UsedWeight        float64  `json:"usedWeight"`
	UsedVolume        *float64 `json:"usedVolume,omitempty"`
	UsedPackages      int      `json:"usedPackages"`
	RemainingWeight   float64  `json:"remainingWeight"`
	RemainingVolume   *float64 `json:"remainingVolume,omitempty"`
	RemainingPackages int      `json:"remainingPackages"`
}

// Active returns the subsequence of transactions that hold capacity on their
// trip: status CONFIRMED or IN_PROGRESS. The membership test is a closed set,
// so statuses added in the future do not count until listed here explicitly.
func Active(transactions []*model.Transaction) []*model.Transaction {
	active := make([]*model.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.HoldsCapacity() {
			active = append(active, tx)
		}
	}
	return active
}

// Evaluate filters the transaction set down to the active ones and reduces
// them against the trip's declared totals. It is a total function: malformed
// package dimensions degrade to a zero volume contribution, never an error.
func Evaluate(trip *model.Trip, transactions []*model.Transaction) Report {
	var usedWeight float64
	var usedVolume float64
	usedPackages := 0

	for _, tx := range Active(transactions) {
		usedWeight += tx.Package.Weight
		usedVolume += volumeLiters(tx.Package)
		usedPackages++
	}

	report := Report{
		UsedWeight:        usedWeight,
		UsedPackages:      usedPackages,
		RemainingWeight:   trip.AvailableWeight - usedWeight,
		RemainingPackages: trip.MaxPackages - usedPackages,
	}

	// Volume accounting only applies when the trip declares a volume limit.
	if trip.AvailableVolume != nil {
		remainingVolume := *trip.AvailableVolume - usedVolume
		report.UsedVolume = &usedVolume
		report.RemainingVolume = &remainingVolume
	}

	return report
}

// Accepts answers whether a candidate shipment of the given weight fits:
// enough weight headroom and at least one open package slot. Volume is not
// part of the compatibility predicate.
func (r Report) Accepts(weight float64) bool {
	return r.RemainingWeight >= weight && r.RemainingPackages > 0
}

// volumeLiters converts the package's cubic-centimeter bounding box to
// liters. A package missing any dimension contributes zero volume.
func volumeLiters(p model.PackageSnapshot) float64 {
	if p.Length == nil || p.Width == nil || p.Height == nil {
		return 0
	}
	return *p.Length * *p.Width * *p.Height / 1000
}
