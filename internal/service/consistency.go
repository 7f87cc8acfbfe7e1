package service

import (
	"fmt"
	"strings"

	"deal-checker/internal/model"
)

const (
	consistencyMinRecords = 3
	consistencyMinSpread  = 20.0
)

// ConsistencyNote returns a note for the producer when earlier scores for the
// same brand and model disagree by at least 20 points across three or more
// records.
func ConsistencyNote(history []model.HistoryRecord, brand, vehicleModel string) (string, bool) {
	if brand == "" || vehicleModel == "" {
		return "", false
	}
	brandKey := strings.ToLower(brand)
	modelKey := strings.ToLower(vehicleModel)

	var scores []float64
	for _, r := range history {
		if strings.ToLower(r.Brand) != brandKey || !strings.Contains(strings.ToLower(r.VehicleModel), modelKey) {
			continue
		}
		scores = append(scores, r.DealScore)
	}
	if len(scores) < consistencyMinRecords {
		return "", false
	}

	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}
	if hi-lo < consistencyMinSpread {
		return "", false
	}
	return fmt.Sprintf("prior scores for %s %s varied: %v", brand, vehicleModel, scores), true
}
