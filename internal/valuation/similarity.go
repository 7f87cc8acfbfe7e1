package valuation

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"deal-checker/internal/model"
)

const (
	textWeight     = 0.6
	priceWeight    = 0.3
	locationWeight = 0.1
)

// fingerprint is the part of a listing used to find near-duplicates.
type fingerprint struct {
	words    map[string]bool
	price    float64
	location string
}

func newFingerprint(description string, price float64, location string) fingerprint {
	return fingerprint{
		words:    wordSet(strings.ToLower(description)),
		price:    price,
		location: strings.ToLower(strings.TrimSpace(location)),
	}
}

func recordFingerprint(r model.HistoryRecord) fingerprint {
	return newFingerprint(r.Description, r.PriceUSD, r.Location)
}

// similarity scores two listings in [0,1] from shared description words,
// price proximity and an exact location match.
func similarity(a, b fingerprint) float64 {
	loc := 0.0
	if a.location != "" && a.location == b.location {
		loc = 1
	}
	return textWeight*jaccard(a.words, b.words) +
		priceWeight*priceProximity(a.price, b.price) +
		locationWeight*loc
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}

	union := len(a)
	for w := range b {
		if !a[w] {
			union++
		}
	}

	return float64(intersection) / float64(union)
}

func priceProximity(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(a-b)/math.Max(a, b))
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(s)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?()[]{}\"'*-/")
		if w != "" {
			set[w] = true
		}
	}
	return set
}

type similarMatch struct {
	record model.HistoryRecord
	score  float64
}

// findSimilar returns up to topK records of other listings whose similarity
// to fp is at least threshold, best first. Ties keep history order.
func findSimilar(fp fingerprint, id string, history []model.HistoryRecord, threshold float64, topK int) []similarMatch {
	var matches []similarMatch
	for _, r := range history {
		if r.UniqueAdID == id {
			continue
		}
		if s := similarity(fp, recordFingerprint(r)); s >= threshold {
			matches = append(matches, similarMatch{record: r, score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// similarAverages returns the mean deal score and mean expected ROI of the
// matches.
func similarAverages(matches []similarMatch) (score, roi float64) {
	scores := make([]float64, len(matches))
	rois := make([]float64, len(matches))
	for i, m := range matches {
		scores[i] = m.record.DealScore
		rois[i] = m.record.ROIExpected
	}
	return stat.Mean(scores, nil), stat.Mean(rois, nil)
}

// latestExact returns the most recent record with the given id.
func latestExact(id string, history []model.HistoryRecord) (model.HistoryRecord, bool) {
	var (
		found  model.HistoryRecord
		exists bool
	)
	for _, r := range history {
		if r.UniqueAdID != id {
			continue
		}
		if !exists || !r.Timestamp.Before(found.Timestamp) {
			found, exists = r, true
		}
	}
	return found, exists
}
