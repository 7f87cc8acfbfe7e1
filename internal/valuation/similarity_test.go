package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-checker/internal/dto"
	"deal-checker/internal/model"
)

func TestUniqueAdID(t *testing.T) {
	t.Run("vin is uppercased and trimmed", func(t *testing.T) {
		assert.Equal(t, "1HGCM82633A004352", UniqueAdID(dto.Listing{VIN: "  1hgcm82633a004352 ", Description: "ignored"}))
	})

	t.Run("hash is stable and short", func(t *testing.T) {
		l := dto.Listing{Description: "2015 Honda Civic  LX, one owner", PriceUSD: 9500.4, Location: "Austin, TX", SellerType: "private"}
		id := UniqueAdID(l)
		assert.Len(t, id, 32)
		assert.Equal(t, id, UniqueAdID(l))

		same := l
		same.Description = "2015 honda civic lx,   one owner"
		same.PriceUSD = 9499.6
		same.Location = " AUSTIN, TX "
		assert.Equal(t, id, UniqueAdID(same))

		other := l
		other.PriceUSD = 9900
		assert.NotEqual(t, id, UniqueAdID(other))
	})

	t.Run("only description prefix counts", func(t *testing.T) {
		prefix := ""
		for i := 0; i < 130; i++ {
			prefix += "a"
		}
		a := dto.Listing{Description: prefix + " first tail"}
		b := dto.Listing{Description: prefix + " second tail"}
		assert.Equal(t, UniqueAdID(a), UniqueAdID(b))
	})
}

func TestSimilarity(t *testing.T) {
	a := newFingerprint("2015 Honda Civic LX one owner", 10000, "Austin, TX")

	assert.InDelta(t, 1.0, similarity(a, a), 1e-12)

	b := newFingerprint("2015 Honda Civic LX one owner!", 9000, "austin, tx")
	assert.InDelta(t, 0.6+0.3*0.9+0.1, similarity(a, b), 1e-12)

	c := newFingerprint("Ford F-150 lariat", 10000, "Denver, CO")
	assert.InDelta(t, 0.3, similarity(a, c), 1e-12)

	assert.Zero(t, priceProximity(0, 100))
	assert.Zero(t, jaccard(nil, a.words))
}

func TestFindSimilar(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	desc := "2018 toyota camry se clean title 42k miles"
	history := []model.HistoryRecord{
		{UniqueAdID: "self", Description: desc, PriceUSD: 18000, Location: "tx", DealScore: 10, Timestamp: now},
		{UniqueAdID: "a", Description: desc, PriceUSD: 18000, Location: "tx", DealScore: 80, Timestamp: now},
		{UniqueAdID: "b", Description: desc, PriceUSD: 17000, Location: "tx", DealScore: 70, Timestamp: now},
		{UniqueAdID: "c", Description: "2009 nissan altima", PriceUSD: 18000, Location: "tx", DealScore: 30, Timestamp: now},
	}

	matches := findSimilar(newFingerprint(desc, 18000, "tx"), "self", history, 0.85, 5)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].record.UniqueAdID)
	assert.Equal(t, "b", matches[1].record.UniqueAdID)

	score, _ := similarAverages(matches)
	assert.InDelta(t, 75, score, 1e-9)

	top1 := findSimilar(newFingerprint(desc, 18000, "tx"), "self", history, 0.85, 1)
	require.Len(t, top1, 1)
	assert.Equal(t, "a", top1[0].record.UniqueAdID)
}

func TestLatestExact(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []model.HistoryRecord{
		{UniqueAdID: "x", DealScore: 40, Timestamp: t0.Add(time.Hour)},
		{UniqueAdID: "x", DealScore: 60, Timestamp: t0},
		{UniqueAdID: "y", DealScore: 90, Timestamp: t0.Add(2 * time.Hour)},
	}

	r, ok := latestExact("x", history)
	require.True(t, ok)
	assert.Equal(t, 40.0, r.DealScore)

	_, ok = latestExact("z", history)
	assert.False(t, ok)
}
