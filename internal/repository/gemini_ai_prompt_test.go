package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-checker/internal/dto"
)

func TestPromptAssessListing_TemplateCarriesNoData(t *testing.T) {
	prompt := promptAssessListing(dto.ProducerRequest{
		Listing: dto.Listing{Description: "2017 Civic EX", VIN: " 2hgfc2f59hh000000 ", PriceUSD: 14500},
	})

	assert.Contains(t, prompt, "VIN: 2HGFC2F59HH000000")
	assert.Contains(t, prompt, "Asking price (USD): 14500")
	for _, zero := range []string{`"deal_score": 0`, `"tco_year_usd": 0`, `"accidents": 0`, `"weights": {"`} {
		assert.NotContains(t, prompt, zero)
	}

	// A producer that echoes the template back unchanged grounds nothing.
	_, template, found := strings.Cut(prompt, "### Output")
	require.True(t, found)
	ra, err := dto.ParseRawAssessment(template)
	require.NoError(t, err)

	assert.Nil(t, ra.DealScore)
	assert.Nil(t, ra.TCOYearUSD)
	assert.Nil(t, ra.AskPriceUSD)
	assert.Nil(t, ra.DepreciationPctPerYear)
	require.NotNil(t, ra.PriceStats)
	assert.Nil(t, ra.PriceStats.Median)
	assert.Nil(t, ra.VehicleFacts.Accidents)
	assert.Nil(t, ra.VehicleFacts.Miles)
	assert.Empty(t, ra.Weights)
	assert.Empty(t, ra.MissingFactors)
}
