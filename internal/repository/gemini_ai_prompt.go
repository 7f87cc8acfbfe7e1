package repository

import (
	"fmt"
	"strings"

	"deal-checker/internal/dto"
	"deal-checker/pkg/utils"
)

func promptAssessListing(req dto.ProducerRequest) string {
	var sb strings.Builder
	l := req.Listing

	sb.WriteString("You are a U.S. used-car market analyst. Assess the listing below for a U.S. consumer, using USD and miles.\n\n")

	sb.WriteString("### Listing\n\"\"\"\n")
	sb.WriteString(utils.SafeText(l.Description))
	sb.WriteString("\n\"\"\"\n")
	if l.VIN != "" {
		sb.WriteString(fmt.Sprintf("VIN: %s\n", strings.ToUpper(strings.TrimSpace(l.VIN))))
	}
	if l.Location != "" {
		sb.WriteString(fmt.Sprintf("ZIP or state: %s\n", l.Location))
	}
	if l.SellerType != "" {
		sb.WriteString(fmt.Sprintf("Seller type: %s\n", l.SellerType))
	}
	if l.PriceUSD > 0 {
		sb.WriteString(fmt.Sprintf("Asking price (USD): %.0f\n", l.PriceUSD))
	}
	if req.HistoricalNote != "" {
		sb.WriteString(fmt.Sprintf("Historical note: %s\n", req.HistoricalNote))
	}

	sb.WriteString(`
### Task
Estimate market facts for this exact vehicle. Do not invent a fact you cannot infer; leave it null and list the factor in "missing_factors".
- price_stats: comparable asking prices for the same year/model/trim in the region (median, p25, p75).
- mileage_stats: typical odometer for the model year (median, std).
- tco_year_usd: annual fuel/energy + insurance + maintenance.
- market_trend_24m_pct: expected change of comparable prices over 24 months.
- depreciation_brand_pct_per_year: typical yearly depreciation for this brand/model.
- vehicle_facts: what the ad states or strongly implies. title_status is one of clean, rebuilt, salvage, branded, flood, lemon, unknown.
- weights: optional importance (0-1) you would give each factor for this listing.
- deal_score: your overall 0-100 opinion; deal_score_llm_adj_hint: one of strong_negative, negative, slight_negative, neutral, slight_positive, positive, strong_positive.

Apply silently: salvage/rebuilt titles are high risk; a price 30% below fair suggests a branded title or flood damage; snow/rust belt ZIPs imply corrosion risk.

### Output
Return only valid JSON with exactly these keys. Replace every null with your value, and leave null what you cannot estimate:
{
  "deal_score": null,
  "roi_forecast_24m": {"expected": null, "optimistic": null, "pessimistic": null},
  "price_stats": {"median": null, "p25": null, "p75": null},
  "mileage_stats": {"median": null, "std": null},
  "tco_year_usd": null,
  "market_trend_24m_pct": null,
  "depreciation_brand_pct_per_year": null,
  "ask_price_usd": null,
  "vehicle_facts": {
    "title_status": null, "accidents": null, "owners": null, "miles": null, "state_or_zip": null,
    "rarity_index": null, "options_value_usd": null, "days_on_market": null, "dealer_reputation": null, "year": null
  },
  "weights": {},
  "missing_factors": [],
  "deal_score_llm_adj_hint": "neutral"
}
`)
	return sb.String()
}
