package dto

import "strings"

type TitleStatus string

const (
	TitleClean   TitleStatus = "clean"
	TitleRebuilt TitleStatus = "rebuilt"
	TitleSalvage TitleStatus = "salvage"
	TitleBranded TitleStatus = "branded"
	TitleFlood   TitleStatus = "flood"
	TitleLemon   TitleStatus = "lemon"
	TitleUnknown TitleStatus = "unknown"
)

// ParseTitleStatus maps free-form producer wording onto the title enum.
// An empty input stays empty so callers can tell "not reported" from "unknown".
func ParseTitleStatus(s string) TitleStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "salvage"):
		return TitleSalvage
	case strings.Contains(s, "rebuilt"), strings.Contains(s, "reconstructed"), strings.Contains(s, "restored"):
		return TitleRebuilt
	case strings.Contains(s, "flood"), strings.Contains(s, "water"):
		return TitleFlood
	case strings.Contains(s, "lemon"), strings.Contains(s, "buyback"):
		return TitleLemon
	case strings.Contains(s, "brand"):
		return TitleBranded
	case strings.Contains(s, "clean"), strings.Contains(s, "clear"):
		return TitleClean
	default:
		return TitleUnknown
	}
}

// IsBranded reports whether the title carries a damage or buyback brand.
func (t TitleStatus) IsBranded() bool {
	switch t {
	case TitleRebuilt, TitleSalvage, TitleBranded, TitleFlood, TitleLemon:
		return true
	}
	return false
}

// AdjHint is the producer's seven-level sentiment about the deal.
type AdjHint string

const (
	HintStrongNegative AdjHint = "strong_negative"
	HintNegative       AdjHint = "negative"
	HintSlightNegative AdjHint = "slight_negative"
	HintNeutral        AdjHint = "neutral"
	HintSlightPositive AdjHint = "slight_positive"
	HintPositive       AdjHint = "positive"
	HintStrongPositive AdjHint = "strong_positive"
)

func ParseAdjHint(s string) AdjHint {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch AdjHint(s) {
	case HintStrongNegative, HintNegative, HintSlightNegative, HintNeutral,
		HintSlightPositive, HintPositive, HintStrongPositive:
		return AdjHint(s)
	}
	return ""
}

const (
	SellerPrivate = "private"
	SellerDealer  = "dealer"
)

const (
	ClassGreatDeal  = "Great deal"
	ClassFair       = "Fair"
	ClassOverpriced = "Overpriced"
	ClassHighRisk   = "High risk"
)
