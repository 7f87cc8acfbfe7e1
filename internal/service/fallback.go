package service

import (
	"regexp"
	"strconv"
	"strings"

	"deal-checker/internal/dto"
	"deal-checker/pkg/utils"
)

var (
	pricePattern = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d{3,6})(?:\.\d{2})?\b`)
	milesPattern = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*(k)?\s*(?:miles|mi)\b`)
	yearPattern  = regexp.MustCompile(`\b(19[89]\d|20[0-4]\d)\b`)
	tokenSplit   = regexp.MustCompile(`[^\w\-]+`)
)

// FallbackAssessment builds a best-effort assessment from the ad text alone,
// for when the producer is unavailable. It reports only what the wording
// states and leaves market statistics empty.
func FallbackAssessment(l dto.Listing) *dto.RawAssessment {
	text := strings.ToLower(l.Description)
	ra := &dto.RawAssessment{
		MissingFactors: []string{"market", "mileage", "tco", "rarity", "options", "dom", "dealer_reputation"},
		AdjHint:        dto.HintNeutral,
	}

	if l.PriceUSD > 0 {
		v := l.PriceUSD
		ra.AskPriceUSD = &v
	} else if v, ok := parsePrice(text); ok {
		ra.AskPriceUSD = &v
	}

	facts := &ra.VehicleFacts
	facts.TitleStatus = titleFromText(text)
	if v, ok := parseMiles(text); ok {
		facts.Miles = &v
	}
	if y, ok := parseYear(text); ok {
		facts.Year = &y
	}
	facts.StateOrZip = l.Location

	switch {
	case strings.Contains(text, "one owner"), strings.Contains(text, "1 owner"), strings.Contains(text, "single owner"):
		facts.Owners = utils.ToPointer(1)
	}

	switch {
	case strings.Contains(text, "no accident"), strings.Contains(text, "accident free"), strings.Contains(text, "accident-free"):
		facts.Accidents = utils.ToPointer(0)
	case strings.Contains(text, "accident"):
		facts.Accidents = utils.ToPointer(1)
	}

	if strings.Contains(text, "as-is") || strings.Contains(text, "as is") {
		ra.AdjHint = dto.HintSlightNegative
	}
	return ra
}

func titleFromText(text string) dto.TitleStatus {
	for _, kw := range []string{"salvage", "rebuilt", "flood", "lemon", "branded title"} {
		if strings.Contains(text, kw) {
			return dto.ParseTitleStatus(kw)
		}
	}
	if strings.Contains(text, "clean title") || strings.Contains(text, "clear title") {
		return dto.TitleClean
	}
	return ""
}

func parsePrice(text string) (float64, bool) {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseMiles(text string) (float64, bool) {
	m := milesPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		v *= 1000
	}
	return v, true
}

func parseYear(text string) (int, bool) {
	m := yearPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	return y, err == nil
}

// GuessBrandModel reads "brand model" from the first line of the ad, skipping
// a leading model year.
func GuessBrandModel(text string) (brand, model string) {
	if text == "" {
		return "", ""
	}
	head := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])

	var toks []string
	for _, t := range tokenSplit.Split(head, -1) {
		if t != "" {
			toks = append(toks, t)
		}
	}
	if len(toks) > 0 && yearPattern.MatchString(toks[0]) && len(toks[0]) == 4 {
		toks = toks[1:]
	}
	if len(toks) < 2 {
		return "", ""
	}
	end := min(len(toks), 3)
	return toks[0], strings.Join(toks[1:end], " ")
}

// prepareListing fills brand, model and year from the ad text when the
// caller left them empty.
func prepareListing(l dto.Listing) dto.Listing {
	if l.Brand == "" || l.Model == "" {
		brand, model := GuessBrandModel(l.Description)
		if l.Brand == "" {
			l.Brand = brand
		}
		if l.Model == "" {
			l.Model = model
		}
	}
	if l.Year == 0 {
		if y, ok := parseYear(strings.SplitN(l.Description, "\n", 2)[0]); ok {
			l.Year = y
		}
	}
	l.VIN = strings.ToUpper(strings.TrimSpace(l.VIN))
	return l
}
