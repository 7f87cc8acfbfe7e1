package valuation

import (
	"regexp"
	"strconv"
	"strings"
)

// zipRange is an inclusive range of three-digit ZIP prefixes.
type zipRange struct {
	lo, hi int
}

// Road-salt states where body corrosion is a known resale factor.
var corrosionBelt = map[string][]zipRange{
	"MA": {{10, 27}},
	"RI": {{28, 29}},
	"NH": {{30, 38}},
	"ME": {{39, 49}},
	"VT": {{50, 59}},
	"CT": {{60, 69}},
	"NJ": {{70, 89}},
	"NY": {{100, 149}},
	"PA": {{150, 196}},
	"OH": {{430, 459}},
	"IN": {{460, 479}},
	"MI": {{480, 499}},
	"IA": {{500, 528}},
	"WI": {{530, 549}},
	"MN": {{550, 567}},
	"IL": {{600, 629}},
}

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "DC": {},
	"FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {},
	"LA": {}, "ME": {}, "MD": {}, "MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {},
	"NE": {}, "NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {},
	"OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {}, "TN": {}, "TX": {}, "UT": {},
	"VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
}

var zipPattern = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

// locateRegion resolves a free-form location ("48201", "Detroit, MI",
// "TX 75001") to whether it lies in the corrosion belt. known is false when
// neither a ZIP code nor a US state code can be found.
func locateRegion(location string) (inBelt bool, known bool) {
	location = strings.TrimSpace(location)
	if location == "" {
		return false, false
	}

	if m := zipPattern.FindStringSubmatch(location); m != nil {
		prefix, err := strconv.Atoi(m[1][:3])
		if err == nil {
			return zipInBelt(prefix), true
		}
	}

	tokens := strings.FieldsFunc(strings.ToUpper(location), func(r rune) bool {
		return r < 'A' || r > 'Z'
	})
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if len(tok) != 2 {
			continue
		}
		if _, ok := usStates[tok]; ok {
			_, belt := corrosionBelt[tok]
			return belt, true
		}
	}
	return false, false
}

func zipInBelt(prefix int) bool {
	for _, ranges := range corrosionBelt {
		for _, r := range ranges {
			if prefix >= r.lo && prefix <= r.hi {
				return true
			}
		}
	}
	return false
}
