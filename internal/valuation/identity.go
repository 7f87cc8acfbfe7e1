package valuation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"deal-checker/internal/dto"
)

const descriptionPrefixRunes = 120

// UniqueAdID derives a stable identifier for a listing. The VIN is used when
// present; otherwise a hash of the description prefix, rounded price,
// location and seller type.
func UniqueAdID(l dto.Listing) string {
	if vin := NormalizeVIN(l.VIN); vin != "" {
		return vin
	}

	desc := []rune(normalizeText(l.Description))
	if len(desc) > descriptionPrefixRunes {
		desc = desc[:descriptionPrefixRunes]
	}
	key := fmt.Sprintf("%s|%.0f|%s|%s",
		string(desc),
		math.Round(l.PriceUSD),
		strings.ToLower(strings.TrimSpace(l.Location)),
		strings.ToLower(strings.TrimSpace(l.SellerType)),
	)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:32]
}

func NormalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
