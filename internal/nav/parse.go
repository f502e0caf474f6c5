package nav

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// decimalPair matches two signed decimal numbers separated by spaces,
// commas or slashes, e.g. "-17.5361, -149.5694" or "48.38 / -4.49".
var decimalPair = regexp.MustCompile(`([-+]?\d+\.\d+)[ ,/]+([-+]?\d+\.\d+)`)

// ParsePosition extracts a latitude/longitude pair from a free-text position
// descriptor. Only decimal-degree pairs are understood; sexagesimal notation
// such as 17°32'S / 149°34'W yields ok == false. Coordinates are rounded to
// six decimals and rejected when outside the valid ranges.
func ParsePosition(text string) (pos domain.Position, ok bool) {
	m := decimalPair.FindStringSubmatch(text)
	if m == nil {
		return domain.Position{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return domain.Position{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return domain.Position{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Position{}, false
	}
	return domain.Position{
		Latitude:  decimal.NewFromFloat(lat).Round(6).InexactFloat64(),
		Longitude: decimal.NewFromFloat(lng).Round(6).InexactFloat64(),
	}, true
}
