// internal/service/geography.go
package service

import (
	"sort"
	"strconv"
	"strings"
)

type zipRange struct {
	lo, hi int
	state  string
}

// zip3Ranges maps the first three digits of a ZIP code to a state. Sorted by lo.
var zip3Ranges = []zipRange{
	{5, 5, "NY"},
	{10, 27, "MA"}, {28, 29, "RI"}, {30, 38, "NH"}, {39, 49, "ME"}, {50, 59, "VT"},
	{60, 69, "CT"}, {70, 89, "NJ"},
	{100, 149, "NY"}, {150, 196, "PA"}, {197, 199, "DE"},
	{200, 200, "DC"}, {201, 201, "VA"}, {202, 205, "DC"}, {206, 219, "MD"},
	{220, 246, "VA"}, {247, 268, "WV"}, {270, 289, "NC"}, {290, 299, "SC"},
	{300, 319, "GA"}, {320, 349, "FL"}, {350, 369, "AL"}, {370, 385, "TN"},
	{386, 397, "MS"}, {398, 399, "GA"},
	{400, 427, "KY"}, {430, 459, "OH"}, {460, 479, "IN"}, {480, 499, "MI"},
	{500, 528, "IA"}, {530, 549, "WI"}, {550, 567, "MN"}, {569, 569, "DC"},
	{570, 577, "SD"}, {580, 588, "ND"}, {590, 599, "MT"},
	{600, 629, "IL"}, {630, 658, "MO"}, {660, 679, "KS"}, {680, 693, "NE"},
	{700, 715, "LA"}, {716, 729, "AR"}, {730, 732, "OK"}, {733, 733, "TX"},
	{734, 749, "OK"}, {750, 799, "TX"},
	{800, 816, "CO"}, {820, 831, "WY"}, {832, 838, "ID"}, {840, 847, "UT"},
	{850, 865, "AZ"}, {870, 884, "NM"}, {885, 885, "TX"}, {889, 898, "NV"},
	{900, 961, "CA"}, {967, 968, "HI"}, {970, 979, "OR"}, {980, 994, "WA"},
	{995, 999, "AK"},
}

var stateRegion = map[string]string{}

func init() {
	for region, states := range map[string][]string{
		"Northeast": {"CT", "ME", "MA", "NH", "RI", "VT", "NJ", "NY", "PA"},
		"Midwest":   {"IL", "IN", "MI", "OH", "WI", "IA", "KS", "MN", "MO", "NE", "ND", "SD"},
		"South":     {"DE", "DC", "FL", "GA", "MD", "NC", "SC", "VA", "WV", "AL", "KY", "MS", "TN", "AR", "LA", "OK", "TX"},
		"West":      {"AZ", "CO", "ID", "MT", "NV", "NM", "UT", "WY", "AK", "CA", "HI", "OR", "WA"},
	} {
		for _, s := range states {
			stateRegion[s] = region
		}
	}
}

// StateForZip returns the two-letter state for a 5-digit (or ZIP+4) code, or "".
func StateForZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if len(zip) < 5 {
		return ""
	}
	for _, r := range zip[:5] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	prefix, err := strconv.Atoi(zip[:3])
	if err != nil {
		return ""
	}
	i := sort.Search(len(zip3Ranges), func(i int) bool { return zip3Ranges[i].hi >= prefix })
	if i < len(zip3Ranges) && zip3Ranges[i].lo <= prefix {
		return zip3Ranges[i].state
	}
	return ""
}

// RegionForZip returns the census region for a ZIP code, or "" when unknown.
func RegionForZip(zip string) string {
	return stateRegion[StateForZip(zip)]
}
