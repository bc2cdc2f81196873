package fulfillment

import "strings"

// Canonical size tokens.
const (
	SizeOneSize = "ONE SIZE"
	SizeOSFA    = "OSFA"
	// SizeQty is the single-quantity sentinel used for non-apparel line items.
	SizeQty = "qty"
)

// canonicalSizes maps vendor and ShopVox size spellings onto the merge-key vocabulary.
var canonicalSizes = map[string]string{
	"XSM":               "XS",
	"X-SMALL":           "XS",
	"SM":                "S",
	"SMALL":             "S",
	"MED":               "M",
	"MEDIUM":            "M",
	"LG":                "L",
	"LARGE":             "L",
	"XLG":               "XL",
	"X-LARGE":           "XL",
	"XXL":               "2XL",
	"2X-LARGE":          "2XL",
	"XXXL":              "3XL",
	"3X-LARGE":          "3XL",
	"XXXXL":             "4XL",
	"4X-LARGE":          "4XL",
	"OS":                SizeOneSize,
	"OSFA":              SizeOneSize,
	"ONE SIZE FITS ALL": SizeOneSize,
	"QTY":               SizeQty,
}

type aliasGroup struct {
	key      string
	synonyms []string
}

// sizeAliasGroups is used only for matching requested sizes against live vendor columns.
// Order matters: ExpandSizeAliases walks it top to bottom.
var sizeAliasGroups = []aliasGroup{
	{"XS", []string{"XSM", "X-SMALL"}},
	{"S", []string{"SM", "SMALL"}},
	{"M", []string{"MED", "MEDIUM"}},
	{"L", []string{"LG", "LARGE"}},
	{"XL", []string{"X-LARGE", "XLG"}},
	{"2XL", []string{"XXL", "2X-LARGE"}},
	{"3XL", []string{"XXXL", "3X-LARGE"}},
	{"4XL", []string{"XXXXL", "4X-LARGE"}},
	{"5XL", []string{"XXXXXL", "5X-LARGE"}},
	{"6XL", []string{"XXXXXXL", "6X-LARGE"}},
	{"7XL", []string{"XXXXXXXL", "7X-LARGE"}},
	{"8XL", []string{"XXXXXXXXL", "8X-LARGE"}},
	{"9XL", []string{"XXXXXXXXXL", "9X-LARGE"}},
	{SizeOneSize, []string{"OS", SizeOSFA}},
	{SizeOSFA, []string{SizeOneSize, "OS"}},
}

var sizeRanks = map[string]int{
	"XS":        1,
	"S":         2,
	"M":         3,
	"L":         4,
	"XL":        5,
	"2XL":       6,
	"3XL":       7,
	"4XL":       8,
	SizeOneSize: 100,
	SizeQty:     999,
}

// defaultSizeRank places unknown sizes between the lettered sizes and ONE SIZE.
const defaultSizeRank = 50

// NormalizeSize canonicalizes a free-text size label.
// Empty labels become SizeQty; unknown labels come back trimmed and upper-cased.
func NormalizeSize(label string) string {
	u := strings.ToUpper(strings.TrimSpace(label))
	if u == "" {
		return SizeQty
	}
	if canonical, ok := canonicalSizes[u]; ok {
		return canonical
	}
	return u
}

// ExpandSizeAliases returns the label followed by every spelling a vendor might use
// for the same size. The first element is always the trimmed, upper-cased label.
func ExpandSizeAliases(label string) []string {
	u := strings.ToUpper(strings.TrimSpace(label))
	seen := map[string]struct{}{u: {}}
	variants := []string{u}

	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		variants = append(variants, s)
	}

	for _, g := range sizeAliasGroups {
		if !g.matches(u) {
			continue
		}
		add(g.key)
		for _, s := range g.synonyms {
			add(s)
		}
	}
	return variants
}

func (g aliasGroup) matches(u string) bool {
	if u == g.key {
		return true
	}
	for _, s := range g.synonyms {
		if u == s {
			return true
		}
	}
	return false
}

// SizeRank orders canonical sizes for display.
func SizeRank(size string) int {
	if r, ok := sizeRanks[size]; ok {
		return r
	}
	return defaultSizeRank
}
