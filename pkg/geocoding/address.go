package geocoding

import (
	"regexp"
	"strings"
)

// civicNumberPattern matches either a leading house number ("123 Via Roma")
// or a trailing one ("Via Roma 123"). Addresses with several digit groups
// follow whichever alternative matches; that ambiguity is a known limitation
// kept on purpose.
var civicNumberPattern = regexp.MustCompile(`^(\d+)\s+(.+)$|^([^\d]+)\s+(\d+)$`)

// SplitCivicNumber extracts the civic (house) number from a free-text
// address. When no pattern matches, the street name is the trimmed input and
// the civic number is empty.
func SplitCivicNumber(raw string) (street, civic string) {
	street = strings.TrimSpace(raw)

	m := civicNumberPattern.FindStringSubmatch(raw)
	if m == nil {
		return street, ""
	}

	switch {
	case m[1] != "" && m[2] != "":
		// leading number: "123 Via Roma"
		return strings.TrimSpace(m[2]), m[1]
	case m[3] != "" && m[4] != "":
		// trailing number: "Via Roma 123"
		return strings.TrimSpace(m[3]), m[4]
	}

	return street, ""
}

var (
	duplicateCommas = regexp.MustCompile(`,(\s*,)+`)
	runsOfSpaces    = regexp.MustCompile(`\s{2,}`)
)

// CleanDisplayAddress strips the configured sub-locality fragments from a
// vendor-formatted address and tidies up the punctuation left behind.
// Administrative geocoders resolve some streets to hamlets whose name is
// locally considered noise, not an error. Applying it twice is a no-op.
func CleanDisplayAddress(formatted string, fragments []string) string {
	out := formatted
	for _, f := range fragments {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(f) + `\s*,?`)
		out = re.ReplaceAllString(out, "")
	}

	out = duplicateCommas.ReplaceAllString(out, ",")
	out = runsOfSpaces.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)
	out = strings.Trim(out, ",")

	return strings.TrimSpace(out)
}
