package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonDigit  = regexp.MustCompile(`\D`)
	nonAmount = regexp.MustCompile(`[^0-9.,-]`)
)

// NormalizeHS reduces an HS code to its digits. Codes of six or more digits
// are truncated to eight and lose trailing "00" subheading pairs down to six
// digits, so "0804.40.00" becomes "080440". Shorter inputs are returned as
// digits only and fail validation.
func NormalizeHS(s string) string {
	d := nonDigit.ReplaceAllString(s, "")
	if len(d) < 6 {
		return d
	}
	if len(d) > 8 {
		d = d[:8]
	}
	for len(d) > 6 && strings.HasSuffix(d, "00") {
		d = d[:len(d)-2]
	}
	return d
}

// NormalizeCountry maps the spellings of Peru to "PE" and upper-cases
// anything else.
func NormalizeCountry(s string) string {
	trimmed := strings.TrimSpace(s)
	v := strings.ToLower(trimmed)
	if v == "" {
		return ""
	}
	if v == "pe" ||
		strings.Contains(v, "peru") ||
		strings.Contains(v, "perú") ||
		strings.Contains(v, "pe (") {
		return "PE"
	}
	return strings.ToUpper(trimmed)
}

// ParseAmount reads a formatted amount such as "1.234,56", "S/ 1.500",
// "USD 18,450.00" or "12.5 kg". Characters other than digits, separators and
// the minus sign are dropped. A single comma with no dot after it is the
// decimal mark and dots before it group thousands. Otherwise commas are
// dropped and dots group thousands when every group after a dot has three
// digits; a lone dot followed by any other count is the decimal mark.
func ParseAmount(s string) (float64, bool) {
	t := nonAmount.ReplaceAllString(s, "")
	if strings.Trim(t, ".,-") == "" {
		return 0, false
	}

	number, ok := commaDecimal(t)
	if !ok {
		number = dotThousands(strings.ReplaceAll(t, ",", ""))
	}

	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func commaDecimal(t string) (string, bool) {
	i := strings.LastIndexByte(t, ',')
	if i < 0 || strings.Count(t, ",") > 1 || strings.IndexByte(t[i:], '.') >= 0 {
		return "", false
	}
	return strings.ReplaceAll(t[:i], ".", "") + "." + t[i+1:], true
}

func dotThousands(t string) string {
	groups := strings.Split(t, ".")
	if len(groups) == 1 {
		return t
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			if len(groups) == 2 {
				return t
			}
			break
		}
	}
	return strings.Join(groups, "")
}
