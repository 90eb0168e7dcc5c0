package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// Unit multipliers for salary amounts, all expressed in VND.
const (
	unitMillion  = 1_000_000
	unitThousand = 1_000
	// usdToVND is a fixed approximate rate; salaries are indicative only.
	usdToVND = 23_000
	// bareMillionCeiling: a bare number below this is read as millions,
	// since sources often write "10 - 15" for 10-15 triệu.
	bareMillionCeiling = 100_000
	// maxSalaryVND bounds a parsed amount; anything larger is treated as unparseable.
	maxSalaryVND = 1e15
)

var negotiableKeywords = []string{"thỏa thuận", "thoả thuận", "negotiable", "negotiate", "deal"}

var (
	thousandsSepRe = regexp.MustCompile(`(\d)[.,](\d{3})\b`)
	decimalCommaRe = regexp.MustCompile(`(\d),(\d)`)
	rangeRe        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-|–|—|~)\s*\$?\s*(\d+(?:\.\d+)?)`)
	numberRe       = regexp.MustCompile(`\d+(?:\.\d+)?`)

	millionTokenRe  = regexp.MustCompile(`(?:^|[^\p{L}])tr(?:[^\p{L}]|$)`)
	thousandTokenRe = regexp.MustCompile(`(?:^|[^\p{L}])k(?:[^\p{L}]|$)`)
)

// Salary is the structured form of a free-text salary.
type Salary struct {
	Min  *int64
	Max  *int64
	Text string
}

// ParseSalary turns Vietnamese or mixed-format salary text into a VND range.
// The heuristic is lossy by nature; ambiguous inputs such as "10-15" resolve
// to millions. Text is returned in NFC.
func ParseSalary(text string) Salary {
	original := norm.NFC.String(strings.TrimSpace(text))
	lower := strings.ToLower(original)

	for _, kw := range negotiableKeywords {
		if strings.Contains(lower, kw) {
			return Salary{Text: domain.NegotiableSalaryText}
		}
	}

	cleaned := stripThousandsSeparators(lower)
	cleaned = decimalCommaRe.ReplaceAllString(cleaned, "$1.$2")

	if m := rangeRe.FindStringSubmatch(cleaned); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			min, okLo := scaleSalary(lo, cleaned)
			max, okHi := scaleSalary(hi, cleaned)
			if !okLo || !okHi {
				return Salary{Text: original}
			}
			return Salary{Min: &min, Max: &max, Text: original}
		}
	}

	if m := numberRe.FindString(cleaned); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			min, ok := scaleSalary(v, cleaned)
			if !ok {
				return Salary{Text: original}
			}
			return Salary{Min: &min, Text: original}
		}
	}

	return Salary{Text: original}
}

func stripThousandsSeparators(s string) string {
	for {
		next := thousandsSepRe.ReplaceAllString(s, "$1$2")
		if next == s {
			return s
		}
		s = next
	}
}

// scaleSalary applies the unit found anywhere in text to n. It reports false
// when the scaled amount is not a plausible VND value.
func scaleSalary(n float64, text string) (int64, bool) {
	var mult float64
	switch {
	case strings.Contains(text, "triệu") || millionTokenRe.MatchString(text):
		mult = unitMillion
	case strings.Contains(text, "$") || strings.Contains(text, "usd"):
		mult = usdToVND
	case strings.Contains(text, "nghìn") || strings.Contains(text, "ngàn") || thousandTokenRe.MatchString(text):
		mult = unitThousand
	case strings.Contains(text, "vnd") || strings.Contains(text, "vnđ") || strings.Contains(text, "đồng"):
		mult = 1
	case n < bareMillionCeiling:
		mult = unitMillion
	default:
		mult = 1
	}
	v := math.Round(n * mult)
	if math.IsNaN(v) || math.IsInf(v, 0) || v > maxSalaryVND {
		return 0, false
	}
	return int64(v), true
}
