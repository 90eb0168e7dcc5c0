package spam

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Default rule weights.
const (
	WeightTitleKeyword       = 50
	WeightDescriptionKeyword = 40
	WeightSuspiciousPhone    = 30
	WeightExcessiveCaps      = 20
	WeightExcessiveEmoji     = 15
	WeightTooManyURLs        = 25
	WeightShortenedURL       = 30
)

const (
	capsMinRunes   = 20
	capsMaxRatio   = 0.5
	emojiMaxCount  = 10
	urlMaxCount    = 2
	phoneMinDigits = 10
	phoneMaxDigits = 11
)

// BlacklistKeywords are scam and gambling phrases common on Vietnamese job boards.
var BlacklistKeywords = []string{
	"việc nhẹ lương cao",
	"kiếm tiền online",
	"kiếm tiền tại nhà",
	"thu nhập khủng",
	"không cần kinh nghiệm lương cao",
	"đa cấp",
	"nạp tiền",
	"đặt cọc",
	"phí giữ chỗ",
	"chuyển khoản trước",
	"làm giàu nhanh",
	"cộng tác viên online",
	"like dạo",
	"casino",
	"cá độ",
	"cờ bạc",
	"tài xỉu",
	"forex",
	"sugar baby",
}

// ShortenerDomains are link shorteners that hide the real destination.
var ShortenerDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd",
	"cutt.ly", "shorturl.at", "rebrand.ly", "tiny.cc",
}

// Submission is the user-controlled content that gets scored.
type Submission struct {
	Title       string
	Description string
	Phone       string
	// Zalo is the Zalo contact, which is a phone number in practice.
	Zalo string
}

// Rule contributes Weight to the score when Match reports true.
type Rule struct {
	Name   string
	Weight int
	Match  func(Submission) bool
}

// DefaultRules is the ordered production rule table.
func DefaultRules() []Rule {
	keywords := NewKeywordMatcher(BlacklistKeywords)
	shorteners := newShortenerMatcher(ShortenerDomains)

	return []Rule{
		{
			Name:   "blacklisted keyword in title",
			Weight: WeightTitleKeyword,
			Match:  func(s Submission) bool { return keywords.Match(s.Title) },
		},
		{
			Name:   "blacklisted keyword in description",
			Weight: WeightDescriptionKeyword,
			Match:  func(s Submission) bool { return keywords.Match(s.Description) },
		},
		{
			Name:   "suspicious phone number",
			Weight: WeightSuspiciousPhone,
			Match:  func(s Submission) bool { return SuspiciousPhone(s.Phone) || SuspiciousPhone(s.Zalo) },
		},
		{
			Name:   "excessive capital letters",
			Weight: WeightExcessiveCaps,
			Match:  func(s Submission) bool { return ExcessiveCaps(s.Description) },
		},
		{
			Name:   "excessive emoji",
			Weight: WeightExcessiveEmoji,
			Match:  func(s Submission) bool { return CountEmoji(s.Title+" "+s.Description) > emojiMaxCount },
		},
		{
			Name:   "too many links",
			Weight: WeightTooManyURLs,
			Match:  func(s Submission) bool { return len(FindURLs(s.Description)) > urlMaxCount },
		},
		{
			Name:   "shortened link",
			Weight: WeightShortenedURL,
			Match:  func(s Submission) bool { return shorteners.Match(s.Title + " " + s.Description) },
		},
	}
}

// KeywordMatcher finds any of a list of phrases, case-insensitively, on
// Unicode word boundaries.
type KeywordMatcher struct {
	re *regexp.Regexp
}

// NewKeywordMatcher compiles keywords into one alternation.
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	escaped := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			escaped = append(escaped, regexp.QuoteMeta(strings.ToLower(norm.NFC.String(kw))))
		}
	}
	if len(escaped) == 0 {
		return &KeywordMatcher{}
	}
	expr := `(?:^|[^\p{L}\p{N}])(?:` + strings.Join(escaped, "|") + `)(?:[^\p{L}\p{N}]|$)`
	return &KeywordMatcher{re: regexp.MustCompile(expr)}
}

// Match reports whether text contains any keyword.
func (m *KeywordMatcher) Match(text string) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(strings.ToLower(norm.NFC.String(collapseSpace(text))))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var urlRe = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+|\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.(?:com|net|org|vn|ly|gl|co|io|me|info|xyz|cc|at|gd|site|online|top|link)(?:/[^\s<>"']*)?`)

// FindURLs returns the links and bare domains in text.
func FindURLs(text string) []string {
	return urlRe.FindAllString(text, -1)
}

type shortenerMatcher struct {
	re *regexp.Regexp
}

func newShortenerMatcher(domains []string) *shortenerMatcher {
	escaped := make([]string, len(domains))
	for i, d := range domains {
		escaped[i] = regexp.QuoteMeta(strings.ToLower(d))
	}
	expr := `(?i)(?:^|[^a-z0-9.-])(?:` + strings.Join(escaped, "|") + `)/`
	return &shortenerMatcher{re: regexp.MustCompile(expr)}
}

func (m *shortenerMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

// SuspiciousPhone flags numbers with a foreign country code or an
// implausible number of digits for a Vietnamese phone.
func SuspiciousPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}

	var digits strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' || r == ' ' || r == '.' || r == '-' || r == '(' || r == ')':
		default:
			return true
		}
	}
	d := digits.String()

	switch {
	case strings.HasPrefix(phone, "+"):
		if !strings.HasPrefix(d, "84") {
			return true
		}
		d = "0" + d[2:]
	case strings.HasPrefix(d, "0084"):
		d = "0" + d[4:]
	case strings.HasPrefix(d, "00"):
		return true
	}

	if !strings.HasPrefix(d, "0") {
		return true
	}
	return len(d) < phoneMinDigits || len(d) > phoneMaxDigits
}

// ExcessiveCaps reports whether more than half of the letters of a text
// longer than 20 runes are upper case.
func ExcessiveCaps(text string) bool {
	if len([]rune(text)) <= capsMinRunes {
		return false
	}
	var letters, upper int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return false
	}
	return float64(upper)/float64(letters) > capsMaxRatio
}

// CountEmoji counts pictographic runes.
func CountEmoji(text string) int {
	n := 0
	for _, r := range text {
		if isEmoji(r) {
			n++
		}
	}
	return n
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x1F000 && r <= 0x1F2FF:
		return true
	}
	return false
}
