package normalizer

import (
	"regexp"
	"strings"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// Rule maps any of its keywords to a canonical id.
type Rule struct {
	ID       string
	Keywords []string
}

// JobTypeRules is evaluated top to bottom; the first matching rule wins.
var JobTypeRules = []Rule{
	{ID: domain.JobTypeInternship, Keywords: []string{"internship", "intern", "thực tập", "thực tập sinh", "trainee"}},
	{ID: domain.JobTypePartTime, Keywords: []string{"part-time", "part time", "parttime", "bán thời gian", "theo ca", "ca gãy"}},
	{ID: domain.JobTypeFullTime, Keywords: []string{"full-time", "full time", "fulltime", "toàn thời gian", "giờ hành chính"}},
	{ID: domain.JobTypeContract, Keywords: []string{"contract", "freelance", "freelancer", "thời vụ", "hợp đồng ngắn hạn", "cộng tác viên", "ctv", "temporary"}},
	{ID: domain.JobTypeRemote, Keywords: []string{"remote", "từ xa", "làm việc tại nhà", "work from home", "wfh"}},
}

// CategoryRules is evaluated top to bottom; the first matching rule wins.
var CategoryRules = []Rule{
	{ID: "it-software", Keywords: []string{
		"it", "cntt", "công nghệ thông tin", "developer", "lập trình", "lập trình viên", "software", "phần mềm",
		"engineer", "backend", "frontend", "fullstack", "devops", "tester", "qa", "golang", "java", "python", "php", ".net",
	}},
	{ID: "marketing", Keywords: []string{"marketing", "seo", "content", "truyền thông", "quảng cáo", "brand", "social media"}},
	{ID: "sales", Keywords: []string{"sales", "sale", "bán hàng", "kinh doanh", "telesales", "business development", "account manager"}},
	{ID: "design", Keywords: []string{"design", "designer", "thiết kế", "ui/ux", "ux", "graphic", "đồ họa", "đồ hoạ"}},
	{ID: "finance", Keywords: []string{"finance", "tài chính", "kế toán", "accountant", "accounting", "ngân hàng", "banking", "kiểm toán", "audit"}},
	{ID: "hr", Keywords: []string{"hr", "human resources", "nhân sự", "tuyển dụng", "recruiter", "recruitment"}},
	{ID: "healthcare", Keywords: []string{"healthcare", "y tế", "bác sĩ", "điều dưỡng", "dược sĩ", "nha khoa", "nurse", "doctor", "pharmacist"}},
	{ID: "education", Keywords: []string{"education", "giáo dục", "giáo viên", "gia sư", "trợ giảng", "teacher", "tutor"}},
	{ID: "food-service", Keywords: []string{"f&b", "phục vụ", "nhà hàng", "cà phê", "barista", "pha chế", "đầu bếp", "phụ bếp", "waiter", "chef", "restaurant"}},
	{ID: "retail", Keywords: []string{"retail", "bán lẻ", "cửa hàng", "thu ngân", "siêu thị", "cashier", "store"}},
}

type compiledRule struct {
	id      string
	pattern *regexp.Regexp
}

// RuleTable is an ordered, compiled keyword table. Keywords match on
// Unicode word boundaries, case-insensitively.
type RuleTable struct {
	rules []compiledRule
}

// NewRuleTable compiles rules in order. Rules without keywords are ignored.
func NewRuleTable(rules []Rule) *RuleTable {
	t := &RuleTable{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		if len(r.Keywords) == 0 {
			continue
		}
		escaped := make([]string, len(r.Keywords))
		for i, kw := range r.Keywords {
			escaped[i] = regexp.QuoteMeta(strings.ToLower(norm.NFC.String(kw)))
		}
		expr := `(?:^|[^\p{L}\p{N}])(?:` + strings.Join(escaped, "|") + `)(?:[^\p{L}\p{N}]|$)`
		t.rules = append(t.rules, compiledRule{id: r.ID, pattern: regexp.MustCompile(expr)})
	}
	return t
}

// Match returns the id of the first rule matching text.
func (t *RuleTable) Match(text string) (string, bool) {
	lower := strings.ToLower(norm.NFC.String(strings.TrimSpace(text)))
	if lower == "" {
		return "", false
	}
	for _, r := range t.rules {
		if r.pattern.MatchString(lower) {
			return r.id, true
		}
	}
	return "", false
}

var (
	jobTypeTable  = NewRuleTable(JobTypeRules)
	categoryTable = NewRuleTable(CategoryRules)
)

// MapJobType resolves free-text job type (falling back to the title) to a
// canonical id, defaulting to full-time.
func MapJobType(jobTypeText, title string) string {
	if id, ok := jobTypeTable.Match(jobTypeText); ok {
		return id
	}
	if id, ok := jobTypeTable.Match(title); ok {
		return id
	}
	return domain.JobTypeFullTime
}

// MatchCategory resolves category text, then the title, through the rule
// table only.
func MatchCategory(categoryText, title string) (string, bool) {
	if id, ok := categoryTable.Match(categoryText); ok {
		return id, true
	}
	return categoryTable.Match(title)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CanonicalCategory lower-cases a free label and joins words with hyphens.
func CanonicalCategory(label string) string {
	label = strings.ToLower(norm.NFC.String(strings.TrimSpace(label)))
	label = strings.Trim(label, `."'`)
	return whitespaceRe.ReplaceAllString(label, "-")
}
