package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cuongbtq/jobfeed/internal/domain"
	"github.com/cuongbtq/jobfeed/internal/sanitize"
)

// Selectors lists, per field, the CSS selectors tried in order. The first
// selector yielding a non-empty value wins.
type Selectors struct {
	Title        []string
	Company      []string
	Logo         []string
	Location     []string
	Salary       []string
	JobType      []string
	Category     []string
	Description  []string
	Requirements []string
	Benefits     []string
	Skills       []string
	Expiry       []string
	Posted       []string
	Email        []string
	Phone        []string
}

// DefaultSelectors covers the layouts of the common Vietnamese job boards.
var DefaultSelectors = Selectors{
	Title:        []string{"h1.job-title", ".job-detail__info--title", ".job-detail__title", ".job-title", "h1"},
	Company:      []string{".company-name", ".employer-name", ".job-detail__company--name", "[itemprop=hiringOrganization] [itemprop=name]", ".company-title"},
	Logo:         []string{".company-logo img", ".employer-logo img", "img.logo"},
	Location:     []string{".job-location", ".location", "[itemprop=jobLocation]", ".job-detail__info--address"},
	Salary:       []string{".salary", ".job-salary", ".job-detail__info--salary", "[itemprop=baseSalary]"},
	JobType:      []string{".job-type", ".working-form", "[itemprop=employmentType]"},
	Category:     []string{".job-category", ".industry", "[itemprop=industry]", ".breadcrumb li:last-child"},
	Description:  []string{".job-description", ".job-detail__information-detail--content", "[itemprop=description]", "#job-description"},
	Requirements: []string{".job-requirements li", ".requirements li", "#job-requirements li"},
	Benefits:     []string{".job-benefits li", ".benefits li", "#job-benefits li"},
	Skills:       []string{".job-skills .tag", ".skills li", ".skill-tag"},
	Expiry:       []string{".deadline", ".job-deadline", ".expiry-date", "[itemprop=validThrough]"},
	Posted:       []string{".posted-date", ".job-posted", "[itemprop=datePosted]"},
	Email:        []string{"a[href^='mailto:']"},
	Phone:        []string{"a[href^='tel:']"},
}

// Extractor turns one HTML document into a RawListing.
type Extractor struct {
	selectors Selectors
	sanitizer *sanitize.Sanitizer
}

// NewExtractor creates an extractor with the given selector table
func NewExtractor(selectors Selectors) *Extractor {
	return &Extractor{selectors: selectors, sanitizer: sanitize.New()}
}

// Extract returns nil when the document cannot be parsed or lacks a title
// or company name. It never panics on malformed input.
func (e *Extractor) Extract(sourceURL, html string) (listing *domain.RawListing) {
	defer func() {
		if r := recover(); r != nil {
			listing = nil
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	title := e.firstText(doc, e.selectors.Title)
	company := e.firstText(doc, e.selectors.Company)
	if title == "" || company == "" {
		return nil
	}

	return &domain.RawListing{
		SourceURL:    sourceURL,
		Title:        title,
		CompanyName:  company,
		LogoURL:      resolveURL(sourceURL, firstAttr(doc, e.selectors.Logo, "src")),
		LocationText: e.firstText(doc, e.selectors.Location),
		SalaryText:   e.firstText(doc, e.selectors.Salary),
		JobTypeText:  e.firstText(doc, e.selectors.JobType),
		CategoryText: e.firstText(doc, e.selectors.Category),
		Description:  e.firstHTMLText(doc, e.selectors.Description),
		Requirements: e.allText(doc, e.selectors.Requirements),
		Benefits:     e.allText(doc, e.selectors.Benefits),
		Skills:       e.allText(doc, e.selectors.Skills),
		ExpiryText:   e.firstText(doc, e.selectors.Expiry),
		PostedText:   e.firstText(doc, e.selectors.Posted),
		ContactEmail: hrefValue(firstAttr(doc, e.selectors.Email, "href"), "mailto:"),
		ContactPhone: hrefValue(firstAttr(doc, e.selectors.Phone, "href"), "tel:"),
	}
}

func (e *Extractor) firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := e.sanitizer.Inline(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func (e *Extractor) firstHTMLText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		inner, err := doc.Find(sel).First().Html()
		if err != nil || inner == "" {
			continue
		}
		// a space before every tag keeps adjacent blocks from running together
		if text := e.sanitizer.Inline(strings.ReplaceAll(inner, "<", " <")); text != "" {
			return text
		}
	}
	return ""
}

func (e *Extractor) allText(doc *goquery.Document, selectors []string) []string {
	for _, sel := range selectors {
		var items []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := e.sanitizer.Inline(s.Text()); text != "" {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			return items
		}
	}
	return []string{}
}

func firstAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func hrefValue(href, scheme string) string {
	if !strings.HasPrefix(strings.ToLower(href), scheme) {
		return ""
	}
	v := href[len(scheme):]
	if i := strings.IndexByte(v, '?'); i >= 0 {
		v = v[:i]
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		v = unescaped
	}
	return strings.TrimSpace(v)
}

func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil || refURL.IsAbs() {
		return refURL.String()
	}
	return baseURL.ResolveReference(refURL).String()
}
