// Package dedupe removes duplicate listings by their title, company and
// location key.
package dedupe

import (
	"strings"

	"github.com/cuongbtq/jobfeed/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// Key returns the duplicate key of a job: lower(title)|lower(company)|lower(location).
func Key(job domain.NormalizedJob) string {
	return strings.Join([]string{
		keyPart(job.Title),
		keyPart(job.CompanyName),
		keyPart(job.Location),
	}, "|")
}

func keyPart(s string) string {
	return strings.ToLower(norm.NFC.String(strings.Join(strings.Fields(s), " ")))
}

// Dedupe keeps the first job per key and preserves input order.
func Dedupe(jobs []domain.NormalizedJob) []domain.NormalizedJob {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]domain.NormalizedJob, 0, len(jobs))

	for _, job := range jobs {
		k := Key(job)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, job)
	}

	return out
}
