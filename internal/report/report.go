// Package report renders the exportable health report from the
// prediction log.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/carescan/carescan/internal/store"
)

// linesPerPage bounds a page before a break is inserted, matching the
// printable area of the exported document.
const linesPerPage = 50

// Report is the rendered result: one string per page.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Pages       []string  `json:"pages"`
	Records     int       `json:"records"`
}

// Filename returns the canonical export name for the report date.
func (r Report) Filename() string {
	return fmt.Sprintf("CareScan_Report_%s.txt", r.GeneratedAt.Format("2006-01-02"))
}

// Text joins all pages with form feeds.
func (r Report) Text() string {
	return strings.Join(r.Pages, "\f")
}

type builder struct {
	pages []string
	cur   []string
}

func (b *builder) line(s string) {
	if len(b.cur) >= linesPerPage {
		b.page()
	}
	b.cur = append(b.cur, s)
}

func (b *builder) page() {
	b.pages = append(b.pages, strings.Join(b.cur, "\n"))
	b.cur = nil
}

// Generate renders every prediction record into a paginated report.
// Records render in the order given, so the newest entry comes first.
func Generate(preds []store.PredictionRecord, now time.Time) Report {
	b := &builder{}

	b.line("CareScan Health Report")
	b.line(fmt.Sprintf("Generated: %s", now.Format("1/2/2006, 3:04:05 PM")))
	b.line("")

	if len(preds) == 0 {
		b.line("No predictions available.")
	}

	for i, pred := range preds {
		b.line(fmt.Sprintf("%d. %s", i+1, pred.Type))
		b.line(fmt.Sprintf("  Date: %s", displayTime(pred.Timestamp)))

		result := pred.Result
		if result == "" {
			result = "N/A"
		}
		b.line(fmt.Sprintf("  Result: %s", result))

		if len(pred.Parameters) > 0 {
			b.line("  Parameters:")
			keys := make([]string, 0, len(pred.Parameters))
			for k := range pred.Parameters {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				b.line(fmt.Sprintf("    %s: %s", k, pred.Parameters[k]))
			}
		}

		if pred.Details != "" {
			b.line(fmt.Sprintf("  Details: %s", pred.Details))
		}
		b.line("")
	}

	b.page()

	return Report{
		GeneratedAt: now,
		Pages:       b.pages,
		Records:     len(preds),
	}
}

func displayTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("1/2/2006, 3:04:05 PM")
}
