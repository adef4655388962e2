package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/overcastsec/smishscan/pkg/patterns"
)

// RenderSummary produces the fixed-layout text form of a report. Indicator
// lines follow registry order (built-in categories first, custom categories
// sorted after); identifiers render title-cased with underscores as spaces.
func RenderSummary(r Report) string {
	var b strings.Builder

	b.WriteString("iMessage Threat Analysis Summary\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	fmt.Fprintf(&b, "Contact Analyzed: %s\n", r.Meta.Contact)
	fmt.Fprintf(&b, "Analysis Date: %s\n", r.Meta.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Risk Score: %d/100\n\n", r.ThreatAnalysis.RiskScore)

	b.WriteString("Threat Indicators Found:\n")
	for _, cat := range patterns.OrderedCategories(r.ThreatAnalysis.Indicators) {
		fmt.Fprintf(&b, "  - %s: %d occurrences\n", titleCase(string(cat)), r.ThreatAnalysis.Indicators[cat])
	}

	fmt.Fprintf(&b, "\nSuspicious Messages: %d\n\n", len(r.ThreatAnalysis.Suspicious))

	b.WriteString("Recommendations:\n")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "  • %s\n", rec)
	}

	return b.String()
}

// titleCase renders a category identifier for display: underscores become
// spaces, each word title-cased ("suspicious_urls" → "Suspicious Urls").
// A fresh Caser per call; cases.Caser is not safe for concurrent use.
func titleCase(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}
