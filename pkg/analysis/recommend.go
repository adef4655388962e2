package analysis

import "github.com/overcastsec/smishscan/pkg/patterns"

// Recommendation strings handed to analysts. The wording is part of the
// report compatibility surface consumed by downstream tooling.
const (
	RecommendHighRisk   = "HIGH RISK: Immediate action required - block contact and report to authorities"
	RecommendMediumRisk = "MEDIUM RISK: Monitor communications and avoid sharing personal information"
	RecommendGovernment = "Government impersonation detected - verify through official channels"
	RecommendFinancial  = "Financial threats identified - do not make payments without verification"
	RecommendURL        = "Suspicious URLs detected - do not click links from this contact"
)

// Recommend maps a risk score and the categories present to ordered
// guidance. The risk tier contributes at most one line (>70 high, else >40
// medium), followed by one line per high-harm category present. Rule order
// fixes the output order; each rule fires at most once, so duplicates are
// impossible.
func Recommend(riskScore int, indicators map[patterns.Category]int) []string {
	recs := []string{}

	switch {
	case riskScore > 70:
		recs = append(recs, RecommendHighRisk)
	case riskScore > 40:
		recs = append(recs, RecommendMediumRisk)
	}

	if indicators[patterns.CategoryGovernment] > 0 {
		recs = append(recs, RecommendGovernment)
	}
	if indicators[patterns.CategoryFinancial] > 0 {
		recs = append(recs, RecommendFinancial)
	}
	if indicators[patterns.CategorySuspiciousURL] > 0 {
		recs = append(recs, RecommendURL)
	}

	return recs
}
