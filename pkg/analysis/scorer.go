package analysis

import "github.com/overcastsec/smishscan/pkg/patterns"

// Score weights. Category diversity outweighs raw volume: a campaign
// touching several threat vectors scores higher than many repeats of one
// vector, and the flat bonuses front-load the high-harm categories.
const (
	categoryWeight   = 10
	suspiciousWeight = 5

	governmentBonus    = 50
	financialBonus     = 30
	suspiciousURLBonus = 20

	maxScore = 100
)

// Score reduces indicator counts and the suspicious-message count to a risk
// score in [0,100]: 10 points per distinct category present, 5 per
// suspicious message, plus the flat bonuses, summed then clamped.
// Deterministic, order-independent, monotonic non-decreasing in each input.
// Zero input scores zero.
func Score(indicators map[patterns.Category]int, suspiciousCount int) int {
	distinct := 0
	for _, count := range indicators {
		if count > 0 {
			distinct++
		}
	}

	score := distinct*categoryWeight + suspiciousCount*suspiciousWeight
	if indicators[patterns.CategoryGovernment] > 0 {
		score += governmentBonus
	}
	if indicators[patterns.CategoryFinancial] > 0 {
		score += financialBonus
	}
	if indicators[patterns.CategorySuspiciousURL] > 0 {
		score += suspiciousURLBonus
	}

	if score > maxScore {
		return maxScore
	}
	if score < 0 {
		return 0
	}
	return score
}
