package analysis

import (
	"time"

	"github.com/overcastsec/smishscan/pkg/patterns"
)

// MessageRecord is one extracted message, already filtered to a single
// contact by the store layer. Text is nil when the row carried no body
// (attachment-only and unrenderable rows). Records arrive in whatever order
// the extraction query produced; nothing here assumes chronology.
type MessageRecord struct {
	ID      int64
	Text    *string
	Date    time.Time
	FromMe  bool
	Handle  string
	ChatID  string
	Service string
}

// FlaggedMessage summarizes one message that matched at least one category.
type FlaggedMessage struct {
	MessageID  int64               `json:"message_id"`
	Date       time.Time           `json:"date"`
	Preview    string              `json:"content_preview"`
	Categories []patterns.Category `json:"threat_categories"`
	FromMe     bool                `json:"is_from_me"`
}

// Result is the accumulated outcome of one analysis pass over a contact's
// messages. Indicators holds only categories that matched at least once.
type Result struct {
	TotalMessages int                       `json:"total_messages"`
	Indicators    map[patterns.Category]int `json:"threat_indicators"`
	Suspicious    []FlaggedMessage          `json:"suspicious_messages"`
	RiskScore     int                       `json:"risk_score"`
}

// previewLimit caps content previews on flagged messages.
const previewLimit = 100

// Analyze folds the classifier over a materialized message sequence.
// Records without text count toward the total but are otherwise skipped.
// Indicator counts are per message: a category counts once for a message
// regardless of how many of its patterns fired. The result carries the
// final risk score; Analyze itself is pure.
func Analyze(clf *Classifier, msgs []MessageRecord) Result {
	res := Result{
		TotalMessages: len(msgs),
		Indicators:    make(map[patterns.Category]int),
		Suspicious:    []FlaggedMessage{},
	}

	for _, msg := range msgs {
		if msg.Text == nil {
			continue
		}

		cats := clf.Classify(*msg.Text)
		if len(cats) == 0 {
			continue
		}

		for _, cat := range cats {
			res.Indicators[cat]++
		}
		res.Suspicious = append(res.Suspicious, FlaggedMessage{
			MessageID:  msg.ID,
			Date:       msg.Date,
			Preview:    preview(*msg.Text),
			Categories: cats,
			FromMe:     msg.FromMe,
		})
	}

	res.RiskScore = Score(res.Indicators, len(res.Suspicious))
	return res
}

// preview truncates text to previewLimit runes, marking the cut with "...".
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}
