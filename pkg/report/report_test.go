package report

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/overcastsec/smishscan/pkg/analysis"
	"github.com/overcastsec/smishscan/pkg/patterns"
	"github.com/overcastsec/smishscan/pkg/timeline"
)

func sampleMeta() Meta {
	return Meta{
		Contact:     "+15551234567",
		GeneratedAt: time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC),
		Source:      "chat.db",
	}
}

func sampleResult() analysis.Result {
	return analysis.Result{
		TotalMessages: 12,
		Indicators: map[patterns.Category]int{
			patterns.CategoryGovernment:    3,
			patterns.CategorySuspiciousURL: 2,
		},
		Suspicious: []analysis.FlaggedMessage{
			{
				MessageID:  41,
				Date:       time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC),
				Preview:    "DMV notice: license suspended",
				Categories: []patterns.Category{patterns.CategoryGovernment},
			},
		},
		RiskScore: 95,
	}
}

func TestAssembleIdempotent(t *testing.T) {
	meta := sampleMeta()
	res := sampleResult()
	tl := timeline.Summarize([]time.Time{res.Suspicious[0].Date})

	a := Assemble(meta, res, tl)
	b := Assemble(meta, res, tl)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Assemble not deterministic:\nfirst  %+v\nsecond %+v", a, b)
	}
}

func TestAssembleMetadata(t *testing.T) {
	meta := sampleMeta()
	meta.ToolVersion = "0.0.0-dev"

	r := Assemble(meta, sampleResult(), nil)

	if r.Meta.ToolVersion != Version {
		t.Errorf("ToolVersion = %q, want %q (caller value must be overridden)", r.Meta.ToolVersion, Version)
	}
	if r.Meta.Contact != "+15551234567" || r.Meta.Source != "chat.db" {
		t.Errorf("Meta = %+v", r.Meta)
	}
	if r.Timeline != nil {
		t.Errorf("Timeline = %+v, want nil carried through", r.Timeline)
	}

	want := []string{
		analysis.RecommendHighRisk,
		analysis.RecommendGovernment,
		analysis.RecommendURL,
	}
	if !reflect.DeepEqual(r.Recommendations, want) {
		t.Errorf("Recommendations = %v, want %v", r.Recommendations, want)
	}
}

func TestReportJSONSurface(t *testing.T) {
	tl := timeline.Summarize([]time.Time{time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)})
	r := Assemble(sampleMeta(), sampleResult(), tl)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	for _, key := range []string{"analysis_metadata", "threat_analysis", "timeline_analysis", "recommendations"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("report JSON missing key %q", key)
		}
	}

	var meta map[string]any
	if err := json.Unmarshal(doc["analysis_metadata"], &meta); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"contact_analyzed", "analysis_timestamp", "tool_version", "database_source"} {
		if _, ok := meta[key]; !ok {
			t.Errorf("analysis_metadata missing key %q", key)
		}
	}
	if meta["tool_version"] != Version {
		t.Errorf("tool_version = %v, want %q", meta["tool_version"], Version)
	}

	var ta map[string]any
	if err := json.Unmarshal(doc["threat_analysis"], &ta); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"total_messages", "threat_indicators", "suspicious_messages", "risk_score"} {
		if _, ok := ta[key]; !ok {
			t.Errorf("threat_analysis missing key %q", key)
		}
	}

	var tld map[string]any
	if err := json.Unmarshal(doc["timeline_analysis"], &tld); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"first_message", "last_message", "total_duration", "message_frequency"} {
		if _, ok := tld[key]; !ok {
			t.Errorf("timeline_analysis missing key %q", key)
		}
	}
}

func TestReportJSONNullTimeline(t *testing.T) {
	res := analysis.Result{
		Indicators: map[patterns.Category]int{},
		Suspicious: []analysis.FlaggedMessage{},
	}

	data, err := json.Marshal(Assemble(sampleMeta(), res, nil))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if string(doc["timeline_analysis"]) != "null" {
		t.Errorf("timeline_analysis = %s, want null", doc["timeline_analysis"])
	}
	if string(doc["recommendations"]) != "[]" {
		t.Errorf("recommendations = %s, want []", doc["recommendations"])
	}
}

func TestRenderSummaryLayout(t *testing.T) {
	got := RenderSummary(Assemble(sampleMeta(), sampleResult(), nil))
	lines := strings.Split(got, "\n")

	if lines[0] != "iMessage Threat Analysis Summary" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != strings.Repeat("=", 40) {
		t.Errorf("rule = %q, want 40 equals signs", lines[1])
	}
	if lines[2] != "" {
		t.Errorf("line 3 = %q, want blank", lines[2])
	}
	if lines[3] != "Contact Analyzed: +15551234567" {
		t.Errorf("contact line = %q", lines[3])
	}
	if lines[4] != "Analysis Date: 2025-06-15T08:00:00Z" {
		t.Errorf("date line = %q", lines[4])
	}
	if lines[5] != "Risk Score: 95/100" {
		t.Errorf("score line = %q", lines[5])
	}
	if lines[7] != "Threat Indicators Found:" {
		t.Errorf("indicator header = %q", lines[7])
	}

	govIdx := indexOf(lines, "  - Government Impersonation: 3 occurrences")
	urlIdx := indexOf(lines, "  - Suspicious Urls: 2 occurrences")
	if govIdx == -1 || urlIdx == -1 {
		t.Fatalf("indicator lines missing in:\n%s", got)
	}
	if govIdx > urlIdx {
		t.Error("government line must precede suspicious-urls line")
	}

	if !strings.Contains(got, "\nSuspicious Messages: 1\n") {
		t.Errorf("missing suspicious-message count in:\n%s", got)
	}
	if !strings.Contains(got, "  • "+analysis.RecommendHighRisk+"\n") {
		t.Errorf("missing bulleted recommendation in:\n%s", got)
	}
}

func TestRenderSummaryNoIndicators(t *testing.T) {
	res := analysis.Result{
		TotalMessages: 4,
		Indicators:    map[patterns.Category]int{},
		Suspicious:    []analysis.FlaggedMessage{},
	}

	got := RenderSummary(Assemble(sampleMeta(), res, nil))

	if !strings.Contains(got, "Risk Score: 0/100") {
		t.Errorf("missing zero score in:\n%s", got)
	}
	if !strings.Contains(got, "\nSuspicious Messages: 0\n") {
		t.Errorf("missing zero suspicious count in:\n%s", got)
	}
	if strings.Contains(got, "occurrences") {
		t.Errorf("unexpected indicator line in:\n%s", got)
	}
}

func indexOf(lines []string, want string) int {
	for i, l := range lines {
		if l == want {
			return i
		}
	}
	return -1
}
