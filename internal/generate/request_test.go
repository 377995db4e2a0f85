package generate

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestForm_Parse(t *testing.T) {
	req, err := Form{
		Topic:           "  AI in healthcare ",
		WritingStyles:   []string{"Casual", "Professional", "Casual"},
		Industries:      []string{"Healthcare"},
		JobDescriptions: []string{" CTO ", "", "   "},
		PostingGoals:    []string{"Hiring"},
		CustomCTA:       " Read more ",
	}.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Topic != "AI in healthcare" {
		t.Fatalf("unexpected topic %q", req.Topic)
	}
	p := req.Preferences
	if len(p.WritingStyles) != 2 || p.WritingStyles[0] != StyleCasual || p.WritingStyles[1] != StyleProfessional {
		t.Fatalf("unexpected styles %v", p.WritingStyles)
	}
	if len(p.JobDescriptions) != 1 || p.JobDescriptions[0] != "CTO" {
		t.Fatalf("unexpected job descriptions %v", p.JobDescriptions)
	}
	if p.CustomCTA != "Read more" {
		t.Fatalf("unexpected cta %q", p.CustomCTA)
	}
}

func TestForm_Parse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		form  Form
		field string
	}{
		{"empty topic", Form{Topic: ""}, "topic"},
		{"blank topic", Form{Topic: "   "}, "topic"},
		{"unknown style", Form{Topic: "x", WritingStyles: []string{"Snarky"}}, "writing_styles"},
		{"unknown industry", Form{Topic: "x", Industries: []string{"technology"}}, "industries"},
		{"unknown category", Form{Topic: "x", ContentCategories: []string{"Memes"}}, "content_categories"},
		{"unknown goal", Form{Topic: "x", PostingGoals: []string{"Fame"}}, "posting_goals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.form.Parse()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestRequest_WireKeepsEmptyArrays(t *testing.T) {
	req, err := Form{Topic: "AI in healthcare"}.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := json.Marshal(req.wire())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(b)
	for _, want := range []string{
		`"topic":"AI in healthcare"`,
		`"writing_styles":[]`,
		`"industries":[]`,
		`"job_descriptions":[]`,
		`"content_categories":[]`,
		`"posting_goals":[]`,
		`"custom_cta":""`,
		`"fine_tuning_notes":""`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}

func TestRequest_WireFromZeroPreferences(t *testing.T) {
	// A Request built directly, not via Parse, still sends arrays.
	b, _ := json.Marshal(Request{Topic: "x"}.wire())
	if strings.Contains(string(b), "null") {
		t.Fatalf("wire body contains null: %s", b)
	}
}

func TestOptions(t *testing.T) {
	opts := Options()
	if len(opts["writing_styles"]) != 5 || len(opts["industries"]) != 6 {
		t.Fatalf("unexpected option lists: %v", opts)
	}
	if opts["content_categories"][2] != "Tips & Advice" {
		t.Fatalf("unexpected category order: %v", opts["content_categories"])
	}
}
