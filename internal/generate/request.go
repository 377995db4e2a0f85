// Package generate turns a post request into generated content through the
// remote generation service, one outstanding call at a time.
package generate

import "strings"

// Form is the loosely typed input as it arrives from the dashboard form or CLI.
type Form struct {
	Topic             string   `json:"topic"`
	WritingStyles     []string `json:"writing_styles"`
	Industries        []string `json:"industries"`
	JobDescriptions   []string `json:"job_descriptions"`
	ContentCategories []string `json:"content_categories"`
	PostingGoals      []string `json:"posting_goals"`
	CustomCTA         string   `json:"custom_cta"`
	FineTuningNotes   string   `json:"fine_tuning_notes"`
}

type Preferences struct {
	WritingStyles     []WritingStyle
	Industries        []Industry
	JobDescriptions   []string
	ContentCategories []ContentCategory
	PostingGoals      []PostingGoal
	CustomCTA         string
	FineTuningNotes   string
}

// Request is a validated generation request.
type Request struct {
	Topic       string
	Preferences Preferences
}

// Parse validates a form against the closed option lists and returns the
// typed request.
func (f Form) Parse() (Request, error) {
	req := Request{Topic: strings.TrimSpace(f.Topic)}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}

	var err error
	p := &req.Preferences
	if p.WritingStyles, err = parseOptions("writing_styles", f.WritingStyles, WritingStyles); err != nil {
		return Request{}, err
	}
	if p.Industries, err = parseOptions("industries", f.Industries, Industries); err != nil {
		return Request{}, err
	}
	if p.ContentCategories, err = parseOptions("content_categories", f.ContentCategories, ContentCategories); err != nil {
		return Request{}, err
	}
	if p.PostingGoals, err = parseOptions("posting_goals", f.PostingGoals, PostingGoals); err != nil {
		return Request{}, err
	}

	p.JobDescriptions = make([]string, 0, len(f.JobDescriptions))
	for _, jd := range f.JobDescriptions {
		if jd = strings.TrimSpace(jd); jd != "" {
			p.JobDescriptions = append(p.JobDescriptions, jd)
		}
	}
	p.CustomCTA = strings.TrimSpace(f.CustomCTA)
	p.FineTuningNotes = strings.TrimSpace(f.FineTuningNotes)
	return req, nil
}

// Validate is the synchronous guard applied before any service call.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return &ValidationError{Field: "topic", Message: "Topic is required"}
	}
	return nil
}

type wireRequest struct {
	Topic           string          `json:"topic"`
	UserPreferences wirePreferences `json:"userPreferences"`
}

// Arrays are always present on the wire, empty rather than null.
type wirePreferences struct {
	WritingStyles     []string `json:"writing_styles"`
	Industries        []string `json:"industries"`
	JobDescriptions   []string `json:"job_descriptions"`
	ContentCategories []string `json:"content_categories"`
	PostingGoals      []string `json:"posting_goals"`
	CustomCTA         string   `json:"custom_cta"`
	FineTuningNotes   string   `json:"fine_tuning_notes"`
}

func (r Request) wire() wireRequest {
	p := r.Preferences
	jobs := make([]string, 0, len(p.JobDescriptions))
	jobs = append(jobs, p.JobDescriptions...)
	return wireRequest{
		Topic: strings.TrimSpace(r.Topic),
		UserPreferences: wirePreferences{
			WritingStyles:     toStrings(p.WritingStyles),
			Industries:        toStrings(p.Industries),
			JobDescriptions:   jobs,
			ContentCategories: toStrings(p.ContentCategories),
			PostingGoals:      toStrings(p.PostingGoals),
			CustomCTA:         p.CustomCTA,
			FineTuningNotes:   p.FineTuningNotes,
		},
	}
}
