package generate

import "fmt"

type WritingStyle string

const (
	StyleProfessional  WritingStyle = "Professional"
	StyleCasual        WritingStyle = "Casual"
	StyleAuthoritative WritingStyle = "Authoritative"
	StyleInspirational WritingStyle = "Inspirational"
	StyleEducational   WritingStyle = "Educational"
)

var WritingStyles = []WritingStyle{
	StyleProfessional, StyleCasual, StyleAuthoritative, StyleInspirational, StyleEducational,
}

type Industry string

const (
	IndustryTechnology Industry = "Technology"
	IndustryMarketing  Industry = "Marketing"
	IndustryFinance    Industry = "Finance"
	IndustryHealthcare Industry = "Healthcare"
	IndustryEducation  Industry = "Education"
	IndustryConsulting Industry = "Consulting"
)

var Industries = []Industry{
	IndustryTechnology, IndustryMarketing, IndustryFinance,
	IndustryHealthcare, IndustryEducation, IndustryConsulting,
}

type ContentCategory string

const (
	CategoryThoughtLeadership ContentCategory = "Thought Leadership"
	CategoryIndustryNews      ContentCategory = "Industry News"
	CategoryTipsAdvice        ContentCategory = "Tips & Advice"
	CategoryCaseStudy         ContentCategory = "Case Study"
	CategoryPersonalStory     ContentCategory = "Personal Story"
)

var ContentCategories = []ContentCategory{
	CategoryThoughtLeadership, CategoryIndustryNews, CategoryTipsAdvice,
	CategoryCaseStudy, CategoryPersonalStory,
}

type PostingGoal string

const (
	GoalEngagement     PostingGoal = "Engagement"
	GoalBrandAwareness PostingGoal = "Brand Awareness"
	GoalLeadGeneration PostingGoal = "Lead Generation"
	GoalNetworking     PostingGoal = "Networking"
	GoalHiring         PostingGoal = "Hiring"
)

var PostingGoals = []PostingGoal{
	GoalEngagement, GoalBrandAwareness, GoalLeadGeneration, GoalNetworking, GoalHiring,
}

// Options lists every closed option set, keyed by wire field name.
func Options() map[string][]string {
	return map[string][]string{
		"writing_styles":     toStrings(WritingStyles),
		"industries":         toStrings(Industries),
		"content_categories": toStrings(ContentCategories),
		"posting_goals":      toStrings(PostingGoals),
	}
}

// parseOptions maps raw values onto a closed list, dropping duplicates and
// keeping first-seen order. The first unknown value is reported.
func parseOptions[T ~string](field string, raw []string, allowed []T) ([]T, error) {
	out := make([]T, 0, len(raw))
	seen := make(map[T]bool, len(raw))
	for _, v := range raw {
		opt, ok := lookup(v, allowed)
		if !ok {
			return nil, &ValidationError{Field: field, Message: fmt.Sprintf("unknown option %q", v)}
		}
		if seen[opt] {
			continue
		}
		seen[opt] = true
		out = append(out, opt)
	}
	return out, nil
}

func lookup[T ~string](v string, allowed []T) (T, bool) {
	for _, a := range allowed {
		if string(a) == v {
			return a, true
		}
	}
	var zero T
	return zero, false
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, string(v))
	}
	return out
}
