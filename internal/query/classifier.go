// Package query answers natural-language questions about extracted
// stakeholders over two paths: a precise path that compiles questions into
// graph queries, and a semantic path that retrieves similar documents and
// answers from them. A pattern classifier picks the primary path and at
// most one cross-path fallback runs when the primary comes up empty.
package query

import (
	"regexp"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// classifierRule is one ordered pattern tier. Rules are checked top to
// bottom; the first match wins.
type classifierRule struct {
	name       string
	re         *regexp.Regexp
	route      model.QueryRoute
	confidence float64
}

// defaultConfidence is assigned when no pattern matches; the question falls
// to the semantic path with a flagged weak verdict.
const defaultConfidence = 0.6

var classifierRules = []classifierRule{
	{
		name:       "count_stakeholders",
		re:         regexp.MustCompile(`(?i)\b(how many|count)\b.*\b(stakeholder|people|person|organization)`),
		route:      model.RoutePrecise,
		confidence: 0.95,
	},
	{
		name:       "conjunctive_find",
		re:         regexp.MustCompile(`(?i)\b(find|show|list|who (are|is)|get)\b.*\b(both\b.*\band|and|grouped by|sorted by)\b`),
		route:      model.RoutePrecise,
		confidence: 0.9,
	},
	{
		name:       "superlative",
		re:         regexp.MustCompile(`(?i)\b(most|least|largest|biggest|highest|lowest|more than|fewer than)\b`),
		route:      model.RoutePrecise,
		confidence: 0.85,
	},
	{
		name:       "role_lookup",
		re:         regexp.MustCompile(`(?i)\bwhat\b.*\b(role|position)\b.*\bof\b`),
		route:      model.RoutePrecise,
		confidence: 0.85,
	},
	{
		name:       "explanation",
		re:         regexp.MustCompile(`(?i)^\s*(why|how does|how do|explain|describe|summarize|summarise)\b`),
		route:      model.RouteSemantic,
		confidence: 0.85,
	},
	{
		name:       "relationship",
		re:         regexp.MustCompile(`(?i)\b(relate[ds]? to|involved (in|with)|responsible for|concerns?)\b`),
		route:      model.RouteSemantic,
		confidence: 0.85,
	},
	{
		name:       "lookup",
		re:         regexp.MustCompile(`(?i)\b(find|show|list|who (are|is)|get)\b`),
		route:      model.RouteSemantic,
		confidence: 0.85,
	},
}

// Classifier routes questions by ordered pattern matching. Precise patterns
// win over semantic ones because they sit higher in the rule list.
type Classifier struct {
	rules []classifierRule
}

// NewClassifier returns the default rule set.
func NewClassifier() *Classifier {
	return &Classifier{rules: classifierRules}
}

// Classify returns the route verdict for a question. No match yields a
// flagged default: semantic, low confidence.
func (c *Classifier) Classify(question string) model.QueryClassification {
	for _, rule := range c.rules {
		if rule.re.MatchString(question) {
			return model.QueryClassification{
				Question:   question,
				Route:      rule.route,
				Confidence: rule.confidence,
				Pattern:    rule.name,
			}
		}
	}
	return model.QueryClassification{
		Question:   question,
		Route:      model.RouteSemantic,
		Confidence: defaultConfidence,
		Default:    true,
	}
}
