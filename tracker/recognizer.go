package tracker

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Action phrase variants, ordered by priority. The first matching
// category wins, so iteration order is the tie-break when a string
// could plausibly match more than one.
type actionPatternSet struct {
	actionType ActionType
	patterns   []*regexp.Regexp
}

var actionPatternTable = []actionPatternSet{
	{
		actionType: ActionFold,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bfold\b`),
			regexp.MustCompile(`(?i)\bfolds\b`),
			regexp.MustCompile(`(?i)\bfolded\b`),
		},
	},
	{
		actionType: ActionCheck,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcheck\b`),
			regexp.MustCompile(`(?i)\bchecks\b`),
			regexp.MustCompile(`(?i)\bchecked\b`),
		},
	},
	{
		actionType: ActionCall,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcall\b`),
			regexp.MustCompile(`(?i)\bcalls\b`),
			regexp.MustCompile(`(?i)\bcalled\b`),
		},
	},
	{
		actionType: ActionBet,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bbet\b`),
			regexp.MustCompile(`(?i)\bbets\b`),
		},
	},
	{
		actionType: ActionRaise,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\braise\b`),
			regexp.MustCompile(`(?i)\braises\b`),
			regexp.MustCompile(`(?i)\braised\b`),
			regexp.MustCompile(`(?i)\bre-raise\b`),
			regexp.MustCompile(`(?i)\breraise\b`),
		},
	},
	{
		actionType: ActionAllIn,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\ball.?in\b`),
			regexp.MustCompile(`(?i)\ballin\b`),
		},
	},
}

var amountPattern = regexp.MustCompile(`[\$€£]?\s*(\d+(?:\.\d+)?)`)
var whitespacePattern = regexp.MustCompile(`\s+`)

type correction struct {
	from string
	to   string
}

// ActionRecognizer classifies OCR text into poker actions. The misread
// correction table is an open set; OCR confusions depend on the client
// font and ship as versioned configuration.
type ActionRecognizer struct {
	corrections []correction
}

func NewActionRecognizer(corrections map[string]string) *ActionRecognizer {
	// Sorted for a deterministic application order.
	keys := make([]string, 0, len(corrections))
	for k := range corrections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]correction, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, correction{from: k, to: corrections[k]})
	}
	return &ActionRecognizer{corrections: ordered}
}

// RecognizeAction identifies the action type in OCR text. Matching is
// case-insensitive on whole words only; "folder" is not a fold.
func (r *ActionRecognizer) RecognizeAction(text string) (ActionType, bool) {
	if text == "" {
		return ActionFold, false
	}

	text = strings.TrimSpace(strings.ToLower(text))
	for _, set := range actionPatternTable {
		for _, pattern := range set.patterns {
			if pattern.MatchString(text) {
				return set.actionType, true
			}
		}
	}
	return ActionFold, false
}

// ParseAmount extracts a monetary amount from text. It strips thousands
// separators and whitespace and returns 0 when nothing parses; it never
// fails.
func (r *ActionRecognizer) ParseAmount(text string) float64 {
	if text == "" {
		return 0.0
	}

	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, " ", "")

	match := amountPattern.FindStringSubmatch(text)
	if match == nil {
		return 0.0
	}

	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0.0
	}
	return amount
}

// ParseActionWithAmount parses text like "Raises $2.50" or "Bets 150".
func (r *ActionRecognizer) ParseActionWithAmount(text string) (ActionType, bool, float64) {
	actionType, ok := r.RecognizeAction(text)
	amount := r.ParseAmount(text)
	return actionType, ok, amount
}

// NormalizeActionText collapses whitespace runs and applies the known
// OCR misread corrections as literal substring replacements.
func (r *ActionRecognizer) NormalizeActionText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.TrimSpace(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	for _, c := range r.corrections {
		text = strings.ReplaceAll(text, c.from, c.to)
	}
	return text
}

// IsVoluntaryAction reports whether the action represents a voluntary
// chip commitment. Blind posts are the only involuntary action.
func IsVoluntaryAction(actionType ActionType) bool {
	return actionType != ActionPostBlind
}
