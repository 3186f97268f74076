package insight

import (
	"regexp"
	"sort"
	"strings"

	"github.com/meetwise-team/meeting-insights/pkg/ai"
)

var stopwords = buildStopwords("the a an and or but if then else when while to for of in on at by with from as is are was were be been being " +
	"this that those these it its i you we they he she them us our your their do did done have has had not no yes so right well like get got make made take took want wanted need needed think thought know " +
	"uh um hmm uh-huh mm-hmm yeah yep nope nah okay ok alright all right gonna wanna kinda sorta really just one two three four five thing things stuff going")

func buildStopwords(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var heuristicActionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(follow up|assign|due|deadline|next step|prepare|schedule|create|send|update|review|fix|investigate|implement|migrate|deploy|draft|plan|analyze|align|finalize)\b`),
	regexp.MustCompile(`(?i)\b(will|shall|need to|should|let's|please)\b`),
}

var heuristicDecisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bdecide(d|s|rs)?\b`),
	regexp.MustCompile(`(?i)\bagreed?\b`),
	regexp.MustCompile(`(?i)\bconclude(d|s)?\b`),
	regexp.MustCompile(`(?i)\bapproved?\b`),
	regexp.MustCompile(`(?i)\bchoose(s|n)?\b`),
	regexp.MustCompile(`(?i)\bwe will\b`),
}

// SimpleSummary bullets the longest segments as a proxy for salient
// content when no model is reachable.
func SimpleSummary(segments []ai.Segment, maxItems int) string {
	var withText []ai.Segment
	for _, s := range segments {
		if s.Text != "" {
			withText = append(withText, s)
		}
	}
	if len(withText) == 0 {
		return "No meaningful speech detected."
	}

	sort.SliceStable(withText, func(i, j int) bool { return len(withText[i].Text) > len(withText[j].Text) })
	if len(withText) > maxItems {
		withText = withText[:maxItems]
	}
	bullets := make([]string, 0, len(withText))
	for _, s := range withText {
		bullets = append(bullets, "- "+strings.TrimSpace(s.Text))
	}
	return strings.Join(bullets, "\n")
}

// SimpleTopics ranks stopword-filtered words by frequency, preferring
// longer words on ties.
func SimpleTopics(segments []ai.Segment, topK int) []string {
	counts := map[string]int{}
	total := 0
	for _, s := range segments {
		line := strings.TrimSpace(s.Text)
		if line == "" {
			continue
		}
		total += len(line) + 1
		if total > 12000 {
			break
		}
		for _, raw := range strings.Fields(line) {
			w := nonAlnum.ReplaceAllString(strings.ToLower(raw), "")
			if w == "" {
				continue
			}
			if _, ok := stopwords[w]; ok {
				continue
			}
			if isDigits(w) {
				continue
			}
			counts[w]++
		}
	}

	type wordCount struct {
		word  string
		count int
	}
	ranked := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, wordCount{w, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		if len(ranked[i].word) != len(ranked[j].word) {
			return len(ranked[i].word) > len(ranked[j].word)
		}
		return ranked[i].word < ranked[j].word
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := make([]string, 0, len(ranked))
	for _, wc := range ranked {
		out = append(out, wc.word)
	}
	return out
}

// HeuristicActionsDecisions scans segments for action and decision
// phrasing. Items need at least four words; both lists cap at twelve.
func HeuristicActionsDecisions(segments []ai.Segment) (actions, decisions []Item) {
	seenA := map[string]struct{}{}
	seenD := map[string]struct{}{}
	for _, s := range segments {
		text := strings.Join(strings.Fields(s.Text), " ")
		if text == "" || len(strings.Fields(text)) < 4 {
			continue
		}
		key := strings.ToLower(text)
		ts := FlexFloat(s.Start)

		if matchesAny(text, heuristicDecisionPatterns) {
			if _, ok := seenD[key]; !ok && len(decisions) < maxListItems {
				t := ts
				decisions = append(decisions, Item{Text: text, Timestamp: &t})
				seenD[key] = struct{}{}
			}
		}
		if matchesAny(text, heuristicActionPatterns) {
			if _, ok := seenA[key]; !ok && len(actions) < maxListItems {
				t := ts
				actions = append(actions, Item{Text: text, Timestamp: &t})
				seenA[key] = struct{}{}
			}
		}
	}
	return actions, decisions
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
