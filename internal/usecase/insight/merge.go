package insight

import (
	"regexp"
	"strings"
)

const maxListItems = 12

// actionVerbs matches the verbs that make an extracted line worth
// keeping as a decision or action item.
var actionVerbs = regexp.MustCompile(`(?i)\b(will|shall|need to|let's|please|assign|follow up|prepare|schedule|create|send|update|review|fix|investigate|implement|migrate|deploy|draft|plan|analyze|align|finalize)\b`)

// CleanItems drops vague or duplicate entries: items need at least
// four words, an action verb, and a text not seen before. Capped at
// maxListItems.
func CleanItems(items []Item) []Item {
	seen := map[string]struct{}{}
	var out []Item
	for _, it := range items {
		text := strings.Join(strings.Fields(it.Text), " ")
		if text == "" {
			continue
		}
		if len(strings.Fields(text)) < 4 {
			continue
		}
		if !actionVerbs.MatchString(text) {
			continue
		}
		key := strings.ToLower(text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		it.Text = text
		out = append(out, it)
		if len(out) >= maxListItems {
			break
		}
	}
	return out
}

// MergeDuplicates collapses items with the same normalized text,
// keeping the earliest timestamp and the first non-empty owner.
func MergeDuplicates(items []Item) []Item {
	index := map[string]int{}
	var out []Item
	for _, it := range items {
		key := strings.ToLower(strings.Join(strings.Fields(it.Text), " "))
		if key == "" {
			continue
		}
		pos, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, it)
			continue
		}

		kept := &out[pos]
		if ts, ok := it.When(); ok {
			if cur, has := kept.When(); !has || ts < cur {
				f := FlexFloat(ts)
				kept.Timestamp = &f
			}
		}
		if kept.Owner == nil || *kept.Owner == "" {
			if it.Owner != nil && *it.Owner != "" {
				kept.Owner = it.Owner
			}
		}
		if kept.DueDate == nil || *kept.DueDate == "" {
			if it.DueDate != nil && *it.DueDate != "" {
				kept.DueDate = it.DueDate
			}
		}
	}
	return out
}

// UniqueTopics trims and deduplicates topic labels case-insensitively,
// keeping the first spelling seen. Capped at ten.
func UniqueTopics(topics []Topic) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range topics {
		label := strings.TrimSpace(t.Label)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, label)
		if len(out) >= 10 {
			break
		}
	}
	return out
}
