package insight

import (
	"encoding/json"
	"strings"
)

func buildChunkPrompt(chunk string) string {
	return "SYSTEM: You are an expert meeting analyst. Extract only what is explicitly present in the transcript; do not invent names, dates, or facts.\n" +
		"GOAL: Parse this meeting segment into structured JSON suitable for post-meeting intelligence and vector indexing.\n\n" +
		"TASK:\n" +
		"1. Summarize the chunk into 3-7 concise factual bullets.\n" +
		"2. Identify explicit decisions or conclusions (with owner/timestamp if mentioned).\n" +
		"3. Extract action items (with owner/due date if mentioned).\n" +
		"4. Detect overall sentiment of the conversation in this chunk (Positive, Neutral, Negative, or Mixed).\n" +
		"5. Capture any explicit speaker mentions (e.g., 'Alice', 'Project Lead'). If none, return null.\n" +
		"6. Generate 3-6 topic tags relevant for later search (e.g., 'budget planning', 'product launch').\n" +
		"7. Use the start timestamp if visible like [12.3-18.9] as 'timestamp_hint'; else null.\n\n" +
		"OUTPUT: STRICT JSON only. No prose or commentary.\n" +
		"Schema:\n" +
		"{\n" +
		"  summary_bullets: string[],\n" +
		"  decisions: [{ text: string, owner?: string|null, timestamp_hint?: string|null }],\n" +
		"  action_items: [{ text: string, owner?: string|null, due_date?: string|null, timestamp_hint?: string|null }],\n" +
		"  sentiment: string,  // one of ['Positive','Neutral','Negative','Mixed']\n" +
		"  speakers: string[]|null,\n" +
		"  topics: string[]\n" +
		"}\n\n" +
		"TRANSCRIPT CHUNK:\n" + chunk + "\n\nJSON:"
}

func buildMergePrompt(partsJSON []string) string {
	return "SYSTEM: You are a senior AI meeting analyst synthesizing multiple chunk analyses into a unified meeting report.\n" +
		"CONSTRAINTS:\n" +
		"- Use only facts present in the input JSONs.\n" +
		"- Deduplicate similar items; retain earliest timestamps and any explicit owners/dates.\n" +
		"- Merge sentiments into an overall meeting sentiment (Positive/Neutral/Negative/Mixed).\n\n" +
		"TASK: Produce a structured JSON report. The 'summary' must be narrative-only Markdown (no duplicate lists).\n\n" +
		"OUTPUT REQUIREMENTS:\n" +
		"  summary: Markdown with sections ONLY:\n" +
		"    # Meeting Summary\n" +
		"    ## Executive Summary (5-10 bullets)\n" +
		"    ## Detailed Notes (3-6 short paragraphs)\n" +
		"    ## Timeline Highlights (bullet list with timestamps if available)\n" +
		"  Do NOT include Decisions, Action Items, Key Topics, or Risks inside 'summary'.\n\n" +
		"OUTPUT: STRICT JSON only.\n" +
		"Schema:\n" +
		"{\n" +
		"  summary: string,\n" +
		"  overall_sentiment: string,  // one of ['Positive','Neutral','Negative','Mixed']\n" +
		"  key_topics: string[],\n" +
		"  decisions: [{ text: string, owner?: string|null, timestamp?: number|null }],\n" +
		"  action_items: [{ text: string, owner?: string|null, due_date?: string|null, timestamp?: number|null }],\n" +
		"  risks: string[],\n" +
		"  highlights?: [{ timestamp?: number|null, text: string }]\n" +
		"}\n\nCHUNK JSONS (one per line):\n" + strings.Join(partsJSON, "\n") + "\n\nJSON:"
}

func buildListsPrompt(chunks []string) string {
	return "SYSTEM: You are an expert meeting analyst. Use only the provided transcript. Do not invent facts.\n" +
		"TASKS:\n" +
		"1) Extract Decisions (explicitly stated conclusions/approvals).\n" +
		"2) Extract Action Items (tasks with owners/due if present).\n" +
		"3) Identify 5-12 concise Topic Tags (lowercase, 1-3 words each).\n" +
		"TIMESTAMPS: If transcript shows markers like [12.3-18.9], use the start time as numeric seconds for 'timestamp'.\n" +
		"OUTPUT: STRICT JSON only with fields: {\n" +
		"  decisions: [{ text: string, owner?: string|null, timestamp?: number|null }],\n" +
		"  action_items: [{ text: string, owner?: string|null, due_date?: string|null, timestamp?: number|null }],\n" +
		"  key_topics: string[]\n" +
		"}\n\nTRANSCRIPT:\n" + strings.Join(chunks, "\n\n") + "\n\nJSON:"
}

func buildRefinePrompt(chunks []string, actions, decisions []Item) string {
	payload, _ := json.Marshal(map[string][]Item{
		"action_items": actions,
		"decisions":    decisions,
	})
	return "SYSTEM: You are an expert PM/editor refining meeting outputs.\n" +
		"INPUTS: (1) The meeting transcript chunks, (2) the initial lists of action items and decisions.\n" +
		"GOAL: Improve quality, remove redundant or vague entries, and ensure entries are specific, atomic, and useful.\n" +
		"RULES:\n" +
		"- Decisions must be explicit approvals/choices/commitments taken; avoid generic observations.\n" +
		"- Action items must be actionable tasks in imperative form; include owner if stated; include due_date if present.\n" +
		"- Keep or infer timestamp (seconds) when a bracketed [start-end] appears near the statement; use the START as 'timestamp'.\n" +
		"- Keep items concise (max ~20 words).\n" +
		"- Remove duplicates and items that simply restate the summary.\n" +
		"- If owner is unclear but a specific speaker said it, use that speaker label (e.g., 'Speaker A').\n" +
		"- Cap lists to at most 12 items each.\n" +
		"OUTPUT: STRICT JSON only: { decisions: {text, owner?, timestamp?}[], action_items: {text, owner?, due_date?, timestamp?}[] }\n\n" +
		"TRANSCRIPT CHUNKS:\n" + strings.Join(chunks, "\n\n") + "\n\n" +
		"INITIAL LISTS (JSON):\n" + string(payload) + "\n\nJSON:"
}

func buildSentimentPrompt(chunks []string) string {
	return "SYSTEM: You are an expert meeting sentiment analyst. Use only the transcript; avoid speculation.\n" +
		"TASK: Provide overall sentiment and highlight contentious/positive moments. Also produce a short 'vibe' string (1-2 sentences) that captures the emotional tone.\n" +
		"HIGHLIGHTS: 3-7 items. For each, include a short text snippet, a polarity label, and optional reason.\n" +
		"TIMESTAMPS: If markers like [12.3-18.9] appear, convert start time to seconds; else null.\n" +
		"OUTPUT: STRICT JSON only: {\n" +
		"  label: 'positive'|'neutral'|'negative'|'mixed',\n" +
		"  score: number,  // -1..1\n" +
		"  vibe: string,   // 1-2 sentences, descriptive tone summary\n" +
		"  rationale: string, // 2-4 sentences; why you chose this label\n" +
		"  highlights: [{ timestamp?: number|null, text: string, polarity: 'positive'|'negative'|'contentious', reason?: string }]\n" +
		"}.\n\nTRANSCRIPT:\n" + strings.Join(chunks, "\n\n") + "\n\nJSON:"
}

func buildSummaryPrompt(chunks []string) string {
	return "SYSTEM: You are an AI meeting analyst. Use only the transcript. Do not fabricate details.\n" +
		"OUTPUT: STRICT JSON with fields: summary (string), key_topics (string[]), " +
		"decisions ({text:string, owner?:string|null, timestamp?:number|null}[]), " +
		"action_items ({text:string, owner?:string|null, due_date?:string|null, timestamp?:number|null}[]), " +
		"risks (string[]).\n" +
		"SUMMARY FORMAT: Provide a well-structured Markdown report (not a one-liner) with sections: \n" +
		"  # Meeting Summary\n  ## Executive Summary (5-10 bullets)\n  ## Detailed Notes (3-6 short paragraphs)\n  ## Timeline Highlights (bullet list with mm:ss timestamps if available).\n" +
		"Do NOT include Decisions, Action Items, Key Topics, or Risks in the 'summary' text — those are separate arrays.\n" +
		"LENGTH: Aim for 300-800 words; include only facts present in the transcript.\n" +
		"TIMESTAMPS: If transcript shows [12.3-18.9], use 12.3 as seconds. If unknown, set timestamp to null.\n\n" +
		"TRANSCRIPT:\n" + strings.Join(chunks, "\n\n") + "\n\nJSON:"
}
