package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Verdict string

const (
	VerdictAffirmative Verdict = "affirmative"
	VerdictNegative    Verdict = "negative"
	VerdictIrrelevant  Verdict = "irrelevant"
	VerdictSolved      Verdict = "solved"
)

// Display texts are also the exact replies the oracle is told to use.
const (
	DisplayAffirmative = "はい"
	DisplayNegative    = "いいえ"
	DisplayIrrelevant  = "関係ありません"
	DisplaySolved      = "正解！"
)

// Display returns the text shown to players for v.
func (v Verdict) Display() string {
	switch v {
	case VerdictAffirmative:
		return DisplayAffirmative
	case VerdictNegative:
		return DisplayNegative
	case VerdictIrrelevant:
		return DisplayIrrelevant
	case VerdictSolved:
		return DisplaySolved
	}
	return ""
}

func (v Verdict) Valid() bool {
	return v.Display() != ""
}

// Judgment is the oracle's answer to one question.
// Text is the display text; for a solved puzzle it may carry the
// oracle's short explanation after the marker.
type Judgment struct {
	Verdict Verdict `json:"verdict"`
	Text    string  `json:"text"`
}

// ParseVerdict classifies a raw oracle reply into the closed verdict set.
// Irrelevant is matched before the bare yes/no forms since "not relevant"
// starts with "no".
func ParseVerdict(reply string) (Judgment, bool) {
	text := strings.TrimSpace(reply)
	text = strings.Trim(text, "「」\"'*")
	text = strings.TrimSpace(text)
	if text == "" {
		return Judgment{}, false
	}
	lower := strings.ToLower(text)

	if rest, ok := solvedMarker(text, lower); ok {
		return solved(rest), true
	}

	switch {
	case strings.HasPrefix(text, "関係ありません"), strings.HasPrefix(text, "関係ない"),
		strings.HasPrefix(lower, "irrelevant"), strings.HasPrefix(lower, "not relevant"):
		return Judgment{Verdict: VerdictIrrelevant, Text: DisplayIrrelevant}, true
	case strings.HasPrefix(text, "いいえ"), lower == "no", strings.HasPrefix(lower, "no."), strings.HasPrefix(lower, "no,"):
		return Judgment{Verdict: VerdictNegative, Text: DisplayNegative}, true
	case strings.HasPrefix(text, "はい"), strings.HasPrefix(lower, "yes"):
		return Judgment{Verdict: VerdictAffirmative, Text: DisplayAffirmative}, true
	}
	return Judgment{}, false
}

// solvedMarker reports whether text opens with a standalone solved marker
// and returns what follows it. The marker must end the reply or be followed
// by punctuation or whitespace, so "正解ではありません" and "correctly" are
// not mistaken for a solve.
func solvedMarker(text, lower string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(text, "正解"):
		rest = strings.TrimPrefix(text, "正解")
	case strings.HasPrefix(lower, "correct"):
		rest = text[len("correct"):]
	default:
		return "", false
	}
	if rest == "" {
		return rest, true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return rest, unicode.IsSpace(r) || strings.ContainsRune(markerTerminators, r)
}

const markerTerminators = "！!。.,、:："

func solved(rest string) Judgment {
	detail := strings.TrimSpace(strings.TrimLeft(rest, "！!。、.,:： "))
	if detail == "" {
		return Judgment{Verdict: VerdictSolved, Text: DisplaySolved}
	}
	return Judgment{Verdict: VerdictSolved, Text: DisplaySolved + " " + detail}
}
