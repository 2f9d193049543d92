package llm

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
)

// Mode selects the tutoring style of an answer.
type Mode string

const (
	ModeNormal  Mode = "normal"
	ModeReverse Mode = "reverse"
	ModeSummary Mode = "summary"
	ModeQuiz    Mode = "quiz"
)

// ParseMode maps an empty or unknown value to ModeNormal.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeReverse, ModeSummary, ModeQuiz:
		return m
	default:
		return ModeNormal
	}
}

const persona = "You are PhenBOT, an advanced AI study companion."

// BuildSystemPrompt derives the system message and sampling settings from
// the owner's preferences and the requested mode.
func BuildSystemPrompt(prefs models.Preferences, mode Mode) SystemPrompt {
	var b strings.Builder
	b.WriteString(persona)

	sp := SystemPrompt{}
	switch prefs.AnswerLength {
	case models.AnswerShort:
		sp.MaxTokens, sp.Temperature = 200, 0.3
		b.WriteString(" Keep answers concise and to the point.")
	case models.AnswerLong:
		sp.MaxTokens, sp.Temperature = 1000, 0.7
		b.WriteString(" Provide comprehensive, detailed explanations with examples.")
	default:
		sp.MaxTokens, sp.Temperature = 500, 0.5
		b.WriteString(" Provide clear, informative answers.")
	}

	if prefs.AnalogyStyle != "" && prefs.AnalogyStyle != "none" {
		fmt.Fprintf(&b, " Use %s analogies to explain complex concepts.", prefs.AnalogyStyle)
	}
	if prefs.BloomsLevel != "" {
		fmt.Fprintf(&b, " Focus on %s level understanding.", prefs.BloomsLevel)
	}

	switch mode {
	case ModeReverse:
		b.WriteString(" Act as a student asking probing questions to test understanding.")
	case ModeSummary:
		b.WriteString(" Ask the user to summarize the concept in their own words after explaining.")
	case ModeQuiz:
		b.WriteString(" End with a quick quiz question related to the topic.")
	}

	sp.Text = b.String()
	return sp
}
