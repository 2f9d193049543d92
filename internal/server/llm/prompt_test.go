package llm

import (
	"testing"

	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":        ModeNormal,
		"normal":  ModeNormal,
		"Quiz":    ModeQuiz,
		"reverse": ModeReverse,
		"summary": ModeSummary,
		"lecture": ModeNormal,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseMode(in), in)
	}
}

func TestBuildSystemPrompt_Lengths(t *testing.T) {
	tests := []struct {
		length    string
		maxTokens int
		temp      float64
		phrase    string
	}{
		{models.AnswerShort, 200, 0.3, "Keep answers concise and to the point."},
		{models.AnswerMedium, 500, 0.5, "Provide clear, informative answers."},
		{models.AnswerLong, 1000, 0.7, "Provide comprehensive, detailed explanations with examples."},
		{"", 500, 0.5, "Provide clear, informative answers."},
	}
	for _, tt := range tests {
		t.Run(tt.length, func(t *testing.T) {
			sp := BuildSystemPrompt(models.Preferences{AnswerLength: tt.length}, ModeNormal)
			assert.Equal(t, tt.maxTokens, sp.MaxTokens)
			assert.InDelta(t, tt.temp, sp.Temperature, 1e-9)
			assert.Equal(t, persona+" "+tt.phrase, sp.Text)
		})
	}
}

func TestBuildSystemPrompt_PreferencesAndMode(t *testing.T) {
	prefs := models.Preferences{AnswerLength: models.AnswerShort, AnalogyStyle: "sports", BloomsLevel: models.BloomAnalyze}

	sp := BuildSystemPrompt(prefs, ModeQuiz)
	assert.Equal(t, "You are PhenBOT, an advanced AI study companion."+
		" Keep answers concise and to the point."+
		" Use sports analogies to explain complex concepts."+
		" Focus on analyze level understanding."+
		" End with a quick quiz question related to the topic.", sp.Text)

	prefs.AnalogyStyle = "none"
	assert.NotContains(t, BuildSystemPrompt(prefs, ModeReverse).Text, "analogies")
	assert.Contains(t, BuildSystemPrompt(prefs, ModeReverse).Text, "probing questions")
	assert.Contains(t, BuildSystemPrompt(prefs, ModeSummary).Text, "in their own words")
}
