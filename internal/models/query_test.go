package models

import "testing"

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"rag", IntentRAG},
		{"summarize", IntentSummarize},
		{"reason", IntentReason},
		{"", IntentRAG},
		{"maybe", IntentRAG},
		{"SUMMARIZE", IntentRAG}, // caller is responsible for lowercasing
	}
	for _, tt := range tests {
		if got := ParseIntent(tt.in); got != tt.want {
			t.Errorf("ParseIntent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEvidence_Relevance(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{0.25, 0.75},
		{1.5, 0},
		{-0.5, 1},
	}
	for _, tt := range tests {
		e := &Evidence{Score: tt.score}
		if got := e.Relevance(); got != tt.want {
			t.Errorf("Relevance() with score %f = %f, want %f", tt.score, got, tt.want)
		}
	}
}
