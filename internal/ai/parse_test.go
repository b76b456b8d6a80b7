package ai

import "testing"

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantName     string
		wantCategory string
		wantErr      bool
	}{
		{"bare json", `{"name": "blue mug", "category": "kitchen"}`, "blue mug", "kitchen", false},
		{"fenced", "```json\n{\"name\": \"camp stove\", \"category\": \"outdoor\"}\n```", "camp stove", "outdoor", false},
		{"prose wrapped", `Here you go: {"name": "umbrella", "category": "daily"} hope that helps`, "umbrella", "daily", false},
		{"missing name", `{"category": "kitchen"}`, "", "", true},
		{"no json", "just a mug I guess", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSuggestion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Name != tt.wantName || got.Category != tt.wantCategory {
				t.Fatalf("got=%+v want name=%q category=%q", got, tt.wantName, tt.wantCategory)
			}
		})
	}
}
