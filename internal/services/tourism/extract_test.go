package tourism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPlaceName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "anchor visiting",
			query: "I am visiting Paris next week",
			want:  "Paris",
		},
		{
			name:  "anchor traveling to with trailing comma",
			query: "I'm traveling to Kyoto, what's the temperature and what can I visit?",
			want:  "Kyoto",
		},
		{
			name:  "anchor going to keeps multi-word run",
			query: "We are going to New Delhi for vacation",
			want:  "New Delhi",
		},
		{
			name:  "anchor in",
			query: "weather in Rome",
			want:  "Rome",
		},
		{
			name:  "anchor in mid-sentence",
			query: "what are the places to visit in Barcelona",
			want:  "Barcelona",
		},
		{
			name:  "capitalized run ends at lowercase particle",
			query: "I want to visit Rio de Janeiro",
			want:  "Rio",
		},
		{
			name:  "leading article stripped",
			query: "going to The Hague tomorrow",
			want:  "Hague",
		},
		{
			name:  "no capitalized tokens",
			query: "what is the weather like today",
			want:  "",
		},
		{
			name:  "empty query",
			query: "",
			want:  "",
		},
		{
			name:  "sentence scan without anchor",
			query: "been dreaming of a getaway. Lisbon has great food",
			want:  "Lisbon",
		},
		{
			name:  "sentence scan picks first candidate",
			query: "comparing Oslo versus Helsinki",
			want:  "Oslo",
		},
		{
			name:  "only stop words capitalized",
			query: "Where are we going, and What will it cost",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPlaceName(tt.query))
		})
	}
}

func TestExtractGlobal(t *testing.T) {
	// Single candidate with the text starting on a capital is treated as
	// sentence capitalization, not a place.
	assert.Equal(t, "", extractGlobal("Somewhere warm would be nice"))
	// Single candidate but lowercase text start is trusted.
	assert.Equal(t, "Reykjavik", extractGlobal("maybe Reykjavik"))
	// More than one candidate: up to the first three are joined.
	assert.Equal(t, "Oslo Bergen Tromso",
		extractGlobal("flights between Oslo and Bergen and Tromso and Narvik") /* capped at 3 */)
}

func TestCleanRunDropsStopWords(t *testing.T) {
	assert.Equal(t, "Paris", cleanRun([]string{"The", "Paris"}))
	assert.Equal(t, "", cleanRun([]string{"The"}))
	assert.Equal(t, "", cleanRun(nil))
}
