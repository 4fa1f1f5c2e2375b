package tourism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantWeather bool
		wantPlaces  bool
	}{
		{
			name:        "weather only",
			query:       "weather in Rome",
			wantWeather: true,
			wantPlaces:  false,
		},
		{
			name:        "places only",
			query:       "places to visit in Rome",
			wantWeather: false,
			wantPlaces:  true,
		},
		{
			name:        "both",
			query:       "weather and places in Rome",
			wantWeather: true,
			wantPlaces:  true,
		},
		{
			name:        "keyword position does not matter",
			query:       "in Rome, what are the places and the weather",
			wantWeather: true,
			wantPlaces:  true,
		},
		{
			name:        "temperature keyword",
			query:       "how hot is it in Cairo",
			wantWeather: true,
			wantPlaces:  false,
		},
		{
			name:        "trip planning falls back to places",
			query:       "I'm going on a trip to Lima",
			wantWeather: false,
			wantPlaces:  true,
		},
		{
			name:        "open question falls back to places",
			query:       "show me around Vienna",
			wantWeather: false,
			wantPlaces:  true,
		},
		{
			name:        "no signal at all",
			query:       "tell me about Paris",
			wantWeather: false,
			wantPlaces:  false,
		},
		{
			name:        "conjunction broadens single intent",
			query:       "what's the temperature and what can I visit in Kyoto",
			wantWeather: true,
			wantPlaces:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := ClassifyIntent(tt.query)
			assert.Equal(t, tt.wantWeather, intent.Weather, "weather")
			assert.Equal(t, tt.wantPlaces, intent.Places, "places")
		})
	}
}

func TestClassifyIntentIsIdempotent(t *testing.T) {
	query := "weather and places in Rome"
	first := ClassifyIntent(query)
	second := ClassifyIntent(query)
	assert.Equal(t, first, second)
}

// The conjunction re-scan only broadens via its narrow keyword set; a
// conjunction between two unknown topics gains no intent. Known limitation.
func TestClassifyIntentConjunctionDoesNotInventIntent(t *testing.T) {
	intent := ClassifyIntent("tell me about food and culture")
	assert.False(t, intent.Weather)
	assert.False(t, intent.Places)
}
