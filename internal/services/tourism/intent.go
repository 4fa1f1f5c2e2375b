package tourism

import "strings"

// Intent is what the caller wants to know: weather, points of interest, or
// both. At least one flag is forced true before orchestration proceeds.
type Intent struct {
	Weather bool
	Places  bool
}

var weatherKeywords = []string{
	"temperature", "temp", "weather", "rain", "rainfall", "precipitation",
	"how hot", "how cold", "forecast", "climate", "sunny", "cloudy",
	"snow", "wind", "humidity", "degrees", "celsius", "fahrenheit",
	"chance of rain", "will it rain", "is it raining",
}

var placesKeywords = []string{
	"places", "place", "visit", "visiting", "visits", "attractions",
	"attraction", "see", "tourist", "tourism", "sightseeing",
	"monuments", "monument", "museums", "museum", "landmarks",
	"things to do", "what to see", "where to go", "where to visit",
	"sights", "parks", "temples", "palaces", "beaches", "locations",
	"recommendations", "suggestions", "must see", "top places",
}

var tripKeywords = []string{
	"plan", "planning", "trip", "going", "visit", "travel", "traveling", "vacation",
}

var openQuestionPhrases = []string{
	"what can", "what should", "what are", "where can", "show me",
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// ClassifyIntent decides which facts a query asks for via case-insensitive
// keyword matching. Pure function of the text.
func ClassifyIntent(query string) Intent {
	text := strings.ToLower(query)

	intent := Intent{
		Weather: containsAny(text, weatherKeywords),
		Places:  containsAny(text, placesKeywords),
	}

	// Context-based fallback when no explicit keyword fired: trip planning
	// vocabulary and open-ended question phrasing both read as place-seeking.
	if !intent.Weather && !intent.Places {
		if containsAny(text, tripKeywords) {
			intent.Places = true
		} else if containsAny(text, openQuestionPhrases) {
			intent.Places = true
		}
	}

	// A conjunction can broaden an already-detected single intent into both,
	// but only via this narrow re-scan, not the full vocabulary sets.
	if strings.Contains(text, "and") || strings.Contains(text, "both") || strings.Contains(text, "also") {
		if intent.Weather || intent.Places {
			if strings.Contains(text, "temperature") || strings.Contains(text, "weather") {
				intent.Weather = true
			}
			if strings.Contains(text, "places") || strings.Contains(text, "visit") || strings.Contains(text, "attractions") {
				intent.Places = true
			}
		}
	}

	return intent
}
