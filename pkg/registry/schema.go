// pkg/registry/schema.go
package registry

// Vocabulary is the deployment-specific word list behind intent scoring,
// fabrication blocking and tone phrasing.
type Vocabulary struct {
	Version             string                 `json:"version"`
	LastUpdated         string                 `json:"lastUpdated"`
	Intents             map[string][]string    `json:"intents"`
	EducationSignals    []string               `json:"educationSignals"`
	FoodSignals         []string               `json:"foodSignals"`
	FollowUpPhrases     []string               `json:"followUpPhrases"`
	FabricatedNames     []string               `json:"fabricatedNames"`
	FakeAddressPatterns []string               `json:"fakeAddressPatterns"`
	Tones               map[string]ToneProfile `json:"tones"`
	CategorySignals     map[string][]string    `json:"categorySignals"`
}

type ToneProfile struct {
	DisplayName string   `json:"displayName"`
	Version     string   `json:"version"`
	Opening     string   `json:"opening"`
	DataPrefix  string   `json:"dataPrefix"`
	EmptyResult string   `json:"emptyResult"`
	Closing     string   `json:"closing"`
	Personality []string `json:"personality"`
	Style       string   `json:"style"`
}
