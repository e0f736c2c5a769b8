package types

// CultureExplainRequest asks for a guided explanation of a culture topic or exhibit.
// Length is one of "short", "standard" or "detailed".
type CultureExplainRequest struct {
	Query       string   `json:"query"`
	Context     string   `json:"context,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Audience    string   `json:"audience,omitempty"`
	Tone        string   `json:"tone,omitempty"`
	Length      string   `json:"length,omitempty"`
	FocusPoints []string `json:"focusPoints,omitempty"`
}

type CultureExplanation struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Highlights   []string `json:"highlights"`
	References   []string `json:"references"`
	MediaInsight string   `json:"mediaInsight"`
	// Generated is false when the local fallback produced the explanation.
	Generated bool `json:"generated"`
}
