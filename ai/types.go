package ai

// MaxThemes is the maximum number of themes kept per story.
const MaxThemes = 5

// MaxTags is the maximum number of tags kept per story.
const MaxTags = 12

// StoryMetadata is the structured output of the metadata service.
type StoryMetadata struct {
	Title        string   `json:"title"`
	Author       *string  `json:"author"` // null when the text names no author
	SummaryShort string   `json:"summary_short"`
	SummaryLong  string   `json:"summary_long"`
	Genre        string   `json:"genre"`
	Tone         string   `json:"tone"`
	Setting      string   `json:"setting"`
	Themes       []string `json:"themes"`
	Tags         []string `json:"tags"`
	ContentNotes string   `json:"content_notes,omitempty"`
}

// Clamp enforces the schema's list bounds in place.
func (m *StoryMetadata) Clamp() {
	if len(m.Themes) > MaxThemes {
		m.Themes = m.Themes[:MaxThemes]
	}
	if len(m.Tags) > MaxTags {
		m.Tags = m.Tags[:MaxTags]
	}
}

// AuthorName returns the author or empty when unknown.
func (m *StoryMetadata) AuthorName() string {
	if m.Author == nil {
		return ""
	}
	return *m.Author
}
