package domain

// Mood selects one of the threshold-based song groupings.
type Mood string

const (
	MoodHappy Mood = "happy"
	MoodSad   Mood = "sad"
	MoodCalm  Mood = "calm"
	MoodAngry Mood = "angry"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodCalm, MoodAngry:
		return true
	}
	return false
}

// Title renders the mood for playlist names ("Happy songs" keeps only the
// leading capital).
func (m Mood) Title() string {
	return capitalize(string(m) + " Songs")
}
