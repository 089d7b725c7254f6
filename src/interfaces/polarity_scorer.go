package interfaces

// IPolarityScorer maps one headline to a compound score in [-1, 1].
type IPolarityScorer interface {
	Score(text string) float64

	// Version identifies the lexicon the scores were produced with.
	Version() string
}
