package sentiment

// DefaultMinSample is the admission threshold used when none is configured.
const DefaultMinSample = 30

// Admit reports whether a window with headlineCount headlines carries enough
// samples. The threshold is inclusive.
func Admit(headlineCount, minSample int) bool {
	return headlineCount >= minSample
}
