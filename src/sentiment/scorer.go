package sentiment

import (
	"bufio"
	"bytes"
	"embed"
	"math"
	"strconv"
	"strings"
	"unicode"

	"sentiment-aligner/src/helpers"
	"sentiment-aligner/src/interfaces"
)

//go:embed lexicon/*.tsv
var lexiconFS embed.FS

const (
	boostIncrement = 0.293
	capsIncrement  = 0.733
	negationScalar = -0.74
	normalizeAlpha = 15.0

	exclamationWeight = 0.292
	maxExclamations   = 4
	questionWeight    = 0.18
	maxQuestionBoost  = 0.96
)

var boosters = map[string]float64{
	"very":          boostIncrement,
	"extremely":     boostIncrement,
	"highly":        boostIncrement,
	"really":        boostIncrement,
	"hugely":        boostIncrement,
	"sharply":       boostIncrement,
	"significantly": boostIncrement,
	"strongly":      boostIncrement,
	"substantially": boostIncrement,
	"most":          boostIncrement,
	"slightly":      -boostIncrement,
	"somewhat":      -boostIncrement,
	"marginally":    -boostIncrement,
	"barely":        -boostIncrement,
	"partly":        -boostIncrement,
	"modestly":      -boostIncrement,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "without": {}, "cannot": {}, "can't": {},
	"don't": {}, "doesn't": {}, "didn't": {}, "isn't": {}, "wasn't": {},
	"aren't": {}, "weren't": {}, "won't": {}, "wouldn't": {}, "shouldn't": {},
	"hasn't": {}, "haven't": {}, "hadn't": {},
}

// -----------------------------------------------------------------------------
// LexiconScorer
// -----------------------------------------------------------------------------

// LexiconScorer is a rule based polarity model in the VADER family: token
// valences from a versioned lexicon adjusted by boosters, capitalisation,
// negation, contrastive "but" and trailing punctuation.
type LexiconScorer struct {
	version string
	lexicon map[string]float64
}

var _ interfaces.IPolarityScorer = (*LexiconScorer)(nil)

// NewLexiconScorer loads the embedded lexicon for version.
func NewLexiconScorer(version string) (*LexiconScorer, error) {
	data, err := lexiconFS.ReadFile("lexicon/" + version + ".tsv")
	if err != nil {
		return nil, helpers.NewValidationError("unknown lexicon version %q", version)
	}

	lexicon, err := parseLexicon(data)
	if err != nil {
		return nil, helpers.NewValidationError("lexicon %s: %v", version, err)
	}

	return &LexiconScorer{version: version, lexicon: lexicon}, nil
}

func parseLexicon(data []byte) (map[string]float64, error) {
	lexicon := make(map[string]float64)
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return nil, helpers.NewValidationError("line %d: expected token and valence", line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, helpers.NewValidationError("line %d: %v", line, err)
		}
		lexicon[strings.ToLower(strings.TrimSpace(fields[0]))] = v
	}
	return lexicon, sc.Err()
}

// -----------------------------------------------------------------------------

func (s *LexiconScorer) Version() string {
	return s.version
}

// -----------------------------------------------------------------------------

type token struct {
	raw   string
	lower string
	caps  bool
}

func tokenize(text string) []token {
	var tokens []token
	for _, field := range strings.Fields(text) {
		raw := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		})
		raw = strings.Trim(raw, "'")
		if raw == "" {
			continue
		}
		tokens = append(tokens, token{raw: raw, lower: strings.ToLower(raw), caps: isAllCaps(raw)})
	}
	return tokens
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// -----------------------------------------------------------------------------

// Score returns the compound polarity of text in [-1, 1], rounded to four
// decimals. Blank text scores 0.
func (s *LexiconScorer) Score(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	// Capitals only emphasise when the text is not shouted throughout.
	capsCount := 0
	for _, t := range tokens {
		if t.caps {
			capsCount++
		}
	}
	capsDiffer := capsCount > 0 && capsCount < len(tokens)

	valences := make([]float64, len(tokens))
	for i, t := range tokens {
		if _, ok := boosters[t.lower]; ok {
			continue
		}
		v, ok := s.lexicon[t.lower]
		if !ok || v == 0 {
			continue
		}

		sign := math.Copysign(1, v)
		if t.caps && capsDiffer {
			v += sign * capsIncrement
		}

		negated := false
		for j := 1; j <= 3 && i-j >= 0; j++ {
			prev := tokens[i-j]
			if b, ok := boosters[prev.lower]; ok {
				inc := b * sign
				if prev.caps && capsDiffer {
					inc += capsIncrement * math.Copysign(1, inc)
				}
				v += inc * boosterDamping(j)
			}
			if _, ok := negations[prev.lower]; ok {
				negated = true
			}
		}
		if negated {
			v *= negationScalar
		}

		valences[i] = v
	}

	applyButRule(tokens, valences)

	sum := 0.0
	for _, v := range valences {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	emphasis := punctuationEmphasis(text)
	if sum > 0 {
		sum += emphasis
	} else {
		sum -= emphasis
	}

	return normalize(sum)
}

func boosterDamping(distance int) float64 {
	switch distance {
	case 1:
		return 1
	case 2:
		return 0.95
	default:
		return 0.9
	}
}

// applyButRule halves sentiment before the first "but" and amplifies what
// follows it.
func applyButRule(tokens []token, valences []float64) {
	idx := -1
	for i, t := range tokens {
		if t.lower == "but" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for i := range valences {
		switch {
		case i < idx:
			valences[i] *= 0.5
		case i > idx:
			valences[i] *= 1.5
		}
	}
}

func punctuationEmphasis(text string) float64 {
	ex := min(strings.Count(text, "!"), maxExclamations)
	emphasis := float64(ex) * exclamationWeight

	if q := strings.Count(text, "?"); q > 1 {
		if q <= 3 {
			emphasis += float64(q) * questionWeight
		} else {
			emphasis += maxQuestionBoost
		}
	}
	return emphasis
}

func normalize(sum float64) float64 {
	c := sum / math.Sqrt(sum*sum+normalizeAlpha)
	c = max(-1, min(1, c))
	return math.Round(c*1e4) / 1e4
}
