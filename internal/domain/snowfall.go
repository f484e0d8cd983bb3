package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SnowfallKind discriminates the Snowfall variants.
type SnowfallKind int

const (
	SnowfallAbsent SnowfallKind = iota
	SnowfallSingle
	SnowfallRange
)

// Snowfall is a snowfall amount in inches: absent, a single value, or a range.
// For a single value Min == Max.
type Snowfall struct {
	Kind SnowfallKind
	Min  float64
	Max  float64
}

// SingleSnowfall returns a single-value snowfall.
func SingleSnowfall(v float64) Snowfall {
	return Snowfall{Kind: SnowfallSingle, Min: v, Max: v}
}

// RangeSnowfall returns a range snowfall with lo <= hi.
func RangeSnowfall(lo, hi float64) Snowfall {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Snowfall{Kind: SnowfallRange, Min: lo, Max: hi}
}

// IsAbsent reports whether no snowfall value was reported.
func (s Snowfall) IsAbsent() bool {
	return s.Kind == SnowfallAbsent
}

// String returns "3" or "2-4", and "" when absent.
func (s Snowfall) String() string {
	switch s.Kind {
	case SnowfallSingle:
		return formatInches(s.Min)
	case SnowfallRange:
		return formatInches(s.Min) + "-" + formatInches(s.Max)
	default:
		return ""
	}
}

// MarshalJSON encodes the text form, or null when absent.
func (s Snowfall) MarshalJSON() ([]byte, error) {
	if s.IsAbsent() {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts null, a number, or snowfall text.
func (s *Snowfall) UnmarshalJSON(data []byte) error {
	text, ok := rawText(data)
	if !ok {
		*s = Snowfall{}
		return nil
	}
	parsed, err := ParseSnowfall(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DisplaySnowfall renders a snowfall for progress output, using "0" when absent.
func DisplaySnowfall(s Snowfall) string {
	if s.IsAbsent() {
		return "0"
	}
	return s.String()
}

// snowNumber matches "3", "3.5" and ".5".
const snowNumber = `(\d+(?:\.\d+)?|\.\d+)`

var (
	// snowUnitRe strips trailing inch marks: `3"`, `3 in`, `3 in.`, `3 inches`.
	snowUnitRe = regexp.MustCompile(`\s*(?:"|''|″|in\.?|inch(?:es)?)$`)

	snowSingleRe = regexp.MustCompile(`^` + snowNumber + `$`)
	snowRangeRe  = regexp.MustCompile(`^` + snowNumber + `\s*(?:-|–|—|to)\s*` + snowNumber + `$`)
	snowBelowRe  = regexp.MustCompile(`^<\s*` + snowNumber + `$`)
)

// ParseSnowfall parses free-text snowfall into a Snowfall. Blank text is absent.
func ParseSnowfall(text string) (Snowfall, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Snowfall{}, nil
	}
	if s == "t" || s == "tr" || s == "trace" {
		return SingleSnowfall(0), nil
	}

	// Units may trail each bound ("2in-4in") or only the whole value ("2-4 in").
	s = snowUnitRe.ReplaceAllString(s, "")
	if i := strings.IndexAny(s, "-–—"); i > 0 {
		s = snowUnitRe.ReplaceAllString(s[:i], "") + s[i:]
	}
	if i := strings.Index(s, " to "); i > 0 {
		s = snowUnitRe.ReplaceAllString(s[:i], "") + s[i:]
	}
	s = strings.TrimSpace(s)

	if m := snowSingleRe.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Snowfall{}, fmt.Errorf("parse snowfall %q: %w", text, err)
		}
		return SingleSnowfall(v), nil
	}
	if m := snowRangeRe.FindStringSubmatch(s); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo != nil || errHi != nil {
			return Snowfall{}, fmt.Errorf("parse snowfall range %q", text)
		}
		return RangeSnowfall(lo, hi), nil
	}
	if m := snowBelowRe.FindStringSubmatch(s); m != nil {
		hi, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Snowfall{}, fmt.Errorf("parse snowfall %q: %w", text, err)
		}
		return RangeSnowfall(0, hi), nil
	}
	return Snowfall{}, fmt.Errorf("unrecognized snowfall %q", text)
}

func formatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
