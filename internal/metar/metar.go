package metar

import (
	"regexp"
	"strconv"
	"strings"
)

// Observation is a decoded METAR. Every field is optional: a nil pointer or
// empty value means the group was not present (or not parseable) in the
// source text, never a sentinel zero.
type Observation struct {
	Raw         string       `json:"raw"`
	Time        string       `json:"time,omitempty"` // 6-digit day/hour/minute + "Z"
	Wind        *Wind        `json:"wind,omitempty"`
	Visibility  string       `json:"visibility,omitempty"`
	Temperature *int         `json:"temperature_c,omitempty"`
	Dewpoint    *int         `json:"dewpoint_c,omitempty"`
	QNH         *int         `json:"qnh_hpa,omitempty"`
	Clouds      []CloudLayer `json:"clouds,omitempty"`
}

// Wind is a decoded surface wind group. Direction is either three digits
// ("180") or the literal "VRB"; speeds are knots.
type Wind struct {
	Direction string `json:"direction"`
	SpeedKt   int    `json:"speed_kt"`
	GustKt    *int   `json:"gust_kt,omitempty"`
}

// String renders the wind the way reports display it: "180° 5 kt",
// optionally with a gust suffix. Variable wind renders without the degree
// sign: "VRB 2 kt".
func (w Wind) String() string {
	var b strings.Builder
	if w.Direction == "VRB" {
		b.WriteString("VRB ")
	} else {
		b.WriteString(w.Direction)
		b.WriteString("° ")
	}
	b.WriteString(strconv.Itoa(w.SpeedKt))
	b.WriteString(" kt")
	if w.GustKt != nil {
		b.WriteString(" gust ")
		b.WriteString(strconv.Itoa(*w.GustKt))
		b.WriteString(" kt")
	}
	return b.String()
}

// CloudLayer is a single cloud group. Height is the raw 3-digit code
// (hundreds of feet by convention, passed through undecoded).
type CloudLayer struct {
	Cover  string `json:"cover"`
	Height string `json:"height"`
}

// Token returns the original METAR token, e.g. "FEW020".
func (c CloudLayer) Token() string {
	return c.Cover + c.Height
}

// Token patterns, each anchored and matched independently against
// whitespace-split tokens of the first line. Independent per-field matching
// keeps one malformed group from invalidating the whole decode.
var (
	timeRe  = regexp.MustCompile(`^\d{6}Z$`)
	windRe  = regexp.MustCompile(`^(\d{3}|VRB)(\d{2,3})(G\d{2,3})?KT$`)
	visibRe = regexp.MustCompile(`^(\d{1,2}SM|\d{4})$`)
	tempRe  = regexp.MustCompile(`^(M?\d{2})/(M?\d{2})$`)
	qnhRe   = regexp.MustCompile(`^Q(\d{4})$`)
	cloudRe = regexp.MustCompile(`^(FEW|SCT|BKN|OVC)(\d{3})$`)
)

// Decode parses a raw METAR string into an Observation. It never fails:
// malformed or missing groups leave the corresponding field absent. Only the
// first line of raw is examined; multi-line payloads carry the TAF on
// subsequent lines.
func Decode(raw string) Observation {
	obs := Observation{Raw: raw}

	first, _, _ := strings.Cut(strings.TrimSpace(raw), "\n")
	tokens := strings.Fields(first)

	for _, tok := range tokens {
		switch {
		case obs.Time == "" && timeRe.MatchString(tok):
			obs.Time = tok

		case obs.Wind == nil && windRe.MatchString(tok):
			obs.Wind = parseWind(tok)

		case obs.Visibility == "" && (visibRe.MatchString(tok) || tok == "10000"):
			obs.Visibility = normalizeVisibility(tok)

		case obs.Temperature == nil && tempRe.MatchString(tok):
			m := tempRe.FindStringSubmatch(tok)
			obs.Temperature = parseSignedTemp(m[1])
			obs.Dewpoint = parseSignedTemp(m[2])

		case obs.QNH == nil && qnhRe.MatchString(tok):
			if v, err := strconv.Atoi(qnhRe.FindStringSubmatch(tok)[1]); err == nil {
				obs.QNH = &v
			}

		case cloudRe.MatchString(tok):
			m := cloudRe.FindStringSubmatch(tok)
			obs.Clouds = append(obs.Clouds, CloudLayer{Cover: m[1], Height: m[2]})
		}
	}

	return obs
}

func parseWind(tok string) *Wind {
	m := windRe.FindStringSubmatch(tok)
	speed, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	w := &Wind{Direction: m[1], SpeedKt: speed}
	if m[3] != "" {
		if gust, err := strconv.Atoi(m[3][1:]); err == nil {
			w.GustKt = &gust
		}
	}
	return w
}

// normalizeVisibility converts the unlimited-visibility codes to a display
// string; everything else passes through verbatim. Source data mixes statute
// miles and meters by region, and a false unit conversion is worse than none.
func normalizeVisibility(tok string) string {
	if tok == "9999" || tok == "10000" {
		return "10+ km"
	}
	return tok
}

// parseSignedTemp decodes a METAR temperature token where a leading "M"
// marks a negative value, e.g. "M05" -> -5.
func parseSignedTemp(tok string) *int {
	neg := strings.HasPrefix(tok, "M")
	v, err := strconv.Atoi(strings.TrimPrefix(tok, "M"))
	if err != nil {
		return nil
	}
	if neg {
		v = -v
	}
	return &v
}
