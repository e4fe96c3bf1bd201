package taf

import (
	"regexp"
	"strconv"
	"strings"
)

// WindPeriod pairs a forecast validity window with the wind token found near
// it in the raw text. Window is either a "DDHH/DDHH" group or an "FM"-prefixed
// timestamp; WindToken is the raw wind group, e.g. "20010G20KT".
type WindPeriod struct {
	Window    string `json:"window"`
	WindToken string `json:"wind"`
}

// ExtremeKind tags a forecast temperature extreme.
type ExtremeKind string

const (
	ExtremeMax ExtremeKind = "max"
	ExtremeMin ExtremeKind = "min"
)

// TempExtreme is a decoded TX/TN group.
type TempExtreme struct {
	Kind   ExtremeKind `json:"kind"`
	ValueC int         `json:"value_c"`
}

var (
	windowRe  = regexp.MustCompile(`\d{4}/\d{4}`)
	windRe    = regexp.MustCompile(`(\d{3}V?\d{3})?(\d{3}|VRB)\d{2}(G\d{2})?KT`)
	fmRe      = regexp.MustCompile(`(FM\d{6}).{0,40}?((\d{3}|VRB)\d{2}(G\d{2})?KT)`)
	extremeRe = regexp.MustCompile(`T([XN])(M?\d{1,2})`)
)

// windLookahead limits how far past a validity window the wind search runs.
// The association is a proximity heuristic, not a grammar: a change group
// that runs unusually long can pair a wind with the wrong window.
const windLookahead = 120

// DecodeWindPeriods extracts forecast wind groups from raw TAF text. For
// every "DDHH/DDHH" validity window it searches the following text for a
// wind token and pairs the two; "FM"-prefixed change groups are collected as
// a fallback scan afterwards. Never fails; unmatched windows are skipped.
func DecodeWindPeriods(raw string) []WindPeriod {
	if raw == "" {
		return nil
	}

	var out []WindPeriod
	for _, loc := range windowRe.FindAllStringIndex(raw, -1) {
		end := loc[1] + windLookahead
		if end > len(raw) {
			end = len(raw)
		}
		tail := raw[loc[1]:end]
		if m := windRe.FindString(tail); m != "" {
			out = append(out, WindPeriod{
				Window:    raw[loc[0]:loc[1]],
				WindToken: m,
			})
		}
	}

	for _, m := range fmRe.FindAllStringSubmatch(raw, -1) {
		out = append(out, WindPeriod{Window: m[1], WindToken: m[2]})
	}

	return out
}

// DecodeTempExtremes extracts TX (max) and TN (min) temperature groups in
// order of occurrence. A leading "M" on the value marks a negative
// temperature. The trailing validity timestamp that normally follows these
// groups is ignored.
func DecodeTempExtremes(raw string) []TempExtreme {
	if raw == "" {
		return nil
	}

	var out []TempExtreme
	for _, m := range extremeRe.FindAllStringSubmatch(raw, -1) {
		v, err := strconv.Atoi(strings.TrimPrefix(m[2], "M"))
		if err != nil {
			continue
		}
		if strings.HasPrefix(m[2], "M") {
			v = -v
		}
		kind := ExtremeMax
		if m[1] == "N" {
			kind = ExtremeMin
		}
		out = append(out, TempExtreme{Kind: kind, ValueC: v})
	}
	return out
}
