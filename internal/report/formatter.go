// Package report renders decoded weather into the human-readable bulletin
// served to clients.
package report

import (
	"fmt"
	"strings"

	"github.com/Avzar/AeroBot/internal/metar"
)

// tafPreviewLines is how many raw TAF lines the brief section shows.
const tafPreviewLines = 2

// FormatWeather renders a decoded METAR observation and the raw TAF into a
// multi-line bulletin. obs may be nil when no METAR was available, rawTAF
// may be empty when no TAF was available; both cases are marked explicitly
// rather than omitted.
func FormatWeather(code string, obs *metar.Observation, rawTAF string) string {
	var lines []string
	lines = append(lines, "Airport: "+strings.ToUpper(code))

	if obs != nil && obs.Raw != "" {
		if obs.Time != "" {
			lines = append(lines, fmt.Sprintf("Report time: %s (UTC)", obs.Time))
		}
		if obs.Wind != nil {
			lines = append(lines, "Wind: "+obs.Wind.String())
		}
		if obs.Visibility != "" {
			lines = append(lines, "Visibility: "+obs.Visibility)
		}
		if obs.Temperature != nil {
			if obs.Dewpoint != nil {
				lines = append(lines, fmt.Sprintf("Temperature: %d°C (dewpoint %d°C)", *obs.Temperature, *obs.Dewpoint))
			} else {
				lines = append(lines, fmt.Sprintf("Temperature: %d°C", *obs.Temperature))
			}
		}
		if obs.QNH != nil {
			lines = append(lines, fmt.Sprintf("Pressure: %d hPa", *obs.QNH))
		}
		if len(obs.Clouds) > 0 {
			tokens := make([]string, 0, len(obs.Clouds))
			for _, layer := range obs.Clouds {
				tokens = append(tokens, layer.Token())
			}
			lines = append(lines, "Clouds: "+strings.Join(tokens, ", "))
		}
	} else {
		lines = append(lines, "METAR not found")
	}

	lines = append(lines, "")
	if rawTAF != "" {
		lines = append(lines, "TAF (brief):")
		lines = append(lines, tafPreview(rawTAF))
	} else {
		lines = append(lines, "TAF not found")
	}

	return strings.Join(lines, "\n")
}

func tafPreview(rawTAF string) string {
	all := strings.Split(rawTAF, "\n")
	if len(all) > tafPreviewLines {
		all = all[:tafPreviewLines]
	}
	return strings.Join(all, "\n")
}

// FormatNOTAMs renders a NOTAM list into the summary string served to
// clients: at most maxEntries entries, each truncated to maxEntryLen runes.
func FormatNOTAMs(code string, notams []string) string {
	code = strings.ToUpper(code)
	if len(notams) == 0 {
		return fmt.Sprintf("No active NOTAMs for %s.", code)
	}

	const (
		maxEntries  = 6
		maxEntryLen = 350
	)

	shown := notams
	if len(shown) > maxEntries {
		shown = shown[:maxEntries]
	}

	lines := []string{fmt.Sprintf("NOTAMs for %s (%d):", code, len(notams))}
	for _, n := range shown {
		n = strings.TrimSpace(strings.ReplaceAll(n, "\n", " "))
		if runes := []rune(n); len(runes) > maxEntryLen {
			n = string(runes[:maxEntryLen]) + "…"
		}
		lines = append(lines, "- "+n)
	}
	return strings.Join(lines, "\n")
}
