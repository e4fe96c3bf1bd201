// aerobotctl decodes aviation weather offline and queries the airport
// directory without a running server.
//
// Usage:
//
//	aerobotctl decode "UAAA 010600Z 18005KT 9999 FEW020 22/14 Q1015"
//	aerobotctl decode -f bulletin.txt
//	cat bulletin.txt | aerobotctl decode
//	aerobotctl search -csv assets/airports.csv almaty
//	aerobotctl nearby -csv assets/airports.csv -lat 43.35 -lon 77.04
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/Avzar/AeroBot/internal/airports"
	"github.com/Avzar/AeroBot/internal/metar"
	"github.com/Avzar/AeroBot/internal/taf"
	"github.com/Avzar/AeroBot/pkg/logger"
)

var (
	labelColor   = color.New(color.FgCyan)
	valueColor   = color.New(color.FgWhite)
	sectionColor = color.New(color.FgBlue)
	numberColor  = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "decode":
		err = runDecode(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "nearby":
		err = runNearby(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: aerobotctl <decode|search|nearby> [flags] [args]")
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	filePath := fs.String("f", "", "Read the raw bulletin from a file instead of arguments")
	noColor := fs.Bool("no-color", false, "Disable color output")
	fs.Parse(args)

	if *noColor {
		color.NoColor = true
	}

	raw, err := readBulletin(fs.Args(), *filePath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("no bulletin text given")
	}

	printDecoded(raw)
	return nil
}

func readBulletin(args []string, filePath string) (string, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("reading bulletin file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	// Fall back to piped stdin.
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return "", nil
}

func printDecoded(raw string) {
	obs := metar.Decode(raw)

	sectionColor.Println("METAR")
	printField("Raw", firstLine(obs.Raw))
	if obs.Time != "" {
		printField("Time", obs.Time+" UTC")
	}
	if obs.Wind != nil {
		printField("Wind", obs.Wind.String())
	}
	if obs.Visibility != "" {
		printField("Visibility", obs.Visibility)
	}
	if obs.Temperature != nil {
		printNumberField("Temperature", fmt.Sprintf("%d°C", *obs.Temperature))
	}
	if obs.Dewpoint != nil {
		printNumberField("Dewpoint", fmt.Sprintf("%d°C", *obs.Dewpoint))
	}
	if obs.QNH != nil {
		printNumberField("Pressure", fmt.Sprintf("%d hPa", *obs.QNH))
	}
	for _, layer := range obs.Clouds {
		printField("Clouds", layer.Token())
	}

	periods := taf.DecodeWindPeriods(raw)
	extremes := taf.DecodeTempExtremes(raw)
	if len(periods) == 0 && len(extremes) == 0 {
		return
	}

	fmt.Println()
	sectionColor.Println("TAF")
	for _, p := range periods {
		printField("Wind "+p.Window, p.WindToken)
	}
	for _, e := range extremes {
		kind := string(e.Kind)
		if kind != "" {
			kind = strings.ToUpper(kind[:1]) + kind[1:]
		}
		printNumberField(kind+" temperature", fmt.Sprintf("%d°C", e.ValueC))
	}
}

func printField(label, value string) {
	labelColor.Printf("  %-14s", label+":")
	valueColor.Println(value)
}

func printNumberField(label, value string) {
	labelColor.Printf("  %-14s", label+":")
	numberColor.Println(value)
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	csvPath := fs.String("csv", "assets/airports.csv", "Path to the airports CSV database")
	limit := fs.Int("limit", 8, "Maximum number of results")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("search needs a query, e.g.: aerobotctl search almaty")
	}
	query := strings.Join(fs.Args(), " ")

	directory, err := loadDirectory(*csvPath)
	if err != nil {
		return err
	}

	results := directory.Search(query, *limit)
	if len(results) == 0 {
		fmt.Println("No airports found.")
		return nil
	}
	for _, rec := range results {
		printAirport(rec, -1)
	}
	return nil
}

func runNearby(args []string) error {
	fs := flag.NewFlagSet("nearby", flag.ExitOnError)
	csvPath := fs.String("csv", "assets/airports.csv", "Path to the airports CSV database")
	lat := fs.Float64("lat", 0, "Latitude of the search point")
	lon := fs.Float64("lon", 0, "Longitude of the search point")
	radiusKm := fs.Float64("radius", 200, "Search radius in km")
	limit := fs.Int("limit", 5, "Maximum number of results")
	fs.Parse(args)

	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return fmt.Errorf("lat/lon out of range")
	}

	directory, err := loadDirectory(*csvPath)
	if err != nil {
		return err
	}

	results := directory.Nearby(*lat, *lon, *radiusKm, *limit)
	if len(results) == 0 {
		fmt.Println("No airports within range.")
		return nil
	}
	for _, n := range results {
		printAirport(n.Record, n.DistanceKm)
	}
	return nil
}

func loadDirectory(csvPath string) (*airports.Directory, error) {
	records, err := airports.LoadCSV(csvPath)
	if err != nil {
		return nil, fmt.Errorf("loading airport database: %w", err)
	}
	directory := airports.NewDirectory(logger.NewNop())
	directory.Load(records)
	return directory, nil
}

func printAirport(rec airports.Record, distanceKm float64) {
	labelColor.Printf("%-6s", rec.Code())
	valueColor.Printf("%s", rec.Name)
	if rec.IATA != "" {
		valueColor.Printf(" (%s)", rec.IATA)
	}
	if rec.Country != "" {
		valueColor.Printf(" [%s]", rec.Country)
	}
	if distanceKm >= 0 {
		numberColor.Printf("  %.1f km", distanceKm)
	}
	fmt.Println()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
