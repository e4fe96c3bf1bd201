package airports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
)

// csvRow mirrors the OurAirports column names. Both the current
// (iata_code/icao_code) and legacy (iata/icao) header spellings are mapped;
// columns absent from the file simply leave their field empty.
type csvRow struct {
	Ident      string `csv:"ident"`
	Name       string `csv:"name"`
	Latitude   string `csv:"latitude_deg"`
	Longitude  string `csv:"longitude_deg"`
	Country    string `csv:"iso_country"`
	IATACode   string `csv:"iata_code"`
	ICAOCode   string `csv:"icao_code"`
	IATALegacy string `csv:"iata"`
	ICAOLegacy string `csv:"icao"`
}

// LoadCSV reads airport records from an OurAirports-format CSV file. Rows
// without usable coordinates are dropped.
func LoadCSV(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open airports file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV decodes airport records from CSV data with a header row.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	var records []Record
	for {
		var row csvRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode airports CSV: %w", err)
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row.Latitude), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(row.Longitude), 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		iata := row.IATACode
		if iata == "" {
			iata = row.IATALegacy
		}
		icao := row.ICAOCode
		if icao == "" {
			icao = row.ICAOLegacy
		}

		rec := Record{
			Ident:   strings.TrimSpace(row.Ident),
			ICAO:    strings.ToUpper(strings.TrimSpace(icao)),
			IATA:    strings.ToUpper(strings.TrimSpace(iata)),
			Name:    strings.TrimSpace(row.Name),
			Country: strings.TrimSpace(row.Country),
			Lat:     lat,
			Lon:     lon,
		}
		if rec.ICAO == "" && rec.Ident == "" {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
