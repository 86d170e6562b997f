package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/models"
)

// Feed column headers of the CSV export.
const (
	HeaderObjectID        = "ObjectId"
	HeaderDateTime        = "DateTime"
	HeaderCaseNumber      = "Case_Number"
	HeaderDivisionName    = "Division_Name"
	HeaderCouncilDistrict = "Council_District"
	HeaderCrimeType       = "Crime_Type"
	HeaderCause           = "Cause"
	HeaderAddress         = "Address"
	HeaderNeighborhood    = "Neighborhood"
	HeaderZIPCode         = "ZIP_Code"
	HeaderAgeGroup        = "Age_Group"
	HeaderSex             = "Sex"
	HeaderRace            = "Race"
	HeaderLatitude        = "Latitude"
	HeaderLongitude       = "Longitude"
)

// UnknownValue replaces blank demographic and cause fields.
const UnknownValue = "Unknown"

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("required column missing")

var requiredHeaders = []string{HeaderObjectID, HeaderDateTime, HeaderCrimeType}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
}

// LoadCSV parses a feed export and writes it into the dataset tables.
// It returns the number of incidents loaded.
func (b *Builder) LoadCSV(ctx context.Context, r io.Reader, replace bool) (int, error) {
	incidents, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}

	if err := b.CreateSchema(ctx, replace); err != nil {
		return 0, err
	}

	if err := b.Insert(ctx, incidents); err != nil {
		return 0, err
	}

	return len(incidents), nil
}

// ParseCSV reads a feed export and normalizes every record: the DateTime
// column (epoch milliseconds or a date string) becomes a 'YYYY-MM-DD' date,
// label columns are trimmed and title-cased, and blank cause and victim
// fields become "Unknown".
func ParseCSV(r io.Reader) ([]models.Incident, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// Read header
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, h)
		}
	}

	// cases.Caser keeps state, so one per parse
	title := cases.Title(language.Und)

	var incidents []models.Incident
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		label := func(name string) string {
			return titleAfterNonLetters(title.String(field(name)))
		}

		inc, err := buildIncident(field, label)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		incidents = append(incidents, inc)
	}

	log.Info().Int("incidents", len(incidents)).Msg("Parsed incident feed")

	return incidents, nil
}

func buildIncident(field, label func(string) string) (models.Incident, error) {
	id, err := strconv.ParseInt(field(HeaderObjectID), 10, 64)
	if err != nil {
		return models.Incident{}, fmt.Errorf("invalid %s %q", HeaderObjectID, field(HeaderObjectID))
	}

	date, err := NormalizeDate(field(HeaderDateTime))
	if err != nil {
		return models.Incident{}, fmt.Errorf("incident %d: %w", id, err)
	}

	inc := models.Incident{
		ObjectID:        id,
		Date:            date,
		CaseNumber:      field(HeaderCaseNumber),
		DivisionName:    label(HeaderDivisionName),
		CouncilDistrict: parseDistrict(field(HeaderCouncilDistrict)),
		CrimeType:       label(HeaderCrimeType),
		Cause:           orUnknown(label(HeaderCause)),
		Victim: models.Demographics{
			AgeGroup: orUnknown(label(HeaderAgeGroup)),
			Sex:      orUnknown(label(HeaderSex)),
			Race:     orUnknown(label(HeaderRace)),
		},
	}

	address := field(HeaderAddress)
	neighborhood := label(HeaderNeighborhood)
	zip := strings.TrimSuffix(field(HeaderZIPCode), ".0")
	if address != "" || neighborhood != "" || zip != "" {
		inc.Location = &models.LocationLabel{
			Address:      address,
			Neighborhood: neighborhood,
			ZIPCode:      zip,
		}
	}

	inc.Geo = parseGeo(field(HeaderLatitude), field(HeaderLongitude))

	return inc, nil
}

// NormalizeDate turns a feed timestamp into a 'YYYY-MM-DD' date. Numeric
// values are epoch milliseconds in UTC; anything else must match one of the
// accepted date layouts.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty date")
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC().Format(constants.DateLayout), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return time.UnixMilli(int64(f)).UTC().Format(constants.DateLayout), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(constants.DateLayout), nil
		}
	}

	return "", fmt.Errorf("unrecognized date %q", raw)
}

func parseDistrict(raw string) *int64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	d := int64(f)
	return &d
}

// parseGeo returns nil unless both coordinates parse. The feed writes 0,0
// for incidents it could not place.
func parseGeo(lat, lon string) *models.GeoPoint {
	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil || math.IsNaN(latitude) {
		return nil
	}
	longitude, err := strconv.ParseFloat(lon, 64)
	if err != nil || math.IsNaN(longitude) {
		return nil
	}
	if latitude == 0 && longitude == 0 {
		return nil
	}
	return &models.GeoPoint{Latitude: latitude, Longitude: longitude}
}

func orUnknown(s string) string {
	if s == "" || strings.EqualFold(s, "nan") {
		return UnknownValue
	}
	return s
}

// titleAfterNonLetters upper-cases every letter that follows a non-letter,
// so "O'brien" becomes "O'Brien" and "1st" becomes "1St" as the feed's
// published labels spell them.
func titleAfterNonLetters(s string) string {
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsLetter(runes[i]) && !unicode.IsLetter(runes[i-1]) {
			runes[i] = unicode.ToTitle(runes[i])
		}
	}
	return string(runes)
}
