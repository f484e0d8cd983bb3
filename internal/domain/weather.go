package domain

import (
	"errors"
)

// ErrNoWeatherData is returned by ParseWeather when a product carries none of the weather metrics.
var ErrNoWeatherData = errors.New("product has no weather data")

// Weather holds the normalized weather metrics of one product.
type Weather struct {
	Temperature   Reading
	CloudCover    Reading
	WindSpeed     Reading
	WindDirection Reading
	Snowfall12hr  Snowfall
	Snowfall24hr  Snowfall
	Discussion    string

	// Unparsed holds snowfall text that could not be parsed, keyed by field name.
	Unparsed map[string]string
}

// ParseWeather normalizes a product detail into Weather. A detail is
// unparseable when none of its metric fields are present. Snowfall text that
// cannot be parsed is recorded in Unparsed and stored as absent.
func ParseWeather(detail ProductDetail) (Weather, error) {
	w := Weather{
		Temperature:   newReading(detail.Temperature),
		CloudCover:    newReading(detail.CloudCover),
		WindSpeed:     newReading(detail.WindSpeed),
		WindDirection: newReading(detail.WindDirection),
	}
	if s, ok := rawText(detail.Discussion); ok {
		w.Discussion = s
	}

	present := !w.Temperature.IsAbsent() || !w.CloudCover.IsAbsent() || !w.WindSpeed.IsAbsent() || !w.WindDirection.IsAbsent()
	for _, f := range []struct {
		name string
		raw  []byte
		dst  *Snowfall
	}{
		{"snowfall_12hr", detail.Snowfall12hr, &w.Snowfall12hr},
		{"snowfall_24hr", detail.Snowfall24hr, &w.Snowfall24hr},
	} {
		text, ok := rawText(f.raw)
		if !ok {
			continue
		}
		present = true
		sf, err := ParseSnowfall(text)
		if err != nil {
			if w.Unparsed == nil {
				w.Unparsed = make(map[string]string, 2)
			}
			w.Unparsed[f.name] = text
			continue
		}
		*f.dst = sf
	}

	if !present {
		return Weather{}, ErrNoWeatherData
	}
	return w, nil
}

// NewForecastRecord builds the stored record for one zone and date.
func NewForecastRecord(zoneID, forecastDate string, w Weather) ForecastRecord {
	return ForecastRecord{
		ZoneID:       zoneID,
		ForecastDate: forecastDate,
		Metrics: Metrics{
			Temperature:   w.Temperature,
			CloudCover:    w.CloudCover,
			WindSpeed:     w.WindSpeed,
			WindDirection: w.WindDirection,
			Snowfall12hr:  w.Snowfall12hr,
			Snowfall24hr:  w.Snowfall24hr,
			Unparsed:      w.Unparsed,
		},
		RawText: w.Discussion,
	}
}
