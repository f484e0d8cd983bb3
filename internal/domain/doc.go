// Package domain models avalanche.org weather products and the per-zone
// weather forecast records derived from them.
//
// # Data Source
//
// Weather products come from the avalanche.org public API
// (https://api.avalanche.org/v2/public). Each avalanche center publishes one or
// more weather bulletins a day; this service reads the Crested Butte Avalanche
// Center (CBAC) bulletins.
//
// # API Conventions
//
// Product list entries carry an integer id, an ISO-8601 published_time and the
// forecast zones the bulletin applies to:
//
//	{"id": 42, "published_time": "2024-01-15T18:00:00+00:00",
//	 "forecast_zone": [{"zone_id": "northwest_mountains", "name": "Northwest Mountains"}]}
//
// Product details carry the raw weather fields. Values are free text or
// numbers depending on who filled in the bulletin, so every metric is decoded
// as text:
//
//	"temperature": 20            → "20"
//	"wind_direction": "SW"       → "SW"
//	"snowfall_12hr": "2-4"       → range 2..4
//	"snowfall_24hr": null        → absent
//
// Snowfall format (inches):
//
//	"3", "3.5", "3\"", "3 in"    single value
//	"2-4", "2 - 4", "2 to 4"     range, reversed bounds are swapped
//	"<1"                         range 0..1
//	"T", "trace"                 single value 0
//
// # Zones
//
// avalanche.org zone ids are mapped to the internal zone ids used by the
// weather_forecasts table:
//
//	northwest_mountains → northwest
//	southeast_mountains → southeast
//
// Zones outside this mapping belong to other programs and are dropped.
//
// # Forecast Date
//
// A record's forecast_date is the calendar date prefix (first 10 characters)
// of the product's published_time, taken verbatim without time zone
// conversion. Records are unique per (zone_id, forecast_date); later saves for
// the same key overwrite earlier ones.
package domain
