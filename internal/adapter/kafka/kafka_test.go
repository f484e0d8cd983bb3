package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/weather-backfill/internal/config"
	"github.com/couchcryptid/weather-backfill/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 1, 16, 6, 0, 0, 0, time.UTC)
	event := domain.ForecastEvent{
		Record: domain.NewForecastRecord("northwest", "2024-01-15", domain.Weather{
			Snowfall12hr: domain.RangeSnowfall(2, 4),
			Discussion:   "Snow tonight.",
		}),
		BackfilledAt: now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("northwest|2024-01-15"), msg.Key)
	assert.Contains(t, string(msg.Value), `"snowfall_12hr":"2-4"`)
	assert.Contains(t, string(msg.Value), `"snowfall_24hr":null`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "zone_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("northwest"), msg.Headers[0].Value)
	assert.Equal(t, "forecast_date", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-01-15"), msg.Headers[1].Value)
	assert.Equal(t, "backfilled_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var roundtrip domain.ForecastEvent
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, event.Record, roundtrip.Record)
	assert.True(t, now.Equal(roundtrip.BackfilledAt))
}

func TestNewPublisher(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers: []string{"broker1:9092", "broker2:9092"},
		KafkaTopic:   "forecasts",
	}

	p := NewPublisher(cfg, nil)
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, "forecasts", p.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, p.writer.RequiredAcks)
	assert.IsType(t, &kafkago.Hash{}, p.writer.Balancer)
}
