package schema_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/reshape/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFormat(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		format string
		want   any
	}{
		{"date", "2024-03-01", schema.FormatDate, schema.Date{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}},
		{"date truncates time value", time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC), schema.FormatDate, schema.Date{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}},
		{"date keeps date value", schema.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), schema.FormatDate, schema.Date{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}},
		{"date-time with Z", "2024-03-01T10:20:30Z", schema.FormatDateTime, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"date-time with fraction", "2024-03-01T10:20:30.5Z", schema.FormatDateTime, time.Date(2024, 3, 1, 10, 20, 30, 500000000, time.UTC)},
		{"date-time without zone", "2024-03-01T10:20:30", schema.FormatDateTime, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"date-time with space", "2024-03-01 10:20:30", schema.FormatDateTime, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"date-time minute precision", "2024-01-15T10:30", schema.FormatDateTime, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"date-time minute precision with Z", "2024-01-15T10:30Z", schema.FormatDateTime, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"date-time minute precision with offset", "2024-01-15T10:30+01:00", schema.FormatDateTime, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"date-time basic offset", "2024-01-15T10:30:00+0530", schema.FormatDateTime, time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC)},
		{"date-time basic offset with fraction", "2024-01-15T10:30:00.25-0100", schema.FormatDateTime, time.Date(2024, 1, 15, 11, 30, 0, 250000000, time.UTC)},
		{"date-time from bare date", "2024-01-15", schema.FormatDateTime, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"date-time from date value", schema.NewDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), schema.FormatDateTime, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"email", "  John.Doe@Example.COM ", schema.FormatEmail, "john.doe@example.com"},
		{"uri", "  https://Example.com/Path  ", schema.FormatURI, "https://Example.com/Path"},
		{"uuid", " 550E8400-E29B-41D4-A716-446655440000", schema.FormatUUID, "550e8400-e29b-41d4-a716-446655440000"},
		{"unknown format", " Keep Me ", "hostname", " Keep Me "},
		{"no format", 12, "", 12},
		{"nil", nil, schema.FormatEmail, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schema.ApplyFormat(tt.value, tt.format)
			require.NoError(t, err)
			if want, ok := tt.want.(time.Time); ok {
				require.IsType(t, time.Time{}, got)
				assert.True(t, want.Equal(got.(time.Time)), "want %v, got %v", want, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_Rendering(t *testing.T) {
	d := schema.NewDate(time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2024-01-15", d.String())

	b, err := json.Marshal(map[string]any{"day": d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-01-15"}`, string(b))

	var back schema.Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-15"`), &back))
	assert.Equal(t, d, back)
}

func TestApplyFormat_DateTimeOffset(t *testing.T) {
	got, err := schema.ApplyFormat("2024-03-01T10:20:30+02:00", schema.FormatDateTime)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 1, 8, 20, 30, 0, time.UTC).Equal(got.(time.Time)))
}

func TestApplyFormat_Failure(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		format string
	}{
		{"bad date", "01/03/2024", schema.FormatDate},
		{"date-time given to date", "2024-03-01T10:20:30Z", schema.FormatDate},
		{"bad date-time", "yesterday", schema.FormatDateTime},
		{"non text date", int64(20240301), schema.FormatDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schema.ApplyFormat(tt.value, tt.format)
			assert.Equal(t, tt.value, got, "original value is kept")
			var ferr *schema.FormatError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.format, ferr.Format)
		})
	}
}
