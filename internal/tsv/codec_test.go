package tsv

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/record"
)

// A fixed offset keeps encode output independent of the machine's zone.
var testZone = time.FixedZone("UTC+2", 2*3600)

func testRows() []record.Row {
	return []record.Row{
		record.FromDatapoint(beeminder.Datapoint{
			ID:        "dp_abc123",
			Timestamp: time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC), // 09:00 in UTC+2
			Value:     12.5,
			Comment:   "Morning run",
		}),
		record.FromDatapoint(beeminder.Datapoint{
			ID:        "dp_def456",
			Timestamp: time.Date(2024, 1, 16, 7, 5, 0, 0, time.UTC),
			Value:     8,
			Comment:   "",
		}),
	}
}

func TestEncode_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testRows(), testZone))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "encode", buf.Bytes())
}

func TestRoundTrip_SameLocation(t *testing.T) {
	rows := testRows()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rows, testZone))

	decoded, err := Decode(&buf, testZone)
	require.NoError(t, err)
	require.Len(t, decoded, len(rows))

	for i, got := range decoded {
		want := rows[i]
		assert.Equal(t, want.ID, got.ID)
		assert.True(t, got.Timestamp.Equal(want.Timestamp), "row %d timestamp", i)
		assert.Equal(t, want.Value, got.Value)
		assert.Equal(t, want.Comment, got.Comment)
		assert.Nil(t, got.Original, "decoded rows carry no snapshot")
	}
}

func TestRoundTrip_DifferentLocationShiftsInstants(t *testing.T) {
	rows := testRows()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rows, testZone))

	otherZone := time.FixedZone("UTC+3", 3*3600)
	decoded, err := Decode(&buf, otherZone)
	require.NoError(t, err)

	// The wall-clock text is reinterpreted in the new zone, so the absolute
	// instant moves by the offset difference. Documented asymmetry.
	assert.True(t, decoded[0].Timestamp.Equal(rows[0].Timestamp.Add(-time.Hour)))
}

func TestDecode_EmptyIDColumnMeansNewRow(t *testing.T) {
	input := "TIMESTAMP\tVALUE\tCOMMENT\tID\n" +
		"2024-01-16 09:05:00\t8\t\t\n"

	rows, err := Decode(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].ID)
	assert.Equal(t, 8.0, rows[0].Value)
}

func TestDecode_MissingTrailingColumns(t *testing.T) {
	// Only timestamp and value present: comment and id default to empty.
	input := "TIMESTAMP\tVALUE\tCOMMENT\tID\n" +
		"2024-01-16 09:05:00\t3.5\n"

	rows, err := Decode(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Comment)
	assert.Empty(t, rows[0].ID)
}

func TestDecode_HeaderAlwaysSkipped(t *testing.T) {
	input := "TIMESTAMP\tVALUE\tCOMMENT\tID\n"

	rows, err := Decode(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecode_BlankLinesIgnored(t *testing.T) {
	input := "TIMESTAMP\tVALUE\tCOMMENT\tID\n" +
		"2024-01-16 09:05:00\t8\t\t\n" +
		"\n"

	rows, err := Decode(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDecode_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing value column", "2024-01-16 09:05:00"},
		{"unparseable value", "2024-01-16 09:05:00\tbanana\t\t"},
		{"unparseable timestamp", "yesterday\t8\t\t"},
		{"wrong timestamp pattern", "2024-01-16T09:05:00Z\t8\t\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "TIMESTAMP\tVALUE\tCOMMENT\tID\n" + tt.line + "\n"
			_, err := Decode(strings.NewReader(input), time.UTC)
			require.Error(t, err)
			assert.True(t, IsFormatError(err), "want FormatError, got %v", err)

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, 2, fe.Line)
			assert.Equal(t, tt.line, fe.Text)
		})
	}
}

func TestDecode_CommentKeptVerbatim(t *testing.T) {
	input := "TIMESTAMP\tVALUE\tCOMMENT\tID\n" +
		"2024-01-16 09:05:00\t8\t  spaced out  \tdp_1\n"

	rows, err := Decode(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "  spaced out  ", rows[0].Comment)
}

func TestEncode_ValueUsesShortestForm(t *testing.T) {
	rows := []record.Row{{Timestamp: time.Date(2024, 1, 16, 9, 5, 0, 0, time.UTC), Value: 8}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rows, time.UTC))
	assert.Contains(t, buf.String(), "\t8\t")
	assert.NotContains(t, buf.String(), "8.000000")
}

func TestDefaultLocation_NeverNil(t *testing.T) {
	assert.NotNil(t, DefaultLocation())
}
