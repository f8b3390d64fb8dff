package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waggle/internal/beeminder"
)

var testTime = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func fetchedRow(t *testing.T) Row {
	t.Helper()
	return FromDatapoint(beeminder.Datapoint{
		ID:        "dp_abc123",
		Timestamp: testTime,
		Value:     5.0,
		Comment:   "x",
	})
}

func TestFromDatapoint_CapturesSnapshot(t *testing.T) {
	row := fetchedRow(t)

	require.NotNil(t, row.Original)
	assert.Equal(t, "dp_abc123", row.ID)
	assert.Equal(t, row.Timestamp, row.Original.Timestamp)
	assert.Equal(t, row.Value, row.Original.Value)
	assert.Equal(t, row.Comment, row.Original.Comment)
	assert.False(t, row.Deleted)
}

func TestModified_FreshRowIsUnmodified(t *testing.T) {
	row := fetchedRow(t)
	assert.False(t, row.Modified())
}

func TestModified_NoSnapshotIsAlwaysModified(t *testing.T) {
	row := NewRow(testTime)
	assert.True(t, row.Modified())
}

func TestModified_ValueChange(t *testing.T) {
	row := fetchedRow(t)
	row.Value = 7.0
	assert.True(t, row.Modified())
}

func TestModified_ValueWithinEpsilonIsUnmodified(t *testing.T) {
	row := fetchedRow(t)
	row.Value = 5.0 + ValueEpsilon/2
	assert.False(t, row.Modified())
}

func TestModified_TimestampChange(t *testing.T) {
	row := fetchedRow(t)
	row.Timestamp = testTime.Add(time.Second)
	assert.True(t, row.Modified())
}

func TestModified_TimestampEqualAcrossZones(t *testing.T) {
	row := fetchedRow(t)
	// Same instant rendered in a different zone is not an edit.
	row.Timestamp = testTime.In(time.FixedZone("CET", 3600))
	assert.False(t, row.Modified())
}

func TestModified_CommentChange(t *testing.T) {
	row := fetchedRow(t)
	row.Comment = "y"
	assert.True(t, row.Modified())
}

func TestModified_EmptyAndAbsentCommentAreEquivalent(t *testing.T) {
	row := FromDatapoint(beeminder.Datapoint{
		ID:        "dp_1",
		Timestamp: testTime,
		Value:     1,
		Comment:   "", // API null comment decodes to ""
	})
	row.Comment = ""
	assert.False(t, row.Modified())
}

func TestModified_NormalFormChangeIsNotAnEdit(t *testing.T) {
	// "é" precomposed vs "e" + combining acute accent.
	row := FromDatapoint(beeminder.Datapoint{
		ID:        "dp_1",
		Timestamp: testTime,
		Value:     1,
		Comment:   "café",
	})
	row.Comment = "café"
	assert.False(t, row.Modified())
}

func TestClassify_Totality(t *testing.T) {
	tests := []struct {
		name string
		row  func() Row
		want Disposition
	}{
		{"new row", func() Row { return NewRow(testTime) }, Create},
		{"new row tombstoned is discarded", func() Row {
			r := NewRow(testTime)
			r.Deleted = true
			return r
		}, Unchanged},
		{"fetched untouched", func() Row { return fetchedRow(t) }, Unchanged},
		{"fetched edited", func() Row {
			r := fetchedRow(t)
			r.Value = 9
			return r
		}, Update},
		{"fetched tombstoned", func() Row {
			r := fetchedRow(t)
			r.Deleted = true
			return r
		}, Delete},
		{"tombstone wins over edits", func() Row {
			r := fetchedRow(t)
			r.Value = 9
			r.Deleted = true
			return r
		}, Delete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.row()))
		})
	}
}

func TestMarker(t *testing.T) {
	fresh := fetchedRow(t)
	assert.Equal(t, " ", fresh.Marker())

	edited := fetchedRow(t)
	edited.Value = 9
	assert.Equal(t, "*", edited.Marker())

	added := NewRow(testTime)
	assert.Equal(t, "+", added.Marker())

	gone := fetchedRow(t)
	gone.Deleted = true
	assert.Equal(t, "-", gone.Marker())
}
