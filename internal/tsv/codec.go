package tsv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/waggle/internal/record"
)

// TimestampLayout is the fixed timestamp pattern, second resolution,
// rendered in the location passed to Encode/Decode.
const TimestampLayout = "2006-01-02 15:04:05"

const header = "TIMESTAMP\tVALUE\tCOMMENT\tID"

// DefaultLocation returns the process's local time zone, or UTC when no
// local zone can be determined. The text format needs some offset to render,
// so an unavailable zone degrades to UTC rather than failing.
func DefaultLocation() *time.Location {
	if time.Local == nil {
		return time.UTC
	}
	return time.Local
}

// Encode writes rows as tab-separated text, timestamps rendered in loc.
func Encode(w io.Writer, rows []record.Row, loc *time.Location) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, header); err != nil {
		return err
	}
	for _, row := range rows {
		ts := row.Timestamp.In(loc).Format(TimestampLayout)
		value := strconv.FormatFloat(row.Value, 'g', -1, 64)
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n", ts, value, row.Comment, row.ID); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode parses tab-separated text back into rows, interpreting timestamps
// in loc. The header line is always skipped; fully blank lines are ignored
// (editors tend to leave one at the end).
//
// Decoded rows never carry a snapshot: an empty ID column means a new row,
// and a non-empty ID is matched back to the fetched set by the diff layer.
// An ID that matches nothing fetched is not an error here.
func Decode(r io.Reader, loc *time.Location) ([]record.Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows []record.Row
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			continue // header
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		row, err := decodeLine(line, lineNo, loc)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return rows, nil
}

func decodeLine(line string, lineNo int, loc *time.Location) (record.Row, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return record.Row{}, &FormatError{
			Line:   lineNo,
			Text:   line,
			Reason: "expected at least timestamp and value columns",
		}
	}

	ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(fields[0]), loc)
	if err != nil {
		return record.Row{}, &FormatError{
			Line:   lineNo,
			Text:   line,
			Reason: fmt.Sprintf("timestamp must match %q", TimestampLayout),
			Err:    err,
		}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return record.Row{}, &FormatError{
			Line:   lineNo,
			Text:   line,
			Reason: "value is not a number",
			Err:    err,
		}
	}

	var comment string
	if len(fields) > 2 {
		comment = fields[2]
	}
	var id string
	if len(fields) > 3 {
		id = strings.TrimSpace(fields[3])
	}

	return record.Row{
		ID:        id,
		Timestamp: ts,
		Value:     value,
		Comment:   comment,
	}, nil
}
