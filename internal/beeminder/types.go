package beeminder

import (
	"encoding/json"
	"time"
)

// Datapoint is a single timestamped observation on a goal.
// IDs are assigned by the server and never produced locally.
type Datapoint struct {
	ID        string
	Timestamp time.Time
	Value     float64
	Comment   string
	Daystamp  string
	UpdatedAt time.Time
	RequestID string
}

type datapointJSON struct {
	ID        string  `json:"id"`
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
	Comment   *string `json:"comment"`
	Daystamp  string  `json:"daystamp"`
	UpdatedAt int64   `json:"updated_at"`
	RequestID *string `json:"requestid"`
}

// UnmarshalJSON decodes the API representation: unix-second timestamps and
// nullable comment/requestid. A null comment and an empty comment are the
// same thing as far as this tool is concerned, so both land as "".
func (d *Datapoint) UnmarshalJSON(data []byte) error {
	var raw datapointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.ID = raw.ID
	d.Timestamp = time.Unix(raw.Timestamp, 0).UTC()
	d.Value = raw.Value
	if raw.Comment != nil {
		d.Comment = *raw.Comment
	} else {
		d.Comment = ""
	}
	d.Daystamp = raw.Daystamp
	d.UpdatedAt = time.Unix(raw.UpdatedAt, 0).UTC()
	if raw.RequestID != nil {
		d.RequestID = *raw.RequestID
	}
	return nil
}

// MarshalJSON encodes a datapoint back into the API shape. Used by the
// backup exporter and by the batch-create payload.
func (d Datapoint) MarshalJSON() ([]byte, error) {
	raw := datapointJSON{
		ID:        d.ID,
		Timestamp: d.Timestamp.Unix(),
		Value:     d.Value,
		Daystamp:  d.Daystamp,
		UpdatedAt: d.UpdatedAt.Unix(),
	}
	if d.Comment != "" {
		raw.Comment = &d.Comment
	}
	if d.RequestID != "" {
		raw.RequestID = &d.RequestID
	}
	return json.Marshal(raw)
}

// CreateDatapoint is the payload for creating a datapoint. A zero Timestamp
// means "let the server pick now". RequestID is the server-side dedup token:
// resubmitting a create with the same RequestID is a no-op, which is what
// makes retrying a partially applied plan safe.
type CreateDatapoint struct {
	Value     float64    `json:"value"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Comment   string     `json:"comment,omitempty"`
	Daystamp  string     `json:"daystamp,omitempty"`
	RequestID string     `json:"requestid,omitempty"`
}

// MarshalJSON emits unix-second timestamps, matching the batch endpoint.
func (c CreateDatapoint) MarshalJSON() ([]byte, error) {
	type alias struct {
		Value     float64 `json:"value"`
		Timestamp *int64  `json:"timestamp,omitempty"`
		Comment   string  `json:"comment,omitempty"`
		Daystamp  string  `json:"daystamp,omitempty"`
		RequestID string  `json:"requestid,omitempty"`
	}
	a := alias{
		Value:     c.Value,
		Comment:   c.Comment,
		Daystamp:  c.Daystamp,
		RequestID: c.RequestID,
	}
	if c.Timestamp != nil {
		ts := c.Timestamp.Unix()
		a.Timestamp = &ts
	}
	return json.Marshal(a)
}

// UpdateDatapoint is the payload for updating an existing datapoint.
// Nil fields are left untouched on the server. A non-nil empty Comment
// explicitly clears the comment.
type UpdateDatapoint struct {
	ID        string
	Timestamp *time.Time
	Value     *float64
	Comment   *string
}

// GoalSummary is the lean goal representation returned by the goals listing.
type GoalSummary struct {
	Slug      string
	Title     string
	GoalType  string
	Limsum    string
	Safebuf   int
	Pledge    float64
	Queued    bool
	Lastday   time.Time
	Losedate  time.Time
	UpdatedAt time.Time
}

type goalSummaryJSON struct {
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	GoalType  string  `json:"goal_type"`
	Limsum    string  `json:"limsum"`
	Safebuf   int     `json:"safebuf"`
	Pledge    float64 `json:"pledge"`
	Queued    bool    `json:"queued"`
	Lastday   int64   `json:"lastday"`
	Losedate  int64   `json:"losedate"`
	UpdatedAt int64   `json:"updated_at"`
}

func (g *GoalSummary) UnmarshalJSON(data []byte) error {
	var raw goalSummaryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Slug = raw.Slug
	g.Title = raw.Title
	g.GoalType = raw.GoalType
	g.Limsum = raw.Limsum
	g.Safebuf = raw.Safebuf
	g.Pledge = raw.Pledge
	g.Queued = raw.Queued
	g.Lastday = time.Unix(raw.Lastday, 0).UTC()
	g.Losedate = time.Unix(raw.Losedate, 0).UTC()
	g.UpdatedAt = time.Unix(raw.UpdatedAt, 0).UTC()
	return nil
}

func (g GoalSummary) MarshalJSON() ([]byte, error) {
	raw := goalSummaryJSON{
		Slug:      g.Slug,
		Title:     g.Title,
		GoalType:  g.GoalType,
		Limsum:    g.Limsum,
		Safebuf:   g.Safebuf,
		Pledge:    g.Pledge,
		Queued:    g.Queued,
		Lastday:   g.Lastday.Unix(),
		Losedate:  g.Losedate.Unix(),
		UpdatedAt: g.UpdatedAt.Unix(),
	}
	return json.Marshal(raw)
}

// BatchCreateResult is the response of the batch-create endpoint. The API
// returns a bare array when everything succeeded, or an object with
// successes/errors when some items were rejected.
type BatchCreateResult struct {
	Successes []Datapoint
	Errors    []json.RawMessage
}

func (r *BatchCreateResult) UnmarshalJSON(data []byte) error {
	var all []Datapoint
	if err := json.Unmarshal(data, &all); err == nil {
		r.Successes = all
		r.Errors = nil
		return nil
	}
	var partial struct {
		Successes []Datapoint       `json:"successes"`
		Errors    []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return err
	}
	r.Successes = partial.Successes
	r.Errors = partial.Errors
	return nil
}
