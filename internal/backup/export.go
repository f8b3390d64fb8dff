package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/roach88/waggle/internal/beeminder"
)

// GoalBackup pairs a goal's state with its full datapoint list.
type GoalBackup struct {
	Summary    beeminder.GoalSummary `json:"goal"`
	Datapoints []beeminder.Datapoint `json:"datapoints"`
}

// Archive is the portable JSON form of an account backup.
type Archive struct {
	Username  string       `json:"username"`
	CreatedAt int64        `json:"created_at"`
	Goals     []GoalBackup `json:"goals"`
}

// NewArchive stamps an archive with the given creation time.
func NewArchive(username string, createdAt time.Time, goals []GoalBackup) Archive {
	return Archive{Username: username, CreatedAt: createdAt.Unix(), Goals: goals}
}

// WriteArchive renders the archive as indented JSON, one file per backup
// run, so it stays diffable and greppable without this tool.
func WriteArchive(w io.Writer, a Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}
