package harness

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/roach88/waggle/internal/reconcile"
	"github.com/roach88/waggle/internal/tsv"
)

// RenderPlan serializes a plan into a stable line format for golden file
// comparison. Timestamps render in UTC; floats use the shortest form.
func RenderPlan(plan reconcile.Plan) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "plan: %s\n", plan.Summary())

	for _, c := range plan.Creates {
		fmt.Fprintf(&b, "create ts=%s value=%s comment=%q requestid=%s\n",
			c.Timestamp.UTC().Format(tsv.TimestampLayout),
			formatValue(c.Value), c.Comment, c.RequestID)
	}
	for _, u := range plan.Updates {
		fmt.Fprintf(&b, "update id=%s", u.ID)
		if u.Timestamp != nil {
			fmt.Fprintf(&b, " ts=%s", u.Timestamp.UTC().Format(tsv.TimestampLayout))
		}
		if u.Value != nil {
			fmt.Fprintf(&b, " value=%s", formatValue(*u.Value))
		}
		if u.Comment != nil {
			fmt.Fprintf(&b, " comment=%q", *u.Comment)
		}
		b.WriteString("\n")
	}
	for _, id := range plan.Deletes {
		fmt.Fprintf(&b, "delete id=%s\n", id)
	}
	return b.Bytes()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
