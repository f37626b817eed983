// Package logconv converts the check history to other formats.
package logconv

import (
	"encoding/csv"
	"io"
	"strconv"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

func ToCSV(w io.Writer, rs []api.Record) error {
	c := csv.NewWriter(w)

	err := c.Write([]string{"timestamp", "id", "status", "latency", "diagnostic"})
	if err != nil {
		return err
	}

	for _, r := range rs {
		err := c.Write([]string{
			api.FormatTime(r.Timestamp),
			r.ID,
			r.Status.String(),
			strconv.FormatInt(r.Latency.Milliseconds(), 10),
			r.Diagnostic,
		})
		if err != nil {
			return err
		}
	}

	c.Flush()

	return c.Error()
}
