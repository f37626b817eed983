package logconv

import (
	"fmt"
	"io"
	"strings"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

var ltsvEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

func ToLTSV(w io.Writer, rs []api.Record) error {
	for _, r := range rs {
		_, err := fmt.Fprintf(
			w,
			"timestamp:%s\tid:%s\tstatus:%s\tlatency:%d",
			api.FormatTime(r.Timestamp),
			ltsvEscaper.Replace(r.ID),
			r.Status,
			r.Latency.Milliseconds(),
		)
		if err != nil {
			return err
		}

		if r.Diagnostic != "" {
			if _, err := fmt.Fprintf(w, "\tdiagnostic:%s", ltsvEscaper.Replace(r.Diagnostic)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}
