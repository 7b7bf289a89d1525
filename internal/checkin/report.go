package checkin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const reportRule = "----------"

// AppendReport writes a dated summary block to w.
func AppendReport(w io.Writer, day time.Time, summary Summary) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n%s\n\n", day.Format(time.DateOnly), reportRule, summary, reportRule)
	return err
}

// WriteReport appends a dated summary to the file at path, creating it if
// needed.
func WriteReport(path string, day time.Time, summary Summary) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := AppendReport(f, day, summary); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// MemberLogName is the per-day file NEWMEMBER lines are written to.
func MemberLogName(day time.Time) string {
	return day.Format(time.DateOnly) + ".log"
}
