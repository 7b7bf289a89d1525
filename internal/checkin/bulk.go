package checkin

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/NullInfinity/society-event-manager/internal/member"
)

// BulkResult tallies a bulk enrolment run.
type BulkResult struct {
	Added          int
	AlreadyPresent int
	// Skipped counts entries missing a first name, last name or barcode.
	Skipped int
}

// Total is the number of complete entries handed to the store.
func (r BulkResult) Total() int {
	return r.Added + r.AlreadyPresent
}

// BulkAdd reads first name, last name and barcode triples from in until end
// of input. Complete triples are added; anything else is skipped.
func BulkAdd(ctx context.Context, registry Registry, in io.Reader, out io.Writer, logger *slog.Logger) (BulkResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var result BulkResult
	p := newPrompter(in, out)
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		first, ok := p.ask("Enter first name: ")
		if !ok {
			break
		}
		last, ok := p.ask("Enter last name: ")
		if !ok {
			break
		}
		barcode, ok := p.ask("Enter barcode: ")
		if !ok {
			break
		}

		if first == "" || last == "" || barcode == "" {
			result.Skipped++
			continue
		}

		m := member.Member{Barcode: barcode, Name: member.NewName(first, last)}
		added, err := registry.Add(ctx, m)
		if err != nil {
			return result, fmt.Errorf("add member %s: %w", m, err)
		}
		if added == member.AlreadyPresent {
			result.AlreadyPresent++
		} else {
			result.Added++
		}
	}

	logger.InfoContext(ctx, "bulk add finished",
		"added", result.Added,
		"already_present", result.AlreadyPresent,
		"skipped", result.Skipped,
	)
	return result, p.err()
}
