// Package checkin runs the operator-facing flows on top of the member store:
// event check-in and bulk enrolment.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/NullInfinity/society-event-manager/internal/member"
)

const (
	commandQuit   = "QUIT"
	commandOneOff = "ONE"

	DefaultBarcodeLength = 7
)

// Registry is the part of member.Store a session needs.
type Registry interface {
	Find(ctx context.Context, req member.FindRequest) (member.Match, error)
	Add(ctx context.Context, m member.Member) (member.AddResult, error)
}

// Summary tallies one event. Attended includes new sign-ups and one-offs.
type Summary struct {
	Attended   int
	NewMembers int
	OneOffs    int
}

// Members is the number of attendees who were already members.
func (s Summary) Members() int {
	return s.Attended - s.NewMembers - s.OneOffs
}

func (s Summary) String() string {
	return fmt.Sprintf(`Attendance Summary
------------------
Members:        %d
New Signups:    %d
One offs:       %d
Total:          %d`, s.Members(), s.NewMembers, s.OneOffs, s.Attended)
}

// Session checks attendees in one barcode at a time.
type Session struct {
	registry      Registry
	prompt        *prompter
	out           io.Writer
	memberLog     io.Writer
	barcodeLength int
	logger        *slog.Logger
	summary       Summary
}

type Option func(*Session)

// WithBarcodeLength keeps only the first n characters of each scanned
// barcode. Zero disables truncation.
func WithBarcodeLength(n int) Option {
	return func(s *Session) { s.barcodeLength = n }
}

// WithMemberLog sets where NEWMEMBER lines are written.
func WithMemberLog(w io.Writer) Option {
	return func(s *Session) { s.memberLog = w }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func NewSession(registry Registry, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		registry:      registry,
		prompt:        newPrompter(in, out),
		out:           out,
		memberLog:     io.Discard,
		barcodeLength: DefaultBarcodeLength,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads barcodes until QUIT or end of input and returns the tally.
// A storage error stops the session; the tally so far is returned with it.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	for {
		if err := ctx.Err(); err != nil {
			return s.summary, err
		}

		input, ok := s.prompt.ask("Enter barcode (or QUIT to exit): ")
		if !ok || input == commandQuit {
			break
		}

		switch input {
		case "":
			continue
		case commandOneOff:
			s.summary.OneOffs++
			s.summary.Attended++
			continue
		}

		if err := s.checkIn(ctx, s.truncate(input)); err != nil {
			return s.summary, err
		}
	}

	s.logger.InfoContext(ctx, "check-in session finished",
		"attended", s.summary.Attended,
		"new_members", s.summary.NewMembers,
		"one_offs", s.summary.OneOffs,
	)
	return s.summary, s.prompt.err()
}

func (s *Session) truncate(barcode string) string {
	if s.barcodeLength <= 0 {
		return barcode
	}
	r := []rune(barcode)
	if len(r) <= s.barcodeLength {
		return barcode
	}
	return string(r[:s.barcodeLength])
}

func (s *Session) checkIn(ctx context.Context, barcode string) error {
	match, err := s.registry.Find(ctx, member.FindRequest{
		Member:           member.Member{Barcode: barcode},
		UpdateAttendance: true,
	})
	switch {
	case err == nil:
		fmt.Fprintln(s.out, member.NewName(match.FirstName, match.LastName).Full())
		s.summary.Attended++
		return nil
	case !errors.Is(err, member.ErrNotFound):
		return fmt.Errorf("check in %s: %w", barcode, err)
	}

	return s.enrol(ctx, barcode)
}

// enrol asks for the name of an unknown barcode and adds the member.
func (s *Session) enrol(ctx context.Context, barcode string) error {
	fmt.Fprintln(s.out, "Not a member. Enter name to add member.")
	fmt.Fprintln(s.out, "Enter EOF or blank first and last name to cancel.")

	first, ok := s.prompt.ask("First name: ")
	var last string
	if ok {
		last, ok = s.prompt.ask("Last name: ")
	}
	if !ok {
		s.summary.OneOffs++
		s.summary.Attended++
		s.cancel()
		return nil
	}
	if first == "" && last == "" {
		s.cancel()
		return nil
	}

	m := member.Member{Barcode: barcode, Name: member.NewName(first, last)}
	result, err := s.registry.Add(ctx, m)
	if err != nil {
		return fmt.Errorf("add member %s: %w", m, err)
	}

	if result == member.AlreadyPresent {
		// Matched by name: the stored barcode has been replaced.
		s.logger.InfoContext(ctx, "existing member re-carded", "barcode", barcode, "name", m.Name.Full())
	} else {
		fmt.Fprintf(s.memberLog, "NEWMEMBER: %s (%s)\n\n", m.Barcode, m.Name.Full())
		s.summary.NewMembers++
	}

	fmt.Fprintln(s.out, m.Name.Full())
	s.summary.Attended++
	return nil
}

func (s *Session) cancel() {
	fmt.Fprintln(s.out, "Cancelling adding member.")
	fmt.Fprintln(s.out)
}
