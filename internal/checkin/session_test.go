package checkin_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/NullInfinity/society-event-manager/internal/checkin"
	"github.com/NullInfinity/society-event-manager/internal/member"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	members map[string]member.Match
	finds   []member.FindRequest
	added   []member.Member
	findErr error
	addErr  error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{members: map[string]member.Match{
		"1234123": {FirstName: "Ted", LastName: "Bobson", Authority: member.AuthorityBarcode, Matches: 1},
	}}
}

func (f *fakeRegistry) Find(_ context.Context, req member.FindRequest) (member.Match, error) {
	f.finds = append(f.finds, req)
	if f.findErr != nil {
		return member.Match{}, f.findErr
	}
	if m, ok := f.members[req.Member.Barcode]; ok {
		return m, nil
	}
	return member.Match{}, &member.NotFoundError{Member: req.Member}
}

func (f *fakeRegistry) Add(_ context.Context, m member.Member) (member.AddResult, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	if _, ok := f.members[m.Barcode]; ok {
		return member.AlreadyPresent, nil
	}
	f.added = append(f.added, m)
	f.members[m.Barcode] = member.Match{FirstName: m.Name.Given(), LastName: m.Name.Last()}
	return member.Inserted, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runSession(t *testing.T, registry checkin.Registry, input string, opts ...checkin.Option) (checkin.Summary, string, error) {
	t.Helper()

	var out bytes.Buffer
	opts = append([]checkin.Option{checkin.WithLogger(quietLogger())}, opts...)
	session := checkin.NewSession(registry, strings.NewReader(input), &out, opts...)
	summary, err := session.Run(context.Background())
	return summary, out.String(), err
}

func TestSession_Run(t *testing.T) {
	t.Run("KnownMemberAndOneOff", func(t *testing.T) {
		registry := newFakeRegistry()

		summary, out, err := runSession(t, registry, "1234123\nONE\n\nQUIT\n1234123\n")
		require.NoError(t, err)

		assert.Equal(t, checkin.Summary{Attended: 2, OneOffs: 1}, summary)
		assert.Equal(t, 1, summary.Members())
		assert.Contains(t, out, "Ted Bobson\n")
		require.Len(t, registry.finds, 1, "input after QUIT is ignored")
		assert.True(t, registry.finds[0].UpdateAttendance)
		assert.False(t, registry.finds[0].Autofix)
	})

	t.Run("EndOfInputFinishes", func(t *testing.T) {
		summary, out, err := runSession(t, newFakeRegistry(), "1234123")
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Attended)
		assert.Equal(t, 2, strings.Count(out, "Enter barcode (or QUIT to exit): "))
	})

	t.Run("BarcodeTruncated", func(t *testing.T) {
		registry := newFakeRegistry()

		summary, _, err := runSession(t, registry, "12341234999\n")
		require.NoError(t, err)
		require.Len(t, registry.finds, 1)
		assert.Equal(t, "1234123", registry.finds[0].Member.Barcode)
		assert.Equal(t, 1, summary.Members())
	})

	t.Run("TruncationDisabled", func(t *testing.T) {
		registry := newFakeRegistry()
		registry.members["1234"] = member.Match{FirstName: "Ann", LastName: "Lee"}
		registry.members["12341234999"] = member.Match{FirstName: "Bill", LastName: "Rogers"}

		_, _, err := runSession(t, registry, "1234\n12341234999\n", checkin.WithBarcodeLength(0))
		require.NoError(t, err)
		require.Len(t, registry.finds, 2)
		assert.Equal(t, "1234", registry.finds[0].Member.Barcode)
		assert.Equal(t, "12341234999", registry.finds[1].Member.Barcode)
	})

	t.Run("NewMemberEnrolled", func(t *testing.T) {
		registry := newFakeRegistry()
		var memberLog bytes.Buffer

		summary, out, err := runSession(t, registry, "7654321\nBill\nRogers\n", checkin.WithMemberLog(&memberLog))
		require.NoError(t, err)

		require.Len(t, registry.added, 1)
		assert.Equal(t, "7654321", registry.added[0].Barcode)
		assert.True(t, registry.added[0].Name.Equal(member.NewName("Bill", "Rogers")))

		assert.Equal(t, "NEWMEMBER: 7654321 (Bill Rogers)\n\n", memberLog.String())
		assert.Equal(t, checkin.Summary{Attended: 1, NewMembers: 1}, summary)
		assert.Equal(t, 0, summary.Members())
		assert.Contains(t, out, "Not a member. Enter name to add member.")
		assert.Contains(t, out, "Bill Rogers\n")
	})

	t.Run("BlankNameCancels", func(t *testing.T) {
		registry := newFakeRegistry()

		summary, out, err := runSession(t, registry, "7654321\n\n  \n")
		require.NoError(t, err)
		assert.Empty(t, registry.added)
		assert.Equal(t, checkin.Summary{}, summary)
		assert.Contains(t, out, "Cancelling adding member.")
	})

	t.Run("EndOfInputDuringNameIsOneOff", func(t *testing.T) {
		registry := newFakeRegistry()

		summary, out, err := runSession(t, registry, "7654321\nBill\n")
		require.NoError(t, err)
		assert.Empty(t, registry.added)
		assert.Equal(t, checkin.Summary{Attended: 1, OneOffs: 1}, summary)
		assert.Equal(t, 0, summary.Members())
		assert.Contains(t, out, "Cancelling adding member.")
	})

	t.Run("NameMatchIsNotNewMember", func(t *testing.T) {
		registry := newFakeRegistry()
		registry.members["7654321"] = member.Match{FirstName: "Ted", LastName: "Bobson"}
		lookup := &missingBarcodeRegistry{fakeRegistry: registry}
		var memberLog bytes.Buffer

		summary, _, err := runSession(t, lookup, "7654321\nTed\nBobson\n", checkin.WithMemberLog(&memberLog))
		require.NoError(t, err)
		assert.Empty(t, memberLog.String())
		assert.Equal(t, checkin.Summary{Attended: 1}, summary)
		assert.Equal(t, 1, summary.Members())
	})

	t.Run("StorageErrorStops", func(t *testing.T) {
		registry := newFakeRegistry()
		registry.findErr = errors.New("disk I/O error")

		summary, _, err := runSession(t, registry, "1234123\n1234123\n")
		require.Error(t, err)
		assert.ErrorIs(t, err, registry.findErr)
		assert.Len(t, registry.finds, 1)
		assert.Equal(t, checkin.Summary{}, summary)
	})

	t.Run("AddErrorStops", func(t *testing.T) {
		registry := newFakeRegistry()
		registry.addErr = errors.New("database is locked")

		_, _, err := runSession(t, registry, "7654321\nBill\nRogers\n")
		assert.ErrorIs(t, err, registry.addErr)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		session := checkin.NewSession(newFakeRegistry(), strings.NewReader("1234123\n"), io.Discard,
			checkin.WithLogger(quietLogger()))
		_, err := session.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// missingBarcodeRegistry reports every barcode lookup as a miss.
type missingBarcodeRegistry struct {
	*fakeRegistry
}

func (r *missingBarcodeRegistry) Find(_ context.Context, req member.FindRequest) (member.Match, error) {
	r.finds = append(r.finds, req)
	return member.Match{}, &member.NotFoundError{Member: req.Member}
}

func TestSummary_String(t *testing.T) {
	summary := checkin.Summary{Attended: 10, NewMembers: 3, OneOffs: 2}

	want := `Attendance Summary
------------------
Members:        5
New Signups:    3
One offs:       2
Total:          10`
	assert.Equal(t, want, summary.String())
}
