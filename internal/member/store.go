package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NullInfinity/society-event-manager/internal/metrics"

	"github.com/uptrace/bun"
)

// FindRequest describes a lookup. The zero value searches without writing
// anything.
type FindRequest struct {
	Member Member

	// UpdateAttendance stamps last_attended on the matched rows.
	UpdateAttendance bool

	// Autofix overwrites the facet that did not locate the record with the
	// one supplied in Member.
	Autofix bool
}

// Match is the outcome of a successful lookup. FirstName and LastName are
// the stored values as found, before any autofix write.
type Match struct {
	FirstName string
	LastName  string
	Authority Authority

	// Matches counts the rows found under Authority. Duplicates are not
	// merged; the first row in insertion order wins.
	Matches int
}

type AddResult int

const (
	Inserted AddResult = iota + 1
	AlreadyPresent
)

func (r AddResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyPresent:
		return "already present"
	default:
		return "unknown"
	}
}

// Store is the member table together with its reconciliation rules.
//
// A Store holds one session on the database for its lifetime and is not
// safe for concurrent use. Writes run in a session transaction that is
// committed straight away in safe mode, and otherwise only when a new
// member is inserted or the Store is closed.
type Store struct {
	db      *bun.DB
	tx      *bun.Tx
	safe    bool
	closed  bool
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Store)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore takes ownership of db; Close releases it.
func NewStore(db *bun.DB, safe bool, opts ...Option) *Store {
	s := &Store{
		db:      db,
		safe:    safe,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  slog.Default(),
		metrics: metrics.NewMock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find locates a member, barcode first and then by name.
//
// Returns ErrBadMember for a member with neither barcode nor name and
// ErrNotFound when no row matches either key.
func (s *Store) Find(ctx context.Context, req FindRequest) (Match, error) {
	m := req.Member
	if m.Degenerate() {
		return Match{}, &BadMemberError{Member: m}
	}

	if key, ok := byBarcode(m); ok {
		rows, err := s.search(ctx, key)
		if err != nil {
			return Match{}, err
		}
		if len(rows) > 0 {
			return s.reconcile(ctx, req, key, rows)
		}
	}

	key, ok := byName(m)
	if !ok {
		return Match{}, &NotFoundError{Member: m}
	}
	rows, err := s.search(ctx, key)
	if err != nil {
		return Match{}, err
	}
	if len(rows) == 0 {
		return Match{}, &NotFoundError{Member: m}
	}
	return s.reconcile(ctx, req, key, rows)
}

// Add inserts m unless Find can already resolve it, in which case the
// lookup's attendance stamp and autofix are the only writes.
func (s *Store) Add(ctx context.Context, m Member) (AddResult, error) {
	if m.Degenerate() {
		return 0, &BadMemberError{Member: m}
	}

	_, err := s.Find(ctx, FindRequest{Member: m, UpdateAttendance: true, Autofix: true})
	switch {
	case err == nil:
		return AlreadyPresent, nil
	case !errors.Is(err, ErrNotFound):
		return 0, err
	}

	now := s.now()
	record := &Record{
		Barcode:      m.Barcode,
		FirstName:    m.Name.Given(),
		LastName:     m.Name.Last(),
		Affiliation:  m.Affiliation,
		DateJoined:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastAttended: now,
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	_, err = tx.NewInsert().Model(record).Returning("NULL").Exec(ctx)
	s.metrics.RecordQuery(ctx, "insert", tableName, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("insert member %s: %w", m, err)
	}

	if err := s.commit(); err != nil {
		return 0, err
	}

	s.metrics.RecordMemberAdded(ctx)
	s.logger.InfoContext(ctx, "member added", "barcode", m.Barcode, "name", m.Name.Full())
	return Inserted, nil
}

// Update writes the facet of m that authority does not name onto the rows
// found under authority. Unlike Find there is no fallback to the other key.
func (s *Store) Update(ctx context.Context, m Member, authority Authority) error {
	if m.Degenerate() {
		return &BadMemberError{Member: m}
	}
	if !m.Complete() {
		return &IncompleteMemberError{Member: m}
	}

	key, ok := keyFor(m, authority)
	if !ok {
		return &NotFoundError{Member: m}
	}
	rows, err := s.search(ctx, key)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &NotFoundError{Member: m}
	}

	fixed, err := s.autofix(ctx, m, key)
	if err != nil {
		return err
	}
	if fixed {
		return s.optionalCommit()
	}
	return nil
}

// Count returns the number of rows in the member table.
func (s *Store) Count(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := s.conn().NewSelect().Model((*Record)(nil)).Count(ctx)
	s.metrics.RecordQuery(ctx, "count", tableName, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

// Close commits any pending writes and releases the database. The
// database is released even when the commit fails.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	commitErr := s.commit()
	if commitErr != nil {
		s.logger.Error("final commit failed", "error", commitErr)
	}
	if err := s.db.Close(); err != nil {
		return errors.Join(commitErr, fmt.Errorf("close database: %w", err))
	}
	return commitErr
}

func (s *Store) reconcile(ctx context.Context, req FindRequest, key predicate, rows []Record) (Match, error) {
	match := Match{
		FirstName: rows[0].FirstName,
		LastName:  rows[0].LastName,
		Authority: key.authority,
		Matches:   len(rows),
	}
	if len(rows) > 1 {
		// TODO merge duplicate records once a merge policy is agreed.
		s.logger.WarnContext(ctx, "duplicate member records",
			"authority", key.authority.String(),
			"matches", len(rows),
		)
	}

	wrote := false
	if req.UpdateAttendance {
		if err := s.stampAttendance(ctx, key); err != nil {
			return Match{}, err
		}
		wrote = true
	}
	if req.Autofix {
		fixed, err := s.autofix(ctx, req.Member, key)
		if err != nil {
			return Match{}, err
		}
		wrote = wrote || fixed
	}
	if wrote {
		if err := s.optionalCommit(); err != nil {
			return Match{}, err
		}
	}
	return match, nil
}

func (s *Store) search(ctx context.Context, key predicate) ([]Record, error) {
	start := time.Now()
	var rows []Record
	err := s.conn().NewSelect().
		Model(&rows).
		Column("firstName", "lastName").
		Where(key.query, key.args...).
		OrderExpr("id ASC").
		Scan(ctx)

	s.metrics.RecordQuery(ctx, "select", tableName, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("search members by %s: %w", key.authority, err)
	}
	s.logger.DebugContext(ctx, "member search", "authority", key.authority.String(), "matches", len(rows))
	return rows, nil
}

func (s *Store) stampAttendance(ctx context.Context, key predicate) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = tx.NewUpdate().
		Model((*Record)(nil)).
		Set("? = ?", bun.Ident("last_attended"), s.now()).
		Where(key.query, key.args...).
		Exec(ctx)

	s.metrics.RecordQuery(ctx, "update", tableName, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("update attendance by %s: %w", key.authority, err)
	}
	s.metrics.RecordCheckIn(ctx, key.authority.String())
	return nil
}

// autofix copies the facet of m that did not locate the record onto the
// rows selected by key. It writes nothing when m lacks that facet.
func (s *Store) autofix(ctx context.Context, m Member, key predicate) (bool, error) {
	var set []assignment
	switch key.authority {
	case AuthorityBarcode:
		set = nameAssignments(m)
	case AuthorityName:
		if m.Barcode != "" {
			set = []assignment{{column: "barcode", value: m.Barcode}}
		}
	}
	if len(set) == 0 {
		return false, nil
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return false, err
	}

	start := time.Now()
	q := applySet(tx.NewUpdate().Model((*Record)(nil)), set)
	_, err = q.Set("? = ?", bun.Ident("updated_at"), s.now()).
		Where(key.query, key.args...).
		Exec(ctx)

	s.metrics.RecordQuery(ctx, "update", tableName, time.Since(start), err)

	if err != nil {
		return false, fmt.Errorf("autofix member by %s: %w", key.authority, err)
	}

	s.metrics.RecordAutofix(ctx, key.authority.String())
	s.logger.InfoContext(ctx, "member record autofixed",
		"authority", key.authority.String(),
		"barcode", m.Barcode,
		"name", m.Name.Full(),
	)
	return true, nil
}

func (s *Store) conn() bun.IDB {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Store) begin(ctx context.Context) (bun.IDB, error) {
	if s.tx == nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}
		s.tx = &tx
	}
	return s.tx, nil
}

// optionalCommit flushes pending writes in safe mode only.
func (s *Store) optionalCommit() error {
	if !s.safe {
		return nil
	}
	return s.commit()
}

func (s *Store) commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
