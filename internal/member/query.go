package member

import (
	"strings"

	"github.com/uptrace/bun"
)

const tableName = "users"

// predicate is a parameterized WHERE clause selecting rows by one identity
// facet.
type predicate struct {
	authority Authority
	query     string
	args      []any
}

// assignment is a single column = value pair of an UPDATE.
type assignment struct {
	column string
	value  any
}

func byBarcode(m Member) (predicate, bool) {
	if m.Barcode == "" {
		return predicate{}, false
	}
	return predicate{
		authority: AuthorityBarcode,
		query:     "barcode = ?",
		args:      []any{m.Barcode},
	}, true
}

// byName matches on whichever of firstName and lastName the member
// supplies, joined with AND.
func byName(m Member) (predicate, bool) {
	pairs := nameAssignments(m)
	if len(pairs) == 0 {
		return predicate{}, false
	}
	clauses := make([]string, 0, len(pairs))
	args := make([]any, 0, len(pairs))
	for _, p := range pairs {
		clauses = append(clauses, p.column+" = ?")
		args = append(args, p.value)
	}
	return predicate{
		authority: AuthorityName,
		query:     strings.Join(clauses, " AND "),
		args:      args,
	}, true
}

func keyFor(m Member, authority Authority) (predicate, bool) {
	if authority == AuthorityBarcode {
		return byBarcode(m)
	}
	return byName(m)
}

// nameAssignments maps the member's name onto the firstName and lastName
// columns. Blank parts are left out so they never overwrite stored data.
func nameAssignments(m Member) []assignment {
	if m.Name.IsZero() {
		return nil
	}
	var out []assignment
	if given := m.Name.Given(); given != "" {
		out = append(out, assignment{column: "firstName", value: given})
	}
	if last := m.Name.Last(); last != "" {
		out = append(out, assignment{column: "lastName", value: last})
	}
	return out
}

func applySet(q *bun.UpdateQuery, set []assignment) *bun.UpdateQuery {
	for _, a := range set {
		q = q.Set("? = ?", bun.Ident(a.column), a.value)
	}
	return q
}
