package member

import (
	"errors"
	"fmt"
)

var (
	ErrBadMember        = errors.New("member has neither barcode nor name")
	ErrNotFound         = errors.New("member not found")
	ErrIncompleteMember = errors.New("member needs both barcode and name")
)

// Member is a society member as supplied by a caller. Any field may be
// empty, but a Member needs a barcode or a name to be looked up or added.
type Member struct {
	Barcode     string
	Name        Name
	Affiliation string
}

// Degenerate reports whether m carries neither barcode nor name.
func (m Member) Degenerate() bool {
	return m.Barcode == "" && m.Name.IsZero()
}

// Complete reports whether m carries both barcode and name.
func (m Member) Complete() bool {
	return m.Barcode != "" && !m.Name.IsZero()
}

func (m Member) String() string {
	switch {
	case m.Barcode != "" && !m.Name.IsZero():
		return fmt.Sprintf("%s (%s)", m.Barcode, m.Name.Full())
	case m.Barcode != "":
		return m.Barcode
	default:
		return m.Name.Full()
	}
}

// Authority names the identity facet that located a record.
type Authority int

const (
	AuthorityBarcode Authority = iota + 1
	AuthorityName
)

func (a Authority) String() string {
	switch a {
	case AuthorityBarcode:
		return "barcode"
	case AuthorityName:
		return "name"
	default:
		return "unknown"
	}
}

type BadMemberError struct {
	Member Member
}

func (e *BadMemberError) Error() string {
	return ErrBadMember.Error()
}

func (e *BadMemberError) Is(target error) bool {
	return target == ErrBadMember
}

type NotFoundError struct {
	Member Member
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("member %s not found", e.Member)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type IncompleteMemberError struct {
	Member Member
}

func (e *IncompleteMemberError) Error() string {
	return fmt.Sprintf("member %s: %s", e.Member, ErrIncompleteMember)
}

func (e *IncompleteMemberError) Is(target error) bool {
	return target == ErrIncompleteMember
}
