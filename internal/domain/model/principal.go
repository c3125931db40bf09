package model

import "fmt"

type PrincipalKind string

const (
	PrincipalUser    PrincipalKind = "user"
	PrincipalCompany PrincipalKind = "company"
)

// Principal identifies an authenticated caller.
type Principal struct {
	Kind PrincipalKind
	ID   string
}

func (p Principal) String() string { return fmt.Sprintf("%s:%s", p.Kind, p.ID) }

func (p Principal) Valid() bool {
	return p.ID != "" && (p.Kind == PrincipalUser || p.Kind == PrincipalCompany)
}
