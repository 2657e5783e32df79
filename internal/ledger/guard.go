package ledger

import (
	"go-pos-ledger/internal/apperr"
)

type Decision int

const (
	Allowed Decision = iota
	NotFound
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case NotFound:
		return "not_found"
	default:
		return "forbidden"
	}
}

// Check decides whether tenantID may touch a resource whose stored owner is
// ownerID. found is false when the resource does not exist at all.
func Check(tenantID, ownerID string, found bool) Decision {
	if !found {
		return NotFound
	}
	if tenantID == "" || ownerID != tenantID {
		return Forbidden
	}
	return Allowed
}

// Enforce runs Check and turns a refusal into an apperr error. resource is the
// display name ("product", "transaction") and verb the attempted action.
func Enforce(tenantID, ownerID string, found bool, resource, verb string) error {
	if tenantID == "" {
		return apperr.Unauthorizedf("User not authorized")
	}
	switch Check(tenantID, ownerID, found) {
	case NotFound:
		return apperr.NotFoundf("%s not found", capitalize(resource))
	case Forbidden:
		return apperr.Forbiddenf("User not authorized to %s this %s", verb, resource)
	}
	return nil
}

func requireTenant(tenantID string) error {
	if tenantID == "" {
		return apperr.Unauthorizedf("User not authorized")
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
