package ledger

import "github.com/google/uuid"

// ResolutionKind classifies the outcome of destination resolution.
type ResolutionKind int

// Resolution outcomes.
const (
	// ResolutionFound means an existing account is the destination.
	ResolutionFound ResolutionKind = iota
	// ResolutionCreateNew means no account matches the destination name
	// and an External account must be created with that name.
	ResolutionCreateNew
	// ResolutionInvalid means the request names no usable destination.
	ResolutionInvalid
)

// Resolution is the three-way result of resolving a transaction's
// destination. The resolver decides; the engine performs any creation.
type Resolution struct {
	Kind      ResolutionKind
	AccountID uuid.UUID // valid when Kind is ResolutionFound
	Name      string    // matched or to-be-created name; empty on the explicit-id path
}

// ResolveDestination resolves a destination from an explicit account id,
// a destination name, or the transaction description, in that order of
// preference. lookup maps a name to an existing account id. The function
// itself performs no I/O beyond the injected lookup.
func ResolveDestination(accountID *uuid.UUID, destinationName *string, description string, lookup func(name string) (uuid.UUID, bool)) Resolution {
	if accountID != nil {
		return Resolution{Kind: ResolutionFound, AccountID: *accountID}
	}

	name := description
	if destinationName != nil && *destinationName != "" {
		name = *destinationName
	}
	if name == "" {
		return Resolution{Kind: ResolutionInvalid}
	}

	if id, ok := lookup(name); ok {
		return Resolution{Kind: ResolutionFound, AccountID: id, Name: name}
	}
	return Resolution{Kind: ResolutionCreateNew, Name: name}
}
