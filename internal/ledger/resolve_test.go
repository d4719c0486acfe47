package ledger

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolveDestination(t *testing.T) {
	knownID := uuid.New()
	explicitID := uuid.New()
	lookup := func(name string) (uuid.UUID, bool) {
		if name == "Grocer" {
			return knownID, true
		}
		return uuid.Nil, false
	}

	str := func(s string) *string { return &s }

	tests := []struct {
		name            string
		accountID       *uuid.UUID
		destinationName *string
		description     string
		want            Resolution
	}{
		{
			name:      "explicit id wins over everything",
			accountID: &explicitID,
			want:      Resolution{Kind: ResolutionFound, AccountID: explicitID},
		},
		{
			name:            "known name resolves",
			destinationName: str("Grocer"),
			want:            Resolution{Kind: ResolutionFound, AccountID: knownID, Name: "Grocer"},
		},
		{
			name:            "unknown name creates",
			destinationName: str("New Shop"),
			want:            Resolution{Kind: ResolutionCreateNew, Name: "New Shop"},
		},
		{
			name:        "description fallback resolves known name",
			description: "Grocer",
			want:        Resolution{Kind: ResolutionFound, AccountID: knownID, Name: "Grocer"},
		},
		{
			name:        "description fallback creates unknown name",
			description: "Corner Cafe",
			want:        Resolution{Kind: ResolutionCreateNew, Name: "Corner Cafe"},
		},
		{
			name:            "empty name falls back to description",
			destinationName: str(""),
			description:     "Grocer",
			want:            Resolution{Kind: ResolutionFound, AccountID: knownID, Name: "Grocer"},
		},
		{
			name: "nothing to resolve is invalid",
			want: Resolution{Kind: ResolutionInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDestination(tt.accountID, tt.destinationName, tt.description, lookup)
			if got != tt.want {
				t.Errorf("ResolveDestination() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
