package providers

import (
	"testing"

	"github.com/trustpub/trustpub/oidc"
)

func TestStatic_VerifyClaims(t *testing.T) {
	p := &Static{
		ProviderName: "dev",
		RequiredClaims: map[string]string{
			"sub":         "ci-publisher",
			"environment": "production",
		},
	}

	tests := []struct {
		name   string
		claims oidc.SignedClaims
		want   bool
	}{
		{
			name:   "all claims match",
			claims: oidc.SignedClaims{"sub": "ci-publisher", "environment": "production"},
			want:   true,
		},
		{
			name:   "extra claims ignored",
			claims: oidc.SignedClaims{"sub": "ci-publisher", "environment": "production", "ref": "main"},
			want:   true,
		},
		{
			name:   "one claim wrong",
			claims: oidc.SignedClaims{"sub": "ci-publisher", "environment": "staging"},
			want:   false,
		},
		{
			name:   "claim missing",
			claims: oidc.SignedClaims{"sub": "ci-publisher"},
			want:   false,
		},
		{
			name:   "claim with non-string value",
			claims: oidc.SignedClaims{"sub": "ci-publisher", "environment": 7},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.VerifyClaims(tt.claims); got != tt.want {
				t.Errorf("VerifyClaims() = %v, want: %v", got, tt.want)
			}
		})
	}
}

func TestStatic_Matches(t *testing.T) {
	p := &Static{
		ProviderName:   "dev",
		RequiredClaims: map[string]string{"sub": "ci-publisher"},
		MatchClaim:     "sub",
	}

	if !p.Matches(oidc.SignedClaims{"sub": "ci-publisher"}) {
		t.Error("Matches() = false, want: true for matching sub")
	}
	if p.Matches(oidc.SignedClaims{"sub": "somebody-else"}) {
		t.Error("Matches() = true, want: false for different sub")
	}

	// Without a match claim every registration matches.
	p.MatchClaim = ""
	if !p.Matches(oidc.SignedClaims{}) {
		t.Error("Matches() = false, want: true with no match claim")
	}
}
