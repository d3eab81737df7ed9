package domain

import (
	"testing"
	"time"
)

func TestAPIKey_Eligible(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		key  APIKey
		want bool
	}{
		{"active no expiry", APIKey{IsActive: true}, true},
		{"active future expiry", APIKey{IsActive: true, ExpiresAt: &future}, true},
		{"active past expiry", APIKey{IsActive: true, ExpiresAt: &past}, false},
		{"inactive", APIKey{IsActive: false}, false},
		{"inactive future expiry", APIKey{IsActive: false, ExpiresAt: &future}, false},
	}

	for _, tc := range cases {
		if got := tc.key.Eligible(now); got != tc.want {
			t.Errorf("%s: Eligible = %v, want %v", tc.name, got, tc.want)
		}
	}
}
