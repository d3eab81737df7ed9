package domain

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"USER", RoleUser},
		{"ADMIN", RoleAdmin},
		{"MODERATOR", RoleModerator},
		{"admin", RoleAdmin},
		{"  moderator  ", RoleModerator},
		{"user", RoleUser},
		{"", RoleUser},
		{"root", RoleUser},
		{"SUPERADMIN", RoleUser},
		{"Admin ", RoleAdmin},
		{"aDmIn", RoleAdmin},
		{"moderator\t", RoleModerator},
		{"null", RoleUser},
	}

	for _, tc := range cases {
		got := NormalizeRole(tc.in)
		if got != tc.want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
		// Idempotence: a second application must be a fixed point.
		if again := NormalizeRole(got); again != got {
			t.Errorf("NormalizeRole not idempotent for %q: %q then %q", tc.in, got, again)
		}
	}
}

func TestNormalizeRole_AlwaysWhitelisted(t *testing.T) {
	inputs := []string{"", "guest", "ADMINISTRATOR", "mod", "USERS", "admin;drop", "ADMIN\x00"}
	for _, in := range inputs {
		got := NormalizeRole(in)
		if got != RoleUser && got != RoleAdmin && got != RoleModerator {
			t.Errorf("NormalizeRole(%q) = %q, outside whitelist", in, got)
		}
	}
}
