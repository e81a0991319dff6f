package pathnorm

import "testing"

func TestNormalizeRegistry(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`HKEY_CURRENT_USER\Software\Example`, "HKEY_CURRENT_USER/Software/Example"},
		{"HKEY_CURRENT_USER//Software//Example/", "HKEY_CURRENT_USER/Software/Example"},
		{`HKEY_LOCAL_MACHINE\SOFTWARE\Example\*`, "HKEY_LOCAL_MACHINE/SOFTWARE/Example"},
	}

	for _, tc := range cases {
		got := NormalizeRegistry(tc.raw)
		if got != tc.want {
			t.Errorf("NormalizeRegistry(%q) = %q, want %q", tc.raw, got, tc.want)
		}
		if again := NormalizeRegistry(got); again != got {
			t.Errorf("NormalizeRegistry not idempotent for %q: %q != %q", tc.raw, got, again)
		}
	}
}

func TestRegistryUsable(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"HKEY_CURRENT_USER/Software/Example", true},
		{"HKEY_LOCAL_MACHINE/SOFTWARE/Wow6432Node/Example", true},
		{"HKEY_CURRENT_USER", false},
		{"HKEY_CURRENT_USER/Software", false},
		{"HKEY_LOCAL_MACHINE/SOFTWARE/wow6432node", false},
		{"HKEY_CLASSES_ROOT/Example", false},
		{"SOFTWARE/Example", false},
		{"", false},
		{"HKEY_CURRENT_USER/Software/{{p|game}}", false},
		{"HKEY_CURRENT_USER/Software/Bad\x00Name", false},
	}

	for _, tc := range cases {
		if got := RegistryUsable(tc.path); got != tc.want {
			t.Errorf("RegistryUsable(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
