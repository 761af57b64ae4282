package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
	}
	for _, u := range valid {
		if err := Validate(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "https://"}
	for _, u := range invalid {
		if err := Validate(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"https://example.com/list", "/p/1", "https://example.com/p/1"},
		{"https://example.com/list/", "detail", "https://example.com/list/detail"},
		{"https://example.com", "https://other.com/x", "https://other.com/x"},
		{"https://example.com", "", "https://example.com"},
	}
	for _, c := range cases {
		if got := Resolve(c.base, c.href); got != c.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", c.base, c.href, got, c.want)
		}
	}
}

func TestHost(t *testing.T) {
	if got := Host("https://example.com:8080/path"); got != "example.com:8080" {
		t.Errorf("Expected host with port, got %q", got)
	}
	if got := Host("::bad::"); got != "" {
		t.Errorf("Expected empty host for unparsable input, got %q", got)
	}
}
