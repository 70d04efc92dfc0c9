package config

import "testing"

func TestDevBypassActive(t *testing.T) {
	tests := []struct {
		name      string
		devLogin  bool
		publicURL string
		want      bool
	}{
		{"disabled flag", false, "http://localhost:8080", false},
		{"localhost", true, "http://localhost:8080", true},
		{"loopback ip", true, "http://127.0.0.1:8080", true},
		{"ipv6 loopback", true, "http://[::1]:8080", true},
		{"public host", true, "https://sotvol.example.com", false},
		{"public ip", true, "http://203.0.113.9", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{DevLogin: tt.devLogin, PublicURL: tt.publicURL}
			if got := c.DevBypassActive(); got != tt.want {
				t.Fatalf("DevBypassActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList(" 123, 456 ,789 ")
	if err != nil {
		t.Fatalf("parseIDList() error = %v", err)
	}
	if len(ids) != 3 || ids[0] != 123 || ids[2] != 789 {
		t.Fatalf("parseIDList() = %v", ids)
	}

	if _, err := parseIDList("12,abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}

	ids, err = parseIDList("")
	if err != nil || ids != nil {
		t.Fatalf("parseIDList(\"\") = (%v, %v), want (nil, nil)", ids, err)
	}
}
