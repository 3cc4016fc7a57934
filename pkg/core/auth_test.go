package core

import "testing"

func TestValidateAuthToken(t *testing.T) {
	tests := []struct {
		token   string
		wantErr bool
	}{
		{"a1b2c3d4e5f6g7h8", false},
		{"", true},
		{"short", true},
		{"password12345678", true},
		{"myGreenRouteKey-x81", true},
	}
	for _, tt := range tests {
		if err := ValidateAuthToken(tt.token); (err != nil) != tt.wantErr {
			t.Errorf("ValidateAuthToken(%q) = %v, wantErr %v", tt.token, err, tt.wantErr)
		}
	}
}

func TestAuthenticateBearer(t *testing.T) {
	const expected = "a1b2c3d4e5f6g7h8"

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer " + expected, ""},
		{"", "missing Authorization header"},
		{"Basic " + expected, "invalid Authorization header format"},
		{"Bearer" + expected, "invalid Authorization header format"},
		{"Bearer wrong", "invalid bearer token"},
	}
	for _, tt := range tests {
		if got := AuthenticateBearer(tt.header, expected); got != tt.want {
			t.Errorf("AuthenticateBearer(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
