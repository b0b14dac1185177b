package policy

import (
	"errors"
	"testing"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		weak     bool
		wantErr  error
	}{
		{"strong password", "Str0ng!Pass", false, nil},
		{"too short", "Ab1!", false, ErrPasswordTooShort},
		{"missing upper", "lower1!case", false, ErrPasswordTooWeak},
		{"missing lower", "UPPER1!CASE", false, ErrPasswordTooWeak},
		{"missing digit", "NoDigits!Here", false, ErrPasswordTooWeak},
		{"missing special", "NoSpecial1Chars", false, ErrPasswordTooWeak},
		{"weak bypass allows anything", "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password, tt.weak)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckPassword(%q, %v) = %v, want %v", tt.password, tt.weak, err, tt.wantErr)
			}
		})
	}
}
