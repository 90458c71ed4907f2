package auth

import (
	"encoding/base64"
	"testing"
)

func TestNewToken(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken() error = %v", err)
		}
		if len(token) != 43 {
			t.Fatalf("len(token) = %d, want 43", len(token))
		}
		raw, err := base64.RawURLEncoding.DecodeString(token)
		if err != nil {
			t.Fatalf("token %q is not base64url: %v", token, err)
		}
		if len(raw) != TokenSize {
			t.Fatalf("decoded length = %d, want %d", len(raw), TokenSize)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q after %d draws", token, i)
		}
		seen[token] = struct{}{}
	}
}
