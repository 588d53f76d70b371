package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestContentRole(t *testing.T) {
	tests := []struct {
		role string
		want genai.Role
	}{
		{"user", genai.RoleUser},
		{"assistant", genai.RoleModel},
		{"", genai.RoleUser},
		{"system", genai.RoleUser},
	}
	for _, tt := range tests {
		if got := contentRole(tt.role); got != tt.want {
			t.Errorf("contentRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
