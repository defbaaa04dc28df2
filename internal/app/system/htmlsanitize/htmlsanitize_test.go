package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/kanban/internal/app/system/htmlsanitize"
	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Write release notes", "Write release notes"},
		{"strips tags", "<b>Ship</b> it", "Ship it"},
		{"drops script body", "<script>alert('xss')</script>Review", "Review"},
		{"decodes entities", "R&amp;D", "R&D"},
		{"keeps ampersand", "Q&A prep", "Q&A prep"},
		{"trims", "  spaced  ", "spaced"},
		{"drops handler attributes", `<img src="x.png" onerror="alert(1)">Logo`, "Logo"},
		{"keeps link text only", `<a href="javascript:alert('xss')">Click</a>`, "Click"},
		{"drops iframe", `<iframe src="https://evil.example"></iframe>ok`, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, htmlsanitize.PlainText(tt.input))
		})
	}
}
