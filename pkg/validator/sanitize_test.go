package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Standard traversal", input: "../../etc/passwd", expected: "etc/passwd"},
		{name: "Nested traversal", input: "foo/../bar", expected: "foo/bar"},
		{name: "Win traversal", input: "..\\..\\windows", expected: "windows"},
		{name: "Encoded traversal", input: "%2e%2e%2fetc%2fpasswd", expected: "etc/passwd"},
		{name: "Double encoded traversal", input: "%252e%252e%252fetc%252fpasswd", expected: "etc/passwd"},
		{name: "Mixed encoded", input: "..%2fetc%2fpasswd", expected: "etc/passwd"},
		{name: "Trailing dots", input: "foo/..", expected: "foo"},
		{name: "Trailing dots win", input: "foo\\..", expected: "foo"},
		{name: "Exact match dots", input: "..", expected: ""},
		{name: "Valid filename with dots", input: "foo..bar", expected: "foo..bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizePath(tt.input), "input: %s", tt.input)
		})
	}
}

func TestDetectPathTraversalTable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "Standard traversal", input: "../../etc/passwd", expected: true},
		{name: "Safe path", input: "etc/passwd", expected: false},
		{name: "Encoded traversal", input: "%2e%2e%2fetc%2fpasswd", expected: true},
		{name: "Double encoded traversal", input: "%252e%252e%252fetc%252fpasswd", expected: true},
		{name: "Triple encoded traversal", input: "%25252e%25252e%25252f", expected: true},
		{name: "Mixed encoding", input: "%2e%2e%252f", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPathTraversal(tt.input), "input: %s", tt.input)
		})
	}
}

func TestSanitizerEscapesHTML(t *testing.T) {
	s := NewSanitizer()
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", s.Sanitize("<script>alert(1)</script>"))
}

func TestDetectSQLInjection(t *testing.T) {
	assert.True(t, DetectSQLInjection("1; DROP TABLE users; --"))
	assert.True(t, DetectSQLInjection("' OR '1'='1"))
	assert.False(t, DetectSQLInjection("normal search term"))
}
