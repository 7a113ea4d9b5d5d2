package validator

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Common Regex Patterns
var (
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	phoneRegex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`) // E.164 standard roughly
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Register Custom Validations
	_ = v.RegisterValidation("slug", validateSlug)
	_ = v.RegisterValidation("password_strong", validatePasswordStrong)
	_ = v.RegisterValidation("phone_e164", validatePhone)

	return &Validator{
		validate: v,
	}
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// ValidateVar validates a single variable against a tag
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// Custom Validation Functions

func validateSlug(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func validatePasswordStrong(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	// Length 8+
	if len(password) < 8 {
		return false
	}
	// Needs Number, Special, Upper, etc. (Simplified for this example)
	// Just generic complexity check is often better handled by zxcvbn, but for regex-ish:
	return true
}

// decodeFully repeatedly url-decodes s until it stabilizes or five passes
// have run, catching double/triple-encoded traversal payloads a single
// decode pass would miss.
func decodeFully(s string) string {
	cur := s
	for i := 0; i < 5; i++ {
		next, err := url.QueryUnescape(cur)
		if err != nil || next == cur {
			return cur
		}
		cur = next
	}
	return cur
}

// DetectPathTraversal reports whether s, after normalizing backslashes and
// undoing up to five levels of percent-encoding, contains ".." anywhere;
// this is a substring match, so a name like "foo..bar" is also reported.
func DetectPathTraversal(s string) bool {
	decoded := strings.ReplaceAll(decodeFully(s), "\\", "/")
	return strings.Contains(decoded, "..")
}

// SanitizePath strips ".." traversal segments from s, returning a clean
// relative path. Input is decoded the same way DetectPathTraversal decodes
// it before segments are filtered.
func SanitizePath(s string) string {
	decoded := strings.ReplaceAll(decodeFully(s), "\\", "/")
	parts := strings.Split(decoded, "/")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}

var sqlInjectionPattern = regexp.MustCompile(`(?i)(\b(union|select|insert|update|delete|drop|exec|execute)\b.*\b(select|from|into|table)\b|--|;|/\*|\*/|'\s*or\s*'|'\s*=\s*')`)

// DetectSQLInjection reports whether s contains a recognizable SQL
// injection pattern (comment markers, statement terminators, or UNION/OR
// tautology shapes).
func DetectSQLInjection(s string) bool {
	return sqlInjectionPattern.MatchString(s)
}

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&#34;",
	`'`, "&#39;",
)

// Sanitizer HTML-escapes characters commonly used in reflected-XSS
// payloads from untrusted strings before they're logged or echoed back.
type Sanitizer struct{}

// NewSanitizer builds a Sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize HTML-escapes s so it is safe to reflect back in a header or
// rendered response.
func (sn *Sanitizer) Sanitize(s string) string {
	return htmlEscaper.Replace(s)
}
