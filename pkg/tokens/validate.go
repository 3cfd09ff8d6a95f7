package tokens

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	orgPattern        = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	yearPattern       = regexp.MustCompile(`^[0-9]{4}$`)
)

// Field names as shown to the user
const (
	FieldProjectName = "project name"
	FieldPackageName = "package name"
	FieldGithubOrg   = "GitHub organization"
	FieldAuthorName  = "author name"
	FieldAuthorEmail = "author email"
	FieldYear        = "copyright year"
)

// FieldError is a single invalid answer
type FieldError struct {
	Field   string
	Value   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError lists every invalid answer of a run
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// ValidateProjectName requires a non-empty, single-line name
func ValidateProjectName(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("is required")
	}
	if strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("must be a single line")
	}
	return nil
}

// ValidatePackageName requires an import identifier: letters, digits and
// underscores, not starting with a digit
func ValidatePackageName(v string) error {
	if v == "" {
		return fmt.Errorf("is required")
	}
	if !identifierPattern.MatchString(v) {
		return fmt.Errorf("%q must contain only letters, digits and underscores and must not start with a digit", v)
	}
	return nil
}

// ValidateGithubOrg accepts GitHub owner names
func ValidateGithubOrg(v string) error {
	if v == "" {
		return fmt.Errorf("is required")
	}
	if !orgPattern.MatchString(v) {
		return fmt.Errorf("%q must contain only letters, digits, '-', '_' and '.'", v)
	}
	return nil
}

// ValidateAuthorName requires a non-empty, single-line name
func ValidateAuthorName(v string) error {
	return ValidateProjectName(v)
}

// ValidateAuthorEmail requires a bare RFC 5322 address
func ValidateAuthorEmail(v string) error {
	if v == "" {
		return fmt.Errorf("is required")
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return fmt.Errorf("%q is not a valid email address", v)
	}
	return nil
}

// ValidateYear requires four digits
func ValidateYear(v string) error {
	if v == "" {
		return fmt.Errorf("is required")
	}
	if !yearPattern.MatchString(v) {
		return fmt.Errorf("%q must be a four digit year", v)
	}
	return nil
}

// Validator pairs a field with its check, in prompt order
type Validator struct {
	Field string
	Get   func(config.Answers) string
	Check func(string) error
}

// Validators returns the per-field rules in the order they are prompted
func Validators() []Validator {
	return []Validator{
		{FieldProjectName, func(a config.Answers) string { return a.ProjectName }, ValidateProjectName},
		{FieldPackageName, func(a config.Answers) string { return a.PackageName }, ValidatePackageName},
		{FieldGithubOrg, func(a config.Answers) string { return a.GithubOrg }, ValidateGithubOrg},
		{FieldAuthorName, func(a config.Answers) string { return a.AuthorName }, ValidateAuthorName},
		{FieldAuthorEmail, func(a config.Answers) string { return a.AuthorEmail }, ValidateAuthorEmail},
		{FieldYear, func(a config.Answers) string { return a.Year }, ValidateYear},
	}
}

// ValidateAnswers checks every field and reports all failures at once. The
// returned error is an INVALID_INPUT SpecinitError wrapping *ValidationError.
func ValidateAnswers(a config.Answers) error {
	var verr ValidationError
	for _, v := range Validators() {
		value := v.Get(a)
		if err := v.Check(value); err != nil {
			verr.Fields = append(verr.Fields, FieldError{Field: v.Field, Value: value, Message: err.Error()})
		}
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return errors.Wrap(&verr, errors.ErrInvalidInput, "configuration rejected").
		WithDetail("fields", len(verr.Fields))
}

// DerivePackageName turns a project name into a default package name:
// lowercase, invalid characters mapped to '_', runs collapsed, and a leading
// '_' when the result would start with a digit
func DerivePackageName(project string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(project)) {
		ok := r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
		if !ok {
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	name := strings.TrimRight(b.String(), "_")
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
