// Package validation holds the field rules shared by the API and the
// storefront client, exposed as validator/v10 tags.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Tag names registered on the validator
const (
	TagPhone    = "vnphone"
	TagFullName = "fullname"
	TagEmail    = "mailbox"
)

// phonePattern accepts +84 or a leading 0, a mobile (3x, 5x, 7x, 8x, 9x) or
// landline (2x) prefix class, then 7 or 8 digits.
var phonePattern = regexp.MustCompile(`^(\+84|0)(2\d|3[2-9]|5[25689]|7[06-9]|8[1-9]|9\d)\d{7,8}$`)

// IsPhone reports whether s is a Vietnamese phone number
func IsPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// IsFullName reports whether s has at least two space separated words
func IsFullName(s string) bool {
	return len(strings.Fields(s)) >= 2
}

// IsEmail reports whether s is a bare address (no display name)
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagPhone, err)
	}
	if err := v.RegisterValidation(TagFullName, func(fl validator.FieldLevel) bool {
		return IsFullName(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagFullName, err)
	}
	if err := v.RegisterValidation(TagEmail, func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagEmail, err)
	}
	return nil
}

// New returns a standalone validator with the custom tags
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// NewBinding returns a validator reading gin's "binding" struct tags, so
// request types can be checked outside a gin handler
func NewBinding() *validator.Validate {
	v := New()
	v.SetTagName("binding")
	return v
}

// RegisterGin installs the custom tags on gin's binding validator
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Describe maps each failed field, named with a lower-case first letter, to a
// readable message. It returns nil when err is not a validation failure.
func Describe(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[lowerFirst(fe.Field())] = Message(fe)
	}
	return details
}

// Message describes a single failed rule
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "email", TagEmail:
		return "must be a valid email address"
	case TagPhone:
		return "must be a valid Vietnamese phone number"
	case TagFullName:
		return "must contain at least two words"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
