package form

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validation messages shown to the user.
const (
	MsgNameRequired  = "Name is required"
	MsgNameInvalid   = "Enter a valid name"
	MsgPhoneRequired = "Mobile number is required"
	MsgPhoneLength   = "Mobile number must be 10 digits"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Enter a valid email"
)

// emailPattern accepts local@domain.tld with no whitespace and a top-level
// segment of at least two characters.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

var lettersAndSpaces = regexp.MustCompile(`^[A-Za-z ]+$`)

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		mustRegister(v, "alphaspace", func(fl validator.FieldLevel) bool {
			return lettersAndSpaces.MatchString(fl.Field().String())
		})
		mustRegister(v, "inquiry_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		validatorInstance = v
	})
	return validatorInstance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("form: registering " + tag + ": " + err.Error())
	}
}

// rule is a validator tag chain plus the message for each tag.
type rule struct {
	tags     string
	messages map[string]string
}

func rulesFor(opts Options) map[Field]rule {
	nameChars := "alpha"
	if opts.AllowSpaceInName {
		nameChars = "alphaspace"
	}
	emailTags := "inquiry_email"
	if opts.RequireEmail {
		emailTags = "required,inquiry_email"
	}
	return map[Field]rule{
		FieldName: {
			tags: "required,min=2," + nameChars,
			messages: map[string]string{
				"required": MsgNameRequired,
				"min":      MsgNameInvalid,
				nameChars:  MsgNameInvalid,
			},
		},
		FieldEmail: {
			tags: emailTags,
			messages: map[string]string{
				"required":      MsgEmailRequired,
				"inquiry_email": MsgEmailInvalid,
			},
		},
		FieldPhone: {
			tags: "required,len=10",
			messages: map[string]string{
				"required": MsgPhoneRequired,
				"len":      MsgPhoneLength,
			},
		},
	}
}

// validate checks every field of s against the rules for opts.
func validate(s State, opts Options) Errors {
	errs := make(Errors)
	for field, r := range rulesFor(opts) {
		value := s.Get(field)
		if field == FieldName {
			value = strings.TrimSpace(value)
		}
		if msg := r.check(value); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// check returns the message for the first failing tag, or "".
func (r rule) check(value string) string {
	err := getValidator().Var(value, r.tags)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := r.messages[verrs[0].Tag()]; ok {
			return msg
		}
	}
	// Unmapped tags still block submission.
	return "Invalid value"
}
