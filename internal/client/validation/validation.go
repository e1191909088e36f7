// Package validation holds the field rules of the sign-in and sign-up forms.
//
// All functions are pure: the same (kind, value) pair always yields the same
// Result and nothing is read from or written to the outside world.
package validation

import "unicode/utf8"

// FormKind selects which set of rules applies to a form.
type FormKind int

const (
	SignIn FormKind = iota
	SignUp
)

func (k FormKind) String() string {
	switch k {
	case SignIn:
		return "Sign In"
	case SignUp:
		return "Sign Up"
	default:
		return "unknown"
	}
}

// Feedback messages shown next to an invalid field.
const (
	UsernameRequiredFeedback = "Username is required"
	PasswordRequiredFeedback = "Password is required"

	UsernameTooShortFeedback     = "userName is too short"
	UsernameFirstLetterFeedback  = "Username must start with a letter"
	UsernameInvalidCharsFeedback = "Username contains invalid characters"

	PasswordRulesFeedback = "Password must be at least 8 characters long and contain at least one upper case letter, " +
		"at least one lower case, one number and one special character"

	unknownKindFeedback = "Unsupported form"
)

const (
	minSignUpUsernameLen = 3
	minSignUpPasswordLen = 8
)

// Result is the outcome of validating one field. Feedback is empty when Valid.
type Result struct {
	Valid    bool
	Feedback string
}

func ok() Result { return Result{Valid: true} }

func fail(feedback string) Result { return Result{Feedback: feedback} }

// rules is implemented once per FormKind.
type rules interface {
	username(value string) Result
	password(value string) Result
}

type signInRules struct{}

type signUpRules struct{}

func rulesFor(kind FormKind) (rules, bool) {
	switch kind {
	case SignIn:
		return signInRules{}, true
	case SignUp:
		return signUpRules{}, true
	}
	return nil, false
}

// ValidateUsername checks a username against the rules of kind.
func ValidateUsername(kind FormKind, value string) Result {
	r, found := rulesFor(kind)
	if !found {
		return fail(unknownKindFeedback)
	}
	return r.username(value)
}

// ValidatePassword checks a password against the rules of kind.
func ValidatePassword(kind FormKind, value string) Result {
	r, found := rulesFor(kind)
	if !found {
		return fail(unknownKindFeedback)
	}
	return r.password(value)
}

// The account either exists or not, the server decides.
func (signInRules) username(value string) Result {
	if value == "" {
		return fail(UsernameRequiredFeedback)
	}
	return ok()
}

func (signInRules) password(value string) Result {
	if value == "" {
		return fail(PasswordRequiredFeedback)
	}
	return ok()
}

// Checked in order: length, first character, allowed charset.
func (signUpRules) username(value string) Result {
	if utf8.RuneCountInString(value) < minSignUpUsernameLen {
		return fail(UsernameTooShortFeedback)
	}
	if !isLetter(value[0]) {
		return fail(UsernameFirstLetterFeedback)
	}
	for i := 1; i < len(value); i++ {
		c := value[i]
		if isLetter(c) || isDigit(c) {
			continue
		}
		switch c {
		case '_', '-', '.', '@', '+':
			continue
		}
		return fail(UsernameInvalidCharsFeedback)
	}
	return ok()
}

func (signUpRules) password(value string) Result {
	if utf8.RuneCountInString(value) < minSignUpPasswordLen {
		return fail(PasswordRulesFeedback)
	}

	var lower, upper, digit, special bool
	for _, c := range value {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			special = true
		}
	}
	if !(lower && upper && digit && special) {
		return fail(PasswordRulesFeedback)
	}
	return ok()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
