package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername_SignIn(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Result
	}{
		{name: "empty", value: "", want: Result{Feedback: UsernameRequiredFeedback}},
		{name: "single char", value: "a", want: Result{Valid: true}},
		{name: "anything goes", value: "1 weird!name", want: Result{Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateUsername(SignIn, tt.value))
		})
	}
}

func TestValidateUsername_SignUp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Result
	}{
		{name: "too short", value: "ab", want: Result{Feedback: UsernameTooShortFeedback}},
		{name: "short and bad first char", value: "1a", want: Result{Feedback: UsernameTooShortFeedback}},
		{name: "two chars multi byte", value: "aé", want: Result{Feedback: UsernameTooShortFeedback}},
		{name: "digit first", value: "1abc", want: Result{Feedback: UsernameFirstLetterFeedback}},
		{name: "underscore first", value: "_abc", want: Result{Feedback: UsernameFirstLetterFeedback}},
		{name: "space inside", value: "ab c", want: Result{Feedback: UsernameInvalidCharsFeedback}},
		{name: "non ascii inside", value: "abcé", want: Result{Feedback: UsernameInvalidCharsFeedback}},
		{name: "minimal", value: "abc", want: Result{Valid: true}},
		{name: "email like", value: "john.doe+tag@example.com", want: Result{Valid: true}},
		{name: "all allowed", value: "A1_-.@+z", want: Result{Valid: true}},
		{name: "alnum", value: "abc123", want: Result{Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateUsername(SignUp, tt.value))
		})
	}
}

func TestValidateUsername_SignUp_DisallowedCharAnywhereAfterFirst(t *testing.T) {
	base := "abc123"
	disallowed := []string{" ", "!", "#", "$", "%", "/", "\\", "*", "(", "ñ", "\t"}

	for _, bad := range disallowed {
		for pos := 1; pos <= len(base); pos++ {
			u := base[:pos] + bad + base[pos:]
			res := ValidateUsername(SignUp, u)
			require.Falsef(t, res.Valid, "username %q must be invalid", u)
			require.Equal(t, UsernameInvalidCharsFeedback, res.Feedback)
		}
	}
}

func TestValidatePassword_SignIn(t *testing.T) {
	assert.Equal(t, Result{Feedback: PasswordRequiredFeedback}, ValidatePassword(SignIn, ""))
	assert.Equal(t, Result{Valid: true}, ValidatePassword(SignIn, "x"))
}

func TestValidatePassword_SignUp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "ok", value: "Abcdef1!", valid: true},
		{name: "ok unicode special", value: "Abcdef1ü", valid: true},
		{name: "seven chars eight bytes", value: "Aé1!xyz", valid: false},
		{name: "too short", value: "Ab1!", valid: false},
		{name: "no lower", value: "ABCDEF1!", valid: false},
		{name: "no upper", value: "abcdef1!", valid: false},
		{name: "no digit", value: "Abcdefg!", valid: false},
		{name: "no special", value: "Abcdefg1", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePassword(SignUp, tt.value)
			assert.Equal(t, tt.valid, res.Valid)
			if tt.valid {
				assert.Empty(t, res.Feedback)
			} else {
				assert.Equal(t, PasswordRulesFeedback, res.Feedback)
			}
		})
	}
}

func TestValidatePassword_SignUp_MissingAnyClassIsInvalid(t *testing.T) {
	classes := map[string]string{
		"lower":   "abcdefgh",
		"upper":   "ABCDEFGH",
		"digit":   "12345678",
		"special": "!@#$%^&*",
	}

	for missing := range classes {
		var sb strings.Builder
		for name, chars := range classes {
			if name == missing {
				continue
			}
			sb.WriteString(chars)
		}
		p := sb.String()
		assert.Falsef(t, ValidatePassword(SignUp, p).Valid, "password without %s must be invalid: %q", missing, p)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, ValidateUsername(SignUp, "ab"), ValidateUsername(SignUp, "ab"))
		assert.Equal(t, ValidatePassword(SignUp, "Abcdef1!"), ValidatePassword(SignUp, "Abcdef1!"))
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	assert.False(t, ValidateUsername(FormKind(42), "abc").Valid)
	assert.False(t, ValidatePassword(FormKind(42), "Abcdef1!").Valid)
	assert.Equal(t, "unknown", FormKind(42).String())
	assert.Equal(t, "Sign In", SignIn.String())
	assert.Equal(t, "Sign Up", SignUp.String())
}
