package models

// FieldState is the validation state of one form field. Touched is false
// until the field has been edited at least once; Feedback is then empty.
type FieldState struct {
	Value    string
	Feedback string
	Touched  bool
	Valid    bool
}
