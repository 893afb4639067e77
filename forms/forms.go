// Package forms binds and validates user-submitted post and comment data.
// Forms never assign authorship or the parent post; handlers do that after
// validation succeeds.
package forms

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

const requiredMessage = "this field is required"
