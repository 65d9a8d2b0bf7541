package scim

import (
	"errors"
	"strings"
)

var ErrNoOperations = errors.New("patch request contains no operations")

// PatchRequest is the body of a SCIM PATCH call. Operations of different
// target paths carry no ordering guarantee; callers collect all matched
// operations before issuing a single backend edit.
type PatchRequest struct {
	Schemas    []string         `json:"schemas"`
	Operations []PatchOperation `json:"Operations"` //nolint:tagliatelle
}

// PatchOperation is one {op, path, value} triple. Value is left untyped:
// identity providers send plain strings for scalar attributes, stringified
// booleans for active, and lists of {value} objects for members.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (r *PatchRequest) Validate() error {
	if len(r.Operations) == 0 {
		return ErrNoOperations
	}

	return nil
}

// StringValue returns the operation value as a string, or "" when the value
// has a different shape.
func (o PatchOperation) StringValue() string {
	s, _ := o.Value.(string)
	return s
}

// BoolValue coerces the operation value to a boolean. Okta sends the active
// flag as the strings "True"/"False", other providers as a real boolean.
func (o PatchOperation) BoolValue() (bool, bool) {
	switch v := o.Value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}

	return false, false
}

// MemberValues returns the {value, display} entries of a members operation.
func (o PatchOperation) MemberValues() []Member {
	entries, ok := o.Value.([]any)
	if !ok {
		return nil
	}

	members := make([]Member, 0, len(entries))

	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		value, ok := fields["value"].(string)
		if !ok {
			continue
		}

		display, _ := fields["display"].(string)
		members = append(members, Member{Value: value, Display: display})
	}

	return members
}
