// Package entity holds the persisted domain types shared by the
// repository, service and handler layers.
package entity

import (
	"encoding/json"
	"fmt"
)

// FormEntityName is the name used for the form in alert headers and
// client error payloads.
const FormEntityName = "formV1"

// FormType is the closed set of kinds a form can have.
type FormType string

const (
	FormTypeSurvey FormType = "SURVEY"
	FormTypeSignup FormType = "SIGNUP"
)

// FormTypes lists every valid FormType in declaration order.
var FormTypes = []FormType{FormTypeSurvey, FormTypeSignup}

// Valid reports whether t is a member of the enum.
// The empty value is not a member; callers decide whether "unset" is allowed.
func (t FormType) Valid() bool {
	for _, v := range FormTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Form is the single entity exposed by the service.
//
// ID is empty until the form is persisted for the first time. The storage
// layer assigns it on create and it never changes afterwards.
type Form struct {
	ID         string   `json:"id"`
	CustomerID string   `json:"customerId"`
	FormType   FormType `json:"formType"`
}

// MarshalJSON writes unset fields as null rather than "".
func (f Form) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         *string   `json:"id"`
		CustomerID *string   `json:"customerId"`
		FormType   *FormType `json:"formType"`
	}{
		ID:         nullable(f.ID),
		CustomerID: nullable(f.CustomerID),
		FormType:   nullable(f.FormType),
	})
}

func nullable[T ~string](v T) *T {
	if v == "" {
		return nil
	}
	return &v
}

// HasID reports whether the form has been assigned an identifier.
func (f Form) HasID() bool {
	return f.ID != ""
}

// Equal compares forms by identity.
//
// Two forms are equal only when both carry an id and the ids match. A form
// without an id is never equal to anything, including another form without
// an id, so two unsaved forms with identical fields stay distinct.
func (f Form) Equal(other Form) bool {
	if !f.HasID() || !other.HasID() {
		return false
	}
	return f.ID == other.ID
}

func (f Form) String() string {
	return fmt.Sprintf("Form{id=%s, customerId='%s', formType='%s'}", f.ID, f.CustomerID, f.FormType)
}

// FormSortProperties are the JSON property names a form listing can be
// ordered by.
var FormSortProperties = []string{"id", "customerId", "formType"}

// IsFormSortProperty reports whether property can be used in a sort order.
func IsFormSortProperty(property string) bool {
	for _, p := range FormSortProperties {
		if p == property {
			return true
		}
	}
	return false
}
