package form

import "errors"

// Errors maps a field name to its validation message. A missing entry means
// the field is valid.
type Errors map[string]string

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// Without returns a copy of e with field removed. e is not modified.
func (e Errors) Without(field string) Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		if k != field {
			out[k] = v
		}
	}
	return out
}

// Clone returns a copy of e.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// FieldRules binds validators to one field.
type FieldRules struct {
	Name       string
	Validators []Validator
}

// Field declares the validators for a field.
func Field(name string, validators ...Validator) FieldRules {
	return FieldRules{Name: name, Validators: validators}
}

// Schema is an ordered set of field rules.
type Schema struct {
	fields []FieldRules
}

// NewSchema creates a schema from fields in display order.
func NewSchema(fields ...FieldRules) *Schema {
	return &Schema{fields: fields}
}

// Fields returns the field names in display order.
func (s *Schema) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		names = append(names, f.Name)
	}
	return names
}

// Validate checks every field independently and returns the first failing
// message per field. The result is empty, never nil, when all fields pass.
func (s *Schema) Validate(values map[string]string) Errors {
	errs := make(Errors)
	for _, f := range s.fields {
		if msg, ok := validateField(f, values[f.Name]); !ok {
			errs[f.Name] = msg
		}
	}
	return errs
}

func validateField(f FieldRules, value string) (string, bool) {
	for _, v := range f.Validators {
		err := v.Validate(value)
		if err == nil {
			continue
		}
		var verr ValidationError
		if errors.As(err, &verr) {
			return verr.Message, false
		}
		return err.Error(), false
	}
	return "", true
}
