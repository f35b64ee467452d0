// Package form provides field validation for form components.
//
// A Schema lists fields in display order together with their validators.
// Validate reports at most one message per field, the first validator that
// fails:
//
//	schema := form.NewSchema(
//	    form.Field("firstName", form.Required("First name is required")),
//	    form.Field("email",
//	        form.Required("Email is required"),
//	        form.Email("Email is invalid"),
//	    ),
//	)
//
//	errs := schema.Validate(map[string]string{"firstName": "", "email": "john"})
//	// errs["firstName"] == "First name is required"
//	// errs["email"] == "Email is invalid"
//
// Validators other than Required accept empty input so that a field reports
// "required" rather than a format error when left blank.
package form
