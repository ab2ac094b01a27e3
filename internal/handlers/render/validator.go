package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("identity", validateContactIdentity)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Contact identity is either an email address or an E.164 phone number
// Reuses the builtin validators so the accepted formats stay in sync with
// the dedicated 'email' and 'e164' tags
func validateContactIdentity(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	if strings.ContainsRune(value, '@') {
		return validate.Var(value, "email") == nil
	}
	return validate.Var(value, "e164") == nil
}
