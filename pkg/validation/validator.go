package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MinPasswordLength matches the storefront registration form.
const MinPasswordLength = 6

// MaxPasswordBytes is the most bcrypt hashes; longer input is rejected by bcrypt.
const MaxPasswordBytes = 72

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

// Configure applies the tag name func and aliases to v.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes72", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	v.RegisterAlias("pwd", "min=6,maxbytes72")
	v.RegisterAlias("country", "len=2,alpha")
	v.RegisterAlias("handle", "min=1,max=200,excludesall=/?#")
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "Ungültiges JSON"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "Ungültige Anfrage"}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "Pflichtfeld"
	case "email":
		return "Bitte geben Sie eine gültige E-Mail-Adresse ein"
	case "pwd":
		if fe.ActualTag() == "maxbytes72" {
			return "Das Passwort ist zu lang (höchstens 72 Zeichen)"
		}
		return "Das Passwort muss mindestens 6 Zeichen lang sein"
	case "country":
		return "Bitte wählen Sie ein Land"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "Muss mindestens " + param + " sein"
		}
		return "Muss mindestens " + param + " Zeichen lang sein"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "Darf höchstens " + param + " sein"
		}
		return "Darf höchstens " + param + " Zeichen lang sein"
	case "gte":
		return "Muss mindestens " + param + " sein"
	case "lte":
		return "Darf höchstens " + param + " sein"
	case "len":
		return "Muss genau " + param + " Zeichen lang sein"
	case "oneof":
		return "Muss einer der Werte sein: " + strings.Join(strings.Fields(param), ", ")
	case "e164":
		return "Bitte geben Sie eine gültige Telefonnummer ein"
	default:
		return "Ungültiger Wert"
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
