package relay

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/mitchellh/mapstructure"
)

// decodeMapStructure decodes a generic map (as produced by JSONParser)
// onto target using mapstructure, honoring `mapstructure:"..."` tags the
// same way config.go's DecodeInto does.
func decodeMapStructure(m map[string]any, target any) error {
	return mapstructure.Decode(m, target)
}

// validate is the shared validator instance; struct-tag validation rules
// are declared once per type and are safe for concurrent use, matching
// how go-playground/validator is used across the rest of the ecosystem.
var validate = validator.New(validator.WithRequiredStructEnabled())

var formDecoder = schema.NewDecoder()

func init() {
	formDecoder.IgnoreUnknownKeys(true)
}

// DecodeForm decodes a form_body-shaped map[string][]string into dst, a
// pointer to a struct tagged with `schema:"..."` field names (§4.6
// "validation providers").
func DecodeForm(form map[string][]string, dst any) error {
	if err := formDecoder.Decode(dst, form); err != nil {
		return &Error{
			Kind:    KindValidationError,
			Status:  defaultStatus[KindValidationError],
			Message: "form decode failed",
			Details: []ErrorDetail{{Type: "form_decode_error", Msg: err.Error()}},
			Cause:   err,
		}
	}

	return Validate(dst)
}

// Validate runs struct-tag validation over v (a struct or pointer to one)
// and, on failure, returns a *Error of KindValidationError with one
// ErrorDetail per failed field, matching §6's error body shape.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return &Error{
				Kind:    KindValidationError,
				Status:  defaultStatus[KindValidationError],
				Message: err.Error(),
				Cause:   err,
			}
		}

		details := make([]ErrorDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, ErrorDetail{
				Type:  "validation_error",
				Loc:   fieldPath(fe),
				Msg:   fe.Error(),
				Input: fe.Value(),
			})
		}

		return &Error{
			Kind:    KindValidationError,
			Status:  defaultStatus[KindValidationError],
			Message: "validation failed",
			Details: details,
			Cause:   err,
		}
	}

	return nil
}

func fieldPath(fe validator.FieldError) []string {
	return strings.Split(fe.Namespace(), ".")
}

// ValidationProvider builds a ProviderFunc of ProviderKindValidation: it
// decodes the named source dependency (typically "json_body" or
// "form_body") into a fresh value of newTarget's type and validates it,
// so a route can declare a single typed dependency instead of hand
// re-parsing json_body/form_body itself.
func ValidationProvider(source string, newTarget func() any) ProviderFunc {
	return func(args map[string]any) (any, error) {
		target := newTarget()

		raw, ok := args[source]
		if !ok {
			return nil, fmt.Errorf("relay: validation provider missing source dependency %q", source)
		}

		switch v := raw.(type) {
		case map[string][]string:
			if err := formDecoder.Decode(target, v); err != nil {
				return nil, &Error{Kind: KindValidationError, Status: defaultStatus[KindValidationError], Message: err.Error(), Cause: err}
			}
		default:
			if err := mapDecode(v, target); err != nil {
				return nil, err
			}
		}

		if err := Validate(target); err != nil {
			return nil, err
		}

		return target, nil
	}
}

// mapDecode decodes a JSON-ish value onto target: a map[string]any goes
// through mapstructure (decodeMapStructure); any other value is assigned
// via reflection only when its type is assignable to target's element
// type.
func mapDecode(src any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("relay: validation provider target must be a pointer")
	}

	if m, ok := src.(map[string]any); ok {
		return decodeMapStructure(m, target)
	}

	elem := rv.Elem()
	srcVal := reflect.ValueOf(src)

	if srcVal.IsValid() && srcVal.Type().AssignableTo(elem.Type()) {
		elem.Set(srcVal)
		return nil
	}

	return fmt.Errorf("relay: cannot decode %T into %T", src, target)
}
