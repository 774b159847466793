// Package validator envuelve go-playground/validator y traduce sus errores a
// detalle por campo (nombre JSON → mensaje).
package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/bitumen-api/internal/domain"
)

var (
	validate = validator.New()

	gstinRe    = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	usernameRe = regexp.MustCompile(`^[a-z0-9._-]+$`)
	ewayRe     = regexp.MustCompile(`^[0-9]{12}$`)
)

func init() {
	// Los errores se reportan con el nombre JSON del campo.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		return gstinRe.MatchString(strings.ToUpper(fl.Field().String()))
	})
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("ewaybill", func(fl validator.FieldLevel) bool {
		return ewayRe.MatchString(fl.Field().String())
	})
}

// Struct valida data según sus tags. Devuelve nil o un *domain.ValidationError.
func Struct(data interface{}) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError("body", err.Error())
	}
	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath quita el nombre del struct raíz: "CreateOrderRequest.items[0].rate" → "items[0].rate".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "email":
		return "email inválido"
	case "uuid", "uuid4":
		return "debe ser un UUID"
	case "gstin":
		return "GSTIN inválido"
	case "username":
		return "solo minúsculas, dígitos, punto, guion y guion bajo"
	case "ewaybill":
		return "debe tener 12 dígitos"
	case "dive":
		return "elemento inválido"
	default:
		return "inválido (" + fe.Tag() + ")"
	}
}
