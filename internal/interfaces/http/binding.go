package http

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON (o de query) en lugar del nombre Go.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindJSON decodifica el body y valida las etiquetas validate del DTO.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.NewValidationError("", "cuerpo JSON inválido: %v", err)
	}
	return validateStruct(dst)
}

// bindQuery decodifica la query string y la valida.
func bindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return domain.NewValidationError("", "parámetros de consulta inválidos: %v", err)
	}
	return validateStruct(dst)
}

// validateStruct devuelve el primer campo inválido como domain.ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return domain.NewValidationError("", "%v", err)
	}
	fe := ve[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return domain.NewValidationError(field, "%s", ruleMessage(fe))
}

func ruleMessage(fe validator.FieldError) string {
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
	case "datetime":
		return "formato esperado " + fe.Param()
	default:
		return "no cumple la regla " + fe.Tag()
	}
}

// ── Listados ──────────────────────────────────────────────────────────────────

// pageParams lee limit/offset (default 20, máximo 100).
func pageParams(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultLimit), Offset: c.QueryInt("offset", 0)}
	page.Normalize()
	return page
}

// dateRange lee from/to (YYYY-MM-DD). to incluye el día completo.
func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	var q dto.DateRangeRequest
	if err := bindQuery(c, &q); err != nil {
		return nil, nil, err
	}
	if q.From != "" {
		t, err := time.Parse(dateLayout, q.From)
		if err != nil {
			return nil, nil, domain.NewValidationError("from", "formato esperado %s", dateLayout)
		}
		from = &t
	}
	if q.To != "" {
		t, err := time.Parse(dateLayout, q.To)
		if err != nil {
			return nil, nil, domain.NewValidationError("to", "formato esperado %s", dateLayout)
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.NewValidationError("to", "la fecha final es anterior a la inicial")
	}
	return from, to, nil
}

// listFilter arma el filtro de un listado: igualdad sobre attrs presentes en la query,
// rango de fechas y paginación.
func listFilter(c *fiber.Ctx, attrs ...string) (repository.Filter, dto.PageRequest, error) {
	from, to, err := dateRange(c)
	if err != nil {
		return repository.Filter{}, dto.PageRequest{}, err
	}
	page := pageParams(c)
	f := repository.Filter{From: from, To: to, Limit: page.Limit, Offset: page.Offset}
	for _, k := range attrs {
		if v := c.Query(k); v != "" {
			if f.Attrs == nil {
				f.Attrs = map[string]string{}
			}
			f.Attrs[k] = v
		}
	}
	return f, page, nil
}

func listJSON[T any](c *fiber.Ctx, items []T, page dto.PageRequest) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(dto.ListResponse[T]{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	})
}

// parseDecimal lee un decimal opcional de la query; vacío es cero.
func parseDecimal(name, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(name, "número inválido %q", raw)
	}
	return v, nil
}

func orZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
