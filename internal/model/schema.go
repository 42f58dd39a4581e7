package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldType is the scalar type of a schema field.
type FieldType int

const (
	String FieldType = iota
	Number
	Date
)

// Field describes one column of a collection.
type Field struct {
	Type     FieldType
	Required bool
	Rule     string // validator tag applied to present values
}

// Schema maps column names to their definitions. "id" is implicit.
type Schema map[string]Field

const healthStatus = "oneof=Sehat Sakit Dijual Mati"

// Schemas holds the column layout of each sheet.
var Schemas = map[Collection]Schema{
	BreedingStock: {
		"kode":          {Type: String, Required: true, Rule: "max=64"},
		"jenis_kelamin": {Type: String, Rule: "oneof=Jantan Betina"},
		"ras":           {Type: String, Rule: "max=64"},
		"warna":         {Type: String, Rule: "max=64"},
		"tanggal_lahir": {Type: Date, Rule: "isodate"},
		"status":        {Type: String, Rule: healthStatus},
		"catatan":       {Type: String, Rule: "max=500"},
	},
	BreedingEvent: {
		"pejantan_id":     {Type: String, Required: true},
		"betina_id":       {Type: String, Required: true},
		"tanggal_kawin":   {Type: Date, Rule: "isodate"},
		"tanggal_menetas": {Type: Date, Rule: "isodate"},
		"jumlah_anakan":   {Type: Number, Rule: "gte=0"},
		"catatan":         {Type: String, Rule: "max=500"},
	},
	Offspring: {
		"breeding_id":   {Type: String, Required: true},
		"kode":          {Type: String, Rule: "max=64"},
		"jenis_kelamin": {Type: String, Rule: "oneof=Jantan Betina"},
		"ras":           {Type: String, Rule: "max=64"},
		"warna":         {Type: String, Rule: "max=64"},
		"status":        {Type: String, Rule: healthStatus},
		"catatan":       {Type: String, Rule: "max=500"},
	},
}

// ValidationError represents a rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})
	return v
}

// Normalize coerces loosely typed input (CLI flags, query strings) into the
// schema types. Unknown fields are passed through for Validate to reject.
func Normalize(c Collection, fields Record) (Record, error) {
	schema := Schemas[c]
	out := make(Record, len(fields))
	for name, v := range fields {
		f, ok := schema[name]
		if !ok {
			out[name] = v
			continue
		}
		switch f.Type {
		case Number:
			if s, isStr := v.(string); isStr {
				s = strings.TrimSpace(s)
				if s == "" {
					// Blank stays blank; the sheet fills its own default on create.
					out[name] = ""
					continue
				}
				n, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, &ValidationError{Field: name, Message: "must be a number"}
				}
				out[name] = n
				continue
			}
			n, ok := fields.Number(name)
			if !ok {
				return nil, &ValidationError{Field: name, Message: "must be a number"}
			}
			out[name] = n
		default:
			out[name] = strings.TrimSpace(fields.String(name))
		}
	}
	return out, nil
}

// Validate checks a write payload against the collection schema.
func Validate(c Collection, op Op, fields Record) error {
	schema, ok := Schemas[c]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	switch op {
	case OpCreate:
		if fields.ID() != "" {
			return &ValidationError{Field: "id", Message: "is assigned by the server"}
		}
	case OpUpdate, OpDelete:
		if strings.TrimSpace(fields.ID()) == "" {
			return &ValidationError{Field: "id", Message: "is required"}
		}
		if op == OpDelete {
			return nil
		}
	default:
		return fmt.Errorf("unknown operation %q", op)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if name != "id" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := schema[name]
		if !ok {
			return &ValidationError{Field: name, Message: "unknown field"}
		}
		if op == OpUpdate && f.Type == Number && fields.String(name) == "" {
			return &ValidationError{Field: name, Message: "must be a number"}
		}
		if err := validateField(name, f, fields[name]); err != nil {
			return err
		}
	}

	if op == OpCreate {
		required := make([]string, 0)
		for name, f := range schema {
			if f.Required {
				required = append(required, name)
			}
		}
		sort.Strings(required)
		for _, name := range required {
			if _, ok := fields[name]; !ok {
				return &ValidationError{Field: name, Message: "is required"}
			}
		}
	}
	return nil
}

func validateField(name string, f Field, value any) error {
	var tags []string
	if f.Required {
		tags = append(tags, "required")
	} else {
		tags = append(tags, "omitempty")
	}
	if f.Rule != "" {
		tags = append(tags, f.Rule)
	}

	err := validate.Var(value, strings.Join(tags, ","))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ValidationError{Field: name, Message: ruleMessage(verrs[0])}
	}
	return &ValidationError{Field: name, Message: err.Error()}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "isodate":
		return "must be an ISO date (YYYY-MM-DD)"
	case "gte":
		return "must be >= " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag()
}
