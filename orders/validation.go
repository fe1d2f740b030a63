package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type ItemInput struct {
	MenuItemID uint  `json:"menu_item_id" validate:"required"`
	Quantity   int   `json:"quantity" validate:"gt=0"`
	Price      int64 `json:"price" validate:"gte=0"`
}

// UnmarshalJSON also accepts "id" for the menu item, which is what cart clients send.
func (i *ItemInput) UnmarshalJSON(data []byte) error {
	type plain ItemInput
	var raw struct {
		plain
		ID *uint `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = ItemInput(raw.plain)
	if i.MenuItemID == 0 && raw.ID != nil {
		i.MenuItemID = *raw.ID
	}
	return nil
}

type SubmitRequest struct {
	TableNumber int         `json:"table_number" validate:"gt=0"`
	Notes       *string     `json:"notes" validate:"omitempty,max=500"`
	Items       []ItemInput `json:"items" validate:"required,min=1,dive"`
	Total       int64       `json:"total" validate:"gte=0"`
}

// Validate checks a submission without touching storage.
func Validate(req SubmitRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: []FieldError{{Field: "request", Message: err.Error()}}}
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return verr
}

// fieldPath drops the struct name: "SubmitRequest.items[0].quantity" -> "items[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "must contain at least one item"
		}
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
