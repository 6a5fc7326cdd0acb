package utils

import (
	"reflect"
	"regexp"
	"shop-cart/models"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

const DefaultCountry = "USA"

var (
	emailPattern  = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern  = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	zipPattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	cardPattern   = regexp.MustCompile(`^\d{16}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)

	phoneSeparators = regexp.MustCompile(`[\s\-()]`)
	whitespace      = regexp.MustCompile(`\s`)
)

var requiredMessages = map[string]string{
	"fullName":       "Full name is required",
	"email":          "Email is required",
	"phone":          "Phone number is required",
	"street":         "Street address is required",
	"city":           "City is required",
	"state":          "State is required",
	"zipCode":        "ZIP code is required",
	"cardholderName": "Cardholder name is required",
	"cardNumber":     "Card number is required",
	"expiryDate":     "Expiry date is required",
	"cvv":            "CVV is required",
}

var invalidMessages = map[string]string{
	"email":       "Email is invalid",
	"phone":       "Phone number is invalid",
	"zipCode":     "ZIP code is invalid",
	"cardNumber":  "Card number is invalid",
	"expiryDate":  "Expiry date must be MM/YY format",
	"cvv":         "CVV must be 3-4 digits",
	"pointsToUse": "Points cannot be negative",
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "loose_email", emailPattern)
	mustRegister(v, "phone", phonePattern)
	mustRegister(v, "zipcode", zipPattern)
	mustRegister(v, "card_number", cardPattern)
	mustRegister(v, "expiry", expiryPattern)
	mustRegister(v, "cvv", cvvPattern)

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// NormalizeCheckoutInput trims every field, strips phone separators and card
// spaces, and fills the default country.
func NormalizeCheckoutInput(in models.CheckoutInput) models.CheckoutInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = phoneSeparators.ReplaceAllString(strings.TrimSpace(in.Phone), "")
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.Country = strings.TrimSpace(in.Country)
	if in.Country == "" {
		in.Country = DefaultCountry
	}
	in.CardholderName = strings.TrimSpace(in.CardholderName)
	in.CardNumber = whitespace.ReplaceAllString(in.CardNumber, "")
	in.ExpiryDate = strings.TrimSpace(in.ExpiryDate)
	in.CVV = strings.TrimSpace(in.CVV)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	return in
}

// ValidateCheckout checks every field and reports all failures at once,
// keyed by JSON field name.
func (v *Validator) ValidateCheckout(in models.CheckoutInput) (models.CheckoutInput, error) {
	in = NormalizeCheckoutInput(in)

	err := v.validate.Struct(in)
	if err == nil {
		return in, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return in, errors.Wrap(err, "validate checkout")
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return in, models.NewValidationError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return "This field is required"
	}
	if msg, ok := invalidMessages[fe.Field()]; ok {
		return msg
	}
	return "Invalid format"
}
