package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"vendas-platform/pkg/errutil"
	"vendas-platform/services/sale"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

type Buyer struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Document string `json:"document" validate:"required,min=8"`
}

type Request struct {
	Slug          string `json:"slug" validate:"required,slug"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card boleto pix"`
	AffiliateID   string `json:"affiliate_id" validate:"omitempty,uuid"`
	Buyer         Buyer  `json:"buyer" validate:"required"`
}

type Response struct {
	SaleID          string `json:"sale_id"`
	TransactionCode string `json:"transaction_code"`
	CheckoutURL     string `json:"checkout_url"`
}

func paymentMethodCode(m string) sale.PaymentMethod {
	switch m {
	case "card":
		return sale.PaymentMethodCard
	case "boleto":
		return sale.PaymentMethodBoleto
	default:
		return sale.PaymentMethodPix
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.IsSlug(fl.Field().String())
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errutil.BadRequest("Corpo inválido.", err, errutil.WithReason("invalid_body"))
	}

	details := make([]errutil.Detail, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Request.")
		details = append(details, errutil.Detail{
			Field:   field,
			Message: fmt.Sprintf("failed on %q", fe.Tag()),
		})
	}
	return errutil.BadRequest("Corpo inválido.", err,
		errutil.WithReason("invalid_body"),
		errutil.WithDetails(details...))
}
