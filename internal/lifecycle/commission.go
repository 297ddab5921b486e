package lifecycle

import (
	"github.com/shopspring/decimal"

	"github.com/javajoker/payhub-backend/internal/errs"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Split is the commission breakdown frozen onto a payment.
type Split struct {
	Gross      decimal.Decimal
	Rate       decimal.Decimal
	Commission decimal.Decimal
	Net        decimal.Decimal
}

// ComputeCommission splits price into platform commission and freelancer net.
// Both parts are rounded to cents and always sum to price.
func ComputeCommission(price, rate decimal.Decimal) (Split, error) {
	if err := ValidatePrice(price); err != nil {
		return Split{}, err
	}
	if err := ValidateCommissionRate(rate); err != nil {
		return Split{}, err
	}

	gross := price.Round(2)
	commission := gross.Mul(rate).Div(hundred).Round(2)
	return Split{
		Gross:      gross,
		Rate:       rate,
		Commission: commission,
		Net:        gross.Sub(commission),
	}, nil
}

func ValidatePrice(price decimal.Decimal) error {
	if !price.GreaterThan(zero) {
		return errs.Validation("price must be positive")
	}
	if !price.Equal(price.Round(2)) {
		return errs.Validation("price cannot have more than two decimal places")
	}
	return nil
}

func ValidateCommissionRate(rate decimal.Decimal) error {
	if rate.LessThan(zero) || rate.GreaterThan(hundred) {
		return errs.Validation("commission rate must be between 0 and 100")
	}
	return nil
}
