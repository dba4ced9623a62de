package models

type PaymentType string

const (
	PaymentDeposit     PaymentType = "deposit"
	PaymentRemaining   PaymentType = "remaining"
	PaymentFreight     PaymentType = "freight"
	PaymentStarterFee  PaymentType = "starter_fee"
	PaymentPhotography PaymentType = "photography"
	PaymentMarketing   PaymentType = "marketing"
	PaymentSample      PaymentType = "sample"
)

var PaymentTypes = []PaymentType{
	PaymentDeposit,
	PaymentRemaining,
	PaymentFreight,
	PaymentStarterFee,
	PaymentPhotography,
	PaymentMarketing,
	PaymentSample,
}

func (t PaymentType) Valid() bool {
	for _, v := range PaymentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// FlagKey names the stored payment triple a payment type writes to.
// The starter fee pays for the sample, so both share the sample triple.
func (t PaymentType) FlagKey() string {
	if t == PaymentStarterFee {
		return string(PaymentSample)
	}
	return string(t)
}

// Flag returns the stored triple for a payment type.
func (p Payments) Flag(t PaymentType) PaymentFlag {
	switch t.FlagKey() {
	case "deposit":
		return p.Deposit
	case "remaining":
		return p.Remaining
	case "freight":
		return p.Freight
	case "photography":
		return p.Photography
	case "marketing":
		return p.Marketing
	default:
		return p.Sample
	}
}

func (p *Payments) flagPtr(key string) *PaymentFlag {
	switch key {
	case "deposit":
		return &p.Deposit
	case "remaining":
		return &p.Remaining
	case "freight":
		return &p.Freight
	case "photography":
		return &p.Photography
	case "marketing":
		return &p.Marketing
	case "sample":
		return &p.Sample
	}
	return nil
}
