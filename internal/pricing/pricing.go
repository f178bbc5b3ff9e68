// Package pricing computes the advisory monthly price estimate shown by the
// booking wizard. Estimates are informational only and are never the
// authoritative price of an intervention.
package pricing

type Options struct {
	Ironing          bool `json:"ironing"`
	SuppliesProvided bool `json:"suppliesProvided"`
	Windows          bool `json:"windows"`
	GroceryShopping  bool `json:"groceryShopping"`
}

// Rates holds every tunable amount of the estimate, in euros.
type Rates struct {
	BaseRate       float64 `yaml:"base_rate" json:"baseRate"`
	IroningPerHour float64 `yaml:"ironing_per_hour" json:"ironingPerHour"`
	Supplies       float64 `yaml:"supplies" json:"supplies"`
	Windows        float64 `yaml:"windows" json:"windows"`
	ShoppingOuting float64 `yaml:"shopping_per_outing" json:"shoppingPerOuting"`
	PromoPercent   float64 `yaml:"promo_percent" json:"promoPercent"`
	TaxAdvance     float64 `yaml:"tax_advance" json:"taxAdvance"`
}

func DefaultRates() Rates {
	return Rates{
		BaseRate:       25,
		IroningPerHour: 2,
		Supplies:       3,
		Windows:        5,
		ShoppingOuting: 10,
		PromoPercent:   0.30,
		TaxAdvance:     0.5,
	}
}

// Selection is the subset of the wizard state the estimate depends on.
type Selection struct {
	Service       Service
	Frequency     Frequency
	Hours         float64
	Options       Options
	ResidenceType string
}

type Estimate struct {
	Subtotal         float64 `json:"subtotal"`
	Promo            float64 `json:"promo"`
	AfterPromo       float64 `json:"afterPromo"`
	FinalPrice       float64 `json:"finalPrice"`
	IsEligible50     bool    `json:"isEligible50"`
	IsProOrShortTerm bool    `json:"isProOrShortTerm"`
}

// Compute returns a zero Estimate when hours or frequency are unset.
func Compute(sel Selection, rates Rates) Estimate {
	if sel.Hours <= 0 || sel.Frequency == "" {
		return Estimate{}
	}

	multiplier := 1.0
	if f, ok := LookupFrequency(sel.Frequency); ok {
		multiplier = f.Multiplier
	}

	subtotal := rates.BaseRate*sel.Hours*multiplier + OptionSurcharge(sel.Options, sel.Hours, rates)

	isProOrShortTerm := sel.Service == ServiceProfessional || sel.Service == ServiceShortTermRental
	promoFirstHour := rates.BaseRate
	if isProOrShortTerm {
		promoFirstHour = 0
	}
	promo := promoFirstHour + subtotal*rates.PromoPercent

	afterPromo := subtotal - promo
	if afterPromo < 0 {
		afterPromo = 0
	}

	eligible := IsEligible50(sel.Service, sel.ResidenceType)
	finalPrice := afterPromo
	if eligible {
		finalPrice = afterPromo * rates.TaxAdvance
	}

	return Estimate{
		Subtotal:         subtotal,
		Promo:            promo,
		AfterPromo:       afterPromo,
		FinalPrice:       finalPrice,
		IsEligible50:     eligible,
		IsProOrShortTerm: isProOrShortTerm,
	}
}

// OptionSurcharge sums the add-ons included in the estimate. Grocery
// shopping is billed per outing on the day and is left out.
func OptionSurcharge(opts Options, hours float64, rates Rates) float64 {
	extra := 0.0
	if opts.Ironing {
		extra += rates.IroningPerHour * hours
	}
	if opts.SuppliesProvided {
		extra += rates.Supplies
	}
	if opts.Windows {
		extra += rates.Windows
	}
	return extra
}

// IsEligible50 reports whether the immediate tax advance halves the price.
func IsEligible50(service Service, residenceType string) bool {
	if service == ServiceProfessional {
		return false
	}
	if service == ServiceShortTermRental && residenceType == ResidenceSecondary {
		return false
	}
	return true
}
