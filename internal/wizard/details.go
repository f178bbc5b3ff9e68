package wizard

import "laura-backend/internal/pricing"

// Details holds the contact block shared by every service plus one variant
// per service family. Only the variant matching the selected service is read;
// variants left over from a previous selection are kept as entered.
type Details struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Comments string `json:"comments"`

	Home    *HomeDetails    `json:"home,omitempty"`
	Seniors *SeniorsDetails `json:"seniors,omitempty"`
	Rental  *RentalDetails  `json:"rental,omitempty"`
	Pro     *ProDetails     `json:"pro,omitempty"`
}

// HomeDetails serves regular and one-time cleaning.
type HomeDetails struct {
	Surface    string   `json:"surface,omitempty" validate:"omitempty,oneof=S M L XL"`
	Priorities []string `json:"priorities,omitempty" validate:"omitempty,dive,oneof=kitchen bathroom floors dust bedrooms"`
	AccessCode string   `json:"accessCode,omitempty" validate:"max=200"`
	Floor      string   `json:"floor,omitempty" validate:"max=50"`
}

type SeniorsDetails struct {
	Surface        string   `json:"surface,omitempty" validate:"omitempty,oneof=S M L XL"`
	Priorities     []string `json:"priorities,omitempty" validate:"omitempty,dive,oneof=kitchen bathroom floors dust bedrooms"`
	AccessCode     string   `json:"accessCode,omitempty" validate:"max=200"`
	Floor          string   `json:"floor,omitempty" validate:"max=50"`
	SeniorServices []string `json:"seniorServices,omitempty" validate:"omitempty,dive,oneof=companionship medication mail plants meal"`
	CarerName      string   `json:"carerName,omitempty" validate:"max=200"`
	CarerPhone     string   `json:"carerPhone,omitempty" validate:"max=30"`
}

// RentalDetails serves short-term rentals. ResidenceType drives the tax
// advance eligibility.
type RentalDetails struct {
	ResidenceType string   `json:"residenceType,omitempty" validate:"omitempty,oneof=primary secondary"`
	KeyAccess     string   `json:"keyAccess,omitempty" validate:"omitempty,oneof=keybox handover digital onsite"`
	KeyboxCode    string   `json:"keyboxCode,omitempty" validate:"max=50"`
	CheckoutTime  string   `json:"checkoutTime,omitempty" validate:"omitempty,clock"`
	CheckinTime   string   `json:"checkinTime,omitempty" validate:"omitempty,clock"`
	LinenOption   string   `json:"linenOption,omitempty" validate:"omitempty,oneof=host wash full"`
	Checklist     []string `json:"checklist,omitempty" validate:"omitempty,dive,oneof=bathroom kitchen beds trash floors dust"`
	WantPhotos    bool     `json:"wantPhotos,omitempty"`
}

type ProDetails struct {
	LocalType          string   `json:"localType,omitempty" validate:"omitempty,oneof=offices common medical shop other"`
	Surface            string   `json:"surface,omitempty" validate:"omitempty,oneof=S M L XL"`
	PreferredSchedule  string   `json:"preferredSchedule,omitempty" validate:"omitempty,oneof=before9 after18 weekend flexible"`
	CompanyName        string   `json:"companyName,omitempty" validate:"max=200"`
	Siret              string   `json:"siret,omitempty" validate:"omitempty,numeric,len=14"`
	AccessRequirements []string `json:"accessRequirements,omitempty" validate:"omitempty,dive,oneof=badge alarm keys"`
	AccessInstructions string   `json:"accessInstructions,omitempty" validate:"max=1000"`
}

// ResidenceType returns the rental residence type, or "" when no rental
// details were entered.
func (d Details) ResidenceType() string {
	if d.Rental == nil {
		return ""
	}
	return d.Rental.ResidenceType
}

// Specific returns the variant that belongs to service, or nil.
func (d Details) Specific(service pricing.Service) any {
	switch service {
	case pricing.ServiceRegular, pricing.ServiceOneTime:
		if d.Home != nil {
			return d.Home
		}
	case pricing.ServiceSeniors:
		if d.Seniors != nil {
			return d.Seniors
		}
	case pricing.ServiceShortTermRental:
		if d.Rental != nil {
			return d.Rental
		}
	case pricing.ServiceProfessional:
		if d.Pro != nil {
			return d.Pro
		}
	}
	return nil
}

func variantService(v any) []pricing.Service {
	switch v.(type) {
	case *HomeDetails:
		return []pricing.Service{pricing.ServiceRegular, pricing.ServiceOneTime}
	case *SeniorsDetails:
		return []pricing.Service{pricing.ServiceSeniors}
	case *RentalDetails:
		return []pricing.Service{pricing.ServiceShortTermRental}
	case *ProDetails:
		return []pricing.Service{pricing.ServiceProfessional}
	}
	return nil
}
