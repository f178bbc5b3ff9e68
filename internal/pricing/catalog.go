package pricing

type Service string

type Frequency string

const (
	ServiceRegular         Service = "regular"
	ServiceOneTime         Service = "one-time"
	ServiceSeniors         Service = "seniors"
	ServiceShortTermRental Service = "short-term-rental"
	ServiceProfessional    Service = "professional"

	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyOnce     Frequency = "once"

	ResidencePrimary   = "primary"
	ResidenceSecondary = "secondary"
)

type ServiceInfo struct {
	ID          Service `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Eligible50  bool    `json:"eligible50"`
}

type FrequencyInfo struct {
	ID          Frequency `json:"id"`
	Label       string    `json:"label"`
	Short       string    `json:"short"`
	Multiplier  float64   `json:"multiplier"`
	Recommended bool      `json:"recommended"`
}

type DurationInfo struct {
	Hours       float64 `json:"hours"`
	Label       string  `json:"label"`
	Recommended bool    `json:"recommended"`
}

var Services = []ServiceInfo{
	{ID: ServiceRegular, Label: "Ménage régulier", Description: "Entretien hebdomadaire ou bimensuel", Eligible50: true},
	{ID: ServiceOneTime, Label: "Ménage ponctuel", Description: "Intervention unique ou occasionnelle", Eligible50: true},
	{ID: ServiceSeniors, Label: "Accompagnement Seniors", Description: "Aide à domicile bienveillante", Eligible50: true},
	{ID: ServiceShortTermRental, Label: "Airbnb & Gîtes", Description: "Ménage entre deux locations", Eligible50: true},
	{ID: ServiceProfessional, Label: "Bureaux & Copropriétés", Description: "Entretien des espaces professionnels", Eligible50: false},
}

// Multipliers approximate occurrences per billing month.
var Frequencies = []FrequencyInfo{
	{ID: FrequencyWeekly, Label: "1 fois / semaine", Short: "1×/semaine", Multiplier: 4.33, Recommended: true},
	{ID: FrequencyBiweekly, Label: "1 fois / 2 semaines", Short: "1×/2 semaines", Multiplier: 2.165},
	{ID: FrequencyMonthly, Label: "1 fois / mois", Short: "1×/mois", Multiplier: 1},
	{ID: FrequencyOnce, Label: "Ponctuel (1 seule fois)", Short: "Ponctuel", Multiplier: 1},
}

var Durations = []DurationInfo{
	{Hours: 2, Label: "2h"},
	{Hours: 2.5, Label: "2h30", Recommended: true},
	{Hours: 3, Label: "3h"},
	{Hours: 4, Label: "4h+"},
}

func LookupService(id Service) (ServiceInfo, bool) {
	for _, s := range Services {
		if s.ID == id {
			return s, true
		}
	}
	return ServiceInfo{}, false
}

func LookupFrequency(id Frequency) (FrequencyInfo, bool) {
	for _, f := range Frequencies {
		if f.ID == id {
			return f, true
		}
	}
	return FrequencyInfo{}, false
}

func IsValidService(value string) bool {
	_, ok := LookupService(Service(value))
	return ok
}

func IsValidFrequency(value string) bool {
	_, ok := LookupFrequency(Frequency(value))
	return ok
}

func IsValidHours(value float64) bool {
	for _, d := range Durations {
		if d.Hours == value {
			return true
		}
	}
	return false
}

// ServiceLabel falls back to the raw id for values outside the catalog.
func ServiceLabel(id Service) string {
	if s, ok := LookupService(id); ok {
		return s.Label
	}
	return string(id)
}

func FrequencyLabel(id Frequency) string {
	if f, ok := LookupFrequency(id); ok {
		return f.Short
	}
	return string(id)
}
