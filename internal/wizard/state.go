// Package wizard implements the four-step booking flow: service selection,
// frequency and duration, service-specific details, contact and submission.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"laura-backend/internal/pricing"
	"laura-backend/internal/validation"
)

const (
	StepService  = 1
	StepSchedule = 2
	StepDetails  = 3
	StepContact  = 4
)

var (
	ErrServiceRequired  = errors.New("service required")
	ErrScheduleRequired = errors.New("frequency and hours required")
	ErrInvalidPhone     = errors.New("phone must contain at least 10 digits")
	ErrInvalidStep      = errors.New("invalid step")
	ErrAlreadySubmitted = errors.New("wizard already submitted")
	ErrUnknownService   = errors.New("unknown service")
	ErrUnknownFrequency = errors.New("unknown frequency")
	ErrInvalidHours     = errors.New("invalid hours")
	ErrDetailsMismatch  = errors.New("details do not belong to the selected service")
	ErrUnknownOption    = errors.New("unknown option")
)

// Saver persists a submitted wizard and returns the new lead id. A failed
// call must leave no partial record so that submission can be retried.
type Saver interface {
	Save(ctx context.Context, s State) (string, error)
}

type State struct {
	Step      int               `json:"step"`
	Service   pricing.Service   `json:"service,omitempty"`
	Frequency pricing.Frequency `json:"frequency,omitempty"`
	Hours     float64           `json:"hours,omitempty"`
	Options   pricing.Options   `json:"options"`
	Details   Details           `json:"details"`
	Submitted bool              `json:"submitted,omitempty"`
	LeadID    string            `json:"leadId,omitempty"`
}

// New starts a wizard. A preselected service skips the first step.
func New(initial pricing.Service) (State, error) {
	s := State{Step: StepService}
	if initial == "" {
		return s, nil
	}
	if err := s.SelectService(initial); err != nil {
		return State{}, err
	}
	return s, nil
}

// SelectService records the service and, from the first step, advances to
// the schedule step straight away.
func (s *State) SelectService(service pricing.Service) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if !pricing.IsValidService(string(service)) {
		return fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
	s.Service = service
	if s.Step == StepService {
		s.Step = StepSchedule
	}
	return nil
}

func (s *State) SetFrequency(freq pricing.Frequency) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if !pricing.IsValidFrequency(string(freq)) {
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}
	s.Frequency = freq
	return nil
}

func (s *State) SetHours(hours float64) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if !pricing.IsValidHours(hours) {
		return fmt.Errorf("%w: %v", ErrInvalidHours, hours)
	}
	s.Hours = hours
	return nil
}

func (s *State) SetOption(name string, on bool) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	switch name {
	case "ironing":
		s.Options.Ironing = on
	case "suppliesProvided":
		s.Options.SuppliesProvided = on
	case "windows":
		s.Options.Windows = on
	case "groceryShopping":
		s.Options.GroceryShopping = on
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	return nil
}

func (s *State) ToggleOption(name string) error {
	current, err := s.option(name)
	if err != nil {
		return err
	}
	return s.SetOption(name, !current)
}

func (s *State) option(name string) (bool, error) {
	switch name {
	case "ironing":
		return s.Options.Ironing, nil
	case "suppliesProvided":
		return s.Options.SuppliesProvided, nil
	case "windows":
		return s.Options.Windows, nil
	case "groceryShopping":
		return s.Options.GroceryShopping, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownOption, name)
}

// ContactUpdate carries the fields of step 4; nil fields are left untouched.
type ContactUpdate struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	City     *string `json:"city" validate:"omitempty,max=200"`
	Comments *string `json:"comments" validate:"omitempty,max=2000"`
}

func (s *State) UpdateContact(u ContactUpdate) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if u.Name != nil {
		s.Details.Name = *u.Name
	}
	if u.Phone != nil {
		s.Details.Phone = *u.Phone
	}
	if u.City != nil {
		s.Details.City = *u.City
	}
	if u.Comments != nil {
		s.Details.Comments = *u.Comments
	}
	return nil
}

func (s *State) UpdateHome(d HomeDetails) error {
	if err := s.checkVariant(&d); err != nil {
		return err
	}
	s.Details.Home = &d
	return nil
}

func (s *State) UpdateSeniors(d SeniorsDetails) error {
	if err := s.checkVariant(&d); err != nil {
		return err
	}
	s.Details.Seniors = &d
	return nil
}

func (s *State) UpdateRental(d RentalDetails) error {
	if err := s.checkVariant(&d); err != nil {
		return err
	}
	s.Details.Rental = &d
	return nil
}

func (s *State) UpdatePro(d ProDetails) error {
	if err := s.checkVariant(&d); err != nil {
		return err
	}
	s.Details.Pro = &d
	return nil
}

func (s *State) checkVariant(v any) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if s.Service == "" {
		return ErrServiceRequired
	}
	for _, svc := range variantService(v) {
		if svc == s.Service {
			return nil
		}
	}
	return ErrDetailsMismatch
}

// Next moves one step forward when the gate of the current step is met.
func (s *State) Next() error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	switch s.Step {
	case StepService:
		if s.Service == "" {
			return ErrServiceRequired
		}
	case StepSchedule:
		if s.Frequency == "" || s.Hours <= 0 {
			return ErrScheduleRequired
		}
	case StepDetails:
	default:
		return ErrInvalidStep
	}
	s.Step++
	return nil
}

func (s *State) Back() error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if s.Step <= StepService || s.Step > StepContact {
		return ErrInvalidStep
	}
	s.Step--
	return nil
}

// GoTo jumps back to an earlier step; it never moves forward.
func (s *State) GoTo(step int) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if step < StepService || step >= s.Step {
		return ErrInvalidStep
	}
	s.Step = step
	return nil
}

func (s *State) CanSubmit() bool {
	return !s.Submitted && s.Step == StepContact && validation.IsPlausiblePhone(s.Details.Phone)
}

// Submit hands the state to saver. On failure the state is left unchanged
// and Submit may be called again.
func (s *State) Submit(ctx context.Context, saver Saver) (string, error) {
	if s.Submitted {
		return "", ErrAlreadySubmitted
	}
	if s.Step != StepContact {
		return "", ErrInvalidStep
	}
	if !validation.IsPlausiblePhone(s.Details.Phone) {
		return "", ErrInvalidPhone
	}
	id, err := saver.Save(ctx, *s)
	if err != nil {
		return "", err
	}
	s.Submitted = true
	s.LeadID = id
	return id, nil
}

func (s State) Selection() pricing.Selection {
	return pricing.Selection{
		Service:       s.Service,
		Frequency:     s.Frequency,
		Hours:         s.Hours,
		Options:       s.Options,
		ResidenceType: s.Details.ResidenceType(),
	}
}

func (s State) Estimate(rates pricing.Rates) pricing.Estimate {
	return pricing.Compute(s.Selection(), rates)
}
