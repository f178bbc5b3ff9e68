package leads

import (
	"strings"

	"laura-backend/internal/pricing"
)

// Filter narrows the admin list. Empty fields match everything.
type Filter struct {
	Status  Status
	Service pricing.Service
	Query   string
}

func (f Filter) Match(l Lead) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Service != "" && l.Service != f.Service {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{l.Name, l.Phone, l.City, l.ID} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply keeps the input order.
func (f Filter) Apply(items []Lead) []Lead {
	out := make([]Lead, 0, len(items))
	for _, l := range items {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

type Stats struct {
	Total     int                     `json:"total"`
	ByStatus  map[Status]int          `json:"byStatus"`
	ByService map[pricing.Service]int `json:"byService"`
	// sum of estimates over leads that are not cancelled
	PipelineValue float64 `json:"pipelineValue"`
}

func ComputeStats(items []Lead) Stats {
	st := Stats{
		Total:     len(items),
		ByStatus:  make(map[Status]int, len(Statuses)),
		ByService: make(map[pricing.Service]int, len(pricing.Services)),
	}
	for _, s := range Statuses {
		st.ByStatus[s] = 0
	}
	for _, l := range items {
		st.ByStatus[l.Status]++
		st.ByService[l.Service]++
		if l.Status != StatusCancelled {
			st.PipelineValue += l.PriceEstimate
		}
	}
	return st
}
