package credit

import "github.com/ideaforge/ideaforge/internal/model"

// CostPolicy maps a document type to the number of credits a
// generation or regeneration of it costs. Costs come from
// configuration rather than being hard-coded so pricing can change
// per deployment.
type CostPolicy struct {
	costs       map[model.DocumentType]int64
	defaultCost int64
}

// NewCostPolicy builds a policy from per-type overrides and a
// default applied to any type without one. Non-positive values are
// clamped to the default (or 1).
func NewCostPolicy(costs map[model.DocumentType]int64, defaultCost int64) CostPolicy {
	if defaultCost <= 0 {
		defaultCost = 1
	}
	clean := make(map[model.DocumentType]int64, len(costs))
	for t, c := range costs {
		if c > 0 {
			clean[t] = c
		}
	}
	return CostPolicy{costs: clean, defaultCost: defaultCost}
}

// CostFor returns the generation cost for a document type.
func (p CostPolicy) CostFor(docType model.DocumentType) int64 {
	if c, ok := p.costs[docType]; ok {
		return c
	}
	return p.defaultCost
}
