package workflow

import "product-studio-backend/internal/models"

type Module string

const (
	ModuleBrief       Module = "brief"
	ModulePrototyping Module = "prototyping"
	ModuleSourcing    Module = "sourcing"
	ModuleOrder       Module = "order"
	ModulePhotography Module = "photography"
	ModuleMarketing   Module = "marketing"
)

var Modules = []Module{
	ModuleBrief,
	ModulePrototyping,
	ModuleSourcing,
	ModuleOrder,
	ModulePhotography,
	ModuleMarketing,
}

func (m Module) Valid() bool {
	for _, v := range Modules {
		if v == m {
			return true
		}
	}
	return false
}

// atLeast reports whether s is at or past min in lifecycle order.
func atLeast(s, min models.ProjectStatus) bool {
	idx := StatusIndex(s)
	return idx >= 0 && idx >= StatusIndex(min)
}

// IsAvailable decides whether module can be opened for r. Unavailable modules
// are still listed to the user but are inert.
func IsAvailable(module Module, r models.ProjectRecord) bool {
	switch module {
	case ModuleBrief:
		return true
	case ModulePrototyping:
		return atLeast(r.Status, models.StatusDetails)
	case ModuleSourcing:
		return atLeast(r.Status, models.StatusSourcing)
	case ModuleOrder:
		return atLeast(r.Status, models.StatusPayment)
	case ModulePhotography:
		return r.PhotographyUnlocked || atLeast(r.Status, models.StatusProduction)
	case ModuleMarketing:
		return r.MarketingUnlocked || atLeast(r.Status, models.StatusProduction)
	}
	return false
}

// ModuleAccess returns availability for every module.
func ModuleAccess(r models.ProjectRecord) map[Module]bool {
	out := make(map[Module]bool, len(Modules))
	for _, m := range Modules {
		out[m] = IsAvailable(m, r)
	}
	return out
}
