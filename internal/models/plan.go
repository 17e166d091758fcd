package models

// Plan is a user's subscription tier. Quota limits are keyed by the plan of
// the team owner, not the acting user.
type Plan string

const (
	PlanFree         Plan = "free"
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// Unbounded marks a limit with no upper bound.
const Unbounded = 0

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// MemberLimit is the maximum team size allowed by the plan.
// Unbounded means no limit.
func (p Plan) MemberLimit() int {
	switch p {
	case PlanFree:
		return 15
	case PlanStarter:
		return 50
	case PlanProfessional:
		return 80
	default:
		return Unbounded
	}
}

// DailyUsageLimit is the number of AI requests a user may make per calendar
// day. Unbounded means no limit.
func (p Plan) DailyUsageLimit() int {
	switch p {
	case PlanFree:
		return 5
	case PlanStarter:
		return 10
	case PlanProfessional:
		return 20
	default:
		return Unbounded
	}
}
