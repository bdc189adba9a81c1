package domain

import "github.com/shopspring/decimal"

// PlanName identifies a billing plan.
type PlanName string

const (
	PlanFree       PlanName = "Free"
	PlanPro        PlanName = "Pro"
	PlanEnterprise PlanName = "Enterprise"
)

// Plan describes a subscription tier.
type Plan struct {
	Name         PlanName        `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice"`
	Description  string          `json:"description"`
}

// RequiresPayment reports whether switching to the plan goes through checkout.
func (p Plan) RequiresPayment() bool {
	return p.MonthlyPrice.IsPositive()
}

// Plans returns the catalogue in display order.
func Plans() []Plan {
	return []Plan{
		{Name: PlanFree, MonthlyPrice: decimal.Zero, Description: "Basic features for individuals."},
		{Name: PlanPro, MonthlyPrice: decimal.RequireFromString("9.99"), Description: "Advanced features for professionals."},
		{Name: PlanEnterprise, MonthlyPrice: decimal.RequireFromString("49.99"), Description: "Best for teams and businesses."},
	}
}

// FindPlan looks a plan up by name.
func FindPlan(name PlanName) (Plan, bool) {
	for _, p := range Plans() {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}

// PaymentDetails are the card fields collected at checkout.
type PaymentDetails struct {
	NameOnCard string `json:"nameOnCard"`
	CardNumber string `json:"cardNumber"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// IsComplete reports whether every card field was filled in.
func (p PaymentDetails) IsComplete() bool {
	return p.NameOnCard != "" && p.CardNumber != "" && p.Expiry != "" && p.CVV != ""
}
