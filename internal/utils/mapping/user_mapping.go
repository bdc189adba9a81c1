package mapping

import (
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		Email:         d.Email,
		Name:          d.Name,
		PasswordHash:  d.PasswordHash,
		ProfilePicURL: d.ProfilePicURL,
		Plan:          string(d.Plan),
		AuthProvider:  string(d.AuthProvider),
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	plan := domain.PlanName(m.Plan)
	if _, ok := domain.FindPlan(plan); !ok {
		plan = domain.PlanFree
	}
	return domain.User{
		Email:         m.Email,
		Name:          m.Name,
		PasswordHash:  m.PasswordHash,
		ProfilePicURL: m.ProfilePicURL,
		Plan:          plan,
		AuthProvider:  domain.AuthProvider(m.AuthProvider),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
