package services

import (
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/notify"
	"github.com/SscSPs/billing_dashboard/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos *portsrepo.RepositoryProvider,
	authenticator portssvc.Authenticator,
	notifier notify.Notifier,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(cfg)
	container.GoogleOAuth = NewGoogleOAuthHandlerService(cfg)

	container.Ledger = NewLedgerService(repos.LedgerRepo, WithLedgerNotifier(notifier))
	container.Auth = NewAuthService(repos.UserRepo, authenticator, container.Token)
	container.User = NewUserService(repos.UserRepo, authenticator, notifier)
	container.Billing = NewBillingService(repos.UserRepo, &PaymentSimulator{Delay: cfg.PaymentDelay}, notifier)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.LedgerSvcFacade             = (*ledgerService)(nil)
	_ portssvc.AuthSvcFacade               = (*authService)(nil)
	_ portssvc.UserSvcFacade               = (*userService)(nil)
	_ portssvc.BillingSvcFacade            = (*billingService)(nil)
	_ portssvc.TokenSvcFacade              = (*tokenService)(nil)
	_ portssvc.GoogleOAuthHandlerSvcFacade = (*googleOAuthHandlerService)(nil)
	_ portssvc.Authenticator               = localAuthenticator{}
)
