package playback

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/config"
)

// Entitlement decides what happens when a server requires a subscription.
type Entitlement struct {
	// Policy is config.EntitlementDisplay or config.EntitlementEnforce.
	Policy     string
	Subscribed bool
}

// Check returns a forbidden error when s requires a subscription the user
// does not have and the policy is enforce. Under display the requirement is
// only logged.
func (e Entitlement) Check(s Server, log *zap.Logger) error {
	if !s.RequiresSubscription || e.Subscribed {
		return nil
	}
	if strings.EqualFold(e.Policy, config.EntitlementEnforce) {
		return apperr.Forbidden(fmt.Sprintf("%s requires a subscription", s.Name))
	}
	if log != nil {
		log.Info("server requires a subscription; continuing", zap.String("server", s.Key))
	}
	return nil
}
