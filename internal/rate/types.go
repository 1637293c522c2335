package rate

import "time"

// Declaration describes how a provider's API should be guarded. The only
// policy is a cooldown after the provider signals throttling; local
// token budgets are unnecessary because callers cache reads themselves.
type Declaration struct {
	provider        string
	defaultCooldown time.Duration
}

// Provider creates a new declaration for a provider.
func Provider(name string) Declaration {
	return Declaration{provider: name, defaultCooldown: time.Minute}
}

func (d Declaration) ProviderName() string {
	return d.provider
}

// CooldownFor sets the backoff used when the provider returns 429
// without a Retry-After header.
func (d Declaration) CooldownFor(cooldown time.Duration) Declaration {
	d.defaultCooldown = cooldown
	return d
}
