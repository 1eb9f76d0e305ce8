// Package adapters maps processor names to gateway implementations.
package adapters

import (
	"errors"
	"strings"
	"time"

	paymentdomain "github.com/contentry/ledger/internal/payment/domain"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
)

var (
	ErrProviderNotFound = errors.New("gateway_provider_not_found")
	ErrInvalidConfig    = errors.New("invalid_gateway_config")
)

// Config carries the processor credentials shared by both gateway roles.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Factory builds a processor's payment and transfer gateways.
type Factory interface {
	Provider() string
	NewGateways(cfg Config) (paymentdomain.Gateway, settlementdomain.Gateway, error)
}

type Registry struct {
	factories map[string]Factory
}

func NewRegistry(factories ...Factory) *Registry {
	registry := &Registry{factories: map[string]Factory{}}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(factory.Provider()))
		if provider == "" {
			continue
		}
		registry.factories[provider] = factory
	}
	return registry
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	_, ok := r.factories[provider]
	return ok
}

func (r *Registry) NewGateways(provider string, cfg Config) (paymentdomain.Gateway, settlementdomain.Gateway, error) {
	if r == nil {
		return nil, nil, ErrProviderNotFound
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	factory, ok := r.factories[provider]
	if !ok {
		return nil, nil, ErrProviderNotFound
	}
	return factory.NewGateways(cfg)
}
