package provider

import (
	"golang.org/x/net/idna"

	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/utils"
)

// Resolution pairs the resolved provider key with its descriptor.
type Resolution struct {
	ProviderKey string     `json:"providerKey"`
	Descriptor  Descriptor `json:"descriptor"`
	Fallback    bool       `json:"fallback"`
}

// Resolver maps raw email addresses to catalog descriptors. Resolution is
// total: every input resolves to exactly one descriptor, degrading to the
// branded default instead of failing. Validation of the address itself is
// owned by the connect flow, not the resolver.
type Resolver struct {
	catalog *Catalog
	log     logger.Logger
}

func NewResolver(catalog *Catalog, log logger.Logger) *Resolver {
	return &Resolver{catalog: catalog, log: log}
}

func (r *Resolver) Resolve(emailAddress string) Resolution {
	domain := utils.ExtractDomainFromEmail(emailAddress)
	if domain == "" {
		return r.fallback(domain)
	}

	// Internationalized domains match their punycode form.
	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		domain = ascii
	}

	if descriptor, ok := r.catalog.lookupDomain(domain); ok {
		return Resolution{ProviderKey: descriptor.Key, Descriptor: descriptor}
	}

	return r.fallback(domain)
}

func (r *Resolver) fallback(domain string) Resolution {
	descriptor := r.catalog.BrandedDefault()
	if r.log != nil && domain != "" {
		r.log.Infof("Unrecognized email domain %q, routing to %s", domain, descriptor.Key)
	}
	return Resolution{ProviderKey: descriptor.Key, Descriptor: descriptor, Fallback: true}
}
