package provider

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	mailgate_errors "github.com/iamail/mailgate/internal/errors"
)

// Catalog holds the validated provider table. It is built once at startup
// and read-only afterwards, so concurrent lookups need no locking.
type Catalog struct {
	byKey          map[string]Descriptor
	byDomain       map[string]string
	ordered        []Descriptor
	brandedDefault Descriptor
}

// NewCatalog validates the descriptor set and indexes it. It fails with
// ErrCatalogMisconfigured when keys collide, a domain is claimed by two
// providers, or the set does not contain exactly one branded default.
func NewCatalog(descriptors []Descriptor) (*Catalog, error) {
	if len(descriptors) == 0 {
		return nil, errors.Wrap(mailgate_errors.ErrCatalogMisconfigured, "catalog is empty")
	}

	catalog := &Catalog{
		byKey:    make(map[string]Descriptor, len(descriptors)),
		byDomain: make(map[string]string),
		ordered:  make([]Descriptor, 0, len(descriptors)),
	}

	defaultCount := 0
	for _, descriptor := range descriptors {
		key := strings.TrimSpace(descriptor.Key)
		if key == "" {
			return nil, errors.Wrap(mailgate_errors.ErrCatalogMisconfigured, "descriptor with empty key")
		}
		if _, exists := catalog.byKey[key]; exists {
			return nil, errors.Wrapf(mailgate_errors.ErrCatalogMisconfigured, "duplicate provider key %q", key)
		}

		normalizedDomains := make([]string, 0, len(descriptor.MatchDomains))
		for _, domain := range descriptor.MatchDomains {
			domain = strings.ToLower(strings.TrimSpace(domain))
			if domain == "" {
				continue
			}
			if owner, taken := catalog.byDomain[domain]; taken {
				return nil, errors.Wrapf(mailgate_errors.ErrCatalogMisconfigured,
					"domain %q claimed by both %q and %q", domain, owner, key)
			}
			catalog.byDomain[domain] = key
			normalizedDomains = append(normalizedDomains, domain)
		}
		descriptor.Key = key
		descriptor.MatchDomains = normalizedDomains

		if descriptor.BrandedDefault {
			defaultCount++
			catalog.brandedDefault = descriptor
		}

		catalog.byKey[key] = descriptor
		catalog.ordered = append(catalog.ordered, descriptor)
	}

	if defaultCount != 1 {
		return nil, errors.Wrapf(mailgate_errors.ErrCatalogMisconfigured,
			"expected exactly one branded default provider, found %d", defaultCount)
	}

	sort.SliceStable(catalog.ordered, func(i, j int) bool {
		if catalog.ordered[i].Priority != catalog.ordered[j].Priority {
			return catalog.ordered[i].Priority < catalog.ordered[j].Priority
		}
		return catalog.ordered[i].Key < catalog.ordered[j].Key
	})

	return catalog, nil
}

func (c *Catalog) GetByKey(key string) (Descriptor, error) {
	descriptor, ok := c.byKey[key]
	if !ok {
		return Descriptor{}, errors.Wrapf(mailgate_errors.ErrUnknownProviderKey, "key %q", key)
	}
	return descriptor, nil
}

// ListByPriority returns descriptors ascending by priority, ties broken by
// key lexical order. Priority affects presentation only, never resolution.
func (c *Catalog) ListByPriority() []Descriptor {
	out := make([]Descriptor, len(c.ordered))
	copy(out, c.ordered)
	return out
}

func (c *Catalog) BrandedDefault() Descriptor {
	return c.brandedDefault
}

func (c *Catalog) lookupDomain(domain string) (Descriptor, bool) {
	key, ok := c.byDomain[domain]
	if !ok {
		return Descriptor{}, false
	}
	return c.byKey[key], true
}
