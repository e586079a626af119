package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return NewResolver(catalog, nil)
}

func TestResolver_KnownDomains(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		address     string
		providerKey string
	}{
		{"user@gmail.com", "gmail"},
		{"USER@GMAIL.com", "gmail"},
		{"  user@googlemail.com  ", "gmail"},
		{"someone@hotmail.com", "outlook"},
		{"someone@live.com", "outlook"},
		{"a@yahoo.co.uk", "yahoo"},
		{"a@me.com", "icloud"},
		{"a@zoho.com", "zoho"},
		{"founder@iamail.com", "iam"},
		{"Display Name <user@fastmail.com>", "fastmail"},
	}

	for _, tt := range tests {
		resolution := resolver.Resolve(tt.address)
		assert.Equal(t, tt.providerKey, resolution.ProviderKey, "address %q", tt.address)
		assert.False(t, resolution.Fallback, "address %q", tt.address)
		assert.Equal(t, tt.providerKey, resolution.Descriptor.Key)
	}
}

func TestResolver_UnknownDomainFallsBack(t *testing.T) {
	resolver := newTestResolver(t)

	resolution := resolver.Resolve("person@unknown-startup.io")
	assert.Equal(t, KeyBrandedDefault, resolution.ProviderKey)
	assert.True(t, resolution.Fallback)
	assert.NotEmpty(t, resolution.Descriptor.IMAP.Host)
}

func TestResolver_MalformedInputNeverFails(t *testing.T) {
	resolver := newTestResolver(t)

	for _, address := range []string{"", "not-an-email", "@", "trailing@", "a@b@"} {
		resolution := resolver.Resolve(address)
		assert.Equal(t, KeyBrandedDefault, resolution.ProviderKey, "address %q", address)
	}
}

func TestResolver_DomainMatchIsExactNotSuffix(t *testing.T) {
	resolver := newTestResolver(t)

	// "notgmail.com" must not match the gmail.com entry
	resolution := resolver.Resolve("user@notgmail.com")
	assert.Equal(t, KeyBrandedDefault, resolution.ProviderKey)

	// subdomains are distinct domains
	resolution = resolver.Resolve("user@mail.gmail.com")
	assert.Equal(t, KeyBrandedDefault, resolution.ProviderKey)
}

func TestResolver_IsDeterministic(t *testing.T) {
	resolver := newTestResolver(t)

	first := resolver.Resolve("user@gmail.com")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, resolver.Resolve("user@gmail.com"))
	}
}
