package provider

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamail/mailgate/internal/enum"
	mailgate_errors "github.com/iamail/mailgate/internal/errors"
)

func descriptorFixture(key string, priority int, domains []string, branded bool) Descriptor {
	return Descriptor{
		Key:            key,
		DisplayName:    key,
		Priority:       priority,
		IMAP:           Endpoint{Host: "imap." + key + ".test", Port: 993, Security: enum.EmailSecuritySSL},
		SMTP:           Endpoint{Host: "smtp." + key + ".test", Port: 587, Security: enum.EmailSecurityStartTLS},
		MatchDomains:   domains,
		BrandedDefault: branded,
	}
}

func TestNewCatalog_Valid(t *testing.T) {
	catalog, err := NewCatalog([]Descriptor{
		descriptorFixture("iam", 0, []string{"iamail.com"}, true),
		descriptorFixture("gmail", 1, []string{"gmail.com", "googlemail.com"}, false),
	})
	require.NoError(t, err)

	assert.Equal(t, "iam", catalog.BrandedDefault().Key)

	descriptor, err := catalog.GetByKey("gmail")
	require.NoError(t, err)
	assert.Equal(t, "imap.gmail.test", descriptor.IMAP.Host)
}

func TestNewCatalog_RejectsEmpty(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.True(t, errors.Is(err, mailgate_errors.ErrCatalogMisconfigured))
}

func TestNewCatalog_RejectsDuplicateKey(t *testing.T) {
	_, err := NewCatalog([]Descriptor{
		descriptorFixture("iam", 0, []string{"iamail.com"}, true),
		descriptorFixture("iam", 1, []string{"other.com"}, false),
	})
	assert.True(t, errors.Is(err, mailgate_errors.ErrCatalogMisconfigured))
}

func TestNewCatalog_RejectsOverlappingDomains(t *testing.T) {
	_, err := NewCatalog([]Descriptor{
		descriptorFixture("iam", 0, []string{"iamail.com"}, true),
		descriptorFixture("gmail", 1, []string{"gmail.com"}, false),
		descriptorFixture("shadow", 2, []string{"GMAIL.com"}, false),
	})
	assert.True(t, errors.Is(err, mailgate_errors.ErrCatalogMisconfigured))
}

func TestNewCatalog_RejectsZeroBrandedDefaults(t *testing.T) {
	_, err := NewCatalog([]Descriptor{
		descriptorFixture("gmail", 1, []string{"gmail.com"}, false),
	})
	assert.True(t, errors.Is(err, mailgate_errors.ErrCatalogMisconfigured))
}

func TestNewCatalog_RejectsMultipleBrandedDefaults(t *testing.T) {
	_, err := NewCatalog([]Descriptor{
		descriptorFixture("iam", 0, []string{"iamail.com"}, true),
		descriptorFixture("iam2", 1, []string{"iam2.com"}, true),
	})
	assert.True(t, errors.Is(err, mailgate_errors.ErrCatalogMisconfigured))
}

func TestCatalog_GetByKey_Unknown(t *testing.T) {
	catalog, err := NewCatalog([]Descriptor{
		descriptorFixture("iam", 0, []string{"iamail.com"}, true),
	})
	require.NoError(t, err)

	_, err = catalog.GetByKey("does-not-exist")
	assert.True(t, errors.Is(err, mailgate_errors.ErrUnknownProviderKey))
}

func TestCatalog_ListByPriority(t *testing.T) {
	catalog, err := NewCatalog([]Descriptor{
		descriptorFixture("bravo", 2, []string{"bravo.com"}, false),
		descriptorFixture("iam", 0, []string{"iamail.com"}, true),
		descriptorFixture("alpha", 2, []string{"alpha.com"}, false),
		descriptorFixture("charlie", 1, []string{"charlie.com"}, false),
	})
	require.NoError(t, err)

	listed := catalog.ListByPriority()
	keys := make([]string, 0, len(listed))
	for _, d := range listed {
		keys = append(keys, d.Key)
	}

	// Ascending priority, lexical key tiebreak
	assert.Equal(t, []string{"iam", "charlie", "alpha", "bravo"}, keys)
}

func TestCatalog_ListByPriority_ReturnsCopy(t *testing.T) {
	catalog, err := NewCatalog([]Descriptor{
		descriptorFixture("iam", 0, []string{"iamail.com"}, true),
		descriptorFixture("gmail", 1, []string{"gmail.com"}, false),
	})
	require.NoError(t, err)

	listed := catalog.ListByPriority()
	listed[0].Key = "mutated"

	assert.Equal(t, "iam", catalog.ListByPriority()[0].Key)
}

func TestDefaultCatalog_IsValid(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Equal(t, KeyBrandedDefault, catalog.BrandedDefault().Key)
}
