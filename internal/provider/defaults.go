package provider

import (
	"github.com/iamail/mailgate/internal/enum"
)

// KeyBrandedDefault is the provider backing i.AM Mail hosted mailboxes and
// the fallback for every unrecognized domain.
const KeyBrandedDefault = "iam"

// DefaultDescriptors is the shipped provider table. Adding a provider means
// appending a descriptor with a domain set disjoint from all others;
// NewCatalog rejects overlaps at startup.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			Key:            KeyBrandedDefault,
			DisplayName:    "i.AM Mail",
			Priority:       0,
			IMAP:           Endpoint{Host: "imap.iamail.com", Port: 993, Security: enum.EmailSecuritySSL},
			SMTP:           Endpoint{Host: "smtp.iamail.com", Port: 587, Security: enum.EmailSecurityStartTLS},
			MatchDomains:   []string{"iamail.com", "iam.mail"},
			BrandedDefault: true,
		},
		{
			Key:          "gmail",
			DisplayName:  "Gmail",
			Priority:     1,
			IMAP:         Endpoint{Host: "imap.gmail.com", Port: 993, Security: enum.EmailSecuritySSL},
			SMTP:         Endpoint{Host: "smtp.gmail.com", Port: 587, Security: enum.EmailSecurityStartTLS},
			MatchDomains: []string{"gmail.com", "googlemail.com"},
		},
		{
			Key:          "outlook",
			DisplayName:  "Outlook",
			Priority:     2,
			IMAP:         Endpoint{Host: "outlook.office365.com", Port: 993, Security: enum.EmailSecuritySSL},
			SMTP:         Endpoint{Host: "smtp.office365.com", Port: 587, Security: enum.EmailSecurityStartTLS},
			MatchDomains: []string{"outlook.com", "hotmail.com", "live.com", "msn.com"},
		},
		{
			Key:          "yahoo",
			DisplayName:  "Yahoo Mail",
			Priority:     3,
			IMAP:         Endpoint{Host: "imap.mail.yahoo.com", Port: 993, Security: enum.EmailSecuritySSL},
			SMTP:         Endpoint{Host: "smtp.mail.yahoo.com", Port: 465, Security: enum.EmailSecuritySSL},
			MatchDomains: []string{"yahoo.com", "yahoo.co.uk", "ymail.com"},
		},
		{
			Key:          "icloud",
			DisplayName:  "iCloud Mail",
			Priority:     4,
			IMAP:         Endpoint{Host: "imap.mail.me.com", Port: 993, Security: enum.EmailSecuritySSL},
			SMTP:         Endpoint{Host: "smtp.mail.me.com", Port: 587, Security: enum.EmailSecurityStartTLS},
			MatchDomains: []string{"icloud.com", "me.com", "mac.com"},
		},
		{
			Key:          "zoho",
			DisplayName:  "Zoho Mail",
			Priority:     5,
			IMAP:         Endpoint{Host: "imap.zoho.com", Port: 993, Security: enum.EmailSecuritySSL},
			SMTP:         Endpoint{Host: "smtp.zoho.com", Port: 465, Security: enum.EmailSecuritySSL},
			MatchDomains: []string{"zoho.com", "zohomail.com"},
		},
		{
			Key:          "fastmail",
			DisplayName:  "Fastmail",
			Priority:     6,
			IMAP:         Endpoint{Host: "imap.fastmail.com", Port: 993, Security: enum.EmailSecuritySSL},
			SMTP:         Endpoint{Host: "smtp.fastmail.com", Port: 465, Security: enum.EmailSecuritySSL},
			MatchDomains: []string{"fastmail.com", "fastmail.fm"},
		},
	}
}

// DefaultCatalog builds the shipped catalog. The descriptor table above is
// maintained by hand; a validation failure here is a programming error and
// must stop the process before it serves traffic.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(DefaultDescriptors())
}
