package provider

import (
	"fmt"

	"github.com/iamail/mailgate/internal/enum"
)

// Endpoint describes one side (IMAP or SMTP) of a provider's connection
// parameters.
type Endpoint struct {
	Host     string             `json:"host"`
	Port     int                `json:"port"`
	Security enum.EmailSecurity `json:"security"`
}

func (e Endpoint) Address() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// ImplicitTLS reports whether the endpoint expects a TLS handshake before
// any protocol exchange, as opposed to STARTTLS or plaintext.
func (e Endpoint) ImplicitTLS() bool {
	return e.Security == enum.EmailSecuritySSL || e.Security == enum.EmailSecurityTLS
}

// Descriptor is the static record of connection parameters and domain
// ownership for one email service provider. Descriptors are immutable once
// the catalog is constructed.
type Descriptor struct {
	Key            string   `json:"key"`
	DisplayName    string   `json:"displayName"`
	Priority       int      `json:"priority"`
	IMAP           Endpoint `json:"imap"`
	SMTP           Endpoint `json:"smtp"`
	MatchDomains   []string `json:"matchDomains"`
	BrandedDefault bool     `json:"brandedDefault"`
}
