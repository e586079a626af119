package dto

import (
	"github.com/iamail/mailgate/internal/models"
)

// ConnectAccountRequest is the payload for connecting a mailbox. The owner
// user id comes from the request headers, never the body.
type ConnectAccountRequest struct {
	EmailAddress string                   `json:"emailAddress" binding:"required"`
	Secret       string                   `json:"secret" binding:"required"`
	DisplayName  *string                  `json:"displayName"`
	IMAPOverride *models.EndpointOverride `json:"imapOverride,omitempty"`
	SMTPOverride *models.EndpointOverride `json:"smtpOverride,omitempty"`
	// SkipVerify bypasses the live IMAP/SMTP connection test. Used when a
	// mailbox is provisioned on the user's behalf before DNS settles.
	SkipVerify bool `json:"skipVerify"`
}

type DeduplicateResponse struct {
	Removed int `json:"removed"`
}
