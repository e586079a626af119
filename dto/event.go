package dto

import (
	"github.com/iamail/mailgate/internal/enum"
)

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uberTraceId"`
	OwnerUserId string `json:"ownerUserId"`
	UserEmail   string `json:"userEmail"`
	Timestamp   string `json:"timestamp"`
}

// AccountEvent is the payload carried for credential lifecycle events. The
// secret never leaves the store, so only routing data is published.
type AccountEvent struct {
	AccountID    string `json:"accountId"`
	OwnerUserID  string `json:"ownerUserId"`
	EmailAddress string `json:"emailAddress"`
	ProviderKey  string `json:"providerKey"`
	IsActive     bool   `json:"isActive"`
}
