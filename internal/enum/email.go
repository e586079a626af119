package enum

type EmailSecurity string

const (
	EmailSecurityNone     EmailSecurity = "none"
	EmailSecuritySSL      EmailSecurity = "ssl"
	EmailSecurityTLS      EmailSecurity = "tls"
	EmailSecurityStartTLS EmailSecurity = "startTLS"
)

func (t EmailSecurity) String() string {
	return string(t)
}

type AccountSyncStatus string

const (
	AccountSyncPending AccountSyncStatus = "pending"
	AccountSyncActive  AccountSyncStatus = "active"
	AccountSyncError   AccountSyncStatus = "error"
)

func (t AccountSyncStatus) String() string {
	return string(t)
}

type EntityType string

const (
	ACCOUNT  EntityType = "account"
	PROVIDER EntityType = "provider"
)

func (t EntityType) String() string {
	return string(t)
}
