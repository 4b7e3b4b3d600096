// Package events defines the activity and administrative events herald
// receives from the identity platform.
package events

import "encoding/json"

// Event is either an ActivityEvent or an AdminEvent. The set is closed.
type Event interface {
	// OccurredAt returns the event time in epoch milliseconds.
	OccurredAt() int64
	isEvent()
}

// ActivityEvent records an end-user facing occurrence such as a login.
// Field names follow the platform's event representation so the struct can be
// serialized as-is into a message.
type ActivityEvent struct {
	Time      int64             `json:"time"`
	Kind      EventKind         `json:"type"`
	RealmID   string            `json:"realmId,omitempty"`
	ClientID  string            `json:"clientId,omitempty"`
	UserID    string            `json:"userId,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	IPAddress string            `json:"ipAddress,omitempty"`
	Error     string            `json:"error,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// AuthDetails identifies who performed an administrative change.
type AuthDetails struct {
	RealmID   string `json:"realmId,omitempty"`
	ClientID  string `json:"clientId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
}

// AdminEvent records an administrative mutation of platform configuration.
// Representation holds the changed resource as the platform reported it; it is
// not validated on receipt.
type AdminEvent struct {
	Time           int64           `json:"time"`
	RealmID        string          `json:"realmId,omitempty"`
	AuthDetails    *AuthDetails    `json:"authDetails,omitempty"`
	Operation      OperationKind   `json:"operationType"`
	ResourceType   string          `json:"resourceType,omitempty"`
	ResourcePath   string          `json:"resourcePath,omitempty"`
	Representation json.RawMessage `json:"representation,omitempty"`
	Error          string          `json:"error,omitempty"`
}

func (e ActivityEvent) OccurredAt() int64 { return e.Time }
func (e AdminEvent) OccurredAt() int64    { return e.Time }

func (ActivityEvent) isEvent() {}
func (AdminEvent) isEvent()    {}
