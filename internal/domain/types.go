package domain

import "time"

// Persona is a static archetype that every synthetic account is bound to.
type Persona struct {
	Type               string   `json:"type" yaml:"type"`
	PreferredLocations []string `json:"preferredLocations" yaml:"preferredLocations"`
	Interests          []string `json:"interests" yaml:"interests"`
	PostingStyle       string   `json:"postingStyle" yaml:"postingStyle"`
}

type Location struct {
	City  string `json:"city" yaml:"city"`
	State string `json:"state" yaml:"state"`
}

type Credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Account is a provisioned identity. Its persona is fixed at creation.
type Account struct {
	Credentials    Credentials `json:"credentials"`
	AuthToken      string      `json:"authToken"`
	PlatformUserID string      `json:"platformUserId"`
	Persona        Persona     `json:"persona"`
	Location       Location    `json:"location"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Key identifies the account for per-account bookkeeping.
func (a Account) Key() string {
	if a.PlatformUserID != "" {
		return a.PlatformUserID
	}
	return a.Credentials.Username
}

type ContentItem struct {
	Text        string `json:"text"`
	Category    string `json:"category"`
	IsPolitical bool   `json:"isPolitical"`
}

type Statistics struct {
	PostsCreated    int        `json:"postsCreated"`
	Engagements     int        `json:"engagements"`
	AccountsCreated int        `json:"accountsCreated"`
	StartTime       *time.Time `json:"startTime"`
	LastPost        *time.Time `json:"lastPost"`
}

// DailyUsage counts one account's activity on Day (YYYY-MM-DD).
type DailyUsage struct {
	Day         string `json:"day"`
	Posts       int    `json:"posts"`
	Engagements int    `json:"engagements"`
}

// Snapshot is the durable record of all bot state.
type Snapshot struct {
	Accounts   []Account             `json:"accounts"`
	Posting    bool                  `json:"posting"`
	Statistics Statistics            `json:"statistics"`
	DailyUsage map[string]DailyUsage `json:"dailyUsage,omitempty"`
}

// Profile is the registration payload sent to the platform.
type Profile struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Bio       string `json:"bio,omitempty"`
}

type Identity struct {
	UserID string
	Token  string
}

type Session struct {
	UserID string
	Token  string
}

type Post struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	AuthorID string `json:"authorId"`
}

type ActivityKind string

const (
	ActivityPost       ActivityKind = "post"
	ActivityEngagement ActivityKind = "engagement"
)

type QuotaDecision struct {
	Allowed    bool   `json:"allowed"`
	DenyReason string `json:"deny_reason,omitempty"`
}

type ProvisionResult struct {
	SuccessCount int `json:"successCount"`
	ErrorCount   int `json:"errorCount"`
}

type EventType string

const (
	EventAccountCreated     EventType = "AccountCreated"
	EventAccountFailed      EventType = "AccountFailed"
	EventPostCreated        EventType = "PostCreated"
	EventPostFailed         EventType = "PostFailed"
	EventEngagementCreated  EventType = "EngagementCreated"
	EventEngagementSkipped  EventType = "EngagementSkipped"
	EventEngagementFailed   EventType = "EngagementFailed"
	EventEngineStarted      EventType = "EngineStarted"
	EventEngineStopped      EventType = "EngineStopped"
	EventProvisionCompleted EventType = "ProvisionCompleted"
)

type Event struct {
	ID        string                 `json:"event_id"`
	AccountID string                 `json:"account_id,omitempty"`
	Type      EventType              `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}
