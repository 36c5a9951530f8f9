package models

import "time"

// Visibility controls who can see a trip.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
	VisibilityPublic  Visibility = "public"
)

// NodeType is the kind of card rendered on the canvas.
type NodeType string

const (
	NodeDestination  NodeType = "destination"
	NodeActivity     NodeType = "activity"
	NodeRestaurant   NodeType = "restaurant"
	NodeHotel        NodeType = "hotel"
	NodeTransport    NodeType = "transport"
	NodeNote         NodeType = "note"
	NodeDayDivider   NodeType = "dayDivider"
	NodeNestedCanvas NodeType = "nestedCanvas"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeDestination, NodeActivity, NodeRestaurant, NodeHotel,
		NodeTransport, NodeNote, NodeDayDivider, NodeNestedCanvas:
		return true
	}
	return false
}

// SubscriptionTier is the user's plan level.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
	TierPro     SubscriptionTier = "pro"
)

// Position is a card's location on the infinite canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Trip represents a trip plan owned by exactly one user.
type Trip struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Destination *string        `json:"destination,omitempty"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	Budget      *float64       `json:"budget,omitempty"`
	Currency    string         `json:"currency"`
	Visibility  Visibility     `json:"visibility"`
	CoverImage  *string        `json:"cover_image,omitempty"`
	Settings    map[string]any `json:"settings"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TripCreate is the request shape for creating a trip.
type TripCreate struct {
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Destination *string        `json:"destination"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	Budget      *float64       `json:"budget"`
	Currency    string         `json:"currency"`
	Visibility  Visibility     `json:"visibility"`
	CoverImage  *string        `json:"cover_image"`
	Settings    map[string]any `json:"settings"`
	Metadata    map[string]any `json:"metadata"`
}

// TripUpdate is a partial patch; nil fields are left untouched.
type TripUpdate struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Destination *string         `json:"destination"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	Budget      *float64        `json:"budget"`
	Currency    *string         `json:"currency"`
	Visibility  *Visibility     `json:"visibility"`
	CoverImage  *string         `json:"cover_image"`
	Settings    *map[string]any `json:"settings"`
	Metadata    *map[string]any `json:"metadata"`
}

// Card is a node on a trip's canvas.
type Card struct {
	ID        string         `json:"id"`
	TripID    string         `json:"trip_id"`
	Type      NodeType       `json:"type"`
	Title     string         `json:"title"`
	Content   map[string]any `json:"content"`
	Position  Position       `json:"position"`
	Style     map[string]any `json:"style"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CardCreate is the request shape for creating a card. ID may be supplied by
// the client; one is generated otherwise.
type CardCreate struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Title    string         `json:"title"`
	Content  map[string]any `json:"content"`
	Position *Position      `json:"position"`
	Style    map[string]any `json:"style"`
}

// CardUpdate is a partial patch; nil fields are left untouched.
type CardUpdate struct {
	Title    *string         `json:"title"`
	Content  *map[string]any `json:"content"`
	Position *Position       `json:"position"`
	Style    *map[string]any `json:"style"`
}

// CardBulkUpdate is one entry of a bulk position/content update.
type CardBulkUpdate struct {
	ID string `json:"id"`
	CardUpdate
}

// Connection is a directed edge between two cards of the same trip. Edges
// carry no updated_at; only type and metadata may change after creation.
type Connection struct {
	ID         string         `json:"id"`
	TripID     string         `json:"trip_id"`
	FromCardID string         `json:"from_card_id"`
	ToCardID   string         `json:"to_card_id"`
	Type       string         `json:"type"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ConnectionCreate is the request shape for creating a connection.
type ConnectionCreate struct {
	ID         string         `json:"id"`
	FromCardID string         `json:"from_card_id"`
	ToCardID   string         `json:"to_card_id"`
	Type       string         `json:"type"`
	Metadata   map[string]any `json:"metadata"`
}

// ConnectionUpdate is a partial patch of type/metadata.
type ConnectionUpdate struct {
	Type     *string         `json:"type"`
	Metadata *map[string]any `json:"metadata"`
}

// TripFullData is a trip together with everything on its canvas.
type TripFullData struct {
	Trip        *Trip         `json:"trip"`
	Cards       []*Card       `json:"cards"`
	Connections []*Connection `json:"connections"`
}

// UserProfile holds the display fields this system owns for a user. The
// identifier comes from the identity provider.
type UserProfile struct {
	ID                    string           `json:"id"`
	Username              *string          `json:"username,omitempty"`
	FullName              *string          `json:"full_name,omitempty"`
	AvatarURL             *string          `json:"avatar_url,omitempty"`
	Bio                   *string          `json:"bio,omitempty"`
	TravelStyle           []string         `json:"travel_style"`
	Preferences           map[string]any   `json:"preferences"`
	OnboardingCompleted   bool             `json:"onboarding_completed"`
	SubscriptionTier      SubscriptionTier `json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time       `json:"subscription_expires_at,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// UserProfileUpdate is a partial patch; nil fields are left untouched.
type UserProfileUpdate struct {
	Username            *string         `json:"username"`
	FullName            *string         `json:"full_name"`
	AvatarURL           *string         `json:"avatar_url"`
	Bio                 *string         `json:"bio"`
	TravelStyle         *[]string       `json:"travel_style"`
	Preferences         *map[string]any `json:"preferences"`
	OnboardingCompleted *bool           `json:"onboarding_completed"`
}

// Token type values.
const (
	TokenTypeBearer = "bearer"

	// TokenTypePendingConfirmation means the account was created but the
	// provider requires email confirmation before issuing a session.
	TokenTypePendingConfirmation = "pending_confirmation"
)

// Token is a session issued by the identity provider. Never persisted here.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
