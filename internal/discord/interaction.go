package discord

// Interaction types (the subset this service handles).
const (
	InteractionPing             = 1
	InteractionMessageComponent = 3
)

// Interaction callback types.
const (
	CallbackPong                  = 1
	CallbackChannelMessage        = 4
	CallbackDeferredUpdateMessage = 6
)

// Component types and button styles.
const (
	ComponentActionRow = 1
	ComponentButton    = 2

	ButtonStylePrimary = 1 // selected candidate
	ButtonStyleSuccess = 3 // unselected candidate
)

type Interaction struct {
	Type          int              `json:"type"`
	ApplicationID string           `json:"application_id"`
	Token         string           `json:"token"`
	Data          *InteractionData `json:"data,omitempty"`
	Member        *Member          `json:"member,omitempty"`
}

type InteractionData struct {
	CustomID      string `json:"custom_id"`
	ComponentType int    `json:"component_type,omitempty"`
}

type Member struct {
	Nick string `json:"nick,omitempty"`
	User *User  `json:"user,omitempty"`
}

type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
}

// UserID returns the Discord user id, or "" when the interaction
// carries no member information.
func (m *Member) UserID() string {
	if m == nil || m.User == nil {
		return ""
	}
	return m.User.ID
}

// DisplayName resolves the best available name for the responding
// staff member: server nickname, then global display name, then
// username.
func (m *Member) DisplayName() string {
	if m != nil {
		if m.Nick != "" {
			return m.Nick
		}
		if m.User != nil {
			if m.User.GlobalName != "" {
				return m.User.GlobalName
			}
			if m.User.Username != "" {
				return m.User.Username
			}
		}
	}
	return "Unknown GM"
}

// Response is the synchronous interaction callback body.
type Response struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Component models both action rows and buttons; rows carry nested
// Components, buttons carry Style/Label/CustomID.
type Component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Components []Component `json:"components,omitempty"`
}
