package domain

// Direction tells whether a conversation record was sent by or to the contact.
type Direction string

const (
	DirectionFromContact Direction = "from_contact"
	DirectionToContact   Direction = "to_contact"
)

// ConversationMessage is an email annotated with its direction relative
// to the contact the conversation was fetched for.
type ConversationMessage struct {
	Email     *EmailDocument `json:"email"`
	Direction Direction      `json:"direction"`
}

// ConversationHistory is the aggregated view of all exchanges with a contact,
// grouped by thread. Messages within each thread and in the flat list are
// ordered oldest first.
type ConversationHistory struct {
	ContactEmail string                            `json:"contact_email"`
	TotalEmails  int                               `json:"total_emails"`
	ThreadCount  int                               `json:"thread_count"`
	Threads      map[string][]*ConversationMessage `json:"threads"`
	Messages     []*ConversationMessage            `json:"messages"`
}
