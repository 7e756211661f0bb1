package entities

import "time"

// MessageKind distinguishes regular posts from anonymous confessions.
type MessageKind string

const (
	KindNormal     MessageKind = "normal"
	KindConfession MessageKind = "confession"
)

// ReactionKind is the closed set of reactions a user can put on a message.
type ReactionKind string

const (
	ReactionFire  ReactionKind = "fire"
	ReactionLaugh ReactionKind = "laugh"
	ReactionCry   ReactionKind = "cry"
	ReactionSkull ReactionKind = "skull"
)

// KnownReactionKinds lists every valid reaction kind.
var KnownReactionKinds = []ReactionKind{ReactionFire, ReactionLaugh, ReactionCry, ReactionSkull}

// IsValid reports whether k is one of the known reaction kinds.
func (k ReactionKind) IsValid() bool {
	switch k {
	case ReactionFire, ReactionLaugh, ReactionCry, ReactionSkull:
		return true
	}
	return false
}

// The two fixed rooms every community has. Anything else is a hashtag room.
const (
	GroupMain       = "main"
	GroupConfession = "confession"
)

// Message is an ephemeral chat post filed into exactly one group.
// Reactions map each reaction kind to the authors holding it; an author
// appears under at most one kind at a time. Reports map a reporter to
// their free-text reason, at most one outstanding report per reporter.
type Message struct {
	ID           string                    `json:"id" db:"id"`
	Community    string                    `json:"community" db:"community"`
	Content      string                    `json:"content" db:"content"`
	AuthorID     string                    `json:"author_id" db:"author_id"`
	DisplayName  string                    `json:"display_name" db:"display_name"`
	DisplayColor string                    `json:"display_color" db:"display_color"`
	Kind         MessageKind               `json:"kind" db:"kind"`
	GroupName    string                    `json:"group_name" db:"group_name"`
	ReplyToID    string                    `json:"reply_to_id,omitempty" db:"reply_to_id"`
	Reactions    map[ReactionKind][]string `json:"reactions"`
	Reports      map[string]string         `json:"reports"`
	Hashtags     []string                  `json:"hashtags,omitempty"`
	Score        int                       `json:"score" db:"score"`
	CreatedAt    time.Time                 `json:"created_at" db:"created_at"`
}

// FlagCount is the number of outstanding reports on the message.
func (m *Message) FlagCount() int {
	return len(m.Reports)
}

// TotalReactions sums reaction holders across every kind.
func (m *Message) TotalReactions() int {
	total := 0
	for _, authors := range m.Reactions {
		total += len(authors)
	}
	return total
}

// ReactionHeldBy returns the kind the author currently holds, if any.
func (m *Message) ReactionHeldBy(authorID string) (ReactionKind, bool) {
	for kind, authors := range m.Reactions {
		for _, id := range authors {
			if id == authorID {
				return kind, true
			}
		}
	}
	return "", false
}
