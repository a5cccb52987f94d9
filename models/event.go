package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Topics an event can be tagged with.
const (
	TopicPolitics = "Politics"
	TopicHealth   = "Health"
	TopicSport    = "Sport"
	TopicTech     = "Tech"
)

// Event status values. The transition Live -> Expired is one-way.
const (
	StatusLive    = "Live"
	StatusExpired = "Expired"
)

// DefaultCapacity is the attendee limit applied when a create request
// omits capacity.
const DefaultCapacity = 50

func ValidTopic(topic string) bool {
	switch topic {
	case TopicPolitics, TopicHealth, TopicSport, TopicTech:
		return true
	}
	return false
}

// TopicList accepts either a single topic string or an array of topics
// in a JSON request body.
type TopicList []string

func (t *TopicList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*t = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*t = []string{one}
	return nil
}

// Comment is an embedded sub-document; comments are append-only and
// never edited or reordered.
type Comment struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Event struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title     string               `bson:"title" json:"title"`
	Body      string               `bson:"body" json:"body"`
	Topics    []string             `bson:"topics" json:"topics"`
	ExpiresAt time.Time            `bson:"expiresAt" json:"expiresAt"`
	Status    string               `bson:"status" json:"status"`
	Location  string               `bson:"location,omitempty" json:"location,omitempty"`
	Capacity  int                  `bson:"capacity" json:"capacity"`
	CreatedBy primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Dislikes  []primitive.ObjectID `bson:"dislikes" json:"dislikes"`
	Attendees []primitive.ObjectID `bson:"attendees" json:"attendees"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsExpired reports whether the event is logically expired at now,
// regardless of the cached Status field.
func (e *Event) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// RefreshStatus flips a logically expired event from Live to Expired.
// It returns true when the cached status changed and the caller must
// persist the new value. The reverse transition never happens.
func (e *Event) RefreshStatus(now time.Time) bool {
	if e.Status == StatusLive && e.IsExpired(now) {
		e.Status = StatusExpired
		return true
	}
	return false
}

func (e *Event) IsCreator(userID primitive.ObjectID) bool {
	return e.CreatedBy == userID
}

func (e *Event) HasLiked(userID primitive.ObjectID) bool {
	return containsID(e.Likes, userID)
}

func (e *Event) HasDisliked(userID primitive.ObjectID) bool {
	return containsID(e.Dislikes, userID)
}

func (e *Event) IsAttending(userID primitive.ObjectID) bool {
	return containsID(e.Attendees, userID)
}

func (e *Event) IsFull() bool {
	return e.Capacity > 0 && len(e.Attendees) >= e.Capacity
}

// ApplyLike records a like by userID, removing any standing dislike so
// the two vote sets stay disjoint. It is the in-memory equivalent of
// the store's atomic vote update ($pull from the opposite set,
// $addToSet into the chosen one); callers reject duplicate votes before
// applying.
func (e *Event) ApplyLike(userID primitive.ObjectID) {
	e.Dislikes = removeID(e.Dislikes, userID)
	if !containsID(e.Likes, userID) {
		e.Likes = append(e.Likes, userID)
	}
}

// ApplyDislike is symmetric to ApplyLike with the vote sets swapped.
func (e *Event) ApplyDislike(userID primitive.ObjectID) {
	e.Likes = removeID(e.Likes, userID)
	if !containsID(e.Dislikes, userID) {
		e.Dislikes = append(e.Dislikes, userID)
	}
}

// ActivityScore counts likes, dislikes and comments. Attendees do not
// contribute to the score.
func (e *Event) ActivityScore() int {
	return len(e.Likes) + len(e.Dislikes) + len(e.Comments)
}

// MostActive returns the event with the strictly greatest activity
// score along with that score. On a tie the earliest event in evts
// wins, so the caller's ordering decides tie-breaks. Returns nil for
// an empty slice.
func MostActive(evts []Event) (*Event, int) {
	if len(evts) == 0 {
		return nil, 0
	}
	best := &evts[0]
	bestScore := best.ActivityScore()
	for i := 1; i < len(evts); i++ {
		if score := evts[i].ActivityScore(); score > bestScore {
			best = &evts[i]
			bestScore = score
		}
	}
	return best, bestScore
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
