package messages

import "time"

// Message is a point-to-point note. SenderID and ReceiverID are opaque: a user
// id for messages sent through the API, a plain email for ones that came from
// the job contact form.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
	SenderID   string    `json:"senderId" gorm:"index;not null"`
	ReceiverID string    `json:"receiverId" gorm:"index;not null"`
	Topic      string    `json:"topic"`
	Body       string    `json:"body" gorm:"type:text"`
}

type Patch struct {
	Topic *string `json:"topic"`
	Body  *string `json:"body"`
}

func (p Patch) Apply(m *Message) {
	if p.Topic != nil {
		m.Topic = *p.Topic
	}
	if p.Body != nil {
		m.Body = *p.Body
	}
}
