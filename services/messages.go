package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"talenttrack-backend/models/messages"
	"talenttrack-backend/models/users"
)

type MessageService struct {
	messages messages.Repository
	events   Publisher
	policy   Policy
	now      func() time.Time
}

func NewMessageService(repo messages.Repository, events Publisher, policy Policy) *MessageService {
	return &MessageService{messages: repo, events: events, policy: policy, now: time.Now}
}

type NewMessage struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Topic      string `json:"topic"`
	Body       string `json:"body"`
}

func (s *MessageService) List(ctx context.Context) ([]messages.Message, error) {
	list, err := s.messages.List(ctx)
	if err != nil {
		return nil, storeErr(err, "messages")
	}
	return list, nil
}

// ListByReceiver is the inbox view.
func (s *MessageService) ListByReceiver(ctx context.Context, receiverID string) ([]messages.Message, error) {
	if receiverID == "" {
		return nil, invalid("receiverId is required")
	}
	list, err := s.messages.ListByReceiver(ctx, receiverID)
	if err != nil {
		return nil, storeErr(err, "messages")
	}
	return list, nil
}

func (s *MessageService) Get(ctx context.Context, id string) (*messages.Message, error) {
	if err := requireID(id, "message"); err != nil {
		return nil, err
	}
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "message")
	}
	return m, nil
}

// Create sends a message. The sender defaults to actor and the timestamp is
// always set here.
func (s *MessageService) Create(ctx context.Context, actor *users.User, in NewMessage) (*messages.Message, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no identity for send message", ErrUnauthorized)
	}
	in.ReceiverID = strings.TrimSpace(in.ReceiverID)
	if in.ReceiverID == "" {
		return nil, invalid("receiverId is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, invalid("body is required")
	}
	sender := strings.TrimSpace(in.SenderID)
	if sender == "" {
		sender = actor.ID
	}
	if err := s.policy.check(actor, "send as another user", sender); err != nil {
		return nil, err
	}

	m := &messages.Message{
		ID:         uuid.NewString(),
		Timestamp:  s.now().UTC(),
		SenderID:   sender,
		ReceiverID: in.ReceiverID,
		Topic:      in.Topic,
		Body:       in.Body,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, storeErr(err, "message")
	}

	publish(ctx, s.events, EventMessageCreated, map[string]string{
		"messageId":  m.ID,
		"senderId":   m.SenderID,
		"receiverId": m.ReceiverID,
		"topic":      m.Topic,
	})
	return m, nil
}

func (s *MessageService) Update(ctx context.Context, actor *users.User, id string, patch messages.Patch) (*messages.Message, error) {
	if err := requireID(id, "message"); err != nil {
		return nil, err
	}
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "message")
	}
	if err := s.policy.check(actor, "edit message", m.SenderID); err != nil {
		return nil, err
	}
	patch.Apply(m)
	if strings.TrimSpace(m.Body) == "" {
		return nil, invalid("body cannot be empty")
	}
	if err := s.messages.Save(ctx, m); err != nil {
		return nil, storeErr(err, "message")
	}
	return m, nil
}

// Delete is a hard delete; either party may ask for it.
func (s *MessageService) Delete(ctx context.Context, actor *users.User, id string) error {
	if err := requireID(id, "message"); err != nil {
		return err
	}
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, "message")
	}
	if err := s.policy.check(actor, "delete message", m.SenderID, m.ReceiverID); err != nil {
		return err
	}
	return storeErr(s.messages.Delete(ctx, id), "message")
}
