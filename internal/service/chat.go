package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/repository"
)

const (
	BotName      = "Security Bot"
	BotAvatarURL = "https://api.dicebear.com/7.x/bottts/svg?seed=security-bot"
	BotReply     = "Your message has been securely delivered. Remember to keep your password strong and never share it with anyone."

	// DefaultReplyDelay is how long the bot "types".
	DefaultReplyDelay = time.Second

	maxMessageLength   = 1000
	defaultHistorySize = 50
)

// ChatService is the simulated secure chat: every message gets the same
// reassuring answer from the bot after a short delay. Nothing is
// encrypted and nothing leaves the machine.
type ChatService struct {
	messages   repository.MessageRepository
	replyDelay time.Duration
	logger     *slog.Logger
}

// NewChatService returns a ChatService. replyDelay < 0 selects
// DefaultReplyDelay; 0 replies immediately.
func NewChatService(messages repository.MessageRepository, replyDelay time.Duration, logger *slog.Logger) *ChatService {
	if replyDelay < 0 {
		replyDelay = DefaultReplyDelay
	}
	return &ChatService{messages: messages, replyDelay: replyDelay, logger: logger}
}

func validateChannel(channel model.Channel) error {
	if !model.ValidChannel(channel) {
		return apperror.ValidationFailed("channel",
			fmt.Sprintf("Unknown channel %q. Choose one of: %s", channel, joinValues(model.Channels)))
	}
	return nil
}

// Send posts content to channel as sender, waits for the bot and returns
// both messages. If ctx is cancelled while waiting, the user's message
// stays posted and only it is returned, together with ctx's error.
func (s *ChatService) Send(ctx context.Context, sender *model.User, channel model.Channel, content string) ([]model.Message, error) {
	if err := validateChannel(channel); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "Message cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, apperror.ValidationFailed("content", "Message must be 1000 characters or fewer")
	}

	mine := model.Message{
		Channel:       channel,
		SenderID:      sender.ID,
		SenderName:    sender.FullName,
		SenderAvatar:  sender.AvatarURL,
		Content:       content,
		IsCurrentUser: true,
	}
	if err := s.messages.Create(ctx, &mine); err != nil {
		return nil, fmt.Errorf("service/chat: posting message: %w", err)
	}

	if s.replyDelay > 0 {
		timer := time.NewTimer(s.replyDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return []model.Message{mine}, ctx.Err()
		case <-timer.C:
		}
	}

	reply := model.Message{
		Channel:      channel,
		SenderName:   BotName,
		SenderAvatar: BotAvatarURL,
		Content:      BotReply,
	}
	if err := s.messages.Create(ctx, &reply); err != nil {
		return []model.Message{mine}, fmt.Errorf("service/chat: posting reply: %w", err)
	}

	s.logger.Debug("chat message delivered", slog.String("channel", string(channel)))
	return []model.Message{mine, reply}, nil
}

// History returns the last limit messages of channel, oldest first, with
// IsCurrentUser set for viewer's own messages. limit <= 0 selects 50.
func (s *ChatService) History(ctx context.Context, viewer *model.User, channel model.Channel, limit int) ([]model.Message, error) {
	if err := validateChannel(channel); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistorySize
	}

	msgs, err := s.messages.ListByChannel(ctx, channel, repository.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("service/chat: loading %s history: %w", channel, err)
	}

	for i := range msgs {
		msgs[i].IsCurrentUser = msgs[i].SenderID != "" && msgs[i].SenderID == viewer.ID
	}
	return msgs, nil
}
