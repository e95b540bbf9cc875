package wa

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// CommandHandler turns a chat message into a reply; "" means no reply.
type CommandHandler interface {
	Execute(ctx context.Context, msg string) (string, error)
}

type BotConfig struct {
	GroupID         string
	ReplyDelayMinMs int
	ReplyDelayMaxMs int
	ShowTyping      bool
}

// Bot answers tracker commands in WhatsApp chats.
type Bot struct {
	svc     *Service
	handler CommandHandler
	cfg     BotConfig
	log     zerolog.Logger
}

func NewBot(svc *Service, handler CommandHandler, cfg BotConfig, log zerolog.Logger) *Bot {
	b := &Bot{svc: svc, handler: handler, cfg: cfg, log: log}
	svc.SetMessageHandler(b.onMessage)
	return b
}

// Announce posts text to the configured group.
func (b *Bot) Announce(ctx context.Context, text string) error {
	return b.svc.SendText(ctx, b.cfg.GroupID, text)
}

func (b *Bot) onMessage(ctx context.Context, evt *events.Message) {
	if !b.accepts(evt.Info.Chat.String(), evt.Info.IsFromMe) {
		return
	}

	msg := messageText(evt)
	if msg == "" {
		return
	}

	reply, err := b.handler.Execute(ctx, msg)
	if err != nil {
		b.log.Error().Err(err).Str("chat", evt.Info.Chat.String()).Msg("error handling message")
		return
	}
	if reply == "" {
		return
	}

	b.log.Info().Str("chat", evt.Info.Chat.String()).Str("sender", evt.Info.PushName).Str("command", msg).Msg("replying to command")
	b.delayReply(ctx, evt.Info.Chat)
	if err := b.svc.send(ctx, evt.Info.Chat, reply); err != nil {
		b.log.Error().Err(err).Msg("failed to send response")
	}
}

func (b *Bot) accepts(chat string, fromMe bool) bool {
	if fromMe {
		return false
	}
	return b.cfg.GroupID == "" || chat == b.cfg.GroupID
}

func (b *Bot) delayReply(ctx context.Context, chat types.JID) {
	delay := replyDelay(b.cfg.ReplyDelayMinMs, b.cfg.ReplyDelayMaxMs)
	if delay <= 0 {
		return
	}
	if b.cfg.ShowTyping {
		b.svc.setTyping(ctx, chat, true)
		defer b.svc.setTyping(ctx, chat, false)
	}
	time.Sleep(delay)
}

// replyDelay picks a uniform delay in [minMs, maxMs].
func replyDelay(minMs, maxMs int) time.Duration {
	ms := minMs
	if maxMs > minMs {
		ms = minMs + rand.Intn(maxMs-minMs+1)
	}
	return time.Duration(ms) * time.Millisecond
}

func messageText(evt *events.Message) string {
	if evt.Message == nil {
		return ""
	}
	if c := evt.Message.GetConversation(); c != "" {
		return strings.TrimSpace(c)
	}
	if ext := evt.Message.GetExtendedTextMessage(); ext != nil {
		return strings.TrimSpace(ext.GetText())
	}
	return ""
}
