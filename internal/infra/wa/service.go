package wa

import (
	"context"
	"fmt"
	"os"

	"github.com/mdp/qrterminal"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	walog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite"
)

// Service owns the whatsmeow client. The device session lives in its own
// SQLite file, separate from the tracker database.
type Service struct {
	client         *whatsmeow.Client
	dbPath         string
	log            zerolog.Logger
	messageHandler func(ctx context.Context, evt *events.Message)
}

func NewService(dbPath string, logger zerolog.Logger) *Service {
	return &Service{
		dbPath: dbPath,
		log:    logger.With().Str("component", "whatsapp").Logger(),
	}
}

func (s *Service) Initialize(ctx context.Context) error {
	dbAddress := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.dbPath)
	container, err := sqlstore.New(ctx, "sqlite", dbAddress, walog.Zerolog(s.log.With().Str("module", "store").Logger()))
	if err != nil {
		return fmt.Errorf("failed to initialize whatsapp store: %w", err)
	}

	devices, err := container.GetAllDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	var device *store.Device
	if len(devices) > 0 {
		device = devices[0]
	} else {
		device = container.NewDevice()
	}

	s.client = whatsmeow.NewClient(device, walog.Zerolog(s.log.With().Str("module", "client").Logger()))
	s.client.AddEventHandler(func(evt interface{}) {
		if v, ok := evt.(*events.Message); ok && s.messageHandler != nil {
			go s.messageHandler(context.Background(), v)
		}
	})
	return nil
}

// Login connects an existing session, or starts pairing: by phone code when
// phone is set, otherwise by QR code on stdout.
func (s *Service) Login(ctx context.Context, phone string) error {
	if s.IsLoggedIn() {
		if err := s.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		s.log.Info().Msg("client is already logged in")
		return nil
	}

	if phone == "" {
		s.log.Info().Msg("not logged in and no bot phone set, printing QR")
		return s.printQR(ctx)
	}

	if err := s.Connect(); err != nil {
		return fmt.Errorf("failed to connect for pairing: %w", err)
	}
	code, err := s.client.PairPhone(ctx, phone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		return fmt.Errorf("failed to generate pair code: %w", err)
	}
	s.log.Info().Str("pair_code", code).Msg("enter this code under Linked Devices > Link with phone number")
	return nil
}

func (s *Service) Connect() error {
	if s.client == nil {
		return fmt.Errorf("client not initialized")
	}
	if s.client.IsConnected() {
		return nil
	}
	return s.client.Connect()
}

func (s *Service) Disconnect() {
	if s.client != nil {
		s.client.Disconnect()
	}
}

func (s *Service) SetMessageHandler(handler func(ctx context.Context, evt *events.Message)) {
	s.messageHandler = handler
}

func (s *Service) IsLoggedIn() bool {
	return s.client != nil && s.client.Store.ID != nil
}

// SendText posts a plain text message to jid, e.g. "12345@g.us".
func (s *Service) SendText(ctx context.Context, jid string, text string) error {
	to, err := types.ParseJID(jid)
	if err != nil {
		return fmt.Errorf("parse jid %q: %w", jid, err)
	}
	return s.send(ctx, to, text)
}

func (s *Service) send(ctx context.Context, to types.JID, text string) error {
	if s.client == nil {
		return fmt.Errorf("client not initialized")
	}
	_, err := s.client.SendMessage(ctx, to, &waE2E.Message{Conversation: &text})
	return err
}

func (s *Service) setTyping(ctx context.Context, chat types.JID, typing bool) {
	state := types.ChatPresencePaused
	if typing {
		state = types.ChatPresenceComposing
	}
	_ = s.client.SendChatPresence(ctx, chat, state, types.ChatPresenceMediaText)
}

func (s *Service) printQR(ctx context.Context) error {
	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect for QR: %w", err)
	}
	go func() {
		for evt := range qrChan {
			if evt.Event == "code" {
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				continue
			}
			s.log.Info().Str("event", evt.Event).Msg("login event")
		}
	}()
	return nil
}
