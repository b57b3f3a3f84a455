package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/eliseohh/keralastatsbot/internal/config"
	"github.com/eliseohh/keralastatsbot/internal/fault"
	"github.com/eliseohh/keralastatsbot/internal/stats"
	"github.com/eliseohh/keralastatsbot/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

// Fetcher is the statistics API as the handler sees it.
type Fetcher interface {
	Fetch(ctx context.Context, loc string, date time.Time) (*stats.Response, error)
}

type Bot struct {
	api   *tele.Bot
	store store.Store
	stats Fetcher
	cfg   Config
}

// Config is the slice of the process configuration the handler needs.
type Config struct {
	Token           string
	Places          PlaceMatcher
	Date            time.Time
	IsolateFailures bool
}

type PlaceMatcher interface {
	Match(text string) (string, bool)
}

// ConfigFrom narrows the process configuration to what the handler uses.
func ConfigFrom(c config.Config) Config {
	return Config{
		Token:           c.Token,
		Places:          c.Places,
		Date:            c.Date(),
		IsolateFailures: c.IsolateFailures,
	}
}

func New(cfg Config, st store.Store, fetcher Fetcher) (*Bot, error) {
	bot := &Bot{store: st, stats: fetcher, cfg: cfg}

	b, err := tele.NewBot(bot.settings())
	if err != nil {
		return nil, fault.New(fault.Transport, "connect", err)
	}

	bot.api = b
	bot.register()
	return bot, nil
}

// settings makes telebot run handlers inline on the polling goroutine, so the
// next update is not taken until the current reply has been sent.
func (b *Bot) settings() tele.Settings {
	return tele.Settings{
		Token:       b.cfg.Token,
		Poller:      &tele.LongPoller{Timeout: 10 * time.Second},
		Synchronous: true,
		OnError:     b.onError,
	}
}

// Start blocks, handling one update at a time until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.api.Me.Username).Msg("bot started")
	b.api.Start()
}

func (b *Bot) Stop() {
	b.api.Stop()
}

func (b *Bot) register() {
	b.api.Handle(tele.OnText, b.handleText)
}

// handleText runs one cycle: store, match, fetch, reply. Exactly one reply
// is sent unless the reply itself fails.
func (b *Bot) handleText(c tele.Context) error {
	msg := c.Message()
	sender := senderName(msg)

	logger := log.With().Str("sender", sender).Str("text", msg.Text).Logger()
	logger.Info().Msg("message received")

	reply, err := b.respond(context.Background(), logger, sender, msg.Text)
	if err != nil {
		if !b.cfg.IsolateFailures {
			return err
		}
		logger.Error().Err(err).Stringer("kind", fault.KindOf(err)).Msg("message handling failed")
		reply = fmt.Sprintf(unavailableReply, sender)
	}

	if err := c.Reply(reply); err != nil {
		return fault.New(fault.Transport, "reply to "+sender, err)
	}
	return nil
}

func (b *Bot) respond(ctx context.Context, logger zerolog.Logger, sender, text string) (string, error) {
	if err := b.store.Set(ctx, sender, text); err != nil {
		return "", err
	}

	loc, ok := b.cfg.Places.Match(text)
	logger.Debug().Bool("matched", ok).Str("loc", loc).Msg("place lookup")
	if !ok {
		return fmt.Sprintf(notFoundReply, sender), nil
	}

	resp, err := b.stats.Fetch(ctx, loc, b.cfg.Date)
	if err != nil {
		return "", err
	}

	// The payload is keyed by display name, so look up the text as sent.
	res := resp.Lookup(b.cfg.Date, text)
	if res.Outcome() != "found" {
		logger.Warn().
			Str("outcome", res.Outcome()).
			Stringer("under_observation", res.UnderObservation.State).
			Stringer("discharged", res.Discharged.State).
			Msg("statistics incomplete, replying with zeros")
	}
	return FormatStats(res), nil
}

// onError receives handler and poller errors from telebot.
func (b *Bot) onError(err error, c tele.Context) {
	ev := log.Error()
	if !b.cfg.IsolateFailures {
		ev = log.Fatal()
	}
	if c != nil && c.Message() != nil {
		ev = ev.Str("sender", senderName(c.Message()))
	}
	ev.Err(err).Stringer("kind", fault.KindOf(err)).Msg("update failed")
}

func senderName(m *tele.Message) string {
	if m == nil || m.Sender == nil {
		return ""
	}
	return m.Sender.FirstName
}
