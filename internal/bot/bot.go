package bot

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/irc.v4"

	"github.com/bobby-s-dev/weather-reporter/internal/services"
)

const failureNotice = "Sorry, something went wrong."

// Dispatcher runs chat commands. handled is false for commands it does not know.
type Dispatcher interface {
	Handle(ctx context.Context, req services.Request, sink services.ReplySink) (result services.Result, handled bool)
}

type Options struct {
	Server    string
	TLS       bool
	Nick      string
	User      string
	Name      string
	Password  string
	Channels  []string
	Prefix    string
	RateLimit time.Duration
}

type Bot struct {
	opts       Options
	dispatcher Dispatcher
	limiter    *RateLimiter
	logger     *zap.Logger

	writeMu sync.Mutex
	wg      sync.WaitGroup
	ctx     context.Context
}

func New(opts Options, dispatcher Dispatcher, logger *zap.Logger) *Bot {
	return &Bot{
		opts:       opts,
		dispatcher: dispatcher,
		limiter:    NewRateLimiter(opts.RateLimit, nil),
		logger:     logger,
		ctx:        context.Background(),
	}
}

// Run connects to the server and serves commands until ctx is cancelled or
// the connection drops. In-flight commands are waited for before returning.
func (b *Bot) Run(ctx context.Context) error {
	conn, err := b.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", b.opts.Server, err)
	}
	defer conn.Close()

	b.ctx = ctx
	client := irc.NewClient(conn, irc.ClientConfig{
		Nick:          b.opts.Nick,
		Pass:          b.opts.Password,
		User:          b.opts.User,
		Name:          b.opts.Name,
		PingFrequency: time.Minute,
		PingTimeout:   2 * time.Minute,
		Handler:       irc.HandlerFunc(b.handleMessage),
	})

	b.logger.Info("Connected to IRC server",
		zap.String("server", b.opts.Server),
		zap.Bool("tls", b.opts.TLS),
		zap.String("nick", b.opts.Nick))

	err = client.RunContext(ctx)
	b.wg.Wait()

	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (b *Bot) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: time.Minute}
	if !b.opts.TLS {
		return dialer.DialContext(ctx, "tcp", b.opts.Server)
	}

	host, _, err := net.SplitHostPort(b.opts.Server)
	if err != nil {
		return nil, err
	}
	tlsDialer := &tls.Dialer{
		NetDialer: dialer,
		Config:    &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
	}
	return tlsDialer.DialContext(ctx, "tcp", b.opts.Server)
}

func (b *Bot) handleMessage(c *irc.Client, m *irc.Message) {
	switch m.Command {
	case "001":
		for _, channel := range b.opts.Channels {
			b.logger.Info("Joining channel", zap.String("channel", channel))
			if err := b.write(c, "JOIN %s", channel); err != nil {
				b.logger.Warn("Failed to join channel", zap.String("channel", channel), zap.Error(err))
			}
		}

	case "PRIVMSG":
		if m.Prefix == nil || len(m.Params) == 0 {
			return
		}
		nick := m.Prefix.Name
		target := nick
		if c.FromChannel(m) {
			target = m.Params[0]
		}

		// commands can make several upstream calls; keep the read loop free
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.dispatch(b.ctx, c, nick, target, m.Trailing())
		}()
	}
}

// dispatch parses text as a command and runs it, enforcing the per-nick rate
// limit. Commands returning NoLimit do not start a cooldown.
func (b *Bot) dispatch(ctx context.Context, w writer, nick, target, text string) {
	name, args, ok := ParseCommand(text, b.opts.Prefix)
	if !ok {
		return
	}

	sink := &ircSink{bot: b, w: w, target: target, nick: nick}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Command panicked",
				zap.String("command", name),
				zap.String("nick", nick),
				zap.Any("panic", r),
				zap.Stack("stack"))
			_ = sink.Reply(failureNotice)
		}
	}()

	reserved, ok := b.limiter.Reserve(nick)
	if !ok {
		b.logger.Debug("Rate limited",
			zap.String("command", name),
			zap.String("nick", nick))
		return
	}

	req := services.Request{Nick: nick, Command: name, Args: args}
	result, handled := b.dispatcher.Handle(ctx, req, sink)
	if !handled || result.NoLimit {
		b.limiter.Release(nick, reserved)
	}
}

// ParseCommand splits "<prefix><name> <args>" into name and args. The name
// is lower-cased; args keep their original spacing minus the leading run.
func ParseCommand(text, prefix string) (name, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(text, prefix)

	name, args, _ = strings.Cut(rest, " ")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(args), true
}

type writer interface {
	Writef(format string, args ...interface{}) error
}

func (b *Bot) write(w writer, format string, args ...interface{}) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return w.Writef(format, args...)
}

// ircSink answers in the channel a command came from, or privately when it
// was sent privately.
type ircSink struct {
	bot    *Bot
	w      writer
	target string
	nick   string
}

func (s *ircSink) Say(text string) error {
	return s.bot.write(s.w, "PRIVMSG %s :%s", s.target, text)
}

func (s *ircSink) Reply(text string) error {
	return s.bot.write(s.w, "PRIVMSG %s :%s: %s", s.target, s.nick, text)
}
