// Package cli is the terminal front-end. Each command mounts the screen
// controller it renders, after the session has been restored and the screen's
// role guard has passed.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vitemonmedoc/medoc/config"
	"github.com/vitemonmedoc/medoc/internal/form"
	"github.com/vitemonmedoc/medoc/internal/gateway"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/notification"
	"github.com/vitemonmedoc/medoc/internal/screen"
	"github.com/vitemonmedoc/medoc/internal/session"
	"github.com/vitemonmedoc/medoc/pkg/logger"
	"github.com/vitemonmedoc/medoc/pkg/messaging"
	redisBroker "github.com/vitemonmedoc/medoc/pkg/messaging/redis"
	"github.com/vitemonmedoc/medoc/pkg/security"
)

// Streams are the terminal the commands talk to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// App is the application root: one gateway, one session store, shared by
// every screen a command mounts.
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Client   *gateway.Client
	Sessions *session.Store
	Doctors  *form.DoctorDirectory
	Notifier *notification.Service

	out     io.Writer
	in      *bufio.Reader
	broker  messaging.Broker
	closers []func() error
	now     func() time.Time
}

func NewApp(ctx context.Context, cfg *config.Config, streams Streams) (*App, error) {
	errOut := streams.Err
	if errOut == nil {
		errOut = io.Discard
	}
	if streams.Out == nil {
		streams.Out = io.Discard
	}
	if streams.In == nil {
		streams.In = strings.NewReader("")
	}
	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     errOut,
		JSON:       cfg.Log.JSON,
	})

	client, err := gateway.New(gateway.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.RequestTimeout,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Client:  client,
		Doctors: form.NewDoctorDirectory(client, cfg.DoctorCacheTTL, log),
		out:     streams.Out,
		in:      bufio.NewReader(streams.In),
		now:     time.Now,
	}

	storage, err := a.openStorage(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Sessions = session.NewStore(storage, client, log)
	a.Sessions.Restore(ctx)

	if a.Notifier, err = a.openNotifier(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (session.Storage, error) {
	sc := a.Config.Session
	if sc.Backend == "redis" {
		rs, err := session.NewRedisStorageFromURL(ctx, sc.RedisURL, sc.Key)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs.Close)
		return rs, nil
	}

	fs, err := session.NewFileStorage(sc.Dir, sc.Key)
	if err != nil {
		return nil, err
	}
	if sc.Passphrase != "" {
		enc, err := security.NewPassphraseEncryptor(sc.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("invalid session passphrase: %w", err)
		}
		fs.WithEncryption(enc)
	}
	return fs, nil
}

func (a *App) openNotifier(ctx context.Context) (*notification.Service, error) {
	nc := a.Config.Notification
	senders := map[string]notification.Sender{
		notification.ChannelLocal: notification.NewLocalSender(a.out),
	}
	for _, ch := range nc.Channels {
		switch ch {
		case notification.ChannelRedis:
			broker, err := a.Broker(ctx)
			if err != nil {
				return nil, err
			}
			senders[ch] = notification.NewBrokerSender(broker, nc.RedisChannel)
		case notification.ChannelEmail:
			senders[ch] = notification.NewMailSender(notification.SMTPConfig{
				Host:     nc.SMTP.Host,
				Port:     nc.SMTP.Port,
				Username: nc.SMTP.Username,
				Password: nc.SMTP.Password,
				From:     nc.SMTP.From,
			})
		}
	}
	return notification.NewService(senders, nc.Channels, a.Log)
}

// Broker connects to the notification broker on first use.
func (a *App) Broker(ctx context.Context) (messaging.Broker, error) {
	if a.broker != nil {
		return a.broker, nil
	}
	if a.Config.Notification.RedisURL == "" {
		return nil, errors.New("notification.redis_url is not configured")
	}
	b, err := redisBroker.NewRedisBroker(ctx, redisBroker.Config{URL: a.Config.Notification.RedisURL}, a.Log)
	if err != nil {
		return nil, err
	}
	a.broker = b
	a.closers = append(a.closers, b.Close)
	return b, nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// mount runs the role guard of the screen a command renders.
func (a *App) mount(roles ...model.Role) (*model.Session, error) {
	gate, sess := screen.Guard(a.Sessions, roles...)
	switch gate {
	case screen.GateAllow:
		return sess, nil
	case screen.GateWait:
		return nil, session.ErrLoading
	}
	if a.Sessions.Current() == nil {
		return nil, fmt.Errorf("%w: run \"medoc login\" first", session.ErrUnauthenticated)
	}
	return nil, fmt.Errorf("%w: Accès refusé", session.ErrRoleMismatch)
}

// confirm asks question on the terminal. Only an explicit yes proceeds.
func (a *App) confirm(question string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(a.out, "%s [o/N] ", question)
	line, _ := a.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "o", "oui", "y", "yes":
		return true
	}
	return false
}

// prompt reads one line, used for the password when no flag was given.
func (a *App) prompt(label string) string {
	fmt.Fprintf(a.out, "%s: ", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// alertError carries the alert a screen produced so it is what the user reads.
type alertError struct {
	msg string
	err error
}

func (e *alertError) Error() string { return e.msg }
func (e *alertError) Unwrap() error { return e.err }

func failed(msg string, err error) error {
	return &alertError{msg: msg, err: err}
}
