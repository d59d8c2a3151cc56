package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PGListener relays Postgres NOTIFY payloads into a Hub. Every payload is a
// store path such as "articles/{id}/ratings".
type PGListener struct {
	listener *pq.Listener
	hub      *Hub
	channel  string
	log      zerolog.Logger
}

// NewPGListener connects a LISTEN session on channel
func NewPGListener(dsn, channel string, hub *Hub, log zerolog.Logger) (*PGListener, error) {
	l := &PGListener{
		hub:     hub,
		channel: channel,
		log:     log.With().Str("component", "pg_listener").Str("channel", channel).Logger(),
	}

	l.listener = pq.NewListener(dsn, 2*time.Second, time.Minute, l.onEvent)
	if err := l.listener.Listen(channel); err != nil {
		l.listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", channel, err)
	}

	l.log.Info().Msg("Listening for engagement changes")
	return l, nil
}

func (l *PGListener) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
		l.log.Warn().Err(err).Msg("Listener connection lost")
	case pq.ListenerEventReconnected:
		l.log.Info().Msg("Listener reconnected")
	}
}

// Run relays notifications until ctx is cancelled
func (l *PGListener) Run(ctx context.Context) {
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.listener.Notify:
			if n == nil {
				// Reconnected: anything published meanwhile was lost
				l.hub.PublishAll()
				continue
			}
			l.hub.Publish(n.Extra)
		case <-ping.C:
			go func() {
				if err := l.listener.Ping(); err != nil {
					l.log.Warn().Err(err).Msg("Listener ping failed")
				}
			}()
		}
	}
}

// Close terminates the LISTEN session
func (l *PGListener) Close() error {
	return l.listener.Close()
}
