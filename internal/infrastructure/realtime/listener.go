package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// notifyChannel is the Postgres NOTIFY channel the row-change triggers
// emit on. Must match the channel name used in the migrations.
const notifyChannel = "blackhole_changes"

// Listener bridges Postgres LISTEN/NOTIFY into a Hub.
type Listener struct {
	hub    *Hub
	pql    *pq.Listener
	logger *slog.Logger
}

// NewListener opens a dedicated LISTEN connection to the database and
// ties it to the hub. The underlying pq.Listener reconnects on its own
// after transient failures.
func NewListener(dsn string, hub *Hub, logger *slog.Logger) (*Listener, error) {
	pql := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("realtime listener event", "event", ev, "error", err)
		}
	})
	if err := pql.Listen(notifyChannel); err != nil {
		pql.Close()
		return nil, err
	}
	return &Listener{hub: hub, pql: pql, logger: logger}, nil
}

// Run pumps notifications into the hub until the context is cancelled.
func (l *Listener) Run(ctx context.Context) {
	defer l.pql.Close()

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.pql.Notify:
			// A nil notification means the connection was re-established
			// and events may have been missed.
			if n == nil {
				l.logger.Info("realtime listener reconnected")
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				l.logger.Warn("malformed change notification", "payload", n.Extra, "error", err)
				continue
			}
			l.hub.Publish(ev)
		case <-ping.C:
			if err := l.pql.Ping(); err != nil {
				l.logger.Warn("realtime listener ping failed", "error", err)
			}
		}
	}
}
