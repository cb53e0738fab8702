package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pokerlens.com/tracker/logging"
	"pokerlens.com/tracker/tracker"
)

const writeTimeout = 10 * time.Second

// Listener persists tracking lifecycle events. Write failures are
// logged and dropped; a dead database must not stall the capture
// pipelines.
type Listener struct {
	store  *Store
	logger *zerolog.Logger
}

func NewListener(store *Store, logger *zerolog.Logger) *Listener {
	return &Listener{
		store:  store,
		logger: logger,
	}
}

func (l *Listener) SessionStarted(session *tracker.TableSession) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err := l.store.CreateSession(ctx, session)
	if err != nil {
		l.logger.Error().Str(logging.SessionKey, session.SessionCode).Msgf("Unable to persist session: %v", err)
	}
}

func (l *Listener) HandCompleted(session *tracker.TableSession, hand *tracker.HandState) {
	if len(hand.Actions) == 0 && len(hand.Seats) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err := l.store.SaveHand(ctx, session.SessionCode, hand)
	if err != nil {
		l.logger.Error().
			Str(logging.SessionKey, session.SessionCode).
			Uint32(logging.HandNumKey, hand.HandNum).
			Msgf("Unable to persist hand: %v", err)
	}
}

func (l *Listener) SessionEnded(session *tracker.TableSession) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err := l.store.EndSession(ctx, session.SessionCode)
	if err != nil {
		l.logger.Error().Str(logging.SessionKey, session.SessionCode).Msgf("Unable to close session: %v", err)
	}
}
