package tracker

import (
	"time"

	"pokerlens.com/tracker/screen"
)

// TableSession identifies one continuous observation of one table
// window, from discovery until the window closes or tracking stops.
type TableSession struct {
	SessionCode string
	Window      screen.TableWindow
	Stakes      string
	TableSize   screen.TableSize
	StartedAt   time.Time
}

// TableListener receives tracking lifecycle events. Persistence, stats
// aggregation, and publishing all hang off this interface; the pipeline
// itself never talks to a database or a broker.
type TableListener interface {
	SessionStarted(session *TableSession)
	HandCompleted(session *TableSession, hand *HandState)
	SessionEnded(session *TableSession)
}

// TableListeners fans one event out to several listeners in order.
type TableListeners []TableListener

func (l TableListeners) SessionStarted(session *TableSession) {
	for _, listener := range l {
		listener.SessionStarted(session)
	}
}

func (l TableListeners) HandCompleted(session *TableSession, hand *HandState) {
	for _, listener := range l {
		listener.HandCompleted(session, hand)
	}
}

func (l TableListeners) SessionEnded(session *TableSession) {
	for _, listener := range l {
		listener.SessionEnded(session)
	}
}
