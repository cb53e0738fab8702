package nats

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"pokerlens.com/tracker/logging"
	"pokerlens.com/tracker/stats"
	"pokerlens.com/tracker/tracker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher pushes tracking events to NATS for HUD overlay clients.
// A nil *Publisher is valid and publishes nothing, so callers never
// branch on whether publishing is configured.
type Publisher struct {
	nc     *natsgo.Conn
	logger *zerolog.Logger
}

// NewPublisher connects to the NATS server. An empty URL disables
// publishing and returns a nil publisher.
func NewPublisher(natsURL string, logger *zerolog.Logger) (*Publisher, error) {
	if natsURL == "" {
		return nil, nil
	}

	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("Failed to connect to nats server: %v", err)
	}
	logger.Info().Msgf("Connected to nats server at %s", natsURL)

	return &Publisher{
		nc:     nc,
		logger: logger,
	}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.nc.Close()
}

func handSubject(sessionCode string) string {
	return fmt.Sprintf("hud.%s.hand", sessionCode)
}

func statsSubject(sessionCode string) string {
	return fmt.Sprintf("hud.%s.stats", sessionCode)
}

func sessionSubject(sessionCode string) string {
	return fmt.Sprintf("hud.%s.session", sessionCode)
}

type sessionMessage struct {
	SessionCode string    `json:"sessionCode"`
	Status      string    `json:"status"`
	TableTitle  string    `json:"tableTitle"`
	Stakes      string    `json:"stakes"`
	Timestamp   time.Time `json:"timestamp"`
}

type actionMessage struct {
	PlayerName string  `json:"playerName"`
	SeatNo     uint32  `json:"seatNo"`
	ActionType string  `json:"actionType"`
	Amount     float64 `json:"amount"`
	Street     string  `json:"street"`
}

type handMessage struct {
	SessionCode    string          `json:"sessionCode"`
	HandNum        uint32          `json:"handNum"`
	FinalStreet    string          `json:"finalStreet"`
	FinalPot       float64         `json:"finalPot"`
	CommunityCards []string        `json:"communityCards"`
	Actions        []actionMessage `json:"actions"`
}

type statsMessage struct {
	SessionCode string              `json:"sessionCode"`
	PlayerStats []stats.PlayerStats `json:"playerStats"`
}

func (p *Publisher) publish(subject string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		p.logger.Error().Msgf("Unable to marshal message for subject %s: %v", subject, err)
		return
	}
	err = p.nc.Publish(subject, data)
	if err != nil {
		p.logger.Error().Msgf("Unable to publish to subject %s: %v", subject, err)
	}
}

// PublishStats pushes refreshed player stats after a completed hand.
func (p *Publisher) PublishStats(sessionCode string, playerStats []stats.PlayerStats) {
	if p == nil {
		return
	}
	p.publish(statsSubject(sessionCode), statsMessage{
		SessionCode: sessionCode,
		PlayerStats: playerStats,
	})
}

func (p *Publisher) SessionStarted(session *tracker.TableSession) {
	if p == nil {
		return
	}
	p.publish(sessionSubject(session.SessionCode), sessionMessage{
		SessionCode: session.SessionCode,
		Status:      "started",
		TableTitle:  session.Window.Title,
		Stakes:      session.Stakes,
		Timestamp:   time.Now(),
	})
}

func (p *Publisher) HandCompleted(session *tracker.TableSession, hand *tracker.HandState) {
	if p == nil {
		return
	}

	message := handMessage{
		SessionCode:    session.SessionCode,
		HandNum:        hand.HandNum,
		FinalStreet:    hand.CurrentStreet.String(),
		FinalPot:       hand.PotSize,
		CommunityCards: hand.CommunityCards,
	}
	for _, action := range hand.Actions {
		message.Actions = append(message.Actions, actionMessage{
			PlayerName: action.PlayerName,
			SeatNo:     action.SeatNo,
			ActionType: action.ActionType.String(),
			Amount:     action.Amount,
			Street:     action.Street.String(),
		})
	}
	p.publish(handSubject(session.SessionCode), message)
	p.logger.Debug().
		Str(logging.SessionKey, session.SessionCode).
		Uint32(logging.HandNumKey, hand.HandNum).
		Msg("Hand published")
}

func (p *Publisher) SessionEnded(session *tracker.TableSession) {
	if p == nil {
		return
	}
	p.publish(sessionSubject(session.SessionCode), sessionMessage{
		SessionCode: session.SessionCode,
		Status:      "ended",
		TableTitle:  session.Window.Title,
		Stakes:      session.Stakes,
		Timestamp:   time.Now(),
	})
}
