package tracker

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pokerlens.com/tracker/logging"
	"pokerlens.com/tracker/screen"
	"pokerlens.com/tracker/util"
)

// Pipeline drives one table: capture, parse, merge, and hand tracking
// run on a single goroutine per table, on a fixed tick. Frames are
// processed whole or not at all; a failed capture skips the tick.
type Pipeline struct {
	session     *TableSession
	capturer    screen.Capturer
	ocrService  io.Closer
	parser      *TableParser
	recognizer  *ActionRecognizer
	handTracker *HandTracker
	merger      *frameMerger
	listener    TableListener
	settings    Settings
	logger      *zerolog.Logger

	end  chan bool
	done chan bool

	lastSnapshot  *TableSnapshot
	frameCount    uint64
	captureErrors errStreak
	parseErrors   errStreak

	// Guards the fields the manager and the REST layer read while the
	// run goroutine writes: window geometry and the status snapshot.
	lock      sync.Mutex
	handsSeen uint32
	players   []string
}

func newPipeline(
	session *TableSession,
	capturer screen.Capturer,
	ocrCloser io.Closer,
	parser *TableParser,
	recognizer *ActionRecognizer,
	listener TableListener,
	settings Settings,
	logger *zerolog.Logger) *Pipeline {

	return &Pipeline{
		session:       session,
		capturer:      capturer,
		ocrService:    ocrCloser,
		parser:        parser,
		recognizer:    recognizer,
		handTracker:   NewHandTracker(logger),
		merger:        newFrameMerger(),
		listener:      listener,
		settings:      settings,
		logger:        logger,
		end:           make(chan bool),
		done:          make(chan bool),
		captureErrors: errStreak{threshold: settings.ConsecutiveErrorLog},
		parseErrors:   errStreak{threshold: settings.ConsecutiveErrorLog},
	}
}

func (p *Pipeline) run() {
	defer close(p.done)

	ticker := time.NewTicker(time.Duration(p.settings.CaptureIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	p.logger.Info().
		Str("stakes", p.session.Stakes).
		Str("tableSize", p.session.TableSize.String()).
		Msg("Table tracking started")

	for {
		select {
		case <-p.end:
			p.flush()
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// stop asks the run goroutine to finish and blocks until open hands
// are flushed to the listener.
func (p *Pipeline) stop() {
	close(p.end)
	<-p.done
	if p.ocrService != nil {
		p.ocrService.Close()
	}
}

// updateGeometry follows a table window the user moved or resized.
func (p *Pipeline) updateGeometry(window screen.TableWindow) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.session.Window = window
}

func (p *Pipeline) tick() {
	p.lock.Lock()
	window := p.session.Window
	p.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(p.settings.CaptureIntervalMs)*time.Millisecond)
	defer cancel()

	frame, err := p.capturer.CaptureRegion(ctx, window.X, window.Y, window.Width, window.Height)
	if err != nil {
		util.Metrics.FrameFailed()
		p.captureErrors.record(p.logger, "capture", err)
		return
	}
	util.Metrics.FrameCaptured()
	p.captureErrors.clear()
	p.frameCount++

	p.maybeSaveDebugCapture(frame)

	snapshot := p.parser.ParseTable(frame, window.Width, window.Height)
	if len(snapshot.ActivePlayers()) == 0 && p.lastSnapshot == nil {
		// Nothing readable yet; table is still loading or covered.
		p.parseErrors.record(p.logger, "parse", fmt.Errorf("no readable seats"))
		return
	}
	p.parseErrors.clear()

	merged := p.merger.Merge(p.lastSnapshot, snapshot)
	p.track(frame, window, merged)

	p.lock.Lock()
	p.lastSnapshot = merged
	p.handsSeen = p.handTracker.HandCounter()
	p.players = activePlayerNames(merged)
	p.lock.Unlock()
}

func (p *Pipeline) track(frame image.Image, window screen.TableWindow, merged *TableSnapshot) {
	handFresh := false
	if p.handTracker.DetectNewHand(merged.DealerPos, merged.PotSize, merged.CommunityCards, merged.Seats) {
		prior := p.handTracker.CurrentHand()
		p.handTracker.StartNewHand(merged.DealerPos, merged.Seats)
		if prior != nil {
			p.listener.HandCompleted(p.session, prior)
		}
		handFresh = true
	}

	hand := p.handTracker.CurrentHand()
	if hand == nil {
		return
	}

	p.handTracker.UpdateHandState(merged.PotSize, merged.CommunityCards, merged.Seats)

	actions := DetectActions(p.lastSnapshot, merged, hand.CurrentStreet, handFresh, p.recognizer,
		func(seatNo uint32) string {
			return p.parser.ReadActionText(frame, window.Width, window.Height, seatNo)
		})
	for _, action := range actions {
		hand.AddAction(action)
		util.Metrics.ActionDetected()
		p.logger.Debug().
			Uint32(logging.HandNumKey, hand.HandNum).
			Uint32(logging.SeatNumKey, action.SeatNo).
			Str(logging.PlayerNameKey, action.PlayerName).
			Str(logging.StreetKey, action.Street.String()).
			Msgf("%s %.2f", action.ActionType, action.Amount)
	}
}

// flush completes the open hand and tells the listener the session is
// over. Runs on the pipeline goroutine after the stop signal.
func (p *Pipeline) flush() {
	hand := p.handTracker.CurrentHand()
	p.handTracker.EndCurrentHand()
	if hand != nil {
		p.listener.HandCompleted(p.session, hand)
	}
	p.listener.SessionEnded(p.session)
	p.logger.Info().Uint32("handsSeen", p.handTracker.HandCounter()).Msg("Table tracking stopped")
}

func (p *Pipeline) maybeSaveDebugCapture(frame image.Image) {
	if !p.settings.DebugSaveCaptures {
		return
	}
	if p.frameCount%uint64(p.settings.DebugCaptureEveryNth) != 0 {
		return
	}
	saver, ok := p.capturer.(interface {
		SaveCapture(img image.Image, filePath string) error
	})
	if !ok {
		return
	}
	fileName := fmt.Sprintf("%s-%d.png", p.session.SessionCode, p.frameCount)
	err := saver.SaveCapture(frame, filepath.Join(p.settings.DebugCaptureDir, fileName))
	if err != nil {
		p.logger.Debug().Msgf("Unable to save debug capture: %v", err)
	}
}

// status returns a point-in-time view for the REST layer.
func (p *Pipeline) status() TableStatus {
	p.lock.Lock()
	defer p.lock.Unlock()
	return TableStatus{
		SessionCode: p.session.SessionCode,
		Title:       p.session.Window.Title,
		Stakes:      p.session.Stakes,
		TableSize:   p.session.TableSize.String(),
		HandsSeen:   p.handsSeen,
		Players:     p.players,
	}
}

func activePlayerNames(snapshot *TableSnapshot) []string {
	var names []string
	for _, seatNo := range sortedSeatNumbers(snapshot.Seats) {
		seat := snapshot.Seats[seatNo]
		if seat.IsOccupied {
			names = append(names, seat.PlayerName)
		}
	}
	return names
}

// errStreak suppresses repeated transient errors. Screen captures fail
// in bursts when a table is minimized or covered; each failure logs at
// debug, and every Nth consecutive failure escalates to a warning.
type errStreak struct {
	count     int
	threshold int
}

func (e *errStreak) record(logger *zerolog.Logger, what string, err error) {
	e.count++
	if e.threshold > 0 && e.count >= e.threshold {
		logger.Warn().Msgf("%s failed %d times in a row: %v", what, e.count, err)
		e.count = 0
		return
	}
	logger.Debug().Msgf("%s failed: %v", what, err)
}

func (e *errStreak) clear() {
	e.count = 0
}
