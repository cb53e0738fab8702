package tracker

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pokerlens.com/tracker/logging"
	"pokerlens.com/tracker/ocr"
	"pokerlens.com/tracker/screen"
	"pokerlens.com/tracker/util"
)

const scanInterval = 2 * time.Second

// TableStatus is the REST-facing view of one tracked table.
type TableStatus struct {
	SessionCode string   `json:"sessionCode"`
	Title       string   `json:"title"`
	Stakes      string   `json:"stakes"`
	TableSize   string   `json:"tableSize"`
	HandsSeen   uint32   `json:"handsSeen"`
	Players     []string `json:"players"`
}

// OCRFactory builds one OCR engine per pipeline. The engine holds a
// native handle and is not goroutine safe, so tables never share one.
type OCRFactory func() (ocr.Service, error)

// Manager owns table discovery and the set of running pipelines. One
// goroutine per tracked table, all joined on Stop.
type Manager struct {
	capturer   screen.Capturer
	detector   *screen.Detector
	ocrFactory OCRFactory
	recognizer *ActionRecognizer
	listener   TableListener
	settings   Settings
	logger     *zerolog.Logger

	end  chan bool
	done chan bool

	lock         sync.Mutex
	activeTables map[uint64]*Pipeline
	wg           sync.WaitGroup
}

func NewManager(
	capturer screen.Capturer,
	detector *screen.Detector,
	ocrFactory OCRFactory,
	settings Settings,
	listener TableListener,
	logger *zerolog.Logger) *Manager {

	return &Manager{
		capturer:     capturer,
		detector:     detector,
		ocrFactory:   ocrFactory,
		recognizer:   NewActionRecognizer(settings.OCRCorrections),
		listener:     listener,
		settings:     settings,
		logger:       logger,
		end:          make(chan bool),
		done:         make(chan bool),
		activeTables: make(map[uint64]*Pipeline),
	}
}

// Run scans for table windows until Stop is called. Blocks; callers
// start it on its own goroutine.
func (m *Manager) Run() {
	defer close(m.done)

	m.Scan()

	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.end:
			return
		case <-ticker.C:
			m.Scan()
		}
	}
}

// Scan reconciles the set of running pipelines against the table
// windows currently on screen: new windows start pipelines, moved
// windows get fresh geometry, and closed windows stop their pipeline.
func (m *Manager) Scan() {
	tables := m.detector.FindTables()

	m.lock.Lock()
	defer m.lock.Unlock()

	seen := make(map[uint64]bool, len(tables))
	for _, window := range tables {
		seen[window.ID] = true

		if pipeline, active := m.activeTables[window.ID]; active {
			pipeline.updateGeometry(window)
			continue
		}

		if len(m.activeTables) >= m.settings.MaxTables {
			// Over the cap; the window stays on screen and is picked
			// up on a later scan once a tracked table closes.
			m.logger.Debug().Str(logging.TableKey, window.Title).Msg("Table cap reached, not tracking")
			continue
		}

		m.startTable(window)
	}

	for windowID, pipeline := range m.activeTables {
		if !seen[windowID] {
			m.stopTable(windowID, pipeline)
		}
	}

	util.Metrics.SetActiveTableCount(len(m.activeTables))
}

// Caller holds m.lock.
func (m *Manager) startTable(window screen.TableWindow) {
	ocrService, err := m.ocrFactory()
	if err != nil {
		m.logger.Error().Str(logging.TableKey, window.Title).Msgf("Unable to create OCR engine: %v", err)
		return
	}

	session := &TableSession{
		SessionCode: uuid.New().String(),
		Window:      window,
		Stakes:      screen.ParseStakes(window.Title),
		TableSize:   screen.ParseTableSize(window.Title),
		StartedAt:   time.Now(),
	}

	tableLogger := m.logger.With().
		Str(logging.TableKey, window.Title).
		Str(logging.SessionKey, session.SessionCode).
		Logger()

	parser, err := NewTableParser(ocrService, m.recognizer, session.TableSize,
		m.settings.ConfidenceThreshold, &tableLogger)
	if err != nil {
		m.logger.Error().Str(logging.TableKey, window.Title).Msgf("Unable to create parser: %v", err)
		closeOCR(ocrService)
		return
	}

	var ocrCloser io.Closer
	if closer, ok := ocrService.(io.Closer); ok {
		ocrCloser = closer
	}

	pipeline := newPipeline(session, m.capturer, ocrCloser, parser, m.recognizer,
		m.listener, m.settings, &tableLogger)
	m.activeTables[window.ID] = pipeline
	m.listener.SessionStarted(session)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		pipeline.run()
	}()
}

// Caller holds m.lock.
func (m *Manager) stopTable(windowID uint64, pipeline *Pipeline) {
	delete(m.activeTables, windowID)
	pipeline.stop()
}

// Stop halts discovery, stops every pipeline, and waits for all of
// them to flush their open hands.
func (m *Manager) Stop() {
	close(m.end)
	<-m.done

	m.lock.Lock()
	for windowID, pipeline := range m.activeTables {
		m.stopTable(windowID, pipeline)
	}
	m.lock.Unlock()

	m.wg.Wait()
	util.Metrics.SetActiveTableCount(0)
}

// ActiveTables reports the tracked tables for the REST layer.
func (m *Manager) ActiveTables() []TableStatus {
	m.lock.Lock()
	defer m.lock.Unlock()

	statuses := make([]TableStatus, 0, len(m.activeTables))
	for _, pipeline := range m.activeTables {
		statuses = append(statuses, pipeline.status())
	}
	return statuses
}

func closeOCR(service ocr.Service) {
	if closer, ok := service.(io.Closer); ok {
		closer.Close()
	}
}
