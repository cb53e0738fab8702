package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"pokerlens.com/tracker/logging"
	"pokerlens.com/tracker/nats"
	"pokerlens.com/tracker/ocr"
	"pokerlens.com/tracker/rest"
	"pokerlens.com/tracker/screen"
	"pokerlens.com/tracker/stats"
	"pokerlens.com/tracker/store"
	"pokerlens.com/tracker/tracker"
	"pokerlens.com/tracker/util"
)

var mainLogger = logging.GetZeroLogger("main::main", os.Stdout)

type windowSpecs []string

func (w *windowSpecs) String() string {
	return strings.Join(*w, ", ")
}

func (w *windowSpecs) Set(value string) error {
	*w = append(*w, value)
	return nil
}

func main() {
	zerolog.SetGlobalLevel(util.Env.GetZeroLogLogLevel())

	var settingsFile = flag.String("settings", "", "YAML settings file")
	var specs windowSpecs
	flag.Var(&specs, "table", "Track a fixed window: Title@X,Y,WxH (repeatable)")
	flag.Parse()

	settings, err := tracker.ParseSettings(*settingsFile)
	if err != nil {
		mainLogger.Fatal().Msgf("Unable to load settings: %v", err)
	}

	err = screen.ValidateRegionMaps()
	if err != nil {
		mainLogger.Fatal().Msgf("Region map validation failed: %v", err)
	}

	windows := make([]screen.TableWindow, 0, len(specs))
	for i, spec := range specs {
		window, err := screen.ParseWindowSpec(uint64(i+1), spec)
		if err != nil {
			mainLogger.Fatal().Msgf("Invalid --table flag: %v", err)
		}
		windows = append(windows, window)
	}
	if len(windows) == 0 {
		mainLogger.Warn().Msg("No --table flags given; no tables will be tracked")
	}

	screenLogger := logging.GetZeroLogger("screen", os.Stdout)
	capturer := screen.NewCaptureService(settings.MaxCapturesPerSec, screenLogger)
	detector := screen.NewDetector(screen.NewStaticLister(windows), screenLogger)

	storeLogger := logging.GetZeroLogger("store", os.Stdout)
	handStore, err := store.NewStore(util.Env.GetPostgresConnStr(), storeLogger)
	if err != nil {
		mainLogger.Fatal().Msgf("Unable to open hand store: %v", err)
	}
	defer handStore.Close()

	closed, err := handStore.CloseDanglingSessions(context.Background())
	if err != nil {
		mainLogger.Warn().Msgf("Unable to close dangling sessions: %v", err)
	} else if closed > 0 {
		mainLogger.Info().Int64("sessions", closed).Msg("Closed dangling sessions from a previous run")
	}

	natsLogger := logging.GetZeroLogger("nats", os.Stdout)
	publisher, err := nats.NewPublisher(util.Env.GetNatsURL(), natsLogger)
	if err != nil {
		mainLogger.Fatal().Msgf("Unable to connect to nats: %v", err)
	}
	defer publisher.Close()

	statsLogger := logging.GetZeroLogger("stats", os.Stdout)
	counterCache := stats.NewRedisCounterCache(
		util.Env.GetRedisAddr(), util.Env.GetRedisPW(), util.Env.GetRedisDB())
	aggregator, err := stats.NewAggregator(counterCache, handStore, publisher,
		1024, settings.MinSampleSize, statsLogger)
	if err != nil {
		mainLogger.Fatal().Msgf("Unable to create stats aggregator: %v", err)
	}

	listener := tracker.TableListeners{
		store.NewListener(handStore, storeLogger),
		aggregator,
		publisher,
	}

	ocrLogger := logging.GetZeroLogger("ocr", os.Stdout)
	ocrFactory := func() (ocr.Service, error) {
		return ocr.NewTesseract(util.Env.GetTessdataPrefix(), ocrLogger)
	}

	trackerLogger := logging.GetZeroLogger("tracker", os.Stdout)
	manager := tracker.NewManager(capturer, detector, ocrFactory, settings, listener, trackerLogger)
	go manager.Run()

	restServer := rest.NewServer(manager, aggregator, handStore)
	go func() {
		err := restServer.Run(fmt.Sprintf(":%d", util.Env.GetRestPort()))
		if err != nil {
			mainLogger.Fatal().Msgf("REST server exited: %v", err)
		}
	}()

	mainLogger.Info().Int("tables", len(windows)).Msg("Tracker started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	mainLogger.Info().Msg("Shutting down")
	manager.Stop()
}
