package tracker

import (
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

/*
    captureIntervalMs: 500
    maxTables: 10
    confidenceThreshold: 50
    minSampleSize: 10
    consecutiveErrorLog: 3
    maxCapturesPerSec: 20
    debugSaveCaptures: false
    debugCaptureDir: captures
    debugCaptureEveryNth: 20
    ocrCorrections:
      Foid: Fold
      Cail: Call
      aii: all
*/

// Settings are the runtime tunables. The OCR misread table is an open
// set; confusions depend on the poker client's font and version, so it
// ships with the config file rather than in code.
type Settings struct {
	CaptureIntervalMs    uint32            `yaml:"captureIntervalMs"`
	MaxTables            int               `yaml:"maxTables"`
	ConfidenceThreshold  float64           `yaml:"confidenceThreshold"`
	MinSampleSize        int               `yaml:"minSampleSize"`
	ConsecutiveErrorLog  int               `yaml:"consecutiveErrorLog"`
	MaxCapturesPerSec    float64           `yaml:"maxCapturesPerSec"`
	DebugSaveCaptures    bool              `yaml:"debugSaveCaptures"`
	DebugCaptureDir      string            `yaml:"debugCaptureDir"`
	DebugCaptureEveryNth int               `yaml:"debugCaptureEveryNth"`
	OCRCorrections       map[string]string `yaml:"ocrCorrections"`
}

func DefaultSettings() Settings {
	return Settings{
		CaptureIntervalMs:    500,
		MaxTables:            10,
		ConfidenceThreshold:  50,
		MinSampleSize:        10,
		ConsecutiveErrorLog:  3,
		MaxCapturesPerSec:    20,
		DebugSaveCaptures:    false,
		DebugCaptureDir:      "captures",
		DebugCaptureEveryNth: 20,
		OCRCorrections: map[string]string{
			"Foid": "Fold",
			"Cail": "Call",
			"aii":  "all",
		},
	}
}

// ParseSettings reads the YAML settings file. An empty file name yields
// the defaults; an unreadable or malformed file is a startup error.
func ParseSettings(settingsFile string) (Settings, error) {
	settings := DefaultSettings()
	if settingsFile == "" {
		return settings, nil
	}

	bytes, err := ioutil.ReadFile(settingsFile)
	if err != nil {
		return Settings{}, errors.Wrap(err, fmt.Sprintf("Error reading settings file [%s]", settingsFile))
	}

	err = yaml.Unmarshal(bytes, &settings)
	if err != nil {
		return Settings{}, errors.Wrap(err, fmt.Sprintf("Error parsing settings YAML file [%s]", settingsFile))
	}

	if settings.CaptureIntervalMs == 0 {
		settings.CaptureIntervalMs = 500
	}
	if settings.MaxTables <= 0 {
		settings.MaxTables = 10
	}
	if settings.ConfidenceThreshold <= 0 {
		settings.ConfidenceThreshold = 50
	}
	if settings.MinSampleSize <= 0 {
		settings.MinSampleSize = 10
	}
	if settings.ConsecutiveErrorLog <= 0 {
		settings.ConsecutiveErrorLog = 3
	}
	if settings.MaxCapturesPerSec <= 0 {
		settings.MaxCapturesPerSec = 20
	}
	if settings.DebugCaptureEveryNth <= 0 {
		settings.DebugCaptureEveryNth = 20
	}
	if settings.OCRCorrections == nil {
		settings.OCRCorrections = DefaultSettings().OCRCorrections
	}

	return settings, nil
}
