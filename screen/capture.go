package screen

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kbinani/screenshot"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Capturer grabs a rectangle of screen pixels. The production
// implementation talks to the OS; tests substitute synthetic frames.
type Capturer interface {
	CaptureRegion(ctx context.Context, x int, y int, width int, height int) (image.Image, error)
}

// CaptureService grabs screen regions. A single rate limiter is shared
// by every table pipeline; the screen is one physical resource no
// matter how many tables are open.
type CaptureService struct {
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

func NewCaptureService(maxCapturesPerSec float64, logger *zerolog.Logger) *CaptureService {
	return &CaptureService{
		limiter: rate.NewLimiter(rate.Limit(maxCapturesPerSec), 1),
		logger:  logger,
	}
}

func (c *CaptureService) CaptureRegion(ctx context.Context, x int, y int, width int, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("Invalid capture dimensions: %dx%d", width, height)
	}

	err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Capture cancelled while waiting for rate limiter")
	}

	img, err := screenshot.CaptureRect(image.Rect(x, y, x+width, y+height))
	if err != nil {
		return nil, errors.Wrap(err, "Unable to capture screen region")
	}
	return img, nil
}

// SaveCapture writes a frame to disk as PNG. Used for debugging OCR
// region tuning.
func (c *CaptureService) SaveCapture(img image.Image, filePath string) error {
	err := os.MkdirAll(filepath.Dir(filePath), 0755)
	if err != nil {
		return errors.Wrapf(err, "Unable to create capture directory for [%s]", filePath)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "Unable to create capture file [%s]", filePath)
	}
	defer f.Close()

	err = png.Encode(f, img)
	if err != nil {
		return errors.Wrapf(err, "Unable to encode capture file [%s]", filePath)
	}
	c.logger.Debug().Msgf("Saved debug capture to %s", filePath)
	return nil
}

// NumDisplays reports how many physical displays are attached.
func (c *CaptureService) NumDisplays() int {
	return screenshot.NumActiveDisplays()
}
