package ocr

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	textWhitelist    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789$.,€£ "
	numericWhitelist = "0123456789$.,€£"
)

// Tesseract reads table text through gosseract. A client is not safe
// for concurrent use; each table pipeline owns its own instance.
type Tesseract struct {
	client *gosseract.Client
	logger *zerolog.Logger
}

func NewTesseract(tessdataPrefix string, logger *zerolog.Logger) (*Tesseract, error) {
	client := gosseract.NewClient()
	if tessdataPrefix != "" {
		err := client.SetTessdataPrefix(tessdataPrefix)
		if err != nil {
			client.Close()
			return nil, errors.Wrapf(err, "Invalid tessdata prefix [%s]", tessdataPrefix)
		}
	}
	err := client.SetLanguage("eng")
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "Unable to configure tesseract language")
	}

	return &Tesseract{
		client: client,
		logger: logger,
	}, nil
}

func (t *Tesseract) ReadText(img image.Image, region image.Rectangle) Result {
	return t.read(img, region, gosseract.PSM_SINGLE_LINE, textWhitelist)
}

func (t *Tesseract) ReadNumber(img image.Image, region image.Rectangle) Result {
	return t.read(img, region, gosseract.PSM_SINGLE_WORD, numericWhitelist)
}

func (t *Tesseract) read(img image.Image, region image.Rectangle, psm gosseract.PageSegMode, whitelist string) Result {
	cropped := crop(img, region)

	var buf bytes.Buffer
	err := png.Encode(&buf, cropped)
	if err != nil {
		t.logger.Debug().Msgf("Unable to encode region for OCR: %v", err)
		return Result{}
	}

	if err := t.client.SetPageSegMode(psm); err != nil {
		t.logger.Debug().Msgf("Unable to set page segmentation mode: %v", err)
		return Result{}
	}
	if err := t.client.SetWhitelist(whitelist); err != nil {
		t.logger.Debug().Msgf("Unable to set OCR whitelist: %v", err)
		return Result{}
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		t.logger.Debug().Msgf("Unable to load region into OCR: %v", err)
		return Result{}
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		t.logger.Debug().Msgf("OCR recognition failed: %v", err)
		return Result{}
	}

	var words []string
	var confidenceSum float64
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, box.Word)
		confidenceSum += box.Confidence
	}
	if len(words) == 0 {
		return Result{}
	}

	return Result{
		Text:       joinWords(words),
		Confidence: confidenceSum / float64(len(words)),
	}
}

func (t *Tesseract) Close() error {
	return t.client.Close()
}

func crop(img image.Image, region image.Rectangle) image.Image {
	if region.Empty() {
		return img
	}
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(out, out.Bounds(), img, region.Min, draw.Src)
	return out
}

func joinWords(words []string) string {
	var sb bytes.Buffer
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w)
	}
	return sb.String()
}
