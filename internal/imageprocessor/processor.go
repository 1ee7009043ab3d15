package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Processor приводит загруженные изображения к единому виду:
// не шире maxWidth, JPEG заданного качества
type Processor struct {
	quality  int // JPEG quality (1-100)
	maxWidth int
}

// Result - перекодированное изображение
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

func NewProcessor(quality, maxWidth int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxWidth <= 0 {
		maxWidth = 1600
	}
	return &Processor{
		quality:  quality,
		maxWidth: maxWidth,
	}
}

// Process декодирует JPEG/PNG/WebP, уменьшает до maxWidth и кодирует в JPEG
func (p *Processor) Process(reader io.Reader) (*Result, error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	out := p.fit(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	bounds := out.Bounds()
	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// fit уменьшает изображение по ширине с сохранением пропорций.
// Прозрачные области заливаются белым, так как JPEG без альфа-канала.
func (p *Processor) fit(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width > p.maxWidth {
		newWidth = p.maxWidth
		newHeight = int(float64(height) * float64(p.maxWidth) / float64(width))
		if newHeight < 1 {
			newHeight = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if newWidth == width && newHeight == height {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
		return dst
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// GetImageDimensions returns the dimensions of an image
func GetImageDimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
