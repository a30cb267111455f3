// Package clipboard reads images from and writes text to the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"sync"

	xclipboard "golang.design/x/clipboard"
)

// ErrNoImage is returned when the clipboard does not hold an image.
var ErrNoImage = errors.New("no image in clipboard")

// System is the operating system clipboard.
type System struct {
	once    sync.Once
	initErr error
	mu      sync.Mutex
}

// New returns a System clipboard. Initialization happens on first use.
func New() *System {
	return &System{}
}

func (s *System) init() error {
	s.once.Do(func() {
		if err := xclipboard.Init(); err != nil {
			s.initErr = fmt.Errorf("init clipboard: %w", err)
		}
	})
	return s.initErr
}

// ReadImage returns the image on the clipboard, or ErrNoImage.
func (s *System) ReadImage() (image.Image, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data := xclipboard.Read(xclipboard.FmtImage)
	s.mu.Unlock()

	return DecodeImage(data)
}

// WriteText replaces the clipboard content with text.
func (s *System) WriteText(text string) error {
	if err := s.init(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	xclipboard.Write(xclipboard.FmtText, []byte(text))
	return nil
}

// DecodeImage decodes clipboard image bytes. Empty data means no image.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}
