// Package sink delivers a captured image to its consumers: the system
// clipboard as an image payload, and an optional preview collaborator.
package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"sync"

	xclipboard "golang.design/x/clipboard"
)

// Previewer shows the captured image; the editor/preview UI itself lives
// outside this module.
type Previewer interface {
	Show(img image.Image)
}

// Clipboard writes an encoded image payload to the system clipboard.
type Clipboard interface {
	WriteImage(data []byte) error
}

type systemClipboard struct {
	mu sync.Mutex
}

// Init prepares the system clipboard. Must be called once before Deliver.
func Init() error {
	return xclipboard.Init()
}

// NewClipboard returns the system clipboard writer.
func NewClipboard() Clipboard { return &systemClipboard{} }

// WriteImage is mutex-guarded to prevent corruption under parallel writes.
func (c *systemClipboard) WriteImage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	xclipboard.Write(xclipboard.FmtImage, data)
	return nil
}

// Sink fans a capture result out to the clipboard and the previewer.
type Sink struct {
	Clipboard Clipboard
	Previewer Previewer // optional
}

// Deliver encodes the image once and hands it to every consumer. A clipboard
// failure is reported but does not suppress the preview.
func (s *Sink) Deliver(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}

	var clipErr error
	if s.Clipboard != nil {
		if clipErr = s.Clipboard.WriteImage(buf.Bytes()); clipErr != nil {
			log.Printf("sink: clipboard write failed: %v", clipErr)
		}
	}
	if s.Previewer != nil {
		s.Previewer.Show(img)
	}
	return clipErr
}
