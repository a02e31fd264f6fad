//go:build headless

// video_backend_headless.go - no-window frame sink for CI and batch runs,
// grounded on video_backend_ebiten.go's EbitenOutput but with Start/Draw
// replaced by a plain frame counter: same PushFrame/FrameCount contract,
// no OS window, no input translation.

package hollycore

import "sync"

func init() { compiledFeatures = append(compiledFeatures, "video:headless") }

// EbitenDisplay is a headless stand-in with the windowed backend's public
// surface, so callers built against Machine.SetFrameHandler's contract
// don't need a build-tag switch of their own.
type EbitenDisplay struct {
	mu         sync.RWMutex
	frame      FrameSnapshot
	frameCount uint64
	pad        *ControllerPad
	doneChan   chan struct{}
}

func NewEbitenDisplay() *EbitenDisplay { return &EbitenDisplay{doneChan: make(chan struct{})} }

func (ed *EbitenDisplay) AttachPad(pad *ControllerPad) { ed.pad = pad }

func (ed *EbitenDisplay) Start() error { return nil }

func (ed *EbitenDisplay) Stop() error {
	select {
	case <-ed.doneChan:
	default:
		close(ed.doneChan)
	}
	return nil
}

// Done returns a channel closed once Stop is called, matching the
// windowed backend's contract with no window to actually wait on.
func (ed *EbitenDisplay) Done() <-chan struct{} { return ed.doneChan }

func (ed *EbitenDisplay) PushFrame(snap FrameSnapshot) {
	ed.mu.Lock()
	ed.frame = snap
	ed.frameCount++
	ed.mu.Unlock()
}

func (ed *EbitenDisplay) FrameCount() uint64 {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	return ed.frameCount
}
