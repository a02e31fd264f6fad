//go:build !headless

// video_backend_ebiten.go - windowed frame presentation and keyboard input,
// grounded on video_backend_ebiten.go's EbitenOutput: a struct satisfying
// ebiten.Game (Update/Draw/Layout) that double-buffers a frame under a
// mutex, blocks Start() on the first Draw for vsync handshake, and
// translates keyboard state into a byte-oriented input callback. Here the
// callback is a Maple button-state push instead of a terminal byte stream.

package hollycore

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

func init() { compiledFeatures = append(compiledFeatures, "video:ebiten") }

// EbitenDisplay presents Machine frame snapshots in a resizable window and
// feeds keyboard state to an attached ControllerPad.
type EbitenDisplay struct {
	running    bool
	width      int
	height     int
	fullscreen bool
	windowedW  int
	windowedH  int

	mu        sync.RWMutex
	frame     FrameSnapshot
	haveFrame bool
	vsyncChan chan struct{}
	doneChan  chan struct{}
	frameCount uint64

	pad *ControllerPad
}

// NewEbitenDisplay builds a display sized for Holly's default 640x480 mode.
func NewEbitenDisplay() *EbitenDisplay {
	return &EbitenDisplay{
		width: 640, height: 480,
		windowedW: 640, windowedH: 480,
		vsyncChan: make(chan struct{}, 1),
		doneChan:  make(chan struct{}),
	}
}

// Done returns a channel closed once the window has been closed and
// Ebiten's run loop has returned, so a caller blocked on Start can wait
// for the session to actually end rather than just its first frame.
func (ed *EbitenDisplay) Done() <-chan struct{} { return ed.doneChan }

// AttachPad wires the controller whose button state this display's
// keyboard handling drives.
func (ed *EbitenDisplay) AttachPad(pad *ControllerPad) { ed.pad = pad }

// Start opens the window and runs Ebiten's game loop on a background
// goroutine, blocking until the first frame has been drawn.
func (ed *EbitenDisplay) Start() error {
	if ed.running {
		return nil
	}
	ed.running = true
	ebiten.SetWindowSize(ed.windowedW, ed.windowedH)
	ebiten.SetWindowTitle("hollycore")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		defer close(ed.doneChan)
		if err := ebiten.RunGame(ed); err != nil {
			fmt.Printf("video: ebiten run loop exited: %v\n", err)
		}
	}()

	<-ed.vsyncChan
	return nil
}

func (ed *EbitenDisplay) Stop() error {
	ed.running = false
	return nil
}

// PushFrame hands a completed VRAM snapshot to the display for the next
// Draw call. Safe to call from the emulation goroutine while Ebiten's own
// goroutine reads concurrently.
func (ed *EbitenDisplay) PushFrame(snap FrameSnapshot) {
	ed.mu.Lock()
	ed.frame = snap
	ed.haveFrame = true
	ed.mu.Unlock()
}

func (ed *EbitenDisplay) Update() error {
	if ebiten.IsWindowBeingClosed() || !ed.running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ed.mu.Lock()
		ed.fullscreen = !ed.fullscreen
		ebiten.SetFullscreen(ed.fullscreen)
		if !ed.fullscreen {
			ebiten.SetWindowSize(ed.windowedW, ed.windowedH)
		}
		ed.mu.Unlock()
	}
	ed.handlePadInput()
	return nil
}

// padKeys maps host keys to ControllerPad buttons, mirroring a standard
// Dreamcast pad's face buttons and d-pad.
var padKeys = []struct {
	key ebiten.Key
	btn PadButton
}{
	{ebiten.KeyArrowUp, PadUp},
	{ebiten.KeyArrowDown, PadDown},
	{ebiten.KeyArrowLeft, PadLeft},
	{ebiten.KeyArrowRight, PadRight},
	{ebiten.KeyZ, PadA},
	{ebiten.KeyX, PadB},
	{ebiten.KeyC, PadX},
	{ebiten.KeyV, PadY},
	{ebiten.KeyEnter, PadStart},
}

func (ed *EbitenDisplay) handlePadInput() {
	if ed.pad == nil {
		return
	}
	for _, pk := range padKeys {
		switch {
		case inpututil.IsKeyJustPressed(pk.key):
			ed.pad.SetButton(pk.btn, true)
		case inpututil.IsKeyJustReleased(pk.key):
			ed.pad.SetButton(pk.btn, false)
		}
	}
}

func (ed *EbitenDisplay) Draw(screen *ebiten.Image) {
	ed.mu.RLock()
	snap, have := ed.frame, ed.haveFrame
	ed.mu.RUnlock()

	if !have {
		screen.Fill(color.Black)
	} else {
		img := ebiten.NewImage(snap.Width, snap.Height)
		img.WritePixels(framebufferToRGBA(snap))
		screen.DrawImage(img, nil)
	}

	ed.frameCount++
	select {
	case ed.vsyncChan <- struct{}{}:
	default:
	}
}

func (ed *EbitenDisplay) Layout(_, _ int) (int, int) {
	return ed.width, ed.height
}

func (ed *EbitenDisplay) FrameCount() uint64 {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	return ed.frameCount
}
