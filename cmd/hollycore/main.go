// main.go - command-line front end: loads a disc image, drives the
// emulation loop, and presents frames in a window.
//
// Grounded on main.go's own func main: positional argument parsing, a
// usage message and os.Exit(1) on a bad invocation, one peripheral
// started before the CPU loop is kicked off in a goroutine.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"golang.design/x/clipboard"
	"golang.org/x/sync/errgroup"

	"github.com/hollycore/hollycore"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "-version" {
		hollycore.PrintFeatures(os.Stdout)
		return
	}

	screenshotPath := flag.String("screenshot", "", "write the first rendered frame as a PNG to this path and exit")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("usage: hollycore [-version] [-screenshot <out.png>] <disc.gdi>")
		os.Exit(1)
	}
	discPath := flag.Arg(0)

	m := hollycore.NewMachine()
	m.Reset()

	entry, err := hollycore.LoadGDI(m, discPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hollycore: failed to load %s: %v\n", discPath, err)
		os.Exit(1)
	}
	m.ShortcutBoot(entry)

	display := hollycore.NewEbitenDisplay()
	pad := hollycore.NewControllerPad()
	display.AttachPad(pad)
	m.AttachPeripheral(0, pad)

	render := hollycore.NewVulkanRenderBackend()
	if err := render.Init(640, 480); err != nil {
		fmt.Fprintf(os.Stderr, "hollycore: render init failed: %v\n", err)
		os.Exit(1)
	}
	defer render.Destroy()

	var screenshotOnce sync.Once
	m.SetFrameHandler(func(list hollycore.DisplayList, snap hollycore.FrameSnapshot) {
		verts := hollycore.BuildRenderVertices(list)
		if err := render.FlushTriangles(verts); err != nil {
			fmt.Fprintf(os.Stderr, "hollycore: render: %v\n", err)
		}
		display.PushFrame(snap)
		if *screenshotPath != "" {
			screenshotOnce.Do(func() {
				if err := writeScreenshot(*screenshotPath, snap); err != nil {
					fmt.Fprintf(os.Stderr, "hollycore: screenshot: %v\n", err)
				}
				os.Exit(0)
			})
		}
	})

	// loadDisc is shared by the IPC handler and the clipboard watcher:
	// both just want to swap in a new disc image and re-run the boot
	// handoff on the same running Machine.
	loadDisc := func(path string) error {
		entry, err := hollycore.LoadGDI(m, path)
		if err != nil {
			return err
		}
		m.ShortcutBoot(entry)
		return nil
	}

	ipc, err := hollycore.NewIPCServer(hollycore.NewMachineIPCHandler(loadDisc))
	if err != nil {
		fmt.Fprintf(os.Stderr, "hollycore: %v (pass a disc path to the running instance instead)\n", err)
		os.Exit(1)
	}
	ipc.Start()
	defer ipc.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if clipboard.Init() == nil {
		go watchClipboardForDiscPaths(ctx, loadDisc)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runEmulation(ctx, m) })

	if err := display.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "hollycore: display: %v\n", err)
		os.Exit(1)
	}
	defer display.Stop()

	select {
	case <-display.Done():
	case <-ctx.Done():
	}
	cancel()

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "hollycore: %v\n", err)
		var fatal *hollycore.FatalError
		if errors.As(err, &fatal) {
			for i := len(fatal.Backtrace) - 1; i >= 0; i-- {
				fmt.Fprintf(os.Stderr, "  at %#08x\n", fatal.Backtrace[i])
			}
		}
		os.Exit(1)
	}
}

// runEmulation drives the CPU step loop until ctx is cancelled or a
// fatal bus/decode error is hit.
func runEmulation(ctx context.Context, m *hollycore.Machine) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
}

// writeScreenshot scales the captured framebuffer to a fixed 640x480 PNG
// regardless of the console's native mode.
func writeScreenshot(path string, snap hollycore.FrameSnapshot) error {
	img := hollycore.ScaleToResolution(hollycore.FrameToImage(snap), 640, 480)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// watchClipboardForDiscPaths lets a second "open this disc" request
// arrive via the clipboard instead of the IPC socket, for a desktop
// session where copying a file path is easier than finding a terminal:
// copy a .gdi path, and the running instance picks it up on its own.
func watchClipboardForDiscPaths(ctx context.Context, loadDisc func(string) error) {
	changed := clipboard.Watch(ctx, clipboard.FmtText)
	for data := range changed {
		path := strings.TrimSpace(string(data))
		if path == "" || filepath.Ext(path) != ".gdi" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := loadDisc(path); err != nil {
			fmt.Fprintf(os.Stderr, "hollycore: clipboard load of %s failed: %v\n", path, err)
		}
	}
}
