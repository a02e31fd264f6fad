// main.go - prints a GDI disc image's track table.
//
// Grounded on terminal_host.go's use of golang.org/x/term: detect
// whether stdout is a real terminal before deciding how to format
// output, the same check the teacher makes before switching stdin
// into raw mode.

package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/hollycore/hollycore"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: gdiinfo <disc.gdi>")
		os.Exit(1)
	}

	img, err := hollycore.ParseGDI(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "gdiinfo: %v\n", err)
		os.Exit(1)
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	printTracks(img, isTTY)
}

func printTracks(img *hollycore.GDIImage, isTTY bool) {
	header := "TRACK  LBA       FAD       TYPE   SECTOR  FILE"
	rule := "-----  --------  --------  -----  ------  ----"
	if isTTY {
		fmt.Printf("\033[1m%s\033[0m\n", header)
	} else {
		fmt.Println(header)
	}
	fmt.Println(rule)

	for _, t := range img.Tracks {
		kind := "AUDIO"
		if t.Type == hollycore.TrackData {
			kind = "DATA"
		}
		fmt.Printf("%-5d  %-8d  %-8d  %-5s  %-6d  %s\n",
			t.Number, t.LBA, t.FAD(), kind, t.SectorSize, t.FileName)
	}

	if boot, ok := img.BootTrack(); ok {
		fmt.Printf("\nboot track: %d (%s)\n", boot.Number, boot.FileName)
	}
}
