// gdi.go - GDI disc manifest parsing: the two-session, lead-in/lead-out
// track model a GD-ROM image exposes, plus FAD/LBA conversion.
//
// Grounded on media_loader.go's detectMediaType/sanitizePathLocked shape:
// a plain-text manifest line format in place of a file extension is the
// dispatch key here, but the path-sanitization and relative-path
// resolution against a base directory is the same defense against a
// manifest pointing outside its own directory.

package hollycore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TrackType distinguishes a GD-ROM track's sector payload kind.
type TrackType int

const (
	TrackAudio TrackType = iota
	TrackData
)

// gdLeadInFAD is the FAD at which the high-density (GD) session's lead-in
// begins, following the low-density CD session's two fake TOC tracks.
const gdLeadInFAD = 45000

// Track is one manifest line: a single track's LBA, type, sector size and
// backing file.
type Track struct {
	Number     int
	LBA        int
	Type       TrackType
	SectorSize int
	FileName   string
	FileOffset int64

	path string // resolved absolute path, set by ParseGDI
}

// FAD converts this track's starting LBA to an absolute Frame Address.
// The low-density session's two tracks sit below the GD lead-in; every
// high-density track (3 onward on a real disc) sits at LBA+gdLeadInFAD.
func (t Track) FAD() int {
	if t.Number <= 2 {
		return t.LBA + 150
	}
	return t.LBA + gdLeadInFAD
}

// GDIImage is a fully parsed GDI manifest: every track plus the directory
// its file paths resolve against.
type GDIImage struct {
	Tracks  []Track
	baseDir string
}

// ParseGDI reads a .gdi manifest and resolves every track's backing file
// against the manifest's own directory. The first line is a decimal track
// count; each following line is
//
//	<track> <lba> <type> <sectorsize> <filename> <offset>
//
// with type 4 for data and 0 for audio, mirroring the real format.
func ParseGDI(path string) (*GDIImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		baseDir = filepath.Dir(path)
	}

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, fmt.Errorf("gdi: empty manifest")
	}
	count, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, fmt.Errorf("gdi: bad track count: %w", err)
	}

	img := &GDIImage{baseDir: baseDir}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		tr, err := parseTrackLine(line)
		if err != nil {
			return nil, err
		}
		resolved, ok := sanitizeTrackPath(baseDir, tr.FileName)
		if !ok {
			return nil, fmt.Errorf("gdi: track %d path %q escapes manifest directory", tr.Number, tr.FileName)
		}
		tr.path = resolved
		img.Tracks = append(img.Tracks, tr)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(img.Tracks) != count {
		return nil, fmt.Errorf("gdi: header declared %d tracks, found %d", count, len(img.Tracks))
	}
	return img, nil
}

func parseTrackLine(line string) (Track, error) {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return Track{}, fmt.Errorf("gdi: malformed track line %q", line)
	}
	num, err1 := strconv.Atoi(fields[0])
	lba, err2 := strconv.Atoi(fields[1])
	typ, err3 := strconv.Atoi(fields[2])
	size, err4 := strconv.Atoi(fields[3])
	offset, err5 := strconv.ParseInt(fields[5], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return Track{}, fmt.Errorf("gdi: malformed numeric field in %q", line)
	}
	tt := TrackAudio
	if typ == 4 {
		tt = TrackData
	}
	return Track{
		Number: num, LBA: lba, Type: tt, SectorSize: size,
		FileName: fields[4], FileOffset: offset,
	}, nil
}

func sanitizeTrackPath(baseDir, name string) (string, bool) {
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", false
	}
	full := filepath.Join(baseDir, name)
	rel, err := filepath.Rel(baseDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return full, true
}

// HighDensityTracks returns only the tracks belonging to the GD-ROM high
// density session (track number 3 and up), the session a real unit's
// laser switches to after the low-density TOC read.
func (g *GDIImage) HighDensityTracks() []Track {
	var out []Track
	for _, t := range g.Tracks {
		if t.Number >= 3 {
			out = append(out, t)
		}
	}
	return out
}

// BootTrack returns the first data track of the high density session,
// which on a real disc holds IP.BIN and the 1ST_READ.BIN boot program.
func (g *GDIImage) BootTrack() (Track, bool) {
	for _, t := range g.HighDensityTracks() {
		if t.Type == TrackData {
			return t, true
		}
	}
	return Track{}, false
}

// ReadSectorData reads length bytes starting at byteOffset within a
// track's backing file, honoring the track's own file offset.
func (g *GDIImage) ReadSectorData(t Track, byteOffset int64, length int) ([]byte, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, length)
	n, err := f.ReadAt(buf, t.FileOffset+byteOffset)
	if err != nil && n < length {
		return nil, err
	}
	return buf, nil
}
