// ipc.go - Unix domain socket single-instance coordination.
//
// Grounded on runtime_ipc.go's IPCServer for the bind-or-detect-stale-socket
// startup dance and the extension-allowlist guard on OPEN requests, but the
// wire format is restructured around a length-prefixed frame the way
// mapledma.go's command list is: a header word (here, a 4-byte big-endian
// length) gives the size of the payload that follows, so a connection can
// carry more than one request and a reader never has to guess how much of
// a socket read belongs to the current message. A running instance also
// answers STATUS, so a second launch can report what's already loaded
// instead of only being able to replace it.
package hollycore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ipcMaxFrameSize bounds a single frame's payload: generous for a JSON
// request/response carrying one filesystem path, small enough that a
// corrupt or hostile length prefix can't make the server allocate
// unboundedly.
const ipcMaxFrameSize = 1 << 16

var allowedDiscExtensions = map[string]bool{
	".gdi": true,
	".cdi": true,
}

type ipcRequest struct {
	Cmd  string `json:"cmd"`
	Path string `json:"path,omitempty"`
}

type ipcResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Disc    string `json:"disc,omitempty"`
}

// IPCHandler is what a running instance exposes to an incoming OPEN or
// STATUS request. main.go supplies one backed by the live Machine; tests
// supply a stub.
type IPCHandler interface {
	// OpenDisc loads a new disc image into the running machine and
	// re-runs the boot handoff.
	OpenDisc(path string) error
	// DiscStatus reports the path of the disc currently loaded, or ""
	// if none has been loaded yet.
	DiscStatus() string
}

// IPCServer listens on a Unix socket and dispatches OPEN/STATUS requests
// read off a length-prefixed frame stream, one frame per request, any
// number of requests per connection.
type IPCServer struct {
	listener net.Listener
	handler  IPCHandler
	done     chan struct{}
	sockPath string
}

func resolveSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "hollycore.sock")
	}
	return "/tmp/hollycore.sock"
}

// NewIPCServer binds the default socket path.
func NewIPCServer(handler IPCHandler) (*IPCServer, error) {
	return newIPCServerAt(resolveSocketPath(), handler)
}

func newIPCServerAt(sockPath string, handler IPCHandler) (*IPCServer, error) {
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		conn, dialErr := net.DialTimeout("unix", sockPath, 2*time.Second)
		if dialErr != nil {
			os.Remove(sockPath)
			ln, err = net.Listen("unix", sockPath)
			if err != nil {
				return nil, fmt.Errorf("ipc bind failed: %w", err)
			}
		} else {
			conn.Close()
			return nil, fmt.Errorf("another instance is already running")
		}
	}
	return &IPCServer{listener: ln, handler: handler, done: make(chan struct{}), sockPath: sockPath}, nil
}

// Start begins accepting connections in a goroutine.
func (s *IPCServer) Start() { go s.acceptLoop() }

// Stop closes the listener, waits for the accept loop to exit, and
// removes the socket file.
func (s *IPCServer) Stop() {
	s.listener.Close()
	<-s.done
	os.Remove(s.sockPath)
}

func (s *IPCServer) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

// handleConn serves every framed request a peer sends over one connection
// until it disconnects or sends something malformed, rather than the
// single request/response round trip and close a one-shot handler gives.
func (s *IPCServer) handleConn(conn net.Conn) {
	defer conn.Close()

	for {
		conn.SetDeadline(time.Now().Add(10 * time.Second))
		payload, err := readIPCFrame(conn)
		if err != nil {
			return
		}

		var req ipcRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.writeResponse(conn, ipcResponse{Status: "err", Message: "invalid json"})
			continue
		}

		switch req.Cmd {
		case "open":
			if err := validateIPCPath(req.Path); err != nil {
				s.writeResponse(conn, ipcResponse{Status: "err", Message: err.Error()})
				continue
			}
			if err := s.handler.OpenDisc(req.Path); err != nil {
				s.writeResponse(conn, ipcResponse{Status: "err", Message: err.Error()})
				continue
			}
			s.writeResponse(conn, ipcResponse{Status: "ok"})
		case "status":
			s.writeResponse(conn, ipcResponse{Status: "ok", Disc: s.handler.DiscStatus()})
		default:
			s.writeResponse(conn, ipcResponse{Status: "err", Message: "unknown command"})
		}
	}
}

func (s *IPCServer) writeResponse(conn net.Conn, resp ipcResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	writeIPCFrame(conn, data)
}

// readIPCFrame reads one 4-byte big-endian length prefix followed by
// exactly that many payload bytes, the same header-then-payload shape
// mapledma.go's command-list walk reads off system RAM.
func readIPCFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 || n > ipcMaxFrameSize {
		return nil, fmt.Errorf("ipc: frame length %d out of range", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func writeIPCFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func validateIPCPath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("absolute path required")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedDiscExtensions[ext] {
		return fmt.Errorf("unsupported extension: %s", ext)
	}
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}

// SendIPCOpen asks a running instance to load a new disc image at the
// default socket path.
func SendIPCOpen(path string) error {
	resp, err := sendIPCRequestAt(resolveSocketPath(), ipcRequest{Cmd: "open", Path: path})
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("remote error: %s", resp.Message)
	}
	return nil
}

// SendIPCStatus asks a running instance which disc it currently has
// loaded, returning "" if it reports none.
func SendIPCStatus() (string, error) {
	resp, err := sendIPCRequestAt(resolveSocketPath(), ipcRequest{Cmd: "status"})
	if err != nil {
		return "", err
	}
	if resp.Status != "ok" {
		return "", fmt.Errorf("remote error: %s", resp.Message)
	}
	return resp.Disc, nil
}

func sendIPCOpenAt(sockPath, path string) error {
	resp, err := sendIPCRequestAt(sockPath, ipcRequest{Cmd: "open", Path: path})
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("remote error: %s", resp.Message)
	}
	return nil
}

func sendIPCRequestAt(sockPath string, req ipcRequest) (ipcResponse, error) {
	conn, err := net.DialTimeout("unix", sockPath, 10*time.Second)
	if err != nil {
		return ipcResponse{}, fmt.Errorf("cannot connect to running instance: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	data, err := json.Marshal(req)
	if err != nil {
		return ipcResponse{}, err
	}
	if err := writeIPCFrame(conn, data); err != nil {
		return ipcResponse{}, fmt.Errorf("send failed: %w", err)
	}

	payload, err := readIPCFrame(conn)
	if err != nil {
		return ipcResponse{}, fmt.Errorf("read response failed: %w", err)
	}
	var resp ipcResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return ipcResponse{}, fmt.Errorf("invalid response: %w", err)
	}
	return resp, nil
}

// machineIPCHandler adapts a running Machine's disc-loading entry point to
// IPCHandler, tracking the most recently loaded path under a mutex since
// OPEN requests arrive on their own per-connection goroutine.
type machineIPCHandler struct {
	mu     sync.Mutex
	openFn func(string) error
	loaded string
}

// NewMachineIPCHandler wraps openFn (typically a closure that calls
// LoadGDI and ShortcutBoot on a live Machine) as an IPCHandler.
func NewMachineIPCHandler(openFn func(string) error) IPCHandler {
	return &machineIPCHandler{openFn: openFn}
}

func (h *machineIPCHandler) OpenDisc(path string) error {
	if err := h.openFn(path); err != nil {
		return err
	}
	h.mu.Lock()
	h.loaded = path
	h.mu.Unlock()
	return nil
}

func (h *machineIPCHandler) DiscStatus() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}
