// Package monitor turns a running cache simulation into an HTTP server,
// so a long trace replay can be inspected live instead of only at the
// end. It reads Stats snapshots the caller hands it; it never touches
// cache internals and adds no timing to the simulation itself.
package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable net/http/pprof's default handlers under /debug/pprof.
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/monitor/internal/progress"
)

// StatsProvider is anything that can report its current statistics
// snapshot on demand — cache.SingleLevelCache and cache.TwoLevelCache
// both satisfy it once wrapped by the caller, since their Stats() return
// types differ and Go has no covariant interface for that.
type StatsProvider func() any

// Server exposes a running cache simulation's live statistics, resource
// usage, and CPU profile over HTTP.
type Server struct {
	portNumber int
	stats      StatsProvider

	progressLock sync.Mutex
	progressBars []*progress.Bar
}

// NewServer creates a Server. WithStats must be called before Start for
// the /api/stats route to return anything useful.
func NewServer() *Server {
	return &Server{}
}

// WithPortNumber sets the port the server listens on. Ports below 1000
// are rejected in favor of a random port, mirroring the restriction
// operators expect on shared machines.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"monitor: port %d is not allowed, using a random port instead\n",
			portNumber)
		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// WithStats registers the callback used to serve /api/stats.
func (s *Server) WithStats(stats StatsProvider) *Server {
	s.stats = stats
	return s
}

// NewProgressBar creates and registers a progress bar visible at
// /api/progress.
func (s *Server) NewProgressBar(name string, total uint64) *progress.Bar {
	bar := &progress.Bar{Name: name, Total: total}

	s.progressLock.Lock()
	defer s.progressLock.Unlock()
	s.progressBars = append(s.progressBars, bar)

	return bar
}

// Start launches the HTTP server in the background and returns once it
// is listening. If open is true, the server's base URL is opened in the
// user's browser. Only the /api/ routes are registered; no page is served
// at the base URL itself.
func (s *Server) Start(open bool) error {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", s.handleStats)
	r.HandleFunc("/api/progress", s.handleProgress)
	r.HandleFunc("/api/resources", s.handleResources)
	r.HandleFunc("/api/profile", s.handleProfile)

	actualAddr := ":0"
	if s.portNumber >= 1000 {
		actualAddr = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualAddr)
	if err != nil {
		return fmt.Errorf("monitor: listening on %s: %w", actualAddr, err)
	}

	addr := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	log.Printf("monitor: serving live stats at %s", addr)

	go func() {
		if err := http.Serve(listener, r); err != nil {
			log.Printf("monitor: server stopped: %v", err)
		}
	}()

	if open {
		if err := browser.OpenURL(addr); err != nil {
			log.Printf("monitor: could not open browser: %v", err)
		}
	}

	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.stats == nil {
		http.Error(w, "no stats provider registered", http.StatusServiceUnavailable)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(s.stats())
	serializer.SetMaxDepth(1)

	if err := serializer.Serialize(w); err != nil {
		log.Printf("monitor: serializing stats: %v", err)
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	s.progressLock.Lock()
	bars := append([]*progress.Bar(nil), s.progressBars...)
	s.progressLock.Unlock()

	body, err := json.Marshal(bars)
	if err != nil {
		log.Printf("monitor: marshaling progress bars: %v", err)
		return
	}

	w.Write(body)
}

type resourceReport struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemoryRSS  uint64  `json:"memory_rss"`
}

func (s *Server) handleResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Printf("monitor: reading process info: %v", err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		log.Printf("monitor: reading cpu percent: %v", err)
		return
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		log.Printf("monitor: reading memory info: %v", err)
		return
	}

	body, err := json.Marshal(resourceReport{CPUPercent: cpuPercent, MemoryRSS: mem.RSS})
	if err != nil {
		log.Printf("monitor: marshaling resource report: %v", err)
		return
	}

	w.Write(body)
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		log.Printf("monitor: starting cpu profile: %v", err)
		return
	}

	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		log.Printf("monitor: parsing profile: %v", err)
		return
	}

	body, err := json.Marshal(prof)
	if err != nil {
		log.Printf("monitor: marshaling profile: %v", err)
		return
	}

	w.Write(body)
}
