package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/versatiles-org/go-versatiles/versatiles"
	"github.com/versatiles-org/go-versatiles/versatiles/pipeline"
)

// tileServerMetrics mirrors the shape of the teacher's
// pmtiles/server_metrics.go: counters scoped to this process, registered
// once at server construction.
type tileServerMetrics struct {
	tilesServed  prometheus.Counter
	tilesMissing prometheus.Counter
	bytesServed  prometheus.Counter
}

func newTileServerMetrics() *tileServerMetrics {
	m := &tileServerMetrics{
		tilesServed:  prometheus.NewCounter(prometheus.CounterOpts{Name: "versatiles_tiles_served_total", Help: "Tiles served."}),
		tilesMissing: prometheus.NewCounter(prometheus.CounterOpts{Name: "versatiles_tiles_missing_total", Help: "Requested tiles not present in source."}),
		bytesServed:  prometheus.NewCounter(prometheus.CounterOpts{Name: "versatiles_bytes_served_total", Help: "Tile payload bytes served."}),
	}
	prometheus.MustRegister(m.tilesServed, m.tilesMissing, m.bytesServed)
	return m
}

// Server is a thin HTTP host over a pipeline root Operation. HTTP serving
// itself is out of scope for the core per spec.md §1; this mirrors the
// teacher's pmtiles/server.go only closely enough to exercise the library
// end to end.
type Server struct {
	root    pipeline.Operation
	logger  *log.Logger
	metrics *tileServerMetrics
}

// NewServer builds a Server over root.
func NewServer(root pipeline.Operation, logger *log.Logger) *Server {
	return &Server{root: root, logger: logger, metrics: newTileServerMetrics()}
}

var tilePathPattern = regexp.MustCompile(`^/(\d+)/(\d+)/(\d+)$`)

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/metadata" {
		s.serveMetadata(w, r)
		return
	}

	m := tilePathPattern.FindStringSubmatch(r.URL.Path)
	if m == nil {
		http.NotFound(w, r)
		return
	}
	z, _ := strconv.ParseUint(m[1], 10, 8)
	x, _ := strconv.ParseUint(m[2], 10, 32)
	y, _ := strconv.ParseUint(m[3], 10, 32)

	coord, err := versatiles.NewTileCoord3(uint8(z), uint32(x), uint32(y))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	blob, err := s.root.GetTileData(r.Context(), coord)
	if err != nil {
		s.logger.Printf("error serving %d/%d/%d: %v", z, x, y, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if blob == nil {
		s.metrics.tilesMissing.Inc()
		http.NotFound(w, r)
		return
	}

	if ct, ok := s.root.GetParameters().TileFormat.ContentType(); ok {
		w.Header().Set("Content-Type", ct)
	}
	w.Write(blob.AsSlice())
	s.metrics.tilesServed.Inc()
	s.metrics.bytesServed.Add(float64(blob.Len()))
	s.logger.Printf("served %d/%d/%d in %s", z, x, y, time.Since(start))
}

func (s *Server) serveMetadata(w http.ResponseWriter, _ *http.Request) {
	meta := s.root.GetMeta()
	w.Header().Set("Content-Type", "application/json")
	if meta == nil {
		w.Write([]byte("{}"))
		return
	}
	w.Write(meta.AsSlice())
}

// Start runs the server's HTTP listener, mirroring the teacher's
// Server.Start, but as a direct net/http handler rather than a
// channel-actor request loop. The tile-index cache inside
// versatiles.VersaTilesReader is a mutex-guarded LimitedCache, not an actor.
func (s *Server) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
