// Package introspect is a read-only TCP monitor server: on every accepted
// connection it writes the current book depth snapshot and the latest
// book-metrics sample, then closes. Strategy metrics are not exposed. It is adapted from the teacher's
// internal/server.go + internal/worker.go tomb-supervised worker pool,
// repurposed from a trading transport into a debug surface that cannot
// submit orders.
package introspect

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"marketsim/internal/book"
	"marketsim/internal/metrics"
)

const (
	taskChanSize    = 100
	defaultNWorkers = 4
	writeTimeout    = time.Second
)

// Snapshot is the read-only state the monitor server exposes per connection.
type Snapshot struct {
	Now         float64
	Depth       []book.DepthLevel
	BookMetrics *metrics.BookMetrics
}

// SnapshotFunc produces the current Snapshot; called fresh per connection
// so each client sees up-to-date state even on a long-lived server.
type SnapshotFunc func() Snapshot

// Server is the supervised TCP listener. It never reads from a
// connection: a client connects, receives one rendered snapshot, and the
// connection closes.
type Server struct {
	listener net.Listener
	snapshot SnapshotFunc

	tasks  chan net.Conn
	nWork  int
	cancel context.CancelFunc
}

// New binds a listener on address:port. snapshot is called once per
// accepted connection.
func New(address string, port int, snapshot SnapshotFunc) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", address, port))
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		snapshot: snapshot,
		tasks:    make(chan net.Conn, taskChanSize),
		nWork:    defaultNWorkers,
	}, nil
}

// Run accepts connections until ctx is cancelled, dispatching each to a
// bounded worker pool that renders and writes the snapshot.
func (s *Server) Run(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	t, ctx := tomb.WithContext(ctx)
	s.setupWorkers(t)

	t.Go(func() error {
		return s.acceptLoop(t, ctx)
	})

	<-ctx.Done()
	s.Shutdown()
}

// Shutdown closes the listener; outstanding workers drain on their own.
func (s *Server) Shutdown() {
	log.Info().Msg("introspection server shutting down")
	if err := s.listener.Close(); err != nil {
		log.Error().Err(err).Msg("introspection: error closing listener")
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) acceptLoop(t *tomb.Tomb, ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return nil
				default:
					log.Error().Err(err).Msg("introspection: accept failed")
					continue
				}
			}
			select {
			case s.tasks <- conn:
			case <-t.Dying():
				conn.Close()
				return nil
			}
		}
	}
}

func (s *Server) setupWorkers(t *tomb.Tomb) {
	for i := 0; i < s.nWork; i++ {
		t.Go(func() error {
			return s.worker(t)
		})
	}
}

func (s *Server) worker(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case conn := <-s.tasks:
			s.handle(conn)
		}
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	snap := s.snapshot()
	fmt.Fprintf(conn, "t=%.3f\n", snap.Now)
	fmt.Fprintf(conn, "depth(side,price,size):\n")
	for _, lvl := range snap.Depth {
		fmt.Fprintf(conn, "%s,%.4f,%d\n", lvl.Side, lvl.Price, lvl.Size)
	}

	samples := snap.BookMetrics.Samples()
	if len(samples) == 0 {
		return
	}
	last := samples[len(samples)-1]
	fmt.Fprintf(conn, "mid=%.4f spread=%.4f bid_depth=%d ask_depth=%d\n",
		last.Mid, last.Spread, last.BidDepth, last.AskDepth)
}
