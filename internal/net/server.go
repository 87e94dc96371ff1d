// Package net also hosts the dispatcher's runtime glue: the bus
// subscriber loop, the ~1Hz idle-book snapshot timer, and the local HTTP
// server fronting the snapshot websocket hub. Goroutine lifecycle is
// supervised with gopkg.in/tomb.v2, so a subscriber death or a ctrl-c
// brings every dependent goroutine down together.
package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"ember/internal/book"
	"ember/internal/bus"
	"ember/internal/engine"
	"ember/internal/ws"
)

const snapshotTickInterval = time.Second // ~1 Hz

// Server wires the bus, the engine and the snapshot fan-out hub together.
type Server struct {
	bus        bus.Bus
	engine     *engine.Engine
	hub        *ws.Hub
	listenAddr string
	httpServer *http.Server
}

// New builds a Server. Nothing is started until Run is called.
func New(b bus.Bus, eng *engine.Engine, hub *ws.Hub, listenAddr string) *Server {
	return &Server{
		bus:        b,
		engine:     eng,
		hub:        hub,
		listenAddr: listenAddr,
	}
}

// Run subscribes to inbound orders, starts the idle-book snapshot timer,
// and serves the local websocket/health HTTP endpoints, until ctx is
// canceled. It blocks until every supervised goroutine has exited.
func (s *Server) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)

	orders, err := s.bus.SubscribeOrders(ctx)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/book", s.hub.ServeHTTP)
	mux.HandleFunc("/health", s.handleHealth)
	s.httpServer = &http.Server{Addr: s.listenAddr, Handler: mux}

	t.Go(func() error { return s.consumeOrders(ctx, orders) })
	t.Go(func() error { return s.snapshotTicker(ctx) })
	t.Go(s.serveHTTP)

	<-t.Dying()
	s.shutdownHTTP()
	if err := t.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// consumeOrders is the dispatcher's main loop: dequeue one inbound event,
// process it, publish trades/acks, then a fresh snapshot.
func (s *Server) consumeOrders(ctx context.Context, orders <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-orders:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("order subscription closed")
			}
			s.handleEvent(ctx, raw)
		}
	}
}

func (s *Server) handleEvent(ctx context.Context, raw []byte) {
	outcome, err := s.engine.Dispatch(raw)
	if err != nil {
		// Malformed events and unknown actions are already logged inside
		// Dispatch; no ack and no state change happens for them.
		return
	}

	if burst, err := EncodeTradeBurst(outcome.Trades, time.Now()); err != nil {
		log.Error().Err(err).Msg("failed to encode trade burst")
	} else if burst != nil {
		s.publish(ctx, burst)
	}

	if ack := outcome.CancelAck; ack != nil {
		if payload, err := EncodeCancelAck(ack.OrderID, ack.Success); err != nil {
			log.Error().Err(err).Msg("failed to encode cancel ack")
		} else {
			s.publish(ctx, payload)
		}
	}

	if ack := outcome.ModifyAck; ack != nil {
		if payload, err := EncodeModifyAck(ack.OrderID, ack.Success); err != nil {
			log.Error().Err(err).Msg("failed to encode modify ack")
		} else {
			s.publish(ctx, payload)
		}
	}

	s.broadcastSnapshot(outcome.Snapshot)
}

func (s *Server) publish(ctx context.Context, payload []byte) {
	if err := s.bus.PublishTrades(ctx, payload); err != nil {
		// A publish failure is logged and does not roll back the trade,
		// which is authoritative in-engine already.
		log.Error().Err(err).Msg("publish failed, continuing")
	}
}

func (s *Server) broadcastSnapshot(snap book.Snapshot) {
	payload, err := EncodeSnapshot(snap)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode snapshot")
		return
	}
	s.hub.Broadcast(payload)
}

// snapshotTicker publishes a snapshot every ~1s even when the book is
// idle, bounding staleness.
func (s *Server) snapshotTicker(ctx context.Context) error {
	ticker := time.NewTicker(snapshotTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			payload, err := EncodeSnapshot(s.engine.Snapshot())
			if err != nil {
				log.Error().Err(err).Msg("failed to encode idle snapshot")
				continue
			}
			s.hub.Broadcast(payload)
		}
	}
}

func (s *Server) serveHTTP() error {
	log.Info().Str("addr", s.listenAddr).Msg("serving snapshot websocket and health endpoint")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdownHTTP() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down http server")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","subscribers":%d}`, s.hub.Count())
}
