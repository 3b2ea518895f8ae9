// Package swarm runs many quiz players against one game and keeps them
// alive: a worker that exits for any reason is respawned under the same
// id, so player names stay stable for the duration of the run.
package swarm

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/streamspace-dev/quizswarm/internal/kahoot"
	"github.com/streamspace-dev/quizswarm/internal/logger"
)

// maxConcurrentJoins caps how many challenge probes and dials run at once
// while a batch of workers is being added.
const maxConcurrentJoins = 10

// Runner is the part of the game client the swarm drives. kahoot.Client
// satisfies it; tests substitute their own.
type Runner interface {
	Run() error
}

// ConnectFunc opens one game client. The default is kahoot.Connect.
type ConnectFunc func(ctx context.Context, code, name string, handler kahoot.Handler) (Runner, error)

type eventKind int

const (
	eventLogin eventKind = iota
	eventExit
)

// workerEvent is posted by worker goroutines to the controller loop.
type workerEvent struct {
	id   uint64
	kind eventKind
	name string
	err  error
}

// Swarm owns a fleet of players joined to a single game.
type Swarm struct {
	code     string
	baseName string

	connect ConnectFunc
	events  chan workerEvent
	nextID  atomic.Uint64
	log     zerolog.Logger
}

// New creates a swarm for the game code. Workers are named
// baseName followed by their id.
func New(code, baseName string) *Swarm {
	return &Swarm{
		code:     code,
		baseName: baseName,
		connect: func(ctx context.Context, code, name string, handler kahoot.Handler) (Runner, error) {
			return kahoot.Connect(ctx, code, name, handler)
		},
		events: make(chan workerEvent, 64),
		log: logger.Swarm().With().
			Str("code", code).
			Logger(),
	}
}

// SetConnectFunc replaces how workers open game clients. Used by tests.
func (s *Swarm) SetConnectFunc(connect ConnectFunc) {
	s.connect = connect
}

// AddWorker joins one new player, retrying until the join succeeds or the
// context ends.
func (s *Swarm) AddWorker(ctx context.Context) error {
	id := s.nextID.Add(1) - 1
	return s.addWorkerWithID(ctx, id)
}

// AddNWorkers joins n players concurrently, never more than
// maxConcurrentJoins at a time.
func (s *Swarm) AddNWorkers(ctx context.Context, n int) error {
	// A plain group, not errgroup.WithContext: the workers' run goroutines
	// outlive Wait and must keep reporting exits until ctx itself ends.
	var g errgroup.Group
	g.SetLimit(maxConcurrentJoins)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return s.AddWorker(ctx)
		})
	}
	return g.Wait()
}

// addWorkerWithID joins a player under a fixed id. Ids map one-to-one to
// player names, so respawns reuse the dead worker's id.
func (s *Swarm) addWorkerWithID(ctx context.Context, id uint64) error {
	name := fmt.Sprintf("%s%d", s.baseName, id)
	handler := &botHandler{id: id, events: s.events}

	for {
		client, err := s.connect(ctx, s.code, name, handler)
		if err == nil {
			go func() {
				runErr := client.Run()
				select {
				case s.events <- workerEvent{id: id, kind: eventExit, err: runErr}:
				case <-ctx.Done():
				}
			}()
			return nil
		}

		s.log.Warn().Err(err).Uint64("worker", id).Msg("join failed, retrying")
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Run is the controller loop: it respawns exited workers and logs logins.
// It returns when the context ends.
func (s *Swarm) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			switch ev.kind {
			case eventLogin:
				s.log.Info().Uint64("worker", ev.id).Str("name", ev.name).Msg("worker logged in")
			case eventExit:
				if ev.err != nil {
					s.log.Warn().Err(ev.err).Uint64("worker", ev.id).Msg("worker exited")
				} else {
					s.log.Info().Uint64("worker", ev.id).Msg("worker exited")
				}
				if err := s.addWorkerWithID(ctx, ev.id); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					s.log.Error().Err(err).Uint64("worker", ev.id).Msg("failed to respawn worker")
				}
			}
		}
	}
}
