package game

import (
	"errors"
	"math/rand"
	"sort"
)

var (
	ErrWorldFull      = errors.New("world is full")
	ErrDuplicateActor = errors.New("actor already in world")
	ErrUnknownActor   = errors.New("unknown actor")
	ErrNoSafeSpawn    = errors.New("no safe spawn location")
)

// World owns every actor and obstacle of one arena and advances them tick by tick.
// It is not safe for concurrent use: the caller must serialise Step with all
// other calls, typically by holding one lock for the whole tick.
type World struct {
	cfg  Config
	seed int64
	rng  *rand.Rand // gameplay
	fx   *rand.Rand // cosmetic only

	actors    map[string]*Actor
	order     []string // join order, used for every per-actor pass
	obstacles []*Obstacle
	nextID    uint64

	tick      uint64
	clock     float64 // simulation seconds
	lastTopUp float64

	board     []LeaderboardEntry
	boardAt   float64
	boardInit bool
}

// NewWorld creates a world and seeds its initial obstacle population.
// A fixed seed makes a run reproducible.
func NewWorld(cfg Config, seed int64) *World {
	w := &World{cfg: cfg, seed: seed}
	w.Reset()
	return w
}

// Reset drops every actor and obstacle and starts over from the initial population
func (w *World) Reset() {
	w.rng = rand.New(rand.NewSource(w.seed))
	w.fx = rand.New(rand.NewSource(w.seed + 1))
	w.actors = make(map[string]*Actor)
	w.order = nil
	w.obstacles = nil
	w.nextID = 0
	w.tick = 0
	w.clock = 0
	w.lastTopUp = 0
	w.board = nil
	w.boardAt = 0
	w.boardInit = false
	w.maintainLargeCount()
}

// Config returns the world's tuning
func (w *World) Config() Config { return w.cfg }

// Tick returns the number of completed steps
func (w *World) Tick() uint64 { return w.tick }

// Clock returns elapsed simulation time in seconds
func (w *World) Clock() float64 { return w.clock }

// ActorCount returns the number of actors, dead or alive
func (w *World) ActorCount() int { return len(w.actors) }

// Full reports whether another actor would be rejected
func (w *World) Full() bool { return len(w.actors) >= w.cfg.MaxActors }

// Actor returns an actor by id
func (w *World) Actor(id string) (*Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// Actors returns every actor in join order
func (w *World) Actors() []*Actor {
	list := make([]*Actor, 0, len(w.order))
	for _, id := range w.order {
		list = append(list, w.actors[id])
	}
	return list
}

// Obstacles returns the live obstacles in creation order
func (w *World) Obstacles() []*Obstacle {
	list := make([]*Obstacle, 0, len(w.obstacles))
	for _, o := range w.obstacles {
		if o.Alive {
			list = append(list, o)
		}
	}
	return list
}

// AddObstacle assigns the obstacle a fresh id and puts it in the world
func (w *World) AddObstacle(o *Obstacle) *Obstacle {
	w.nextID++
	o.ID = w.nextID
	o.Alive = true
	w.obstacles = append(w.obstacles, o)
	return o
}

// Join places a new actor at a safe location
func (w *World) Join(id, name, wallet string) (*Actor, error) {
	if w.Full() {
		return nil, ErrWorldFull
	}
	if _, ok := w.actors[id]; ok {
		return nil, ErrDuplicateActor
	}
	pos, ok := FindSafeSpawn(&w.cfg, w.rng, w.obstacles, w.Actors())
	if !ok {
		return nil, ErrNoSafeSpawn
	}
	a := NewActor(&w.cfg, id, name, pos)
	a.Wallet = wallet
	w.actors[id] = a
	w.order = append(w.order, id)
	return a, nil
}

// Respawn recreates an existing actor in place at a new safe location
func (w *World) Respawn(id, wallet string) (*Actor, error) {
	a, ok := w.actors[id]
	if !ok {
		return nil, ErrUnknownActor
	}
	others := make([]*Actor, 0, len(w.order))
	for _, other := range w.Actors() {
		if other.ID != id {
			others = append(others, other)
		}
	}
	pos, ok := FindSafeSpawn(&w.cfg, w.rng, w.obstacles, others)
	if !ok {
		return nil, ErrNoSafeSpawn
	}
	a.Respawn(&w.cfg, pos)
	a.Wallet = wallet
	return a, nil
}

// Remove takes an actor out of the world and returns it
func (w *World) Remove(id string) (*Actor, bool) {
	a, ok := w.actors[id]
	if !ok {
		return nil, false
	}
	delete(w.actors, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return a, true
}

// SetInput applies a client's control state; ignored for unknown or dead actors
func (w *World) SetInput(id string, in Input) bool {
	a, ok := w.actors[id]
	if !ok || a.Dead {
		return false
	}
	a.ApplyInput(&w.cfg, in)
	return true
}

// Resize records a client's viewport size
func (w *World) Resize(id string, width, height int) bool {
	a, ok := w.actors[id]
	if !ok {
		return false
	}
	a.Viewport = Viewport{Width: width, Height: height}
	return true
}

// Step advances the simulation by dt seconds: integration, collision
// resolution, death bookkeeping and periodic obstacle top-up.
func (w *World) Step(dt float64) TickResult {
	if !finite(dt) || dt < 0 {
		dt = 0
	}
	w.tick++
	w.clock += dt

	actors := w.Actors()
	for _, a := range actors {
		a.Update(&w.cfg, dt, w.fx)
	}
	for _, o := range w.obstacles {
		if o.Alive {
			o.Integrate(&w.cfg, dt)
		}
	}

	events := w.resolveCollisions(actors)

	var deaths []Death
	for _, a := range actors {
		if a.Dead && !a.deathReported {
			a.deathReported = true
			deaths = append(deaths, Death{
				ActorID:    a.ID,
				Name:       a.Name,
				Wallet:     a.Wallet,
				FinalScore: a.FinalScore,
			})
		}
	}

	if w.cfg.TopUpInterval > 0 && w.clock-w.lastTopUp >= w.cfg.TopUpInterval {
		w.lastTopUp = w.clock
		w.maintainLargeCount()
	}

	return TickResult{Tick: w.tick, Events: events, Deaths: deaths}
}

// spawnLarge adds one large obstacle at a safe location, if one can be found
func (w *World) spawnLarge() bool {
	pos, ok := FindSafeSpawn(&w.cfg, w.rng, w.obstacles, w.Actors())
	if !ok {
		return false
	}
	w.AddObstacle(NewObstacle(&w.cfg, w.rng, pos, TierLarge))
	return true
}

// maintainLargeCount tops the large population back up to its target
func (w *World) maintainLargeCount() {
	large := 0
	for _, o := range w.obstacles {
		if o.Alive && o.Tier == TierLarge {
			large++
		}
	}
	for i := large; i < w.cfg.LargeObstacleCount; i++ {
		w.spawnLarge()
	}
}

func (w *World) compactObstacles() {
	live := w.obstacles[:0]
	for _, o := range w.obstacles {
		if o.Alive {
			live = append(live, o)
		}
	}
	for i := len(live); i < len(w.obstacles); i++ {
		w.obstacles[i] = nil
	}
	w.obstacles = live
}

// Snapshot returns the serialisable state of all living actors and obstacles
func (w *World) Snapshot() WorldState {
	s := WorldState{
		Tick:      w.tick,
		Actors:    make([]ActorState, 0, len(w.order)),
		Obstacles: make([]ObstacleState, 0, len(w.obstacles)),
	}
	for _, a := range w.Actors() {
		if !a.Dead {
			s.Actors = append(s.Actors, a.ToState(&w.cfg))
		}
	}
	for _, o := range w.obstacles {
		if o.Alive {
			s.Obstacles = append(s.Obstacles, o.ToState())
		}
	}
	return s
}

// Leaderboard returns the top actors by score. It is recomputed at most once per
// LeaderboardInterval of simulation time; changed is true only when a recompute
// produced different content.
func (w *World) Leaderboard() (entries []LeaderboardEntry, changed bool) {
	if w.boardInit && w.clock-w.boardAt < w.cfg.LeaderboardInterval {
		return w.board, false
	}
	next := w.rankActors()
	changed = !sameBoard(next, w.board)
	w.board = next
	w.boardAt = w.clock
	w.boardInit = true
	return w.board, changed
}

// CurrentLeaderboard returns the cached leaderboard without refreshing it
func (w *World) CurrentLeaderboard() []LeaderboardEntry {
	return w.board
}

func (w *World) rankActors() []LeaderboardEntry {
	actors := w.Actors()
	sort.SliceStable(actors, func(i, j int) bool {
		return actors[i].Score > actors[j].Score
	})
	n := min(len(actors), max(w.cfg.LeaderboardSize, 0))
	board := make([]LeaderboardEntry, 0, n)
	for _, a := range actors[:n] {
		board = append(board, LeaderboardEntry{Name: a.Name, Score: a.Score, Wallet: a.Wallet})
	}
	return board
}

func sameBoard(a, b []LeaderboardEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
