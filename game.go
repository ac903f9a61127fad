package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"arena-server/game"
)

// maxTickDelta caps the simulated time of one tick. Collisions are only
// sampled once per tick, so after a long stall (GC pause, suspended VM) an
// uncapped dt would move projectiles and ships through each other; the
// stalled time is dropped instead.
const maxTickDelta = 0.25

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game runs the shared arena: it owns the world, drives the tick loop and
// fans results out to connected clients. mu is held for a whole tick and by
// every inbound handler, so the world only ever sees one caller.
type Game struct {
	mu        sync.Mutex
	world     *game.World
	scores    *HighScores
	clients   map[string]Broadcaster // connection id -> client
	constants ConstantsMsg
}

// NewGame creates a Game around world. scores receives finished runs.
func NewGame(world *game.World, scores *HighScores) *Game {
	return &Game{
		world:     world,
		scores:    scores,
		clients:   make(map[string]Broadcaster),
		constants: constantsFrom(world.Config()),
	}
}

// Run ticks the world at the configured rate until ctx is cancelled. dt is
// the measured time since the previous tick. A tick that overruns its budget
// is followed immediately by the next one.
func (g *Game) Run(ctx context.Context) {
	budget := g.world.Config().TickDuration()
	timer := time.NewTimer(0)
	defer timer.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		start := time.Now()
		dt := tickDelta(last, start)
		last = start

		g.tick(dt)

		wait := budget - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

// tickDelta is the simulated time for a tick starting at now, capped at maxTickDelta
func tickDelta(last, now time.Time) float64 {
	return min(now.Sub(last).Seconds(), maxTickDelta)
}

// tick runs one simulation step and delivers its results
func (g *Game) tick(dt float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, ok := g.safeStep(dt)
	if !ok {
		return
	}

	scoresChanged := false
	for _, d := range res.Deaths {
		if g.scores.Submit(d.Name, d.Wallet, d.FinalScore) {
			scoresChanged = true
		}
		if c, ok := g.clients[d.ActorID]; ok {
			c.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{
				FinalScore: d.FinalScore,
				HighScores: g.scores.Table(),
			}})
		}
	}

	for id, events := range res.ByActor() {
		if c, ok := g.clients[id]; ok {
			c.SendJSON(Envelope{T: MsgEvents, Data: events})
		}
	}

	g.broadcastState()

	if scoresChanged {
		g.broadcastMsg(Envelope{T: MsgHighScores, Data: g.scores.Table()})
	}
	if board, changed := g.world.Leaderboard(); changed {
		g.broadcastMsg(Envelope{T: MsgBoard, Data: boardMsg(board, true)})
	}
}

// safeStep runs World.Step; a panic is logged and turns the tick into a no-op
func (g *Game) safeStep(dt float64) (res game.TickResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tick panicked: %v", r)
			ok = false
		}
	}()
	return g.world.Step(dt), true
}

// Connect registers a client as a spectator and sends it the tuning and a snapshot
func (g *Game) Connect(id string, c Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clients[id] = c
	c.SendJSON(Envelope{T: MsgConstants, Data: g.constants})
	if data, ok := g.encodeState(); ok {
		c.SendBinary(data)
	}
}

// Disconnect removes the client and its actor. A run still in progress is
// submitted to the high scores; a finished one was already submitted at death.
func (g *Game) Disconnect(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.clients, id)
	a, ok := g.world.Remove(id)
	if !ok {
		return
	}
	if !a.Dead && g.scores.Submit(a.Name, a.Wallet, a.Score) {
		g.broadcastMsg(Envelope{T: MsgHighScores, Data: g.scores.Table()})
	}
	g.broadcastBoard()
}

// Login puts the client's actor into the world
func (g *Game) Login(id string, msg LoginMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.clients[id]
	if !ok {
		return
	}
	if g.world.Full() {
		c.SendJSON(Envelope{T: MsgLoginFailed, Data: StatusMsg{Message: "Server is full. Please try again later."}})
		return
	}
	if _, err := g.world.Join(id, SanitizeName(msg.Name), msg.Wallet); err != nil {
		log.Printf("login %s: %v", id, err)
		c.SendJSON(Envelope{T: MsgLoginFailed, Data: StatusMsg{Message: "Unable to join the game. Please try again."}})
		return
	}

	c.SendJSON(Envelope{T: MsgLoginSuccess, Data: StatusMsg{Message: "Login successful"}})
	c.SendJSON(Envelope{T: MsgHighScores, Data: g.scores.Table()})
	g.broadcastBoard()
}

// Restart respawns a dead actor, or joins a client that has no actor yet
func (g *Game) Restart(id string, msg RestartMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.clients[id]
	if !ok {
		return
	}

	var err error
	if a, ok := g.world.Actor(id); ok {
		if !a.Dead {
			c.SendJSON(Envelope{T: MsgRestartFailed, Data: StatusMsg{Message: "Already in the game."}})
			return
		}
		_, err = g.world.Respawn(id, msg.Wallet)
	} else {
		if g.world.Full() {
			c.SendJSON(Envelope{T: MsgRestartFailed, Data: StatusMsg{Message: "Server is full. Please try again later."}})
			return
		}
		_, err = g.world.Join(id, defaultName, msg.Wallet)
	}
	if err != nil {
		log.Printf("restart %s: %v", id, err)
		c.SendJSON(Envelope{T: MsgRestartFailed, Data: StatusMsg{Message: "Unable to join the game. Please try again."}})
		return
	}

	if data, ok := g.encodeState(); ok {
		c.SendBinary(data)
	}
	g.broadcastBoard()
}

// HandleInput stores the latest control flags for the client's actor
func (g *Game) HandleInput(id string, in game.Input) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.world.SetInput(id, in)
}

// Resize records the client's viewport
func (g *Game) Resize(id string, width, height int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.world.Resize(id, width, height)
}

// SendState sends one client an immediate snapshot
func (g *Game) SendState(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.clients[id]
	if !ok {
		return
	}
	if data, ok := g.encodeState(); ok {
		c.SendBinary(data)
	}
}

// ResetWorld drops every actor and restores the initial obstacle field.
// Connected clients stay as spectators and must log in again.
func (g *Game) ResetWorld() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.world.Reset()
	g.broadcastState()
	g.broadcastBoard()
}

// BroadcastHighScores pushes the current high-score table to every client
func (g *Game) BroadcastHighScores() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcastMsg(Envelope{T: MsgHighScores, Data: g.scores.Table()})
}

// PlayerCount returns the number of actors in the world
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.ActorCount()
}

// Status reports the world for /api/status. The leaderboard is the last
// broadcast one; reading it does not advance the throttle.
func (g *Game) Status() StatusSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	board := g.world.CurrentLeaderboard()
	if board == nil {
		board = []game.LeaderboardEntry{}
	}
	return StatusSnapshot{
		Tick:        g.world.Tick(),
		Uptime:      g.world.Clock(),
		Players:     g.world.ActorCount(),
		MaxPlayers:  g.world.Config().MaxActors,
		Obstacles:   len(g.world.Obstacles()),
		Leaderboard: board,
	}
}

func (g *Game) encodeState() ([]byte, bool) {
	data, err := msgpack.Marshal(g.world.Snapshot())
	if err != nil {
		log.Printf("marshal state: %v", err)
		return nil, false
	}
	return data, true
}

// broadcastState sends the current snapshot to every client
func (g *Game) broadcastState() {
	data, ok := g.encodeState()
	if !ok {
		return
	}
	for _, c := range g.clients {
		c.SendBinary(data)
	}
}

// broadcastBoard sends the throttled leaderboard to every client
func (g *Game) broadcastBoard() {
	board, changed := g.world.Leaderboard()
	g.broadcastMsg(Envelope{T: MsgBoard, Data: boardMsg(board, changed)})
}

// broadcastMsg sends a message to every client
func (g *Game) broadcastMsg(msg Envelope) {
	for _, c := range g.clients {
		c.SendJSON(msg)
	}
}

func boardMsg(board []game.LeaderboardEntry, changed bool) BoardMsg {
	if board == nil {
		board = []game.LeaderboardEntry{}
	}
	return BoardMsg{Title: "ACTIVE PLAYERS", Scores: board, Changed: changed}
}
