package main

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"arena-server/game"
)

const testWallet = "0x1234567890abcdef1234567890abcdef12345678"

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	binary   [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

// find returns the last envelope of the given type
func (m *mockBroadcaster) find(typ string) (Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		if env, ok := m.messages[i].(Envelope); ok && env.T == typ {
			return env, true
		}
	}
	return Envelope{}, false
}

func (m *mockBroadcaster) lastState(t *testing.T) game.WorldState {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.binary) == 0 {
		t.Fatal("no state frame sent")
	}
	var s game.WorldState
	if err := msgpack.Unmarshal(m.binary[len(m.binary)-1], &s); err != nil {
		t.Fatalf("msgpack unmarshal: %v", err)
	}
	return s
}

func (m *mockBroadcaster) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.binary = nil
}

func newTestGame(t *testing.T, mutate func(*game.Config)) *Game {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.LargeObstacleCount = 0
	cfg.EjectBonusChance = 0
	if mutate != nil {
		mutate(&cfg)
	}
	scores, err := NewHighScores(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(scores.Stop)
	return NewGame(game.NewWorld(cfg, 1), scores)
}

func connect(g *Game, id string) *mockBroadcaster {
	m := &mockBroadcaster{}
	g.Connect(id, m)
	return m
}

// killActor makes the next tick fatal for id
func killActor(t *testing.T, g *Game, id string, score int) {
	t.Helper()
	a, ok := g.world.Actor(id)
	if !ok {
		t.Fatalf("actor %s not in world", id)
	}
	a.Lives = 1
	a.Score = score
	g.world.AddObstacle(&game.Obstacle{Pos: a.Pos, Radius: 40, Tier: game.TierMedium})
}

func TestGameConnect(t *testing.T) {
	g := newTestGame(t, nil)
	m := connect(g, "c1")

	env, ok := m.find(MsgConstants)
	if !ok {
		t.Fatal("expected constants on connect")
	}
	c := env.Data.(ConstantsMsg)
	if c.WorldWidth != 4000 || c.BonusRewards["D"] != 5000 {
		t.Errorf("unexpected constants: %+v", c)
	}
	if s := m.lastState(t); len(s.Actors) != 0 {
		t.Errorf("spectator should not be in the world, got %d actors", len(s.Actors))
	}
}

func TestGameLogin(t *testing.T) {
	g := newTestGame(t, nil)
	m := connect(g, "c1")

	g.Login("c1", LoginMsg{Name: "   ", Wallet: testWallet})

	if _, ok := m.find(MsgLoginSuccess); !ok {
		t.Fatal("expected loginSuccess")
	}
	if _, ok := m.find(MsgHighScores); !ok {
		t.Error("expected high scores after login")
	}
	if _, ok := m.find(MsgBoard); !ok {
		t.Error("expected board broadcast after login")
	}
	if g.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", g.PlayerCount())
	}
	a, _ := g.world.Actor("c1")
	if a.Name != defaultName || a.Wallet != testWallet {
		t.Errorf("unexpected actor: name=%q wallet=%q", a.Name, a.Wallet)
	}

	g.Login("c1", LoginMsg{Name: "Again"})
	if _, ok := m.find(MsgLoginFailed); !ok {
		t.Error("second login should fail")
	}
}

func TestGameLoginFull(t *testing.T) {
	g := newTestGame(t, func(c *game.Config) { c.MaxActors = 1 })
	connect(g, "c1")
	m2 := connect(g, "c2")

	g.Login("c1", LoginMsg{Name: "One"})
	g.Login("c2", LoginMsg{Name: "Two"})

	env, ok := m2.find(MsgLoginFailed)
	if !ok {
		t.Fatal("expected loginFailed when full")
	}
	if msg := env.Data.(StatusMsg).Message; msg != "Server is full. Please try again later." {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestGameTickBroadcastsState(t *testing.T) {
	g := newTestGame(t, nil)
	m1 := connect(g, "c1")
	m2 := connect(g, "c2")
	g.Login("c1", LoginMsg{Name: "Ace"})
	m2.reset()

	g.tick(0.025)

	s := m2.lastState(t)
	if s.Tick != 1 {
		t.Errorf("expected tick 1, got %d", s.Tick)
	}
	if len(s.Actors) != 1 || s.Actors[0].Name != "Ace" {
		t.Errorf("expected Ace in state, got %+v", s.Actors)
	}
	if len(m1.binary) < 2 {
		t.Error("every client should receive the snapshot")
	}
}

func TestGameDeath(t *testing.T) {
	g := newTestGame(t, nil)
	m := connect(g, "c1")
	g.Login("c1", LoginMsg{Name: "Ace", Wallet: testWallet})
	killActor(t, g, "c1", 1234)

	g.tick(0.025)

	env, ok := m.find(MsgDeath)
	if !ok {
		t.Fatal("expected death message")
	}
	d := env.Data.(DeathMsg)
	if d.FinalScore != 1234 {
		t.Errorf("expected final score 1234, got %d", d.FinalScore)
	}
	if len(d.HighScores.Scores) != 1 || d.HighScores.Scores[0].Score != 1234 {
		t.Errorf("death message should carry the updated table, got %+v", d.HighScores.Scores)
	}
	if _, ok := m.find(MsgHighScores); !ok {
		t.Error("updated high scores should be broadcast")
	}
	if s := m.lastState(t); len(s.Actors) != 0 {
		t.Error("dead actor should be left out of the snapshot")
	}

	// Disconnecting after death must not submit again
	g.Disconnect("c1")
	if n := len(g.scores.Table().Scores); n != 1 {
		t.Errorf("expected 1 high score, got %d", n)
	}
}

func TestGameRestart(t *testing.T) {
	g := newTestGame(t, nil)
	m := connect(g, "c1")
	g.Login("c1", LoginMsg{Name: "Ace"})

	g.Restart("c1", RestartMsg{Wallet: testWallet})
	if _, ok := m.find(MsgRestartFailed); !ok {
		t.Error("restart while alive should fail")
	}

	killActor(t, g, "c1", 10)
	g.tick(0.025)
	if _, ok := m.find(MsgDeath); !ok {
		t.Fatal("expected death before restart")
	}
	m.reset()

	g.Restart("c1", RestartMsg{Wallet: testWallet})
	a, _ := g.world.Actor("c1")
	if a.Dead || a.Wallet != testWallet || a.Name != "Ace" {
		t.Errorf("expected respawned actor, got dead=%v wallet=%q name=%q", a.Dead, a.Wallet, a.Name)
	}
	if len(m.binary) == 0 {
		t.Error("restart should send a snapshot")
	}
}

func TestGameRestartJoinsSpectator(t *testing.T) {
	g := newTestGame(t, nil)
	connect(g, "c1")

	g.Restart("c1", RestartMsg{})

	a, ok := g.world.Actor("c1")
	if !ok || a.Name != defaultName {
		t.Error("restart without an actor should join as Player")
	}
}

func TestGameDisconnectSubmitsLiveRun(t *testing.T) {
	g := newTestGame(t, nil)
	connect(g, "c1")
	m2 := connect(g, "c2")
	g.Login("c1", LoginMsg{Name: "Ace", Wallet: testWallet})
	a, _ := g.world.Actor("c1")
	a.Score = 500

	g.Disconnect("c1")

	if g.PlayerCount() != 0 {
		t.Error("actor should leave the world")
	}
	table := g.scores.Table()
	if len(table.Scores) != 1 || table.Scores[0].Score != 500 || table.Scores[0].Name != "Ace" {
		t.Errorf("expected live run submitted, got %+v", table.Scores)
	}
	if _, ok := m2.find(MsgHighScores); !ok {
		t.Error("others should receive the new table")
	}
}

func TestGameEventsDelivered(t *testing.T) {
	g := newTestGame(t, nil)
	m := connect(g, "c1")
	other := connect(g, "c2")
	g.Login("c1", LoginMsg{Name: "Ace"})

	a, _ := g.world.Actor("c1")
	target := game.Vec2{X: a.Pos.X + 300, Y: a.Pos.Y}
	if target.X >= 4000 {
		target.X -= 600
	}
	g.world.AddObstacle(&game.Obstacle{Pos: target, Radius: 20, Tier: game.TierSmall})
	a.Projectiles = append(a.Projectiles, &game.Projectile{OwnerID: "c1", Pos: target, Radius: 2, Life: 1})

	g.tick(0.025)

	env, ok := m.find(MsgEvents)
	if !ok {
		t.Fatal("expected events for the shooter")
	}
	events := env.Data.([]game.Event)
	if len(events) != 1 || events[0].Kind != game.EventObstacleDestroyed || events[0].Points != 100 {
		t.Errorf("unexpected events: %+v", events)
	}
	if _, ok := other.find(MsgEvents); ok {
		t.Error("events go only to their recipient")
	}
	if a.Score != 100 {
		t.Errorf("expected score 100, got %d", a.Score)
	}
}

func TestGameInputAndViewport(t *testing.T) {
	g := newTestGame(t, nil)
	connect(g, "c1")
	g.Login("c1", LoginMsg{Name: "Ace"})

	g.HandleInput("c1", game.Input{Up: true, Shield: true})
	g.Resize("c1", 1920, 1080)

	a, _ := g.world.Actor("c1")
	if !a.Input.Up || !a.Shield.Active {
		t.Error("input should be applied")
	}
	if a.Viewport.Width != 1920 || a.Viewport.Height != 1080 {
		t.Errorf("unexpected viewport %+v", a.Viewport)
	}
}

func TestGameResetWorld(t *testing.T) {
	g := newTestGame(t, nil)
	m := connect(g, "c1")
	g.Login("c1", LoginMsg{Name: "Ace"})
	m.reset()

	g.ResetWorld()

	if g.PlayerCount() != 0 {
		t.Error("reset should remove every actor")
	}
	if len(m.binary) == 0 {
		t.Error("reset should broadcast the new state")
	}
}

func TestSafeStepRecoversPanic(t *testing.T) {
	g := &Game{clients: make(map[string]Broadcaster)}
	if _, ok := g.safeStep(0.025); ok {
		t.Error("a panicking step should report failure")
	}
}

func TestGameRun(t *testing.T) {
	g := newTestGame(t, nil)
	m := connect(g, "c1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		g.mu.Lock()
		tick := g.world.Tick()
		g.mu.Unlock()
		if tick >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("game loop did not tick, at %d", tick)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return after cancel")
	}

	m.mu.Lock()
	frames := len(m.binary)
	m.mu.Unlock()
	if frames < 3 {
		t.Errorf("expected a frame per tick, got %d", frames)
	}
}

func TestBoardMsgJSON(t *testing.T) {
	raw, err := json.Marshal(boardMsg(nil, false))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"title":"ACTIVE PLAYERS","scores":[],"changed":false}` {
		t.Errorf("unexpected board json %s", raw)
	}
}

func TestGameStatus(t *testing.T) {
	g := newTestGame(t, nil)
	connect(g, "c1")
	g.Login("c1", LoginMsg{Name: "Ace"})
	g.tick(0.025)

	s := g.Status()
	if s.Players != 1 || s.MaxPlayers != 16 || s.Tick != 1 {
		t.Errorf("unexpected status %+v", s)
	}
	if len(s.Leaderboard) != 1 || s.Leaderboard[0].Name != "Ace" {
		t.Errorf("expected Ace on the board, got %+v", s.Leaderboard)
	}
}

func TestTickDelta(t *testing.T) {
	start := time.Now()
	tests := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"on budget", 25 * time.Millisecond, 0.025},
		{"late", 100 * time.Millisecond, 0.1},
		{"stall", 5 * time.Second, maxTickDelta},
	}
	for _, tt := range tests {
		if got := tickDelta(start, start.Add(tt.elapsed)); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
