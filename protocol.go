package main

import (
	"encoding/json"

	"arena-server/game"
)

// Client -> Server message types
const (
	MsgLogin    = "login"
	MsgInput    = "input"
	MsgViewport = "viewport"
	MsgRestart  = "restart"
	MsgGetState = "state" // ask for an immediate snapshot
)

// Server -> Client message types
const (
	MsgConstants     = "constants"
	MsgState         = "state" // sent as a binary msgpack frame
	MsgLoginSuccess  = "loginSuccess"
	MsgLoginFailed   = "loginFailed"
	MsgRestartFailed = "restartFailed"
	MsgEvents        = "events"
	MsgDeath         = "death"
	MsgHighScores    = "highScores"
	MsgBoard         = "board"
	MsgError         = "error"
)

// inputFrameTag marks the compact binary input frame: [0x01, flags]
const inputFrameTag = 0x01

// Input flag bits in the binary input frame
const (
	inputLeft = 1 << iota
	inputRight
	inputUp
	inputShoot
	inputShield
	inputBoost
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; D is decoded once the type is known
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// LoginMsg is sent when a player wants to enter the arena
type LoginMsg struct {
	Name   string `json:"name"`
	Wallet string `json:"ethereumAddress"`
}

// RestartMsg asks to respawn after death (or join, if not in the world)
type RestartMsg struct {
	Wallet string `json:"ethereumAddress"`
}

// ViewportMsg reports the client's screen size
type ViewportMsg struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// StatusMsg carries a human-readable result for login/restart
type StatusMsg struct {
	Message string `json:"message"`
}

// DeathMsg tells a player their run is over
type DeathMsg struct {
	FinalScore int            `json:"finalScore"`
	HighScores HighScoreTable `json:"highScores"`
}

// BoardMsg is the live leaderboard of active players
type BoardMsg struct {
	Title   string                  `json:"title"`
	Scores  []game.LeaderboardEntry `json:"scores"`
	Changed bool                    `json:"changed"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// StatusSnapshot is the body of GET /api/status
type StatusSnapshot struct {
	Tick        uint64                  `json:"tick"`
	Uptime      float64                 `json:"uptime"`
	Players     int                     `json:"players"`
	MaxPlayers  int                     `json:"maxPlayers"`
	Connections int                     `json:"connections"`
	Obstacles   int                     `json:"obstacles"`
	Leaderboard []game.LeaderboardEntry `json:"leaderboard"`
}

// ConstantsMsg is the tuning a client needs to render and predict
type ConstantsMsg struct {
	WorldWidth       float64        `json:"worldWidth"`
	WorldHeight      float64        `json:"worldHeight"`
	TickRate         int            `json:"tickRate"`
	ActorRadius      float64        `json:"playerRadius"`
	ProjectileRadius float64        `json:"bulletRadius"`
	LargeRadius      float64        `json:"largeRadius"`
	MediumRadius     float64        `json:"mediumRadius"`
	SmallRadius      float64        `json:"smallRadius"`
	BonusRadius      float64        `json:"bonusRadius"`
	ShieldRadius     float64        `json:"shieldRadius"`
	ShieldDuration   float64        `json:"shieldDuration"`
	ShieldCooldown   float64        `json:"shieldCooldown"`
	BoostDuration    float64        `json:"boostDuration"`
	BoostCooldown    float64        `json:"boostCooldown"`
	InitialLives     int            `json:"lives"`
	MaxPlayers       int            `json:"maxPlayers"`
	BonusRewards     map[string]int `json:"bonusRewards"`
}

func constantsFrom(cfg game.Config) ConstantsMsg {
	rewards := make(map[string]int, len(game.Variants))
	for _, v := range game.Variants {
		rewards[string(v)] = cfg.BonusReward(v)
	}
	return ConstantsMsg{
		WorldWidth:       cfg.WorldWidth,
		WorldHeight:      cfg.WorldHeight,
		TickRate:         cfg.TickRate,
		ActorRadius:      cfg.ActorRadius,
		ProjectileRadius: cfg.ProjectileRadius,
		LargeRadius:      cfg.LargeRadius,
		MediumRadius:     cfg.MediumRadius,
		SmallRadius:      cfg.SmallRadius,
		BonusRadius:      cfg.BonusRadius,
		ShieldRadius:     cfg.ShieldRadius,
		ShieldDuration:   cfg.ShieldDuration,
		ShieldCooldown:   cfg.ShieldCooldown,
		BoostDuration:    cfg.BoostDuration,
		BoostCooldown:    cfg.BoostCooldown,
		InitialLives:     cfg.InitialLives,
		MaxPlayers:       cfg.MaxActors,
		BonusRewards:     rewards,
	}
}

// decodeInputFrame unpacks the binary [0x01, flags] input frame
func decodeInputFrame(msg []byte) (game.Input, bool) {
	if len(msg) != 2 || msg[0] != inputFrameTag {
		return game.Input{}, false
	}
	f := msg[1]
	return game.Input{
		Left:   f&inputLeft != 0,
		Right:  f&inputRight != 0,
		Up:     f&inputUp != 0,
		Shoot:  f&inputShoot != 0,
		Shield: f&inputShield != 0,
		Boost:  f&inputBoost != 0,
	}, true
}
