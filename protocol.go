package main

import "encoding/json"

// Client -> Server message types
const (
	MsgQuickMatch   = "quickMatch"
	MsgCreateMatch  = "createMatch"
	MsgJoinMatch    = "joinMatch"
	MsgLeaveMatch   = "leaveMatch"
	MsgPlayerMove   = "playerMove"
	MsgPlayerShoot  = "playerShoot"
	MsgChangeWeapon = "changeWeapon"
	MsgPlayerReload = "playerReload"
	MsgPickupKit    = "pickupBloodKit"
	MsgRegister     = "register"
	MsgLogin        = "login"
	MsgAuth         = "auth"
	MsgProfile      = "profile"
)

// Server -> Client message types
const (
	MsgMatchUpdate  = "matchUpdate"
	MsgMatchCreated = "matchCreated"
	MsgMatchStart   = "matchStart"
	MsgGameState    = "gameState" // sent as msgpack binary, no envelope
	MsgPlayerShot   = "playerShot"
	MsgPlayerHit    = "playerHit"
	MsgPlayerKilled = "playerKilled"
	MsgKitPicked    = "healthKitPicked"
	MsgMatchEnd     = "matchEnd"
	MsgMatchError   = "matchError"
	MsgAuthOK       = "authOk"
	MsgProfileData  = "profileData"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// PlayerData identifies a player joining matchmaking
type PlayerData struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

// CreateMatchMsg requests a private match
type CreateMatchMsg struct {
	PlayerData PlayerData `json:"playerData"`
	MaxPlayers int        `json:"maxPlayers"`
}

// JoinMatchMsg requests joining a match by code
type JoinMatchMsg struct {
	MatchCode  string     `json:"matchCode"`
	PlayerData PlayerData `json:"playerData"`
}

// MoveMsg is a trusted position/orientation update
type MoveMsg struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// ShootMsg carries the shooter's aim
type ShootMsg struct {
	Angle float64 `json:"angle"`
}

// ChangeWeaponMsg selects the active weapon
type ChangeWeaponMsg struct {
	Weapon string `json:"weapon"`
}

// MatchSnapshot is the roster view broadcast on matchmaking changes
type MatchSnapshot struct {
	Code       string        `json:"code"`
	Players    []PlayerEntry `json:"players"`
	MaxPlayers int           `json:"maxPlayers"`
	Status     string        `json:"status"`
}

// PlayerEntry is one roster member in a MatchSnapshot
type PlayerEntry struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

// MatchCreatedMsg replies to createMatch
type MatchCreatedMsg struct {
	Match MatchSnapshot `json:"match"`
	Code  string        `json:"code"`
}

// MatchStartMsg announces the simulation is running
type MatchStartMsg struct {
	MatchCode string `json:"matchCode"`
}

// PlayerState is broadcast per player each tick
type PlayerState struct {
	ID        string  `json:"id" msgpack:"id"`
	PlayerID  string  `json:"pid" msgpack:"pid"`
	Name      string  `json:"n" msgpack:"n"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	Rotation  float64 `json:"r" msgpack:"r"`
	Health    int     `json:"hp" msgpack:"hp"`
	MaxHealth int     `json:"mhp" msgpack:"mhp"`
	Weapon    string  `json:"w" msgpack:"w"`
	Ammo      int     `json:"am" msgpack:"am"`
	Reloading bool    `json:"rl,omitempty" msgpack:"rl"`
	Kills     int     `json:"k" msgpack:"k"`
	Alive     bool    `json:"a" msgpack:"a"`
}

// KitState is broadcast per health kit
type KitState struct {
	ID       string  `json:"id" msgpack:"id"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Consumed bool    `json:"c" msgpack:"c"`
}

// GameState is the full authoritative snapshot broadcast each tick
type GameState struct {
	Players []PlayerState `json:"p" msgpack:"p"`
	Kits    []KitState    `json:"hk" msgpack:"hk"`
	Tick    uint64        `json:"tick" msgpack:"tick"`
}

// HitResult describes a resolved shot that connected
type HitResult struct {
	TargetID   string `json:"targetId"`
	Damage     int    `json:"damage"`
	Health     int    `json:"health"`
	Killed     bool   `json:"killed"`
	KillerID   string `json:"killerId"`
	KillerName string `json:"killerName"`
	VictimID   string `json:"victimId"`
	VictimName string `json:"victimName"`
}

// PlayerHitMsg notifies the room a player took damage
type PlayerHitMsg struct {
	TargetID string `json:"targetId"`
}

// PlayerKilledMsg notifies the room of a kill
type PlayerKilledMsg struct {
	KillerID   string `json:"killerId"`
	KillerName string `json:"killerName"`
	VictimID   string `json:"victimId"`
	VictimName string `json:"victimName"`
}

// KitPickedMsg notifies the room a health kit was consumed
type KitPickedMsg struct {
	PlayerID string `json:"playerId"`
	KitID    string `json:"kitId"`
	Health   int    `json:"health"`
}

// PlayerResult is one line of the final standings
type PlayerResult struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	Winner   bool   `json:"winner"`
}

// MatchEndMsg carries the winner and final standings
type MatchEndMsg struct {
	Winner  *PlayerEntry   `json:"winner"`
	Results []PlayerResult `json:"results"`
}

// ErrorMsg sends a matchmaking error to the originating connection
type ErrorMsg struct {
	Error string `json:"error"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates an account
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg resumes a session from a stored token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"playerId"`
}

// ProfileDataMsg returns persistent stats for the logged-in player
type ProfileDataMsg struct {
	Username string  `json:"username"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Playtime float64 `json:"playtime"`
}

// MatchInfo is the public summary served by the /matches endpoint
type MatchInfo struct {
	Code       string `json:"code"`
	Status     string `json:"status"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Private    bool   `json:"private"`
}
