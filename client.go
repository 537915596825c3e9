package main

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 60
	maxUsernameLen    = 16
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	connID     string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Auth state
	authPlayerID int64  // 0 = unauthenticated/guest
	authUsername string // "" = unauthenticated
	guestName    string // assigned on first nameless matchmaking request
}

// NewClient creates a new Client with a fresh connection id
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		connID:     GenerateConnID(),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(err error) {
	c.SendJSON(Envelope{T: MsgMatchError, Data: ErrorMsg{Error: err.Error()}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgQuickMatch:
		c.handleQuickMatch(env.D)
	case MsgCreateMatch:
		c.handleCreateMatch(env.D)
	case MsgJoinMatch:
		c.handleJoinMatch(env.D)
	case MsgLeaveMatch:
		c.handleLeaveMatch()
	case MsgPlayerMove:
		c.handlePlayerMove(env.D)
	case MsgPlayerShoot:
		c.handlePlayerShoot(env.D)
	case MsgChangeWeapon:
		c.handleChangeWeapon(env.D)
	case MsgPlayerReload:
		c.handlePlayerReload()
	case MsgPickupKit:
		c.handlePickupKit()
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	}
}

// playerData normalizes the client-sent identity, trusting the account
// username once the connection is authenticated. Nameless guests get a
// generated name that sticks for the life of the connection.
func (c *Client) playerData(pd PlayerData) PlayerData {
	if c.authUsername != "" {
		pd.Username = c.authUsername
	} else if pd.Username == "" {
		if c.guestName == "" {
			c.guestName = GenerateGuestName()
		}
		pd.Username = c.guestName
	}
	if len(pd.Username) > maxUsernameLen {
		pd.Username = pd.Username[:maxUsernameLen]
	}
	return pd
}

func (c *Client) handleQuickMatch(data json.RawMessage) {
	var pd PlayerData
	if err := json.Unmarshal(data, &pd); err != nil {
		c.sendError(ErrInvalidPlayerData)
		return
	}

	res, err := c.hub.manager.FindQuickMatch(c.connID, c.playerData(pd), defaultMatchPlayers)
	if err != nil {
		c.sendError(err)
		return
	}

	c.hub.BroadcastToMatch(res.Match.Code, Envelope{T: MsgMatchUpdate, Data: res.Snapshot})
	if res.Started {
		c.hub.loops.Start(res.Match.Code)
		c.hub.BroadcastToMatch(res.Match.Code, Envelope{T: MsgMatchStart, Data: MatchStartMsg{MatchCode: res.Match.Code}})
	}
}

func (c *Client) handleCreateMatch(data json.RawMessage) {
	var msg CreateMatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrInvalidPlayerData)
		return
	}

	res, err := c.hub.manager.CreatePrivateMatch(c.connID, c.playerData(msg.PlayerData), msg.MaxPlayers)
	if err != nil {
		c.sendError(err)
		return
	}
	c.SendJSON(Envelope{T: MsgMatchCreated, Data: MatchCreatedMsg{Match: res.Snapshot, Code: res.Match.Code}})
}

func (c *Client) handleJoinMatch(data json.RawMessage) {
	var msg JoinMatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrInvalidJoinData)
		return
	}

	res, err := c.hub.manager.JoinMatch(msg.MatchCode, c.connID, c.playerData(msg.PlayerData))
	if err != nil {
		c.sendError(err)
		return
	}

	code := res.Match.Code
	c.hub.BroadcastToMatch(code, Envelope{T: MsgMatchUpdate, Data: res.Snapshot})

	switch {
	case res.Started:
		c.hub.loops.Start(code)
		c.hub.BroadcastToMatch(code, Envelope{T: MsgMatchStart, Data: MatchStartMsg{MatchCode: code}})
	case res.Snapshot.Status == string(StatusActive):
		// Late join or rejoin into a running match: make sure the loop is
		// up and (re)send matchStart to the joiner only.
		c.hub.loops.Start(code)
		c.SendJSON(Envelope{T: MsgMatchStart, Data: MatchStartMsg{MatchCode: code}})
	}
}

func (c *Client) handleLeaveMatch() {
	c.hub.handleDisconnect(c.connID)
}

func (c *Client) handlePlayerMove(data json.RawMessage) {
	m := c.hub.manager.GetPlayerMatch(c.connID)
	if m == nil || m.Game == nil {
		return
	}
	var move MoveMsg
	if err := json.Unmarshal(data, &move); err != nil {
		return
	}
	m.Game.UpdatePlayer(c.connID, move)
}

func (c *Client) handlePlayerShoot(data json.RawMessage) {
	m := c.hub.manager.GetPlayerMatch(c.connID)
	if m == nil || m.Game == nil {
		return
	}
	var shot ShootMsg
	if err := json.Unmarshal(data, &shot); err != nil {
		return
	}
	result := m.Game.HandleShoot(c.connID, shot)
	if result == nil {
		return
	}
	c.hub.BroadcastToMatch(m.Code, Envelope{T: MsgPlayerShot, Data: result})
	if result.Killed {
		c.hub.BroadcastToMatch(m.Code, Envelope{T: MsgPlayerKilled, Data: PlayerKilledMsg{
			KillerID:   result.KillerID,
			KillerName: result.KillerName,
			VictimID:   result.VictimID,
			VictimName: result.VictimName,
		}})
	}
}

func (c *Client) handleChangeWeapon(data json.RawMessage) {
	m := c.hub.manager.GetPlayerMatch(c.connID)
	if m == nil || m.Game == nil {
		return
	}
	var msg ChangeWeaponMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	m.Game.ChangeWeapon(c.connID, msg.Weapon)
}

func (c *Client) handlePlayerReload() {
	m := c.hub.manager.GetPlayerMatch(c.connID)
	if m == nil || m.Game == nil {
		return
	}
	m.Game.HandleReload(c.connID)
}

func (c *Client) handlePickupKit() {
	m := c.hub.manager.GetPlayerMatch(c.connID)
	if m == nil || m.Game == nil {
		return
	}
	result := m.Game.PickupHealthKit(c.connID)
	if result == nil {
		return
	}
	c.hub.BroadcastToMatch(m.Code, Envelope{T: MsgKitPicked, Data: result})
	if data, err := EncodeGameState(m.Game.State()); err == nil {
		c.hub.StateToConns(c.hub.manager.RosterConns(m.Code), data)
	}
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err)
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err)
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError(errors.New("invalid token"))
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: msg.Token, Username: username, PlayerID: id}})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.sendError(errors.New("not authenticated"))
		return
	}
	stats, err := c.hub.db.GetStats(c.authPlayerID)
	if err != nil || stats == nil {
		c.sendError(errors.New("profile not found"))
		return
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username: c.authUsername,
		Kills:    stats.Kills,
		Deaths:   stats.Deaths,
		Wins:     stats.Wins,
		Losses:   stats.Losses,
		Playtime: stats.Playtime,
	}})
}
