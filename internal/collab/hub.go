package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vgc/vgc-sub008/internal/store"
)

// Room is one collaborative document: the clients editing it, their presence,
// and the authoritative complex.
type Room struct {
	docID    string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	state    *RoomState
}

func NewRoom(docID string, state *RoomState) *Room {
	return &Room{
		docID:    docID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		state:    state,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // docID -> room
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopped    chan struct{}

	store store.Store
}

func NewHub(st store.Store) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
		store:      st,
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			h.saveAll()
			return
		}
	}
}

// Stop persists every dirty room and shuts down the hub loop.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// roomFor returns the room for a document, loading its state from the store
// on first access.
func (h *Hub) roomFor(docID string) (*Room, error) {
	h.mu.RLock()
	room, ok := h.rooms[docID]
	h.mu.RUnlock()
	if ok {
		return room, nil
	}

	state, err := h.loadState(docID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[docID]; ok {
		return room, nil
	}
	room = NewRoom(docID, state)
	h.rooms[docID] = room
	return room, nil
}

func (h *Hub) loadState(docID string) (*RoomState, error) {
	snap, err := h.store.LoadSnapshot(context.Background(), docID)
	if errors.Is(err, store.ErrNoSnapshot) {
		return NewRoomState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", docID, err)
	}
	state, err := LoadRoomState(snap.Payload)
	if err != nil {
		return nil, fmt.Errorf("replay document %s: %w", docID, err)
	}
	return state, nil
}

func (h *Hub) addClient(client *Client) {
	room, err := h.roomFor(client.DocID)
	if err != nil {
		slog.Error("open room", "doc", client.DocID, "error", err)
		client.SendError("document unavailable")
		close(client.send)
		return
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Welcome with the current sequence, then the full document, then
	// everyone else's presence.
	welcome, _ := json.Marshal(WelcomePayload{
		ClientID:  client.ClientID,
		SessionID: client.SessionID,
		DocID:     client.DocID,
		ServerSeq: room.state.ServerSeq(),
	})
	client.Send(&Message{Type: TypeWelcome, Payload: welcome})

	syncPayload, _ := json.Marshal(room.state.SyncPayload())
	client.Send(&Message{Type: TypeDocSync, Payload: syncPayload})

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		SessionID:   client.SessionID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.DocID, &Message{
		Type:      TypePresenceJoin,
		SessionID: client.SessionID,
		Payload:   joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "session", client.SessionID, "doc", client.DocID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.SessionID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DocID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
	} else {
		leavePayload, _ := json.Marshal(PresenceLeavePayload{SessionID: client.SessionID})
		h.broadcastToRoom(client.DocID, &Message{
			Type:      TypePresenceLeave,
			SessionID: client.SessionID,
			Payload:   leavePayload,
		}, "")
	}

	slog.Info("client left", "session", client.SessionID, "doc", client.DocID)
}

func (h *Hub) saveRoom(room *Room) {
	if !room.state.Dirty() {
		return
	}
	payload, seq, err := room.state.SnapshotPayload()
	if err != nil {
		slog.Error("snapshot document", "doc", room.docID, "error", err)
		return
	}
	if err := h.store.SaveSnapshot(context.Background(), room.docID, seq, payload); err != nil {
		slog.Error("save document", "doc", room.docID, "error", err)
		return
	}
	room.state.Flush()
	slog.Info("document saved", "doc", room.docID, "seq", seq)
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		h.saveRoom(room)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "session", sender.SessionID)
	}
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OpSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err, "session", sender.SessionID)
		sender.SendError("invalid op payload")
		return
	}
	op := submit.Operation
	op.Timestamp = ServerTimestamp()

	h.mu.RLock()
	room, ok := h.rooms[sender.DocID]
	h.mu.RUnlock()
	if !ok {
		sender.SendError("room closed")
		return
	}

	result, err := room.state.Apply(op)
	if err != nil {
		nack, _ := json.Marshal(OpNackPayload{OperationID: op.ID, Reason: err.Error()})
		sender.Send(&Message{Type: TypeOpNack, Payload: nack})
		slog.Debug("op rejected", "op", op.Type, "session", sender.SessionID, "error", err)
		return
	}

	ack, _ := json.Marshal(OpAckPayload{
		OperationID:  op.ID,
		ServerSeq:    result.ServerSeq,
		CreatedNodes: result.Created,
		KeptNodes:    result.Kept,
	})
	sender.Send(&Message{Type: TypeOpAck, Seq: result.ServerSeq, Payload: ack})

	diffPayload, err := json.Marshal(result.Diff)
	if err != nil {
		slog.Error("marshal diff", "error", err)
		return
	}
	h.broadcastToRoom(sender.DocID, &Message{
		Type:      TypeDiffBroadcast,
		SessionID: sender.SessionID,
		Seq:       result.ServerSeq,
		Payload:   diffPayload,
	}, "")
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.DocID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.SessionID, &presence)

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.DocID, &Message{
		Type:      TypePresenceUpdate,
		SessionID: sender.SessionID,
		Payload:   outPayload,
	}, sender.ClientID)
}

func (h *Hub) broadcastToRoom(docID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[docID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
