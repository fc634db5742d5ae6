package websocket

import (
	"net/http"
	"strings"
	"time"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Handler serves the realtime endpoints on their own listener: auction rooms
// and the per-user notification stream.
type Handler struct {
	auctions    domain.AuctionStore
	users       domain.UserStore
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewHandler(auctions domain.AuctionStore, users domain.UserStore,
	connManager domain.ConnectionManager, log logger.Logger) *Handler {
	return &Handler{
		auctions:    auctions,
		users:       users,
		connManager: connManager,
		log:         log,
	}
}

// Router wires the websocket routes onto a mux router.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws/auctions/{auctionID}", h.HandleAuctionRoom)
	r.HandleFunc("/ws/notifications", h.HandleNotifications)
	return r
}

func (h *Handler) HandleAuctionRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	auctionID := vars["auctionID"]

	auction, car, err := h.auctions.GetAuction(r.Context(), auctionID)
	if err != nil {
		h.log.Error("Failed to find auction", "error", err, "auction_id", auctionID)
		http.Error(w, "auction not found", http.StatusNotFound)
		return
	}

	user, userErr := h.resolveUser(r)

	// Unapproved cars are invisible to everyone but admins, same as the API.
	if !car.IsApproved && (userErr != nil || !user.Roles.Has(domain.RoleAdmin)) {
		http.Error(w, "auction not found", http.StatusNotFound)
		return
	}

	if auction.Ended(time.Now()) {
		h.log.Info("Rejected connection, auction has ended", "auction_id", auctionID)
		http.Error(w, "auction has already ended", http.StatusForbidden)
		return
	}

	if userErr != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	h.openConnection(w, r, user.ID, auctionRoom(auctionID))
}

func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	user, err := h.resolveUser(r)
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	h.openConnection(w, r, user.ID, "inbox:"+user.ID)
}

func (h *Handler) openConnection(w http.ResponseWriter, r *http.Request, userID, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := NewWSConnection(conn, userID, room, h.log)

	if err := h.connManager.RegisterConnection(userID, room, wsConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		conn.Close()
		return
	}

	go h.readLoop(wsConn, userID, room)
}

// readLoop keeps the connection alive and answers pings; all marketplace
// traffic is server-push, bids go through the HTTP API.
func (h *Handler) readLoop(conn *WSConnection, userID, room string) {
	defer func() {
		h.connManager.UnregisterConnection(userID, room)
		conn.Close()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msgType, ok := msg["type"].(string); ok && msgType == "ping" {
			conn.Send(map[string]string{"type": "pong"})
		}
	}
}

// resolveUser accepts the same bearer token as the API, or a token query
// parameter since browsers cannot set headers on websocket upgrades.
func (h *Handler) resolveUser(r *http.Request) (*domain.User, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	return h.users.GetUserByToken(r.Context(), token)
}
