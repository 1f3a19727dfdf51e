package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"battlescore/metrics"
	"battlescore/service"
	"battlescore/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

type WebsocketController struct {
	eventService    *service.EventService
	standingService *service.StandingService
	mu              sync.Mutex
	connections     map[int]map[*websocket.Conn]struct{}
	unsubscribes    map[int]func()
}

func NewWebsocketController(db *gorm.DB) *WebsocketController {
	return &WebsocketController{
		eventService:    service.NewEventService(),
		standingService: service.NewStandingService(db),
		connections:     make(map[int]map[*websocket.Conn]struct{}),
		unsubscribes:    make(map[int]func()),
	}
}

func setupWebsocketController(db *gorm.DB) []RouteInfo {
	e := NewWebsocketController(db)
	return []RouteInfo{
		{Method: "GET", Path: "/tournaments/:tournament_id/ws", HandlerFunc: e.WebSocketHandler},
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// allow any host origin to connect to the websocket
		return true
	},
}

// @id TournamentWebSocket
// @Description Websocket delivering live tournament updates. On connect the
// @Description client receives the current standings, then every event.
// @Tags tournament
// @Router /tournaments/{tournament_id}/ws [get]
// @Param tournament_id path int true "Tournament Id"
// @Success 200 {object} service.TournamentEvent
func (e *WebsocketController) WebSocketHandler(c *gin.Context) {
	tournamentId, err := strconv.Atoi(c.Param("tournament_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		http.NotFound(c.Writer, c.Request)
		return
	}
	defer conn.Close()

	// Send the current standings to the new subscriber
	standings, err := e.standingService.GetStandingsForTournament(tournamentId)
	if err == nil {
		snapshot := service.TournamentEvent{
			Type:         service.EventStandingsUpdated,
			TournamentId: tournamentId,
			Payload:      utils.Map(standings, toStandingResponse),
		}
		serialized, err := json.Marshal(snapshot)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, serialized); err != nil {
			return
		}
	}

	e.mu.Lock()
	if _, ok := e.connections[tournamentId]; !ok {
		e.connections[tournamentId] = make(map[*websocket.Conn]struct{})
		e.startBroadcaster(tournamentId)
	}
	e.connections[tournamentId][conn] = struct{}{}
	e.mu.Unlock()
	metrics.WebsocketConnectionsGauge.Inc()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			e.mu.Lock()
			delete(e.connections[tournamentId], conn)
			if len(e.connections[tournamentId]) == 0 {
				e.stopBroadcasterLocked(tournamentId)
			}
			e.mu.Unlock()
			metrics.WebsocketConnectionsGauge.Dec()
			return
		}
	}
}

// startBroadcaster fans tournament events out to every open connection. The
// caller holds e.mu. The goroutine exits when the event subscription is
// cancelled, which closes the channel.
func (e *WebsocketController) startBroadcaster(tournamentId int) {
	events, cancel := e.eventService.Subscribe(tournamentId)
	e.unsubscribes[tournamentId] = cancel
	go func() {
		for event := range events {
			serialized, err := json.Marshal(event)
			if err != nil {
				continue
			}
			e.mu.Lock()
			conns := e.connections[tournamentId]
			for conn := range conns {
				if err := conn.WriteMessage(websocket.TextMessage, serialized); err != nil {
					conn.Close()
					delete(conns, conn)
				}
			}
			if len(conns) == 0 {
				e.stopBroadcasterLocked(tournamentId)
			}
			e.mu.Unlock()
		}
	}()
}

// stopBroadcasterLocked releases the tournament's event subscription once the
// last connection is gone. The caller holds e.mu.
func (e *WebsocketController) stopBroadcasterLocked(tournamentId int) {
	delete(e.connections, tournamentId)
	if unsubscribe, ok := e.unsubscribes[tournamentId]; ok {
		delete(e.unsubscribes, tournamentId)
		unsubscribe()
	}
}
