package routes

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"eshop/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production
	},
}

// Connected clients map with mutex for thread safety
var clients = make(map[*websocket.Conn]bool)
var broadcast = make(chan []byte, 100) // Buffered channel to prevent blocking
var mutex = &sync.Mutex{}
var broadcastOnce sync.Once

type productEvent struct {
	Action  string         `json:"action"`
	Product models.Product `json:"product"`
}

// publishProductEvent pushes a change notification to connected clients.
// Drops the event when the channel is full rather than stalling a request.
func publishProductEvent(action string, product models.Product) {
	payload, err := json.Marshal(productEvent{Action: action, Product: product})
	if err != nil {
		log.Printf("failed to marshal product event: %v", err)
		return
	}
	select {
	case broadcast <- payload:
	default:
	}
}

func startBroadcast() {
	broadcastOnce.Do(func() {
		go func() {
			for message := range broadcast {
				mutex.Lock()
				for client := range clients {
					err := client.WriteMessage(websocket.TextMessage, message)
					if err != nil {
						log.Printf("WebSocket write error: %v", err)
						client.Close()
						delete(clients, client)
					}
				}
				mutex.Unlock()
			}
		}()
	})
}

var eventsHandler fiber.Handler = adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Error upgrading:", err)
		return
	}
	defer conn.Close()

	mutex.Lock()
	clients[conn] = true
	mutex.Unlock()
	log.Println("Client connected:", conn.RemoteAddr())

	// Clients are listen-only; the read loop just detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			mutex.Lock()
			delete(clients, conn)
			mutex.Unlock()
			log.Println("Client disconnected:", conn.RemoteAddr())
			break
		}
	}
})
