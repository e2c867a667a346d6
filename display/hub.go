package display

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/utils"
)

// Event types pushed to connected canteen dashboards.
const (
	EventOrderUpdate   = "order_update"
	EventOrderReady    = "order_ready"
	EventOrderPickedUp = "order_picked_up"
	EventTopupSuccess  = "topup_success"
	EventMenuUpdate    = "menu_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected display client (manager, admin) keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops a connection and closes it.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate pushes an order's new state to all clients.
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastOrderReady signals that an order may be picked up.
func BroadcastOrderReady(order models.Order) {
	broadcast(Message{
		Event: EventOrderReady,
		Data:  order,
	})
}

// BroadcastOrderPickedUp signals a completed QR pickup.
func BroadcastOrderPickedUp(order models.Order) {
	broadcast(Message{
		Event: EventOrderPickedUp,
		Data:  order,
	})
}

// BroadcastTopupSuccess signals a confirmed gateway top-up.
func BroadcastTopupSuccess(topup models.TopupPayment) {
	broadcast(Message{
		Event: EventTopupSuccess,
		Data:  topup,
	})
}

// SendReadyOrders sends the current pickup queue to one client, so a display
// that just connected does not start blank.
func SendReadyOrders(conn *websocket.Conn, orders []models.Order) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for _, order := range orders {
		data, err := json.Marshal(Message{Event: EventOrderReady, Data: order})
		if err != nil {
			utils.ErrorLogger.Printf("Error marshaling display message: %v", err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending ready orders: %v", err)
			return
		}
	}
}

// BroadcastMenuUpdate signals a menu change (availability, stock, price).
func BroadcastMenuUpdate(item models.MenuItem) {
	broadcast(Message{
		Event: EventMenuUpdate,
		Data:  item,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling display message: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending display message to %s client: %v", role, err)
		}
	}
}
