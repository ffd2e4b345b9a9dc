package network

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection. Its role is tracked by the hub; the
// pumps only move bytes.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	Send chan []byte
}

// ServeWs upgrades an HTTP request and hands the connection to the hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{hub: hub, conn: conn, Send: make(chan []byte, 256)}
	hub.Register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		cmd, err := DecodeCommand(message)
		if err != nil {
			// Malformed frames are answered and swallowed; the
			// connection stays open.
			log.Debug().Err(err).Msg("dropping malformed message")
			c.enqueue(encodeError("malformed message"))
			continue
		}
		c.hub.Inbox <- inbound{client: c, cmd: cmd}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.Send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// enqueue drops the frame if the client's buffer is full; a slow consumer
// must not stall the event loop.
func (c *Client) enqueue(message []byte) {
	select {
	case c.Send <- message:
	default:
	}
}
