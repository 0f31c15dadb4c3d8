package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// envelope mirrors the server's wire frame.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// send wraps data in an envelope and writes it as one text frame.
func send(c *websocket.Conn, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, frame)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:3001", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var env envelope
			if err := json.Unmarshal(message, &env); err != nil {
				log.Printf("Received invalid frame: %s", message)
				continue
			}
			log.Printf("<- RECV [%s]: %s", env.Event, env.Data)
		}
	}()

	room := "demo"
	if len(os.Args) > 1 {
		room = os.Args[1]
	}
	name := "guest"
	if len(os.Args) > 2 {
		name = os.Args[2]
	}

	log.Printf("Joining room %q as %q...", room, name)
	if err := send(c, "join-room", room); err != nil {
		log.Println("Write error:", err)
		return
	}
	if err := send(c, "check-room", map[string]string{"room": room, "username": name}); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Commands: 'turn <tile>', 'say <text>', 'restart', 'yes', 'no'")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			text = strings.TrimSpace(text)

			var err error
			switch {
			case strings.HasPrefix(text, "turn "):
				err = send(c, "pass-turn", map[string]any{
					"room":        room,
					"tileClicked": strings.TrimPrefix(text, "turn "),
				})
			case strings.HasPrefix(text, "say "):
				err = send(c, "send-message", map[string]any{
					"room": room,
					"message": map[string]string{
						"user":    name,
						"message": strings.TrimPrefix(text, "say "),
					},
				})
			case text == "restart":
				err = send(c, "check-restart", room)
			case text == "yes" || text == "no":
				err = send(c, "relay-restart", map[string]any{
					"room":      room,
					"confirmed": text == "yes",
				})
			case text == "":
				continue
			default:
				log.Printf("Unknown command %q", text)
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", text)
		}
	}
}
