package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	ws "github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/websocket"
)

var (
	addr     = flag.String("addr", "localhost:8080", "http service address")
	userID   = flag.String("user", "", "user id")
	name     = flag.String("name", "", "display name")
	role     = flag.String("role", "golfer", "user role")
	viewport = flag.String("viewport", "desktop", "desktop or mobile")
)

func main() {
	flag.Parse()
	if *userID == "" {
		log.Fatal("-user is required")
	}
	if *name == "" {
		*name = *userID
	}

	conn := connectWebSocket()
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go readEvents(conn, done)

	fmt.Println("Commands: /rooms, /open <room>, /close <slot>, /dm <user> [name], /clear <room>; plain text sends to the open room")
	writeIntents(conn, interrupt, done)
}

func connectWebSocket() *websocket.Conn {
	q := url.Values{}
	q.Set("user_id", *userID)
	q.Set("name", *name)
	q.Set("role", *role)
	q.Set("viewport", *viewport)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: q.Encode()}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	log.Println("Connected.")
	return conn
}

func readEvents(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var evt ws.Event
		if err := conn.ReadJSON(&evt); err != nil {
			log.Printf("Error reading event: %v", err)
			return
		}
		switch evt.Type {
		case ws.EventRoomChanged:
			fmt.Printf("\n* room %s updated\n", evt.RoomID)
		case ws.EventBadgeChanged:
			fmt.Printf("\n* unread total: %d\n", evt.Count)
		case ws.EventRoomList:
			for _, room := range evt.Rooms {
				fmt.Printf("  %s  %s (unread %d)\n", room.ID, room.DisplayName, room.UnreadCount)
			}
		case ws.EventMessages:
			for _, m := range evt.Messages {
				fmt.Printf("[%s] %s: %s\n", m.Timestamp.Format("15:04:05"), m.SenderName, m.Text)
			}
		case ws.EventError:
			fmt.Printf("\n! %s\n", evt.Error)
		}
	}
}

func writeIntents(conn *websocket.Conn, interrupt chan os.Signal, done chan struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	currentRoom := ""
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection...")
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		default:
			if !scanner.Scan() {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			intent, room, ok := parseLine(line, currentRoom)
			if !ok {
				continue
			}
			currentRoom = room
			if err := conn.WriteJSON(intent); err != nil {
				log.Printf("Error sending intent: %v", err)
				return
			}
		}
	}
}

func parseLine(line, currentRoom string) (ws.Intent, string, bool) {
	if !strings.HasPrefix(line, "/") {
		if currentRoom == "" {
			fmt.Println("! open a room first with /open <room>")
			return ws.Intent{}, currentRoom, false
		}
		return ws.Intent{Type: ws.IntentSendMessage, RoomID: currentRoom, Text: line}, currentRoom, true
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/rooms":
		return ws.Intent{Type: ws.IntentListRooms}, currentRoom, true
	case "/open":
		if len(fields) < 2 {
			return ws.Intent{}, currentRoom, false
		}
		return ws.Intent{Type: ws.IntentSelectRoom, RoomID: fields[1]}, fields[1], true
	case "/close":
		if len(fields) < 2 {
			return ws.Intent{}, currentRoom, false
		}
		slot, err := strconv.Atoi(fields[1])
		if err != nil {
			return ws.Intent{}, currentRoom, false
		}
		return ws.Intent{Type: ws.IntentCloseSlot, Slot: slot}, currentRoom, true
	case "/dm":
		if len(fields) < 2 {
			return ws.Intent{}, currentRoom, false
		}
		intent := ws.Intent{Type: ws.IntentOpenDirect}
		intent.Other.ID = fields[1]
		if len(fields) > 2 {
			intent.Other.Name = strings.Join(fields[2:], " ")
		} else {
			intent.Other.Name = fields[1]
		}
		return intent, currentRoom, true
	case "/clear":
		if len(fields) < 2 {
			return ws.Intent{}, currentRoom, false
		}
		return ws.Intent{Type: ws.IntentClearHistory, RoomID: fields[1]}, currentRoom, true
	default:
		fmt.Println("! unknown command")
		return ws.Intent{}, currentRoom, false
	}
}
