package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"

	"github.com/wfunc/simonsays/game"
	"github.com/wfunc/simonsays/input"
	"github.com/wfunc/simonsays/models"
	"github.com/wfunc/simonsays/network"
)

// helpText lists the commands, built from the pad and difficulty tables.
func helpText() string {
	var b strings.Builder
	b.WriteString("commands:\n  start | reset | status | quit\n  ")

	names := make([]string, 0, len(game.Difficulties))
	for _, d := range game.Difficulties {
		names = append(names, d.Name())
	}
	b.WriteString(strings.Join(names, " | "))

	for _, c := range game.Colors {
		fmt.Fprintf(&b, "\n  %s (keys %s)", c, strings.Join(input.KeysFor(c), " "))
	}
	return b.String()
}

// command turns a typed line into a message for the server.
func command(line string) (msgID uint16, payload interface{}, ok bool) {
	line = strings.ToLower(strings.TrimSpace(line))
	switch line {
	case "start":
		return network.MsgTypeStart, nil, true
	case "reset":
		return network.MsgTypeReset, nil, true
	case "status":
		return network.MsgTypeSnapshotRequest, nil, true
	}
	if d, err := game.ParseDifficulty(line); err == nil {
		return network.MsgTypeSetDifficulty, models.DifficultyRequest{Difficulty: string(d)}, true
	}
	if c, err := game.ParseColor(line); err == nil {
		return network.MsgTypeInputColor, models.InputRequest{Color: string(c)}, true
	}
	if _, isKey := input.ColorForKey(line); isKey {
		return network.MsgTypeKeyPress, models.KeyRequest{Key: line}, true
	}
	return 0, nil, false
}

// render describes a server frame for the terminal. Frames not worth showing
// render as "".
func render(p *network.Packet) string {
	switch p.MsgID {
	case network.MsgTypeWelcome:
		var w models.Welcome
		if err := json.Unmarshal(p.Data, &w); err != nil {
			return badFrame(p, err)
		}
		return fmt.Sprintf("connected as %s", w.SessionID)
	case network.MsgTypeScore:
		var s models.ScorePayload
		if err := json.Unmarshal(p.Data, &s); err != nil {
			return badFrame(p, err)
		}
		return fmt.Sprintf("score: %d", s.Score)
	case network.MsgTypeRound:
		var r models.RoundPayload
		if err := json.Unmarshal(p.Data, &r); err != nil {
			return badFrame(p, err)
		}
		return fmt.Sprintf("round: %d", r.Round)
	case network.MsgTypeMessage:
		var m models.MessagePayload
		if err := json.Unmarshal(p.Data, &m); err != nil {
			return badFrame(p, err)
		}
		if m.Severity == "" {
			return m.Text
		}
		return fmt.Sprintf("[%s] %s", m.Severity, m.Text)
	case network.MsgTypeFlash:
		var f models.FlashPayload
		if err := json.Unmarshal(p.Data, &f); err != nil {
			return badFrame(p, err)
		}
		return fmt.Sprintf("  *** %s ***", strings.ToUpper(f.Color))
	case network.MsgTypeSnapshot, network.MsgTypeError:
		return string(p.Data)
	}
	return ""
}

func badFrame(p *network.Packet, err error) string {
	return fmt.Sprintf("bad frame %d: %v", p.MsgID, err)
}

func main() {
	addr := pflag.StringP("addr", "a", "localhost:8080", "server host:port")
	heartbeat := pflag.Duration("heartbeat", 20*time.Second, "heartbeat interval")
	pflag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	fmt.Printf("Connecting to %s\n", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Dial failed: %v\n", err)
		os.Exit(1)
	}
	conn := network.NewWSConnection(c)
	defer conn.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			p, err := conn.ReadPacket()
			if err != nil {
				fmt.Println("Read error:", err)
				return
			}
			if line := render(p); line != "" {
				fmt.Println(line)
			}
		}
	}()

	// a terminal cannot play the tones
	if err := network.SendJSON(conn, network.MsgTypeAudioStatus, models.AudioStatus{Available: false, Reason: "terminal client"}); err != nil {
		fmt.Println("Write error:", err)
		return
	}
	fmt.Println(helpText())

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	ticker := time.NewTicker(*heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.Send(network.MsgTypeHeartbeat, nil); err != nil {
				fmt.Println("Write error:", err)
				return
			}
		case <-interrupt:
			fmt.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				fmt.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "quit" {
				return
			}
			msgID, payload, ok := command(line)
			if !ok {
				fmt.Println(helpText())
				continue
			}
			if err := network.SendJSON(conn, msgID, payload); err != nil {
				fmt.Println("Write error:", err)
				return
			}
		}
	}
}
