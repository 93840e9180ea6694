// Command teleop drives a rover from the terminal over its drive
// websocket. WASD steers, space stops, q quits. Heartbeats run in the
// background so the rover's watchdog stays alive while a key is held.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/term"

	"github.com/teslashibe/go-jetbot/pkg/protocol"
)

// beatPeriod must stay well under the rover's watchdog period.
const beatPeriod = 200 * time.Millisecond

// driveConn serializes websocket writes between the key loop and the
// heartbeat ticker.
type driveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (d *driveConn) send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn.WriteMessage(websocket.TextMessage, data)
}

func main() {
	host := flag.String("host", "localhost:8080", "rover address")
	speed := flag.Float64("speed", 0.5, "drive speed in [0, 1]")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws/drive"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", u.String(), err)
		os.Exit(1)
	}
	dc := &driveConn{conn: conn}
	defer conn.Close()

	// Raw mode so single keypresses arrive without Enter.
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "raw terminal: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	fmt.Printf("connected to %s\r\n", *host)
	fmt.Printf("w/a/s/d drive, space stop, q quit\r\n")

	// Drain server replies (pongs) so the read buffer never fills.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	stop := make(chan struct{})
	defer close(stop)
	go heartbeatLoop(dc, stop)

	if err := keyLoop(dc, *speed); err != nil {
		term.Restore(int(os.Stdin.Fd()), oldState)
		fmt.Fprintf(os.Stderr, "connection lost: %v\n", err)
		os.Exit(1)
	}
}

// heartbeatLoop keeps the rover's watchdog fed until stop closes.
func heartbeatLoop(dc *driveConn, stop chan struct{}) {
	ticker := time.NewTicker(beatPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			msg, err := protocol.NewHeartbeatMessage("teleop")
			if err != nil {
				continue
			}
			if err := dc.send(msg); err != nil {
				return
			}
		}
	}
}

// keyLoop reads single keys from stdin and translates them to drive
// commands. Returns nil on a clean quit.
func keyLoop(dc *driveConn, speed float64) error {
	sendStop := func() error {
		msg, err := protocol.NewStopMessage()
		if err != nil {
			return err
		}
		return dc.send(msg)
	}
	sendDrive := func(left, right float64) error {
		msg, err := protocol.NewDriveMessage(left, right)
		if err != nil {
			return err
		}
		return dc.send(msg)
	}

	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}

		var err error
		switch buf[0] {
		case 'w':
			err = sendDrive(speed, speed)
		case 's':
			err = sendDrive(-speed, -speed)
		case 'a':
			err = sendDrive(-speed, speed)
		case 'd':
			err = sendDrive(speed, -speed)
		case ' ':
			err = sendStop()
		case 'q', 3: // q or Ctrl+C
			sendStop()
			return nil
		}
		if err != nil {
			return err
		}
	}
}
