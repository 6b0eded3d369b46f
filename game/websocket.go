package game

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	MAX_FRAME_SIZE = 64 * 1024
	READ_DEADLINE  = time.Minute
	WRITE_DEADLINE = 10 * time.Second
	PING_INTERVAL  = 30 * time.Second
)

type websocketConnection struct {
	socket *websocket.Conn
}

func (wc *websocketConnection) Write(data []byte) error {
	wc.socket.SetWriteDeadline(time.Now().Add(WRITE_DEADLINE))
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConnection) Ping() error {
	wc.socket.SetWriteDeadline(time.Now().Add(WRITE_DEADLINE))
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConnection) Close(errCode string) {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second * 5))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, errCode))
	wc.socket.Close()
}

func NewWebsocketConnection(conn *websocket.Conn) *websocketConnection {
	conn.SetReadLimit(MAX_FRAME_SIZE)
	conn.SetReadDeadline(time.Now().Add(READ_DEADLINE))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(READ_DEADLINE))
		return nil
	})
	return &websocketConnection{conn}
}
