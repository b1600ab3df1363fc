// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jsoncodec

import (
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
)

// closeTimeout bounds how long Close waits to write the close frame.
const closeTimeout = time.Second

// NewWebsocket returns an rpc.Codec that sends each request as a single
// websocket text message.
func NewWebsocket(conn *websocket.Conn) *Codec {
	return New(NewWebsocketConn(conn))
}

// NewWebsocketConn adapts a websocket connection to MessageConn.
func NewWebsocketConn(conn *websocket.Conn) MessageConn {
	return &wsConn{conn: conn}
}

type wsConn struct {
	conn *websocket.Conn
}

// ReadMessage implements MessageConn. Text and binary messages are both
// accepted.
func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, errors.Trace(err)
	}
	return data, nil
}

// WriteMessage implements MessageConn.
func (c *wsConn) WriteMessage(data []byte) error {
	return errors.Trace(c.conn.WriteMessage(websocket.TextMessage, data))
}

// Close implements MessageConn. It tells the peer we are going away
// before closing the underlying connection.
func (c *wsConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout)); err != nil && err != websocket.ErrCloseSent {
		logger.Debugf("cannot send close message: %v", err)
	}
	return errors.Trace(c.conn.Close())
}
