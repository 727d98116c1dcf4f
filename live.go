package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/moontick/lanerush/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveLiveFeed pushes the status snapshot to the client once per tick, as an
// alternative to polling /status. The feed is read-only; anything the client
// sends besides close frames is discarded.
func serveLiveFeed(cfg *Config, eng *game.Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "SERVE: Websocket upgrade failed for %s: %v", realIP(r), err)
			return
		}

		logf(cfg, "SERVE: Live feed opened for %s", realIP(r))

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		defer func() {
			_ = conn.Close()
			logf(cfg, "SERVE: Live feed closed for %s", realIP(r))
		}()

		ticker := time.NewTicker(cfg.tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteJSON(eng.Status()); err != nil {
					return
				}
			}
		}
	}
}
