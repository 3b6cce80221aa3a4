/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package statsink

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/launix-de/cachesim/internal/simlog"
)

// DashboardServer pushes every RunStats milestone as JSON to connected
// browser clients over a websocket, grounded on scm/network.go's
// "websocket" upgrade handler: same Upgrader construction and a
// send-side mutex per connection, here fanning writes out to however
// many clients are attached instead of relaying a single callback.
type DashboardServer struct {
	addr   string
	log    simlog.Logger
	server *http.Server

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewDashboardServer starts an HTTP server on addr immediately; the
// websocket upgrade happens per connection at GET /ws.
func NewDashboardServer(addr string, log simlog.Logger) *DashboardServer {
	if log == nil {
		log = simlog.Nop{}
	}
	d := &DashboardServer{
		addr:     addr,
		log:      log,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		clients:  make(map[*websocket.Conn]*sync.Mutex),
	}
	d.upgrader.CheckOrigin = func(r *http.Request) bool { return true }

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", d.handleWS)
	d.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			d.log.Errorf("dashboard: serve failed: %v", err)
		}
	}()

	return d
}

func (d *DashboardServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.log.Warnf("dashboard: upgrade failed: %v", err)
		return
	}

	d.mu.Lock()
	d.clients[conn] = &sync.Mutex{}
	d.mu.Unlock()

	go func() {
		defer d.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (d *DashboardServer) dropClient(conn *websocket.Conn) {
	d.mu.Lock()
	delete(d.clients, conn)
	d.mu.Unlock()
	conn.Close()
}

func (d *DashboardServer) Name() string { return "dashboard:" + d.addr }

// Publish broadcasts stats to every connected client as a JSON text
// frame, dropping (and logging) any connection that errors.
func (d *DashboardServer) Publish(stats RunStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	d.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(d.clients))
	mus := make([]*sync.Mutex, 0, len(d.clients))
	for c, m := range d.clients {
		conns = append(conns, c)
		mus = append(mus, m)
	}
	d.mu.Unlock()

	var firstErr error
	for i, conn := range conns {
		mus[i].Lock()
		err := conn.WriteMessage(websocket.TextMessage, payload)
		mus[i].Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			d.dropClient(conn)
		}
	}
	return firstErr
}

func (d *DashboardServer) Close() error {
	d.mu.Lock()
	for c := range d.clients {
		c.Close()
	}
	d.clients = nil
	d.mu.Unlock()
	return d.server.Close()
}
