// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/acreage-labs/acreage/api/utils"
	"github.com/acreage-labs/acreage/co"
	"github.com/acreage-labs/acreage/log"
	"github.com/acreage-labs/acreage/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
)

type Subscriptions struct {
	backtraceLimit uint64
	rt             *runtime.Runtime
	upgrader       *websocket.Upgrader
	done           chan struct{}
	goes           co.Goes
}

func New(rt *runtime.Runtime, allowedOrigins []string, backtraceLimit uint64) *Subscriptions {
	return &Subscriptions{
		backtraceLimit: backtraceLimit,
		rt:             rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// parsePosition reads the first sequence to stream. It defaults to the next
// call and may not reach further back than the backtrace limit.
func (s *Subscriptions) parsePosition(req *http.Request) (uint64, error) {
	next := s.rt.Seq() + 1
	pos, err := utils.QueryUint64(req, "pos", next)
	if err != nil {
		return 0, err
	}
	if pos == 0 {
		pos = 1
	}
	if pos > next {
		return 0, utils.BadRequest(errors.New("pos: out of range"))
	}
	if next-pos > s.backtraceLimit {
		return 0, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	return pos, nil
}

func (s *Subscriptions) handleSubjectResults(w http.ResponseWriter, req *http.Request) error {
	pos, err := s.parsePosition(req)
	if err != nil {
		return err
	}

	conn, closed, err := s.setupConn(w, req)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	err = s.pipe(conn, newResultReader(s.rt, pos), closed)
	s.closeConn(conn, err)
	return nil
}

func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}

	closed := make(chan struct{})
	// start read loop to handle close event
	s.goes.Go(func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read err", "err", err)
				return
			}
		}
	})
	return conn, closed, nil
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	var closeMsg []byte
	if err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	}

	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		logger.Debug("write close message", "err", err)
	}
	if err := conn.Close(); err != nil {
		logger.Debug("close websocket", "err", err)
	}
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader *resultReader, closed chan struct{}) error {
	// the waiter must be taken before the first read, otherwise a call
	// sequenced in between is only seen with the next one
	waiter := s.rt.NewWaiter()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		results, ok, err := reader.Read()
		if err != nil {
			return err
		}
		if ok {
			for _, res := range results {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(res); err != nil {
					return err
				}
			}
			continue
		}

		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-waiter.C():
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return errors.Wrap(err, "write ping")
			}
		}
	}
}

// Close ends every open stream and waits for the connections to wind down.
func (s *Subscriptions) Close() {
	close(s.done)
	s.goes.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").
		Methods(http.MethodGet).
		Name("WS /subscriptions/{subject}").
		HandlerFunc(utils.WrapHandlerFunc(func(w http.ResponseWriter, req *http.Request) error {
			switch strings.ToLower(mux.Vars(req)["subject"]) {
			case "results":
				return s.handleSubjectResults(w, req)
			default:
				return utils.NotFound(errors.New("subject not found"))
			}
		}))
}
