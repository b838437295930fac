// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/tx"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "api/subscriptions")

const (
	receiptBufferSize = 256
	writeWait         = 10 * time.Second
	pingPeriod        = 25 * time.Second
)

// Subscriptions streams committed ledger activity over websockets.
type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
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

func (s *Subscriptions) newReader(req *http.Request) (msgReader, error) {
	switch mux.Vars(req)["subject"] {
	case "event":
		filter, err := parseEventFilter(req.URL.Query())
		if err != nil {
			return nil, utils.BadRequest(err)
		}
		var pos uint64
		if p := req.URL.Query().Get("pos"); p != "" {
			if pos, err = strconv.ParseUint(p, 10, 64); err != nil {
				return nil, utils.BadRequest(errors.WithMessage(err, "pos"))
			}
			if pos == 0 {
				pos = 1
			}
		}
		return newEventReader(s.rt.LogDB(), filter, pos), nil
	case "receipt":
		return receiptReader{}, nil
	default:
		return nil, utils.HTTPError(errors.New("not found"), http.StatusNotFound)
	}
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	reader, err := s.newReader(req)
	if err != nil {
		return err
	}

	// subscribe before upgrading so nothing committed after the backlog query is missed
	ch := make(chan *tx.Receipt, receiptBufferSize)
	sub := s.rt.SubscribeReceipt(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has replied already
		log.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	id := uuid.New()
	subject := mux.Vars(req)["subject"]
	log.Debug("subscription opened", "id", id, "subject", subject, "remote", req.RemoteAddr)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	err = s.pipe(conn, reader, ch, sub.Err(), closed)
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err != nil {
		log.Debug("subscription failed", "id", id, "err", err)
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	}
	conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
	log.Debug("subscription closed", "id", id, "subject", subject)
	return nil
}

func writeJSON(conn *websocket.Conn, msg interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader, ch <-chan *tx.Receipt, subErr <-chan error, closed <-chan struct{}) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.done:
		case <-closed:
		case <-ctx.Done():
		}
		cancel()
	}()

	for {
		backlog, err := reader.Backlog(ctx)
		if err != nil {
			return err
		}
		if len(backlog) == 0 {
			break
		}
		for _, msg := range backlog {
			if err := writeJSON(conn, msg); err != nil {
				return err
			}
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case err := <-subErr:
			// nil once the runtime closes
			return err
		case r := <-ch:
			for _, msg := range reader.Read(r) {
				if err := writeJSON(conn, msg); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close closes all open subscriptions and waits for their handlers.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
