// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "api/events")

const maxLimit = 1000

type Events struct {
	db *logdb.LogDB
}

func New(db *logdb.LogDB) *Events {
	return &Events{
		db,
	}
}

func (e *Events) filter(ctx context.Context, filter *logdb.EventFilter) ([]*FilteredEvent, error) {
	events, err := e.db.FilterEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	fes := make([]*FilteredEvent, 0, len(events))
	for _, ev := range events {
		fes = append(fes, convertEvent(ev))
	}
	return fes, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	start := time.Now()
	var filter EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	f, err := convertEventFilter(&filter)
	if err != nil {
		return utils.BadRequest(err)
	}
	if f.Options != nil && f.Options.Limit > maxLimit {
		return utils.BadRequest(errors.Errorf("options.limit: exceeds %d", maxLimit))
	}
	fes, err := e.filter(req.Context(), f)
	if err != nil {
		return err
	}
	err = utils.WriteJSON(w, fes)

	if elapsed := time.Since(start); elapsed > time.Second {
		filterStr, _ := json.Marshal(filter)
		log.Info("slow handled event query", "query", string(filterStr), "elapsed", meter.PrettyDuration(elapsed))
	}
	return err
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
