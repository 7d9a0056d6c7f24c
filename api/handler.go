// Copyright 2026 The go-marketledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api serves the ledger over http with JSON bodies.
package api

import (
	"net/http"

	"github.com/emicklei/go-restful"

	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/ledger"
	"github.com/ultiledger/go-marketledger/op"
)

// Submitter applies write operations in order.
type Submitter interface {
	Submit(o op.Op) ([]*event.Envelope, error)
}

// SubmitFunc adapts a function to a Submitter.
type SubmitFunc func(o op.Op) ([]*event.Envelope, error)

func (f SubmitFunc) Submit(o op.Op) ([]*event.Envelope, error) {
	return f(o)
}

// NewHandler creates the http handler serving the read views of l
// and forwarding writes to s.
func NewHandler(l *ledger.Ledger, s Submitter) http.Handler {
	svc := &Service{ledger: l, submitter: s}

	ws := new(restful.WebService)
	ws.Path("/marketledger").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("/ops").To(svc.SubmitOp))
	ws.Route(ws.GET("/events").To(svc.QueryEvents))

	ws.Route(ws.GET("/roles/{role}").To(svc.QueryRole))
	ws.Route(ws.GET("/accounts/{account}").To(svc.QueryAccount))

	ws.Route(ws.GET("/gold").To(svc.QueryGold))
	ws.Route(ws.GET("/gold/allowances/{owner}/{spender}").To(svc.QueryAllowance))

	ws.Route(ws.GET("/packs/{id}").To(svc.QueryPack))
	ws.Route(ws.GET("/packs/{id}/balances/{owner}").To(svc.QueryPackBalance))
	ws.Route(ws.GET("/packs/operators/{owner}/{operator}").To(svc.QueryPackOperator))

	ws.Route(ws.GET("/relics").To(svc.QueryMintedRelics))
	ws.Route(ws.GET("/relics/{id}").To(svc.QueryRelic))
	ws.Route(ws.GET("/relics/operators/{owner}/{operator}").To(svc.QueryRelicOperator))

	ws.Route(ws.GET("/markets/{kind}").To(svc.QueryMarket))
	ws.Route(ws.GET("/listings/packs").To(svc.QueryActivePackListings))
	ws.Route(ws.GET("/listings/packs/{seller}/{id}").To(svc.QueryPackListing))
	ws.Route(ws.GET("/listings/relics").To(svc.QueryActiveRelicListings))
	ws.Route(ws.GET("/listings/relics/{id}").To(svc.QueryRelicListing))

	container := restful.NewContainer()
	container.Add(ws)

	return container
}
