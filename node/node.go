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

package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ultiledger/go-marketledger/api"
	"github.com/ultiledger/go-marketledger/db"
	_ "github.com/ultiledger/go-marketledger/db/boltdb"
	_ "github.com/ultiledger/go-marketledger/db/memdb"
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/future"
	"github.com/ultiledger/go-marketledger/ledger"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/op"
)

var ErrStopped = errors.New("node is stopped")

// Node is the central controller of the market ledger. Writes coming
// from the api server are funneled through a single sequencer so they
// apply in arrival order.
type Node struct {
	config   *Config
	database db.Database
	ledger   *ledger.Ledger
	server   *http.Server
	listener net.Listener

	// futures for write operations waiting on the sequencer
	opFuture chan *future.Op

	// channel for stopping all the subroutines
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewNode opens the database, builds the ledger and bootstraps it
// from the genesis of conf when it is empty.
func NewNode(conf *Config) (*Node, error) {
	if err := log.SetLevel(conf.LogLevel); err != nil {
		return nil, err
	}
	database, err := db.Open(conf.DBBackend, conf.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database failed: %v", err)
	}
	l := ledger.New(database, ledger.Config{
		NetworkID:       conf.NetworkID,
		PackSettlement:  conf.PackSettlement,
		RelicSettlement: conf.RelicSettlement,
	})
	envs, err := l.Bootstrap(conf.Genesis)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("bootstrap ledger failed: %v", err)
	}
	if len(envs) > 0 {
		log.Infow("ledger bootstrapped", "admin", conf.Genesis.Admin, "events", len(envs))
	}

	n := &Node{
		config:   conf,
		database: database,
		ledger:   l,
		opFuture: make(chan *future.Op),
		stopChan: make(chan struct{}),
	}
	n.server = &http.Server{
		Addr:    conf.Addr,
		Handler: api.NewHandler(l, n),
	}
	return n, nil
}

// Ledger returns the ledger the node serves.
func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

// Start launches the sequencer and the http server.
func (n *Node) Start() error {
	listener, err := net.Listen("tcp", n.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s failed: %v", n.config.Addr, err)
	}
	n.listener = listener

	n.wg.Add(2)
	go n.sequence()
	go n.serve()
	return nil
}

// Addr returns the address the http server listens on.
func (n *Node) Addr() string {
	if n.listener == nil {
		return n.config.Addr
	}
	return n.listener.Addr().String()
}

// Stop signals every goroutine to stop, waits for them and closes
// the database.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		close(n.stopChan)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.server.Shutdown(ctx); err != nil {
			log.Errorf("shutdown http server failed: %v", err)
		}
		n.wg.Wait()
		if err := n.database.Close(); err != nil {
			log.Errorf("close database failed: %v", err)
		}
	})
}

// Submit hands o to the sequencer and waits for its outcome.
func (n *Node) Submit(o op.Op) ([]*event.Envelope, error) {
	f := &future.Op{Op: o}
	f.Init()
	select {
	case n.opFuture <- f:
	case <-n.stopChan:
		return nil, ErrStopped
	}
	if err := f.Error(); err != nil {
		return nil, err
	}
	return f.Events, nil
}

// Sequencer loop applying write operations one at a time.
func (n *Node) sequence() {
	defer n.wg.Done()
	for {
		select {
		case f := <-n.opFuture:
			envs, err := n.ledger.Apply(f.Op)
			f.Events = envs
			f.Respond(err)
		case <-n.stopChan:
			log.Info("shutdown sequencer")
			return
		}
	}
}

func (n *Node) serve() {
	defer n.wg.Done()
	log.Infof("start to serve http server on %s", n.Addr())
	err := n.server.Serve(n.listener)
	if err != nil && err != http.ErrServerClosed {
		log.Errorf("http server stopped: %v", err)
	}
}
