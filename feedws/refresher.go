package feedws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Refresher periodically re-renders the feed of every watched organization
// and broadcasts the result through the hub.
type Refresher struct {
	hub      *Hub
	interval time.Duration
	timeout  time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewRefresher(hub *Hub, interval, timeout time.Duration) *Refresher {
	return &Refresher{
		hub:      hub,
		interval: interval,
		timeout:  timeout,
		stopChan: make(chan struct{}),
	}
}

func (rf *Refresher) Start() {
	rf.wg.Add(1)
	go rf.run()
}

func (rf *Refresher) Stop() {
	close(rf.stopChan)
	rf.wg.Wait()
	log.Println("Feed refresher stopped")
}

func (rf *Refresher) run() {
	defer rf.wg.Done()

	ticker := time.NewTicker(rf.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rf.refresh()
		case <-rf.stopChan:
			return
		}
	}
}

func (rf *Refresher) refresh() {
	for _, org := range rf.hub.Orgs() {
		ctx, cancel := context.WithTimeout(context.Background(), rf.timeout)
		res, err := rf.hub.render(ctx, org)
		cancel()
		if err != nil {
			log.Printf("feed refresh for %s failed: %v", org, err)
			continue
		}
		msg, err := json.Marshal(res)
		if err != nil {
			log.Printf("feed refresh for %s failed: %v", org, err)
			continue
		}
		rf.hub.Broadcast(org, msg)
	}
}
