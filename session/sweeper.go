package session

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/food-delivery-web/utils"
)

// Sweeper deletes expired sessions on a fixed interval until stopped.
type Sweeper struct {
	Store    Store
	Interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	now      func() time.Time
}

func NewSweeper(store Store, interval time.Duration) *Sweeper {
	return &Sweeper{
		Store:    store,
		Interval: interval,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

func (sw *Sweeper) Start() {
	sw.wg.Add(1)
	go func() {
		defer sw.wg.Done()
		ticker := time.NewTicker(sw.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sw.sweep()
			case <-sw.stopChan:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-progress sweep to finish.
func (sw *Sweeper) Stop() {
	close(sw.stopChan)
	sw.wg.Wait()
}

func (sw *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := sw.Store.DeleteExpired(ctx, sw.now())
	if err != nil {
		utils.ErrorLogger.Errorf("Error sweeping sessions: %v", err)
		return
	}
	if n > 0 {
		utils.InfoLogger.Printf("Swept %d expired sessions", n)
	}
}
