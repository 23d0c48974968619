// Command shared-counter is a Go port of the original firmware's
// shared_counter.c: a binary semaphore guards 200 increments to a counter
// word in the arena, split evenly across two cores.
package main

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"amp"
)

const (
	totalIncrements = 200
	perCore         = totalIncrements / 2
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var arena amp.Arena
	if err := arena.Init(make([]byte, 64*1024)); err != nil {
		logger.Fatal("arena init failed", zap.Error(err))
	}

	epoch := time.Now()
	primary := amp.NewLocalPlatform(amp.PrimaryCore, 2, epoch, nil)

	mutex, err := amp.NewSemaphore(&arena, primary, 1, 1)
	if err != nil {
		logger.Fatal("semaphore init failed", zap.Error(err))
	}

	counter, err := amp.NewSharedCounter(&arena)
	if err != nil {
		logger.Fatal("counter init failed", zap.Error(err))
	}

	increment := func(core string) error {
		for i := 0; i < perCore; i++ {
			if err := mutex.Wait(5 * time.Second); err != nil {
				return err
			}
			counter.Add(1)
			if err := mutex.Post(); err != nil {
				return err
			}
		}
		logger.Info("core finished increments", zap.String("core", core), zap.Int("count", perCore))
		return nil
	}

	var g errgroup.Group
	g.Go(func() error { return increment("core0") })
	g.Go(func() error { return increment("core1") })

	if err := g.Wait(); err != nil {
		logger.Fatal("shared counter failed", zap.Error(err))
	}

	final := counter.Load()
	if final != totalIncrements {
		logger.Fatal("lost update detected", zap.Uint32("final", final), zap.Int("want", totalIncrements))
	}
	logger.Info("shared counter complete", zap.Uint32("final", final))
}
