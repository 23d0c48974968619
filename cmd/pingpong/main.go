// Command pingpong is a Go port of the original firmware's pingpong.c: two
// mailboxes carry a counter back and forth between two cores ten times.
package main

import (
	"encoding/binary"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"amp"
)

const rounds = 10

// doneMarker is sent after the last PONG to signal the round-trip loop is
// over, matching the original pingpong.c's explicit MSG_DONE.
const doneMarker = 0xFFFFFFFF

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	epoch := time.Now()
	var arena amp.Arena
	if err := arena.Init(make([]byte, 64*1024)); err != nil {
		logger.Fatal("arena init failed", zap.Error(err))
	}

	primary := amp.NewLocalPlatform(amp.PrimaryCore, 2, epoch, nil)

	ping, err := amp.NewMailbox(&arena, primary, 4, 1)
	if err != nil {
		logger.Fatal("ping mailbox", zap.Error(err))
	}
	pong, err := amp.NewMailbox(&arena, primary, 4, 1)
	if err != nil {
		logger.Fatal("pong mailbox", zap.Error(err))
	}

	var g errgroup.Group

	g.Go(func() error {
		buf := make([]byte, 4)
		for {
			if err := ping.Recv(buf, 5*time.Second); err != nil {
				return err
			}
			if binary.LittleEndian.Uint32(buf) == doneMarker {
				logger.Info("core1 received done")
				return nil
			}
			n := binary.LittleEndian.Uint32(buf) + 1
			logger.Info("core1 bounced", zap.Uint32("value", n))
			binary.LittleEndian.PutUint32(buf, n)
			if err := pong.Send(buf, 5*time.Second); err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, 0)
		if err := ping.Send(buf, 5*time.Second); err != nil {
			return err
		}
		for i := 0; i < rounds; i++ {
			if err := pong.Recv(buf, 5*time.Second); err != nil {
				return err
			}
			n := binary.LittleEndian.Uint32(buf)
			logger.Info("core0 received", zap.Uint32("value", n))
			if i < rounds-1 {
				if err := ping.Send(buf, 5*time.Second); err != nil {
					return err
				}
			}
		}
		binary.LittleEndian.PutUint32(buf, doneMarker)
		return ping.Send(buf, 5*time.Second)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("pingpong failed", zap.Error(err))
	}

	if ping.Len() != 0 || pong.Len() != 0 {
		logger.Fatal("mailboxes not drained after done",
			zap.Uint32("ping_len", ping.Len()), zap.Uint32("pong_len", pong.Len()))
	}
	logger.Info("pingpong complete", zap.Int("rounds", rounds),
		zap.Uint32("ping_len", ping.Len()), zap.Uint32("pong_len", pong.Len()))
}
