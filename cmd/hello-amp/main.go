// Command hello-amp is a Go port of the original firmware's hello_amp.c:
// the primary core boots a secondary, waits for it to signal ready, then
// receives the secondary's greeting over a mailbox and prints it.
package main

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.uber.org/zap"

	"amp"
)

// greetingSize matches the original hello_amp.c message layout: a 4-byte
// core id followed by a NUL-padded "Hello" string, 60 bytes total.
const greetingSize = 60

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

	launch := func(id amp.CoreID, entry func(), stackHint uintptr) error {
		go entry()
		return nil
	}
	primary := amp.NewLocalPlatform(amp.PrimaryCore, 2, epoch, launch)

	boot, err := amp.NewBoot(&arena, primary, 2)
	if err != nil {
		logger.Fatal("boot init failed", zap.Error(err))
	}
	logger.Info("primary core ready", zap.String("core", "core0"))

	greetings, err := amp.NewMailbox(&arena, primary, greetingSize, 4)
	if err != nil {
		logger.Fatal("mailbox init failed", zap.Error(err))
	}

	entry := func() {
		secondary := amp.NewLocalPlatform(1, 2, epoch, nil)
		secondaryBoot := amp.AttachBoot(&arena, boot.Handle(), secondary, 2)
		logger.Info("secondary core running", zap.String("core", "core1"))
		secondaryBoot.SignalReady()

		msg := make([]byte, greetingSize)
		binary.LittleEndian.PutUint32(msg[0:4], uint32(secondary.CurrentCoreID()))
		copy(msg[4:], "Hello")
		if err := greetings.Send(msg, 5*time.Second); err != nil {
			logger.Fatal("greeting send failed", zap.Error(err))
		}
	}

	if err := boot.Launch(1, entry, 0); err != nil {
		logger.Fatal("launch failed", zap.Error(err))
	}
	if err := boot.WaitReady(1, 5*time.Second); err != nil {
		logger.Fatal("secondary never signaled ready", zap.Error(err))
	}

	buf := make([]byte, greetingSize)
	if err := greetings.Recv(buf, 5*time.Second); err != nil {
		logger.Fatal("greeting recv failed", zap.Error(err))
	}
	coreID := binary.LittleEndian.Uint32(buf[0:4])
	text := string(buf[4:9])
	logger.Info("received greeting", zap.Uint32("core_id", coreID), zap.String("text", text))

	fmt.Printf("hello from AMP: core %d says %q\n", coreID, text)
}
