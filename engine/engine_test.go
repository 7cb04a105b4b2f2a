package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/rig-go/engine/character"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
	"github.com/Carmen-Shannon/rig-go/engine/skeleton"
	"github.com/Carmen-Shannon/rig-go/engine/stage"
)

func TestRunTicksUntilQuit(t *testing.T) {
	var ticks atomic.Int64
	e := NewEngine(WithTickRate(200))
	e.SetTickCallback(func(deltaTime float32) {
		if deltaTime < 0 {
			t.Error("negative delta time")
		}
		ticks.Add(1)
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	e.Quit()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	if ticks.Load() == 0 {
		t.Fatal("tick callback never fired")
	}

	// Quit is idempotent.
	e.Quit()
}

func TestRunUpdatesStages(t *testing.T) {
	skel := skeleton.NewSkeleton("rig")
	skel.AddBone("hip", -1, pose.Identity())
	if err := skel.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	skel.BoneByName("hip").Local.Position[1] = 2

	st := stage.NewStage(stage.WithWorkers(1))
	st.Add(character.NewCharacter("hero", skel))

	e := NewEngine(WithTickRate(200), WithStage(0, st))

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	e.Quit()
	<-done

	if got := skel.BoneByName("hip").World.Position[1]; got != 2 {
		t.Fatalf("stage was not updated: hip world y = %v, want 2", got)
	}
}

func TestStageRegistry(t *testing.T) {
	s1 := stage.NewStage(stage.WithWorkers(1))
	s2 := stage.NewStage(stage.WithWorkers(1))

	e := NewEngine(WithStage(1, s1))
	e.AddStage(2, s2)

	if e.Stage(1) != s1 || e.Stage(2) != s2 {
		t.Fatal("stage lookup failed")
	}
	if len(e.Stages()) != 2 {
		t.Fatalf("stages = %d, want 2", len(e.Stages()))
	}

	// Stages returns a copy; mutating it must not affect the engine.
	cp := e.Stages()
	delete(cp, 1)
	if e.Stage(1) == nil {
		t.Fatal("mutating the returned map changed the engine")
	}

	e.RemoveStage(1)
	if e.Stage(1) != nil {
		t.Fatal("RemoveStage failed")
	}
}

func TestSetTickRateBeforeRun(t *testing.T) {
	e := NewEngine()
	e.SetTickRate(0)
	// Defaults survive bad input; the engine still ticks.
	var ticks atomic.Int64
	e.SetTickCallback(func(float32) { ticks.Add(1) })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	e.SetTickRate(500)
	time.Sleep(50 * time.Millisecond)
	e.Quit()
	<-done

	if ticks.Load() == 0 {
		t.Fatal("tick callback never fired")
	}
}
