package statemachine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/rig-go/engine/clip"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
	"github.com/Carmen-Shannon/rig-go/engine/skeleton"
)

// stateClip builds a single-keyframe looping clip so sampled poses are
// clock-independent.
func stateClip(name, bone string, y, duration float32) *clip.Clip {
	c := clip.NewClip(name, clip.WithDuration(duration), clip.WithLoopMode(clip.LoopRepeat))
	idx := c.AddTrack(bone)
	p := pose.Identity()
	p.Position[1] = y
	c.AddKeyframe(idx, clip.Keyframe{Time: 0, Pose: p})
	c.Freeze()
	return c
}

func testSkeleton() *skeleton.Skeleton {
	s := skeleton.NewSkeleton("test")
	s.AddBone("hip", -1, pose.Identity())
	s.AddBone("tail", 0, pose.Identity())
	if err := s.Finalize(); err != nil {
		panic(err)
	}
	return s
}

func TestParamsTriggersAreNotAutoConsumed(t *testing.T) {
	p := NewParams()
	p.SetTrigger("jump")

	if v, ok := p.Bool("jump"); !ok || !v {
		t.Fatal("trigger should read as a set bool")
	}
	if v, _ := p.Bool("jump"); !v {
		t.Fatal("trigger must stay set until explicitly reset")
	}
	p.ResetTrigger("jump")
	if v, _ := p.Bool("jump"); v {
		t.Fatal("trigger should be cleared after ResetTrigger")
	}
}

func TestConditionComparators(t *testing.T) {
	p := NewParams()
	p.SetFloat("speed", 2)
	p.SetBool("grounded", true)

	cases := []struct {
		cond Condition
		want bool
	}{
		{FloatCondition("speed", OpGreater, 1), true},
		{FloatCondition("speed", OpLess, 1), false},
		{FloatCondition("speed", OpEqual, 2), true},
		{FloatCondition("speed", OpNotEqual, 2), false},
		{FloatCondition("speed", OpGreaterEqual, 2), true},
		{FloatCondition("speed", OpLessEqual, 1.5), false},
		{BoolCondition("grounded", OpEqual, true), true},
		{BoolCondition("grounded", OpNotEqual, true), false},
	}
	for i, tc := range cases {
		if got := tc.cond.evaluate(p); got != tc.want {
			t.Fatalf("case %d (%s %s): got %v, want %v", i, tc.cond.Param, tc.cond.Op, got, tc.want)
		}
	}
}

func TestConditionAbsentParamIsFalse(t *testing.T) {
	p := NewParams()
	if FloatCondition("missing", OpEqual, 0).evaluate(p) {
		t.Fatal("absent float param should evaluate false")
	}
	if BoolCondition("missing", OpNotEqual, true).evaluate(p) {
		t.Fatal("absent bool param should evaluate false")
	}
}

func TestConditionBoolRejectsOrderedComparators(t *testing.T) {
	p := NewParams()
	p.SetBool("grounded", true)
	if BoolCondition("grounded", OpGreater, false).evaluate(p) {
		t.Fatal("ordered comparators on bool params should evaluate false")
	}
}

func TestStartEntersDefaultState(t *testing.T) {
	m := NewMachine()
	m.AddState("idle", stateClip("idle", "hip", 0, 1))
	m.SetDefaultState("idle")

	var entered []string
	m.OnStateEntered(func(name string) { entered = append(entered, name) })

	m.Start()
	if !m.Running() {
		t.Fatal("machine should be running after Start")
	}
	if m.CurrentState() == nil || m.CurrentState().Name() != "idle" {
		t.Fatal("default state should be current after Start")
	}
	if len(entered) != 1 || entered[0] != "idle" {
		t.Fatalf("entered notifications = %v, want [idle]", entered)
	}
}

func TestTransitionFiresOnCondition(t *testing.T) {
	m := NewMachine()
	m.AddState("idle", stateClip("idle", "hip", 0, 1))
	m.AddState("run", stateClip("run", "hip", 2, 1))
	m.SetDefaultState("idle")
	m.AddTransition(NewTransition("idle", "run", 0.5,
		WithCondition(FloatCondition("speed", OpGreater, 1))))

	m.Start()
	m.Update(0.1)
	if m.InTransition() {
		t.Fatal("transition must not fire while its condition is false")
	}

	m.Params().SetFloat("speed", 5)
	m.Update(0.1)
	if !m.InTransition() {
		t.Fatal("transition should fire once its condition holds")
	}
	if m.CurrentState().Name() != "idle" {
		t.Fatal("source state stays current during the blend")
	}
}

func TestExitTimeGatesTransition(t *testing.T) {
	m := NewMachine()
	m.AddState("attack", stateClip("attack", "hip", 0, 1))
	m.AddState("idle", stateClip("idle", "hip", 1, 1))
	m.SetDefaultState("attack")
	m.AddTransition(NewTransition("attack", "idle", 0.2, WithExitTime(0.5)))

	m.Start()
	m.Update(0.3)
	if m.InTransition() {
		t.Fatal("transition must wait for the exit time")
	}
	m.Update(0.2)
	if !m.InTransition() {
		t.Fatal("transition should fire once normalized time reaches the exit time")
	}
}

func TestTransitionPromotesAfterDuration(t *testing.T) {
	m := NewMachine()
	m.AddState("idle", stateClip("idle", "hip", 0, 1))
	m.AddState("run", stateClip("run", "hip", 2, 1))
	m.SetDefaultState("idle")
	m.AddTransition(NewTransition("idle", "run", 0.5,
		WithCondition(BoolCondition("moving", OpEqual, true))))

	var exited []string
	m.OnStateExited(func(name string) { exited = append(exited, name) })

	m.Start()
	m.Params().SetBool("moving", true)
	m.Update(0.1)
	if !m.InTransition() {
		t.Fatal("transition should have begun")
	}

	m.Update(0.25)
	if diff := m.TransitionProgress() - 0.5; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("blend progress = %v, want 0.5", m.TransitionProgress())
	}

	m.Update(0.25)
	if m.InTransition() {
		t.Fatal("transition should have completed")
	}
	if m.CurrentState().Name() != "run" {
		t.Fatalf("current state = %q, want run", m.CurrentState().Name())
	}
	if m.TransitionProgress() != 0 {
		t.Fatalf("progress should reset after promotion, got %v", m.TransitionProgress())
	}
	if len(exited) != 1 || exited[0] != "idle" {
		t.Fatalf("exited notifications = %v, want [idle]", exited)
	}
}

func TestTransitionsEvaluateInListOrder(t *testing.T) {
	m := NewMachine()
	m.AddState("idle", stateClip("idle", "hip", 0, 1))
	m.AddState("walk", stateClip("walk", "hip", 1, 1))
	m.AddState("run", stateClip("run", "hip", 2, 1))
	m.SetDefaultState("idle")

	// Both transitions are eligible; the first in the list wins regardless
	// of priority values.
	m.AddTransition(NewTransition("idle", "walk", 0.5, WithPriority(0)))
	m.AddTransition(NewTransition("idle", "run", 0.5, WithPriority(10)))

	m.Start()
	m.Update(0.5)
	if !m.InTransition() {
		t.Fatal("a transition should have begun")
	}
	m.Update(0.5)
	if m.CurrentState().Name() != "walk" {
		t.Fatalf("current state = %q, want walk (first in list)", m.CurrentState().Name())
	}
}

func TestStateHandlersMayReenterMachine(t *testing.T) {
	m := NewMachine()
	m.AddState("idle", stateClip("idle", "hip", 0, 1))
	m.AddState("run", stateClip("run", "hip", 2, 1))
	m.SetDefaultState("idle")
	m.AddTransition(NewTransition("idle", "run", 0.1))

	var enteredSeen []string
	m.OnStateEntered(func(name string) {
		// Handlers may read back into the machine that fired them.
		if cur := m.CurrentState(); cur != nil {
			enteredSeen = append(enteredSeen, cur.Name())
		}
		_ = m.TransitionProgress()
	})
	var exitedCount int
	m.OnStateExited(func(string) {
		_ = m.Running()
		_ = m.InTransition()
		exitedCount++
	})

	done := make(chan struct{})
	go func() {
		m.Start()
		m.Update(0.05) // begins the transition
		m.Update(0.1)  // completes it
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("machine blocked while dispatching a state handler")
	}

	// Start fires with idle current; the transition fires while idle is
	// still current during the blend.
	if len(enteredSeen) != 2 || enteredSeen[0] != "idle" || enteredSeen[1] != "idle" {
		t.Fatalf("handler observations = %v, want [idle idle]", enteredSeen)
	}
	// Promotion exits idle, Stop exits run.
	if exitedCount != 2 {
		t.Fatalf("exit notifications = %d, want 2", exitedCount)
	}
}

func TestSelfTransitionIsNeverTaken(t *testing.T) {
	m := NewMachine()
	m.AddState("idle", stateClip("idle", "hip", 0, 1))
	m.SetDefaultState("idle")
	m.AddTransition(NewTransition("idle", "idle", 0.1))

	var exited int
	m.OnStateExited(func(string) { exited++ })

	m.Start()
	m.Update(0.5)
	m.Update(0.5)

	if m.InTransition() {
		t.Fatal("a self-transition must never fire")
	}
	if exited != 0 {
		t.Fatalf("exit notifications = %d, want 0", exited)
	}
}

func TestForceStateSnapsWithoutBlending(t *testing.T) {
	m := NewMachine()
	m.AddState("idle", stateClip("idle", "hip", 0, 1))
	m.AddState("dead", stateClip("dead", "hip", 3, 1))
	m.SetDefaultState("idle")

	var events []string
	m.OnStateEntered(func(name string) { events = append(events, "enter:"+name) })
	m.OnStateExited(func(name string) { events = append(events, "exit:"+name) })

	m.Start()
	m.ForceState("dead")

	if m.InTransition() {
		t.Fatal("ForceState must not start a blend")
	}
	if m.CurrentState().Name() != "dead" {
		t.Fatalf("current state = %q, want dead", m.CurrentState().Name())
	}
	want := []string{"enter:idle", "exit:idle", "enter:dead"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}

	m.ForceState("unknown")
	if m.CurrentState().Name() != "dead" {
		t.Fatal("ForceState with an unknown name should do nothing")
	}
}

func TestUpdateWritesEverySkeletonBone(t *testing.T) {
	skel := testSkeleton()
	m := NewMachine()
	m.AddState("pose", stateClip("pose", "hip", 2, 1))
	m.SetDefaultState("pose")
	if err := m.AttachSkeleton(skel); err != nil {
		t.Fatalf("AttachSkeleton: %v", err)
	}

	// Dirty the untracked bone so the write is observable.
	skel.BoneByName("tail").Local.Position = [3]float32{9, 9, 9}

	m.Start()
	m.Update(0)

	if got := skel.BoneByName("hip").Local.Position[1]; got != 2 {
		t.Fatalf("tracked bone local y = %v, want 2", got)
	}
	if got := skel.BoneByName("tail").Local; got != pose.Identity() {
		t.Fatalf("untracked bone should be written to identity, got %+v", got)
	}
	if got := skel.BoneByName("tail").World.Position[1]; got != 2 {
		t.Fatalf("world poses should compose through the hip, got y = %v", got)
	}
}

func TestAttachSkeletonRejectsSecondSkeleton(t *testing.T) {
	m := NewMachine()
	s1 := testSkeleton()
	s2 := testSkeleton()

	if err := m.AttachSkeleton(nil); err == nil {
		t.Fatal("attaching nil should error")
	}
	if err := m.AttachSkeleton(s1); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if err := m.AttachSkeleton(s1); err != nil {
		t.Fatalf("reattaching the same skeleton should be allowed: %v", err)
	}
	if err := m.AttachSkeleton(s2); err == nil {
		t.Fatal("attaching a different skeleton should error")
	}
}

func TestStopClearsState(t *testing.T) {
	m := NewMachine()
	m.AddState("idle", stateClip("idle", "hip", 0, 1))
	m.SetDefaultState("idle")

	m.Start()
	m.Stop()

	if m.Running() {
		t.Fatal("machine should not be running after Stop")
	}
	if m.CurrentState() != nil {
		t.Fatal("current state should be cleared after Stop")
	}

	// Updates after Stop are no-ops.
	m.Update(1)
	if m.CurrentState() != nil {
		t.Fatal("Update after Stop must do nothing")
	}
}

func TestStateSpeedScalesClock(t *testing.T) {
	m := NewMachine()
	m.AddState("fast", stateClip("fast", "hip", 0, 10), WithSpeed(2))
	m.SetDefaultState("fast")

	m.Start()
	m.Update(0.5)
	if got := m.CurrentState().Time(); got != 1 {
		t.Fatalf("state time = %v, want 1 with speed 2", got)
	}
}

func TestMirroredStateReflectsPose(t *testing.T) {
	c := clip.NewClip("wave", clip.WithDuration(1))
	idx := c.AddTrack("arm")
	p := pose.Identity()
	p.Position = [3]float32{1, 2, 3}
	p.Rotation = [4]float32{0.1, 0.2, 0.3, 0.9}
	c.AddKeyframe(idx, clip.Keyframe{Time: 0, Pose: p})
	c.Freeze()

	s := NewState("wave", c, WithMirror())
	got := s.Sample("arm")

	if got.Position[0] != -1 || got.Position[1] != 2 || got.Position[2] != 3 {
		t.Fatalf("mirrored position = %v, want (-1,2,3)", got.Position)
	}
	if got.Rotation[1] > 0 || got.Rotation[2] > 0 {
		t.Fatalf("mirrored rotation should negate y and z: %v", got.Rotation)
	}
	if got.Rotation[0] != p.Rotation[0] || got.Rotation[3] != p.Rotation[3] {
		t.Fatalf("mirrored rotation should keep x and w: %v", got.Rotation)
	}
}

func TestAddStateRejectsDuplicatesAndNilSource(t *testing.T) {
	m := NewMachine()
	if m.AddState("idle", nil) != nil {
		t.Fatal("nil source should be rejected")
	}
	if m.AddState("idle", stateClip("idle", "hip", 0, 1)) == nil {
		t.Fatal("first AddState should succeed")
	}
	if m.AddState("idle", stateClip("idle2", "hip", 0, 1)) != nil {
		t.Fatal("duplicate state name should be rejected")
	}
}
