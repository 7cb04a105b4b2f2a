package stage

import (
	"testing"

	"github.com/Carmen-Shannon/rig-go/engine/character"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
	"github.com/Carmen-Shannon/rig-go/engine/skeleton"
)

func crowdCharacter(name string) character.Character {
	s := skeleton.NewSkeleton(name)
	s.AddBone("hip", -1, pose.Identity())
	up := pose.Identity()
	up.Position = [3]float32{0, 1, 0}
	s.AddBone("spine", 0, up)
	if err := s.Finalize(); err != nil {
		panic(err)
	}
	return character.NewCharacter(name, s)
}

func TestAddRemoveCount(t *testing.T) {
	s := NewStage(WithWorkers(2))

	if s.Add(nil) != 0 {
		t.Fatal("nil character should not register")
	}

	id1 := s.Add(crowdCharacter("a"))
	id2 := s.Add(crowdCharacter("b"))
	if id1 == 0 || id2 == 0 || id1 == id2 {
		t.Fatalf("ids should be distinct and nonzero: %d, %d", id1, id2)
	}
	if s.Count() != 2 {
		t.Fatalf("count = %d, want 2", s.Count())
	}
	if s.Character(id1) == nil || s.Character(999) != nil {
		t.Fatal("lookup by id failed")
	}

	if !s.Remove(id1) || s.Remove(id1) {
		t.Fatal("Remove should delete once and then report false")
	}
	if s.Count() != 1 {
		t.Fatalf("count = %d, want 1", s.Count())
	}
}

func TestUpdateRunsEveryCharacter(t *testing.T) {
	s := NewStage(WithWorkers(2))

	chars := make([]character.Character, 0, 8)
	for i := 0; i < 8; i++ {
		c := crowdCharacter("c")
		c.Skeleton().BoneByName("hip").Local.Position[1] = 5
		chars = append(chars, c)
		s.Add(c)
	}

	s.Update(0.016)

	// Update blocks until every character's world poses are recomputed.
	for i, c := range chars {
		if got := c.Skeleton().BoneByName("spine").World.Position[1]; got != 6 {
			t.Fatalf("character %d spine world y = %v, want 6", i, got)
		}
	}
}

func TestUpdateHandlesCrowdLargerThanQueue(t *testing.T) {
	s := NewStage(WithWorkers(4))

	count := taskQueueSize + 40
	chars := make([]character.Character, 0, count)
	for i := 0; i < count; i++ {
		c := crowdCharacter("c")
		c.Skeleton().BoneByName("hip").Local.Position[1] = 5
		chars = append(chars, c)
		s.Add(c)
	}

	s.Update(0.016)

	for i, c := range chars {
		if got := c.Skeleton().BoneByName("spine").World.Position[1]; got != 6 {
			t.Fatalf("character %d spine world y = %v, want 6", i, got)
		}
	}
}

func TestUpdateOnEmptyStageIsNoOp(t *testing.T) {
	s := NewStage(WithWorkers(1))
	s.Update(0.016)
	if s.Count() != 0 {
		t.Fatal("empty stage should stay empty")
	}
}

func TestClearKeepsStageUsable(t *testing.T) {
	s := NewStage(WithWorkers(1))
	s.Add(crowdCharacter("a"))
	s.Clear()
	if s.Count() != 0 {
		t.Fatalf("count after Clear = %d, want 0", s.Count())
	}

	if s.Add(crowdCharacter("b")) == 0 {
		t.Fatal("stage should accept characters after Clear")
	}
	s.Update(0.016)
}
