package skeleton

import (
	"testing"

	"github.com/Carmen-Shannon/rig-go/engine/pose"
)

func TestTwoBoneWorldPose(t *testing.T) {
	s := NewSkeleton("test")
	s.AddBone("root", -1, pose.Identity())
	child := pose.Identity()
	child.Position = [3]float32{0, 1, 0}
	s.AddBone("child", 0, child)

	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	s.CalculateWorldPoses()

	root := s.Bone(0)
	if root.World != root.Local {
		t.Fatalf("root world should equal its local pose: %+v vs %+v", root.World, root.Local)
	}
	if got := s.Bone(1).World.Position; got != ([3]float32{0, 1, 0}) {
		t.Fatalf("child world position = %v, want (0,1,0)", got)
	}
}

func TestThreeBoneChainComposition(t *testing.T) {
	s := NewSkeleton("chain")
	s.AddBone("a", -1, pose.Identity())
	up := pose.Identity()
	up.Position = [3]float32{0, 1, 0}
	s.AddBone("b", 0, up)
	s.AddBone("c", 1, up)

	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	s.CalculateWorldPoses()

	if got := s.BoneByName("c").World.Position; got != ([3]float32{0, 2, 0}) {
		t.Fatalf("grandchild world position = %v, want (0,2,0)", got)
	}
}

func TestUnfinalizedIterativeFallback(t *testing.T) {
	// Child declared before its parent; the fixed-point loop must still
	// converge without a finalized order.
	s := NewSkeleton("unordered")
	up := pose.Identity()
	up.Position = [3]float32{0, 1, 0}
	s.AddBone("child", 1, up)
	s.AddBone("root", -1, pose.Identity())

	s.CalculateWorldPoses()

	if got := s.BoneByName("child").World.Position; got != ([3]float32{0, 1, 0}) {
		t.Fatalf("child world position = %v, want (0,1,0)", got)
	}
}

func TestFinalizeDetectsCycle(t *testing.T) {
	s := NewSkeleton("cyclic")
	s.AddBone("a", 1, pose.Identity())
	s.AddBone("b", 0, pose.Identity())

	if err := s.Finalize(); err == nil {
		t.Fatal("Finalize should reject a cyclic parent graph")
	}
	if s.Finalized() {
		t.Fatal("skeleton must not report finalized after a failed Finalize")
	}
}

func TestFinalizeRejectsSelfParent(t *testing.T) {
	s := NewSkeleton("selfie")
	s.AddBone("a", 0, pose.Identity())
	if err := s.Finalize(); err == nil {
		t.Fatal("Finalize should reject a self-parented bone")
	}
}

func TestFinalizeRejectsOutOfRangeParent(t *testing.T) {
	s := NewSkeleton("dangling")
	s.AddBone("a", 5, pose.Identity())
	if err := s.Finalize(); err == nil {
		t.Fatal("Finalize should reject an out-of-range parent index")
	}
}

func TestAddBoneRejectsDuplicateName(t *testing.T) {
	s := NewSkeleton("dup")
	if s.AddBone("a", -1, pose.Identity()) == nil {
		t.Fatal("first AddBone should succeed")
	}
	if s.AddBone("a", -1, pose.Identity()) != nil {
		t.Fatal("duplicate AddBone should return nil")
	}
	if s.Count() != 1 {
		t.Fatalf("count = %d, want 1", s.Count())
	}
}

func TestAddBoneInvalidatesFinalize(t *testing.T) {
	s := NewSkeleton("grow")
	s.AddBone("a", -1, pose.Identity())
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	s.AddBone("b", 0, pose.Identity())
	if s.Finalized() {
		t.Fatal("adding a bone should invalidate finalization")
	}
}

func TestLookups(t *testing.T) {
	s := NewSkeleton("lookup")
	s.AddBone("a", -1, pose.Identity())

	if s.Bone(-1) != nil || s.Bone(5) != nil {
		t.Fatal("out-of-range index should return nil")
	}
	if s.BoneByName("missing") != nil {
		t.Fatal("unknown name should return nil")
	}
	if s.BoneByName("a") == nil {
		t.Fatal("known name should resolve")
	}
}
