package service

import (
	"testing"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
)

func TestCalculateDiffEmptyGenerations(t *testing.T) {
	diff := CalculateDiff(nil, nil, nil, nil)
	if !diff.Empty() {
		t.Errorf("Expected empty diff, got %d entries", diff.Total())
	}
}

func TestCalculateDiffIdenticalGenerations(t *testing.T) {
	spools := []entity.Spool{
		{Name: "SP-1", Diameter: "6", Material: "A106", RequiresPWHT: true},
		{Name: "SP-2", Diameter: "4", Material: "A53"},
	}
	joints := []entity.Joint{
		{Tag: "W-1", Category: entity.JointCategoryWeld, Type: "BW", Diameter: "6", Scope: entity.JointScopeShop},
	}

	diff := CalculateDiff(spools, spools, joints, joints)
	if !diff.Empty() {
		t.Errorf("Identical generations should produce no diff, got %d entries", diff.Total())
	}
}

func TestCalculateDiffAddedAndRemoved(t *testing.T) {
	oldSpools := []entity.Spool{
		{Name: "SP-1", Diameter: "6", Material: "A106"},
		{Name: "SP-2", Diameter: "4", Material: "A53"},
	}
	newSpools := []entity.Spool{
		{Name: "SP-1", Diameter: "6", Material: "A106"},
		{Name: "SP-3", Diameter: "2", Material: "A106"},
	}
	oldJoints := []entity.Joint{
		{Tag: "W-1", Category: entity.JointCategoryWeld, Type: "BW", Diameter: "6"},
	}
	newJoints := []entity.Joint{
		{Tag: "W-1", Category: entity.JointCategoryWeld, Type: "BW", Diameter: "6"},
		{Tag: "B-1", Category: entity.JointCategoryBolt, Diameter: "4"},
	}

	diff := CalculateDiff(oldSpools, newSpools, oldJoints, newJoints)

	if len(diff.AddedSpools) != 1 || diff.AddedSpools[0].Identifier != "SP-3" {
		t.Errorf("Expected SP-3 added, got %+v", diff.AddedSpools)
	}
	if len(diff.RemovedSpools) != 1 || diff.RemovedSpools[0].Identifier != "SP-2" {
		t.Errorf("Expected SP-2 removed, got %+v", diff.RemovedSpools)
	}
	if len(diff.ModifiedSpools) != 0 {
		t.Errorf("Expected no modified spools, got %+v", diff.ModifiedSpools)
	}
	if len(diff.AddedJoints) != 1 || diff.AddedJoints[0].Identifier != "B-1" {
		t.Errorf("Expected B-1 added, got %+v", diff.AddedJoints)
	}
	if len(diff.RemovedJoints) != 0 {
		t.Errorf("Expected no removed joints, got %+v", diff.RemovedJoints)
	}
}

func TestCalculateDiffModifiedFields(t *testing.T) {
	oldSpools := []entity.Spool{
		{Name: "SP-1", Diameter: "6", Material: "A106", RequiresPWHT: false},
	}
	newSpools := []entity.Spool{
		{Name: "SP-1", Diameter: "8", Material: "A106", RequiresPWHT: true},
	}
	oldJoints := []entity.Joint{
		{Tag: "W-1", Type: "BW", Diameter: "6", Scope: entity.JointScopeShop},
	}
	newJoints := []entity.Joint{
		{Tag: "W-1", Type: "SW", Diameter: "6", Scope: entity.JointScopeField},
	}

	diff := CalculateDiff(oldSpools, newSpools, oldJoints, newJoints)

	if len(diff.ModifiedSpools) != 1 {
		t.Fatalf("Expected 1 modified spool, got %d", len(diff.ModifiedSpools))
	}
	spoolChanges := diff.ModifiedSpools[0].Changes
	if len(spoolChanges) != 2 {
		t.Fatalf("Expected 2 spool field changes, got %+v", spoolChanges)
	}
	if spoolChanges[0].Field != "diameter" || spoolChanges[0].Old != "6" || spoolChanges[0].New != "8" {
		t.Errorf("Unexpected diameter change: %+v", spoolChanges[0])
	}
	if spoolChanges[1].Field != "requires_pwht" || spoolChanges[1].Old != "false" || spoolChanges[1].New != "true" {
		t.Errorf("Unexpected pwht change: %+v", spoolChanges[1])
	}

	if len(diff.ModifiedJoints) != 1 {
		t.Fatalf("Expected 1 modified joint, got %d", len(diff.ModifiedJoints))
	}
	jointChanges := diff.ModifiedJoints[0].Changes
	if len(jointChanges) != 2 {
		t.Fatalf("Expected 2 joint field changes, got %+v", jointChanges)
	}
	if jointChanges[0].Field != "type" || jointChanges[1].Field != "scope" {
		t.Errorf("Unexpected joint changes: %+v", jointChanges)
	}
}

// A field outside the watch-list must not produce a modification.
func TestCalculateDiffIgnoresUnwatchedFields(t *testing.T) {
	oldSpools := []entity.Spool{
		{Name: "SP-1", Diameter: "6", Material: "A106", Sheet: "1", PipingClass: "CS150"},
	}
	newSpools := []entity.Spool{
		{Name: "SP-1", Diameter: "6", Material: "A106", Sheet: "2", PipingClass: "CS300"},
	}
	oldJoints := []entity.Joint{
		{Tag: "W-1", Type: "BW", Diameter: "6", Scope: entity.JointScopeShop, Schedule: "40"},
	}
	newJoints := []entity.Joint{
		{Tag: "W-1", Type: "BW", Diameter: "6", Scope: entity.JointScopeShop, Schedule: "80"},
	}

	diff := CalculateDiff(oldSpools, newSpools, oldJoints, newJoints)
	if !diff.Empty() {
		t.Errorf("Unwatched field changes should not register, got %d entries", diff.Total())
	}
}

// Swapping the generations must mirror additions into removals and keep
// modifications with old/new values exchanged.
func TestCalculateDiffSymmetry(t *testing.T) {
	genA := []entity.Spool{
		{Name: "SP-1", Material: "A106"},
		{Name: "SP-2", Material: "A53"},
	}
	genB := []entity.Spool{
		{Name: "SP-2", Material: "A333"},
		{Name: "SP-3", Material: "A106"},
	}

	forward := CalculateDiff(genA, genB, nil, nil)
	backward := CalculateDiff(genB, genA, nil, nil)

	if len(forward.AddedSpools) != len(backward.RemovedSpools) {
		t.Errorf("Added(A->B)=%d should equal Removed(B->A)=%d",
			len(forward.AddedSpools), len(backward.RemovedSpools))
	}
	if len(forward.RemovedSpools) != len(backward.AddedSpools) {
		t.Errorf("Removed(A->B)=%d should equal Added(B->A)=%d",
			len(forward.RemovedSpools), len(backward.AddedSpools))
	}
	if len(forward.ModifiedSpools) != 1 || len(backward.ModifiedSpools) != 1 {
		t.Fatalf("Both directions should report SP-2 modified")
	}
	fwd := forward.ModifiedSpools[0].Changes[0]
	bwd := backward.ModifiedSpools[0].Changes[0]
	if fwd.Old != bwd.New || fwd.New != bwd.Old {
		t.Errorf("Reversed diff should swap old/new: %+v vs %+v", fwd, bwd)
	}
}

// A rename is a removal plus an addition, never a modification.
func TestCalculateDiffRename(t *testing.T) {
	oldSpools := []entity.Spool{{Name: "SP-1", Material: "A106"}}
	newSpools := []entity.Spool{{Name: "SP-1B", Material: "A106"}}

	diff := CalculateDiff(oldSpools, newSpools, nil, nil)
	if len(diff.AddedSpools) != 1 || len(diff.RemovedSpools) != 1 || len(diff.ModifiedSpools) != 0 {
		t.Errorf("Rename should be add+remove, got added=%d removed=%d modified=%d",
			len(diff.AddedSpools), len(diff.RemovedSpools), len(diff.ModifiedSpools))
	}
}
