package service

import (
	"strconv"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
)

// EntityDiff classifies one spool or joint against the previous generation.
type EntityDiff struct {
	Identifier string               `json:"identifier"`
	Changes    []entity.FieldChange `json:"changes,omitempty"`
}

// DiffResult is the outcome of comparing two revision generations. Entities
// present in both generations with identical watched fields are omitted.
type DiffResult struct {
	AddedSpools    []EntityDiff `json:"added_spools"`
	RemovedSpools  []EntityDiff `json:"removed_spools"`
	ModifiedSpools []EntityDiff `json:"modified_spools"`
	AddedJoints    []EntityDiff `json:"added_joints"`
	RemovedJoints  []EntityDiff `json:"removed_joints"`
	ModifiedJoints []EntityDiff `json:"modified_joints"`
}

// Empty reports whether the diff contains no changes at all.
func (d *DiffResult) Empty() bool {
	return len(d.AddedSpools) == 0 && len(d.RemovedSpools) == 0 && len(d.ModifiedSpools) == 0 &&
		len(d.AddedJoints) == 0 && len(d.RemovedJoints) == 0 && len(d.ModifiedJoints) == 0
}

// Total counts every classified entity across both collections.
func (d *DiffResult) Total() int {
	return len(d.AddedSpools) + len(d.RemovedSpools) + len(d.ModifiedSpools) +
		len(d.AddedJoints) + len(d.RemovedJoints) + len(d.ModifiedJoints)
}

// CalculateDiff compares two generations of spools and joints. Entities are
// matched by natural key only (spool name, joint tag); a rename shows up as
// one removal plus one addition. Output order follows input order: new slice
// for added/modified, old slice for removed. Pure function, no I/O.
func CalculateDiff(oldSpools, newSpools []entity.Spool, oldJoints, newJoints []entity.Joint) *DiffResult {
	result := &DiffResult{}

	oldSpoolsByName := make(map[string]entity.Spool, len(oldSpools))
	for _, s := range oldSpools {
		oldSpoolsByName[s.Name] = s
	}
	newSpoolNames := make(map[string]struct{}, len(newSpools))

	for _, s := range newSpools {
		newSpoolNames[s.Name] = struct{}{}
		old, exists := oldSpoolsByName[s.Name]
		if !exists {
			result.AddedSpools = append(result.AddedSpools, EntityDiff{Identifier: s.Name})
			continue
		}
		if changes := spoolChanges(old, s); len(changes) > 0 {
			result.ModifiedSpools = append(result.ModifiedSpools, EntityDiff{Identifier: s.Name, Changes: changes})
		}
	}
	for _, s := range oldSpools {
		if _, exists := newSpoolNames[s.Name]; !exists {
			result.RemovedSpools = append(result.RemovedSpools, EntityDiff{Identifier: s.Name})
		}
	}

	oldJointsByTag := make(map[string]entity.Joint, len(oldJoints))
	for _, j := range oldJoints {
		oldJointsByTag[j.Tag] = j
	}
	newJointTags := make(map[string]struct{}, len(newJoints))

	for _, j := range newJoints {
		newJointTags[j.Tag] = struct{}{}
		old, exists := oldJointsByTag[j.Tag]
		if !exists {
			result.AddedJoints = append(result.AddedJoints, EntityDiff{Identifier: j.Tag})
			continue
		}
		if changes := jointChanges(old, j); len(changes) > 0 {
			result.ModifiedJoints = append(result.ModifiedJoints, EntityDiff{Identifier: j.Tag, Changes: changes})
		}
	}
	for _, j := range oldJoints {
		if _, exists := newJointTags[j.Tag]; !exists {
			result.RemovedJoints = append(result.RemovedJoints, EntityDiff{Identifier: j.Tag})
		}
	}

	return result
}

// spoolChanges compares the spool watch-list: diameter, material, PWHT flag.
func spoolChanges(old, new entity.Spool) []entity.FieldChange {
	var changes []entity.FieldChange
	if old.Diameter != new.Diameter {
		changes = append(changes, entity.FieldChange{Field: "diameter", Old: old.Diameter, New: new.Diameter})
	}
	if old.Material != new.Material {
		changes = append(changes, entity.FieldChange{Field: "material", Old: old.Material, New: new.Material})
	}
	if old.RequiresPWHT != new.RequiresPWHT {
		changes = append(changes, entity.FieldChange{
			Field: "requires_pwht",
			Old:   strconv.FormatBool(old.RequiresPWHT),
			New:   strconv.FormatBool(new.RequiresPWHT),
		})
	}
	return changes
}

// jointChanges compares the joint watch-list: type, diameter, scope.
func jointChanges(old, new entity.Joint) []entity.FieldChange {
	var changes []entity.FieldChange
	if old.Type != new.Type {
		changes = append(changes, entity.FieldChange{Field: "type", Old: old.Type, New: new.Type})
	}
	if old.Diameter != new.Diameter {
		changes = append(changes, entity.FieldChange{Field: "diameter", Old: old.Diameter, New: new.Diameter})
	}
	if old.Scope != new.Scope {
		changes = append(changes, entity.FieldChange{Field: "scope", Old: old.Scope, New: new.Scope})
	}
	return changes
}
