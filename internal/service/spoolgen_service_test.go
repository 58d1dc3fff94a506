package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/Crisvalpo/PIPING-sub001/internal/testutil"
	"gorm.io/gorm"
)

func setupSpoolGenTest(t *testing.T) (*gorm.DB, *SpoolGenService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	revisionSvc := NewRevisionService(repos.Isometric, repos.Revision, repos.Structure, nil)
	impactSvc := NewImpactService(repos.Impact)
	svc := NewSpoolGenService(repos.Isometric, repos.Revision, repos.Structure, impactSvc, revisionSvc)
	return db, svc
}

func TestSpoolGenImportUnknownIsometric(t *testing.T) {
	db, svc := setupSpoolGenTest(t)
	project := testutil.SeedProject(t, db, "PRJ-01", "Planta Norte")

	result, err := svc.Import(context.Background(), project.ID, "user-1", &SpoolGenInput{
		IsoNumber:      "ISO-NOPE",
		RevisionNumber: "0",
	})
	if err != nil {
		t.Fatalf("Precondition failure should not raise: %v", err)
	}
	if result.Success {
		t.Error("Unknown isometric should be rejected")
	}
	if !strings.Contains(result.Message, "debe anunciarse primero") {
		t.Errorf("Unexpected message: %s", result.Message)
	}

	var count int64
	db.Model(&entity.Revision{}).Count(&count)
	if count != 0 {
		t.Errorf("Rejection must write nothing, found %d revisions", count)
	}
}

func TestSpoolGenImportNoCurrentRevision(t *testing.T) {
	db, svc := setupSpoolGenTest(t)
	project := testutil.SeedProject(t, db, "PRJ-02", "Planta Sur")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	testutil.SeedRevision(t, db, iso.ID, "0", entity.RevisionStatusObsoleta, time.Now())

	result, err := svc.Import(context.Background(), project.ID, "user-1", &SpoolGenInput{
		IsoNumber:      "ISO-100",
		RevisionNumber: "0",
	})
	if err != nil {
		t.Fatalf("Precondition failure should not raise: %v", err)
	}
	if result.Success {
		t.Error("Document without a VIGENTE revision should be rejected")
	}
}

func TestSpoolGenImportRevisionMismatch(t *testing.T) {
	db, svc := setupSpoolGenTest(t)
	project := testutil.SeedProject(t, db, "PRJ-03", "Planta Este")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	current := testutil.SeedRevision(t, db, iso.ID, "2", entity.RevisionStatusVigente, time.Now())

	result, err := svc.Import(context.Background(), project.ID, "user-1", &SpoolGenInput{
		IsoNumber:      "ISO-100",
		RevisionNumber: "1",
		Materials: []TakeoffRow{
			{SpoolName: "SP-1", ItemCode: "PIPE-6", Quantity: 3, Unit: "m"},
		},
	})
	if err != nil {
		t.Fatalf("Mismatch should not raise: %v", err)
	}
	if result.Success {
		t.Error("Revision mismatch should be rejected")
	}
	if !strings.Contains(result.Message, "1") || !strings.Contains(result.Message, "2") {
		t.Errorf("Message should name both revisions: %s", result.Message)
	}

	// Zero writes on rejection.
	var revCount, spoolCount int64
	db.Model(&entity.Revision{}).Count(&revCount)
	db.Model(&entity.Spool{}).Count(&spoolCount)
	if revCount != 1 || spoolCount != 0 {
		t.Errorf("Rejection wrote data: revisions=%d spools=%d", revCount, spoolCount)
	}
	var stored entity.Revision
	db.First(&stored, "id = ?", current.ID)
	if stored.Status != entity.RevisionStatusVigente {
		t.Errorf("Current revision status must not change on rejection, got %s", stored.Status)
	}
}

func TestSpoolGenImportFirstGeneration(t *testing.T) {
	db, svc := setupSpoolGenTest(t)
	project := testutil.SeedProject(t, db, "PRJ-04", "Planta Oeste")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	baseline := testutil.SeedRevision(t, db, iso.ID, "0", entity.RevisionStatusVigente, time.Now().Add(-time.Hour))

	input := &SpoolGenInput{
		IsoNumber:      "ISO-100",
		RevisionNumber: "0",
		Welds: []WeldRow{
			{Tag: "W-1", SpoolName: "SP-1", Type: "BW", NPS: "6", Destination: "TALLER"},
			{Tag: "W-2", SpoolName: "SP-1", Type: "BW", NPS: "6", Destination: "CAMPO"},
		},
		Bolts: []BoltRow{
			{Tag: "B-1", SpoolName: "SP-1", NPS: "6", Rating: "150"},
		},
		Materials: []TakeoffRow{
			{SpoolName: "SP-1", ItemCode: "PIPE-6", Description: "Pipe 6in", Quantity: 12, Unit: "m", NPS: "6", Material: "A106"},
			{SpoolName: "SP-1", ItemCode: "ELBOW-6", Description: "Elbow 90", Quantity: 2, Unit: "un", NPS: "6", Material: "A106"},
		},
	}

	result, err := svc.Import(context.Background(), project.ID, "user-1", input)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Import rejected: %s", result.Message)
	}

	// A fresh same-code revision now carries the content.
	var newRev entity.Revision
	if err := db.First(&newRev, "id = ?", result.RevisionID).Error; err != nil {
		t.Fatalf("New revision missing: %v", err)
	}
	if newRev.Code != "0" {
		t.Errorf("New revision keeps the code, got %q", newRev.Code)
	}
	if newRev.Status != entity.RevisionStatusVigente {
		t.Errorf("New revision should be VIGENTE, got %s", newRev.Status)
	}
	if newRev.SpoolingStatus != entity.SpoolingStatusSpooleado {
		t.Errorf("New revision should be SPOOLEADO, got %s", newRev.SpoolingStatus)
	}
	if newRev.TotalJointsCount != 3 {
		t.Errorf("Expected 3 joints counted, got %d", newRev.TotalJointsCount)
	}

	var old entity.Revision
	db.First(&old, "id = ?", baseline.ID)
	if old.Status != entity.RevisionStatusObsoleta {
		t.Errorf("Baseline revision should be retired, got %s", old.Status)
	}

	var stored entity.Isometric
	db.First(&stored, "id = ?", iso.ID)
	if stored.CurrentRevisionID != newRev.ID {
		t.Error("Pointer should name the new revision")
	}

	// One spool, three joints, two material lines, all under the new revision.
	var spools []entity.Spool
	db.Where("revision_id = ?", newRev.ID).Find(&spools)
	if len(spools) != 1 || spools[0].Name != "SP-1" {
		t.Fatalf("Expected one spool SP-1, got %+v", spools)
	}
	var joints []entity.Joint
	db.Where("revision_id = ?", newRev.ID).Order("tag").Find(&joints)
	if len(joints) != 3 {
		t.Fatalf("Expected 3 joints, got %d", len(joints))
	}
	for _, joint := range joints {
		if joint.SpoolID != spools[0].ID {
			t.Errorf("Joint %s should resolve to the inserted spool", joint.Tag)
		}
	}
	scopeByTag := map[string]string{}
	for _, joint := range joints {
		scopeByTag[joint.Tag] = joint.Scope
	}
	if scopeByTag["W-1"] != entity.JointScopeShop {
		t.Errorf("Shop weld scope wrong: %s", scopeByTag["W-1"])
	}
	if scopeByTag["W-2"] != entity.JointScopeField {
		t.Errorf("CAMPO weld should map to FIELD, got %s", scopeByTag["W-2"])
	}
	if scopeByTag["B-1"] != entity.JointScopeField {
		t.Errorf("Bolts are field scope, got %s", scopeByTag["B-1"])
	}
	var materialCount int64
	db.Model(&entity.MaterialItem{}).Where("revision_id = ?", newRev.ID).Count(&materialCount)
	if materialCount != 2 {
		t.Errorf("Expected 2 material lines, got %d", materialCount)
	}

	// First generation against an empty baseline: everything is NEW.
	var impacts []entity.RevisionImpact
	db.Where("revision_id = ?", newRev.ID).Find(&impacts)
	if len(impacts) != 4 {
		t.Fatalf("Expected 4 NEW impacts (1 spool + 3 joints), got %d", len(impacts))
	}
	for _, impact := range impacts {
		if impact.ChangeType != entity.ImpactChangeNew {
			t.Errorf("Impact %s/%s should be NEW, got %s",
				impact.EntityType, impact.EntityIdentifier, impact.ChangeType)
		}
	}
}

func TestSpoolGenImportModifiedMaterial(t *testing.T) {
	db, svc := setupSpoolGenTest(t)
	project := testutil.SeedProject(t, db, "PRJ-05", "Planta Central")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	baseline := testutil.SeedRevision(t, db, iso.ID, "1", entity.RevisionStatusVigente, time.Now().Add(-time.Hour))

	prior := entity.Spool{
		ID:         repository.NewID(),
		RevisionID: baseline.ID,
		Name:       "SP-1",
		Diameter:   "6",
		Material:   "A106",
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	if err := db.Create(&prior).Error; err != nil {
		t.Fatalf("Seed spool: %v", err)
	}

	result, err := svc.Import(context.Background(), project.ID, "user-1", &SpoolGenInput{
		IsoNumber:      "ISO-100",
		RevisionNumber: "1",
		Materials: []TakeoffRow{
			{SpoolName: "SP-1", ItemCode: "PIPE-6", Quantity: 12, Unit: "m", NPS: "6", Material: "A53"},
		},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Import rejected: %s", result.Message)
	}

	var impacts []entity.RevisionImpact
	db.Where("revision_id = ?", result.RevisionID).Find(&impacts)
	if len(impacts) != 1 {
		t.Fatalf("Expected exactly one impact, got %d", len(impacts))
	}
	impact := impacts[0]
	if impact.EntityType != entity.ImpactEntitySpool || impact.EntityIdentifier != "SP-1" {
		t.Errorf("Impact should target spool SP-1: %+v", impact)
	}
	if impact.ChangeType != entity.ImpactChangeModify {
		t.Errorf("Expected MODIFY, got %s", impact.ChangeType)
	}
	if len(impact.Changes) != 1 {
		t.Fatalf("Expected one field change, got %+v", impact.Changes)
	}
	change := impact.Changes[0]
	if change.Field != "material" || change.Old != "A106" || change.New != "A53" {
		t.Errorf("Unexpected change payload: %+v", change)
	}

	var old entity.Revision
	db.First(&old, "id = ?", baseline.ID)
	if old.Status != entity.RevisionStatusObsoleta {
		t.Errorf("Diffed revision should be OBSOLETA, got %s", old.Status)
	}

	// Prior generation rows stay attached to the retired revision.
	var priorCount int64
	db.Model(&entity.Spool{}).Where("revision_id = ?", baseline.ID).Count(&priorCount)
	if priorCount != 1 {
		t.Errorf("Prior spool rows must survive, got %d", priorCount)
	}
}

// Repeating the identical dataset produces a new generation with an empty
// diff: no impacts, previous generation retired.
func TestSpoolGenImportIdenticalDatasetNoImpacts(t *testing.T) {
	db, svc := setupSpoolGenTest(t)
	project := testutil.SeedProject(t, db, "PRJ-06", "Planta Piloto")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	testutil.SeedRevision(t, db, iso.ID, "0", entity.RevisionStatusVigente, time.Now().Add(-time.Hour))

	input := &SpoolGenInput{
		IsoNumber:      "ISO-100",
		RevisionNumber: "0",
		Materials: []TakeoffRow{
			{SpoolName: "SP-1", ItemCode: "PIPE-6", Quantity: 12, Unit: "m", NPS: "6", Material: "A106"},
		},
	}

	first, err := svc.Import(context.Background(), project.ID, "user-1", input)
	if err != nil || !first.Success {
		t.Fatalf("First import failed: %v / %+v", err, first)
	}
	second, err := svc.Import(context.Background(), project.ID, "user-1", input)
	if err != nil || !second.Success {
		t.Fatalf("Second import failed: %v / %+v", err, second)
	}

	var count int64
	db.Model(&entity.RevisionImpact{}).Where("revision_id = ?", second.RevisionID).Count(&count)
	if count != 0 {
		t.Errorf("Identical dataset should record no impacts, got %d", count)
	}

	var firstRev entity.Revision
	db.First(&firstRev, "id = ?", first.RevisionID)
	if firstRev.Status != entity.RevisionStatusObsoleta {
		t.Errorf("First generation should be retired, got %s", firstRev.Status)
	}
}

func TestDeriveSpoolsFirstRowWins(t *testing.T) {
	rows := []TakeoffRow{
		{SpoolName: "SP-1", NPS: "6", Material: "A106", RequiresPWHT: true},
		{SpoolName: "SP-1", NPS: "4", Material: "A53"},
		{SpoolName: " ", NPS: "2"},
		{SpoolName: "SP-2", NPS: "2", Material: "A106"},
	}

	spools := deriveSpools(rows)
	if len(spools) != 2 {
		t.Fatalf("Expected 2 unique spools, got %d", len(spools))
	}
	if spools[0].Name != "SP-1" || spools[0].Diameter != "6" || !spools[0].RequiresPWHT {
		t.Errorf("First row naming a spool should win: %+v", spools[0])
	}
}
