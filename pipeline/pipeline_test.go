package pipeline

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/stage"
)

func TestPipeline_Add_PreservesOrder(t *testing.T) {
	pl := New()
	kinds := []stage.Kind{stage.KindMatch, stage.KindUnwind, stage.KindGroup, stage.KindSort, stage.KindLimit}
	payloads := []any{bson.M{"a": 1}, bson.M{"path": "$items"}, bson.M{"_id": "$cat"}, bson.M{"total": -1}, 10}

	for i, k := range kinds {
		if _, err := pl.Add(k, payloads[i]); err != nil {
			t.Fatalf("Add(%s) failed: %v", k, err)
		}
	}

	if pl.Len() != len(kinds) {
		t.Fatalf("expected %d stages, got %d", len(kinds), pl.Len())
	}
	for i, st := range pl.Stages() {
		if st.Kind() != kinds[i] {
			t.Errorf("stage %d: expected kind %s, got %s", i, kinds[i], st.Kind())
		}
	}
}

func TestPipeline_Add_InvalidPayload(t *testing.T) {
	pl := New()
	_, err := pl.Add(stage.KindLimit, bson.M{"not": "a number"})
	if !errors.IsCode(err, errors.ErrCodeInvalidStage) {
		t.Fatalf("expected INVALID_STAGE, got %v", err)
	}
	if pl.Len() != 0 {
		t.Error("failed Add must not append a stage")
	}
}

func TestPipeline_AddNamed_DuplicateName(t *testing.T) {
	pl := New()
	if _, err := pl.AddNamed(stage.KindMatch, bson.M{"a": 1}, "filter"); err != nil {
		t.Fatalf("first AddNamed failed: %v", err)
	}
	_, err := pl.AddNamed(stage.KindSort, bson.M{"a": -1}, "filter")
	if !errors.IsCode(err, errors.ErrCodeDuplicateStageName) {
		t.Fatalf("expected DUPLICATE_STAGE_NAME, got %v", err)
	}
	if pl.Len() != 1 {
		t.Errorf("expected 1 stage after rejected add, got %d", pl.Len())
	}
}

func TestPipeline_Stage_OccurrenceIndex(t *testing.T) {
	pl := New()
	pl.Add(stage.KindMatch, bson.M{"first": true})
	pl.Add(stage.KindUnwind, bson.M{"path": "$items"})
	pl.Add(stage.KindMatch, bson.M{"second": true})
	pl.Add(stage.KindMatch, bson.M{"third": true})

	second, err := pl.Stage(stage.KindMatch, 1)
	if err != nil {
		t.Fatalf("Stage(match, 1) failed: %v", err)
	}
	if second.Document()["second"] != true {
		t.Errorf("expected the second match stage, got payload %v", second.Payload())
	}

	third, err := pl.Stage(stage.KindMatch, 2)
	if err != nil {
		t.Fatalf("Stage(match, 2) failed: %v", err)
	}
	if third.Document()["third"] != true {
		t.Errorf("expected the third match stage, got payload %v", third.Payload())
	}
}

func TestPipeline_Stage_NotFound(t *testing.T) {
	pl := New()
	pl.Add(stage.KindMatch, bson.M{"a": 1})

	tests := []struct {
		name       string
		kind       stage.Kind
		occurrence int
	}{
		{"missing kind", stage.KindGroup, 0},
		{"occurrence past end", stage.KindMatch, 1},
		{"negative occurrence", stage.KindMatch, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pl.Stage(tc.kind, tc.occurrence)
			if !errors.IsCode(err, errors.ErrCodeStageNotFound) {
				t.Fatalf("expected STAGE_NOT_FOUND, got %v", err)
			}
			appErr, _ := errors.AsAppError(err)
			if appErr.Details["kind"] != string(tc.kind) {
				t.Errorf("expected kind detail %q, got %v", tc.kind, appErr.Details["kind"])
			}
			if appErr.Details["occurrence"] != tc.occurrence {
				t.Errorf("expected occurrence detail %d, got %v", tc.occurrence, appErr.Details["occurrence"])
			}
		})
	}
}

func TestPipeline_StageByName_LiveReference(t *testing.T) {
	pl := New()
	pl.AddNamed(stage.KindMatch, bson.M{"orderStatus": "pending"}, "matchOrders")

	st, err := pl.StageByName("matchOrders")
	if err != nil {
		t.Fatalf("StageByName failed: %v", err)
	}
	st.Document()["orderStatus"] = "complete"

	docs, err := pl.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	match := docs[0][0].Value.(bson.M)
	if match["orderStatus"] != "complete" {
		t.Errorf("retroactive edit not reflected in build: %v", match)
	}
}

func TestPipeline_StageByName_NotFound(t *testing.T) {
	pl := New()
	pl.AddNamed(stage.KindMatch, bson.M{"a": 1}, "present")

	_, err := pl.StageByName("absent")
	if !errors.IsCode(err, errors.ErrCodeStageNotFound) {
		t.Fatalf("expected STAGE_NOT_FOUND, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["name"] != "absent" {
		t.Errorf("expected name detail 'absent', got %v", appErr.Details["name"])
	}

	// An empty name never matches, even when unnamed stages exist.
	pl.Add(stage.KindSort, bson.M{"a": 1})
	if _, err := pl.StageByName(""); !errors.IsCode(err, errors.ErrCodeStageNotFound) {
		t.Errorf("expected STAGE_NOT_FOUND for empty name, got %v", err)
	}
}

func TestPipeline_Drop_PreservesRemainderOrder(t *testing.T) {
	pl := New()
	pl.Add(stage.KindMatch, bson.M{"n": 0})
	pl.Add(stage.KindMatch, bson.M{"n": 1})
	pl.Add(stage.KindSort, bson.M{"n": 1})
	pl.Add(stage.KindMatch, bson.M{"n": 2})

	if err := pl.Drop(stage.KindMatch, 1); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}

	wantKinds := []stage.Kind{stage.KindMatch, stage.KindSort, stage.KindMatch}
	stages := pl.Stages()
	if len(stages) != len(wantKinds) {
		t.Fatalf("expected %d stages, got %d", len(wantKinds), len(stages))
	}
	for i, st := range stages {
		if st.Kind() != wantKinds[i] {
			t.Errorf("stage %d: expected %s, got %s", i, wantKinds[i], st.Kind())
		}
	}
	// The survivor that was occurrence 2 is now occurrence 1.
	st, err := pl.Stage(stage.KindMatch, 1)
	if err != nil {
		t.Fatalf("Stage(match, 1) after drop failed: %v", err)
	}
	if st.Document()["n"] != 2 {
		t.Errorf("expected payload n=2 at occurrence 1, got %v", st.Payload())
	}
}

func TestPipeline_Drop_Missing(t *testing.T) {
	pl := New()
	pl.Add(stage.KindMatch, bson.M{"a": 1})

	if err := pl.Drop(stage.KindMatch, 1); !errors.IsCode(err, errors.ErrCodeStageNotFound) {
		t.Errorf("expected STAGE_NOT_FOUND for missing occurrence, got %v", err)
	}
	if err := pl.Drop(stage.KindGroup, 0); !errors.IsCode(err, errors.ErrCodeStageNotFound) {
		t.Errorf("expected STAGE_NOT_FOUND for missing kind, got %v", err)
	}
	if pl.Len() != 1 {
		t.Errorf("failed Drop must not remove anything, len=%d", pl.Len())
	}
}

func TestPipeline_RemoveByName(t *testing.T) {
	pl := New()
	pl.AddNamed(stage.KindMatch, bson.M{"a": 1}, "keep")
	pl.AddNamed(stage.KindSort, bson.M{"a": -1}, "toss")

	if err := pl.RemoveByName("toss"); err != nil {
		t.Fatalf("RemoveByName failed: %v", err)
	}
	if pl.Len() != 1 {
		t.Fatalf("expected 1 stage, got %d", pl.Len())
	}

	// Removing again is an explicit failure, not a silent no-op.
	if err := pl.RemoveByName("toss"); !errors.IsCode(err, errors.ErrCodeStageNotFound) {
		t.Errorf("expected STAGE_NOT_FOUND on repeat removal, got %v", err)
	}

	// The removed name is free for reuse.
	if _, err := pl.AddNamed(stage.KindSort, bson.M{"b": 1}, "toss"); err != nil {
		t.Errorf("expected removed name to be reusable, got %v", err)
	}
}

func TestPipeline_Remove_NodeIdentity(t *testing.T) {
	pl := New()
	st, _ := pl.Add(stage.KindMatch, bson.M{"a": 1})

	if err := pl.Remove(st); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := pl.Remove(st); !errors.IsCode(err, errors.ErrCodeStageNotFound) {
		t.Errorf("expected STAGE_NOT_FOUND removing a detached node, got %v", err)
	}

	// A structurally equal but distinct node is not the same stage.
	other, _ := stage.New(stage.KindMatch, bson.M{"a": 1})
	pl.Add(stage.KindMatch, bson.M{"a": 1})
	if err := pl.Remove(other); !errors.IsCode(err, errors.ErrCodeStageNotFound) {
		t.Errorf("expected STAGE_NOT_FOUND for foreign node, got %v", err)
	}
}

func TestPipeline_ForEach_Order(t *testing.T) {
	pl := New()
	pl.Add(stage.KindMatch, bson.M{"a": 1})
	pl.Add(stage.KindSort, bson.M{"a": -1})
	pl.Add(stage.KindLimit, 5)

	var visited []stage.Kind
	pl.ForEach(func(st *stage.Stage) {
		visited = append(visited, st.Kind())
	})

	want := []stage.Kind{stage.KindMatch, stage.KindSort, stage.KindLimit}
	if len(visited) != len(want) {
		t.Fatalf("expected %d visits, got %d", len(want), len(visited))
	}
	for i, k := range want {
		if visited[i] != k {
			t.Errorf("visit %d: expected %s, got %s", i, k, visited[i])
		}
	}
}

func TestPipeline_Names(t *testing.T) {
	pl := New()
	pl.AddNamed(stage.KindMatch, bson.M{"a": 1}, "first")
	pl.Add(stage.KindUnwind, "$items")
	pl.AddNamed(stage.KindGroup, bson.M{"_id": "$cat"}, "totals")

	names := pl.Names()
	if len(names) != 2 || names[0] != "first" || names[1] != "totals" {
		t.Errorf("expected [first totals], got %v", names)
	}
}

func TestPipeline_Stages_CopiedSliceLiveNodes(t *testing.T) {
	pl := New()
	pl.Add(stage.KindMatch, bson.M{"a": 1})

	stages := pl.Stages()
	stages[0] = nil // mutating the slice must not affect the pipeline
	if pl.Len() != 1 {
		t.Fatal("pipeline changed through the returned slice")
	}
	if got, err := pl.Stage(stage.KindMatch, 0); err != nil || got == nil {
		t.Fatalf("pipeline lost its stage: %v", err)
	}

	// But the nodes themselves are live.
	st := pl.Stages()[0]
	st.Document()["a"] = 2
	got, _ := pl.Stage(stage.KindMatch, 0)
	if got.Document()["a"] != 2 {
		t.Error("expected node mutation through Stages() to be visible")
	}
}

func TestPipeline_Clone_Independent(t *testing.T) {
	pl := New()
	pl.AddNamed(stage.KindMatch, bson.M{"orderStatus": "pending"}, "matchOrders")
	pl.Add(stage.KindSort, bson.M{"orderDate": -1})

	cl := pl.Clone()
	if cl.Len() != pl.Len() {
		t.Fatalf("clone has %d stages, want %d", cl.Len(), pl.Len())
	}

	st, _ := cl.StageByName("matchOrders")
	st.Document()["orderStatus"] = "complete"

	orig, _ := pl.StageByName("matchOrders")
	if orig.Document()["orderStatus"] != "pending" {
		t.Error("clone mutation leaked into the original pipeline")
	}

	if err := cl.RemoveByName("matchOrders"); err != nil {
		t.Fatalf("RemoveByName on clone failed: %v", err)
	}
	if pl.Len() != 2 {
		t.Error("removal on clone affected the original")
	}
}
