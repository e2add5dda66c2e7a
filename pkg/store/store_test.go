package store

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/msttree/pkg/config"
	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/tree"
)

func sampleLayout() mstio.LayoutData {
	return mstio.LayoutData{
		NodePositions: tree.Positions{"ST1": {0, 0}, "ST2": {12.5, -3}},
		NodesLinks:    config.Default(),
		GroupedNodes:  map[string][]string{"ST1": {"ST1", "ST3"}, "ST2": {"ST2"}},
		Converged:     true,
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	doc := NewDocument(1.5, sampleLayout())

	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Threshold != 1.5 || got.Layout.NodePositions["ST2"] != (tree.Point{12.5, -3}) {
		t.Errorf("Get() = %+v", got)
	}
	if !got.Created.Equal(doc.Created) {
		t.Errorf("Created = %v, want %v", got.Created, doc.Created)
	}

	doc.Threshold = 3
	if err := s.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(ctx, doc.ID); got.Threshold != 3 {
		t.Errorf("Save did not replace: threshold = %v", got.Threshold)
	}

	if err := s.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
	if s.Len() != 0 {
		t.Errorf("Len() = %d after delete", s.Len())
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStore_RejectsForeignIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(traversal) error = %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, &Document{ID: "../x"}); err == nil {
		t.Error("Save with a non-uuid id should fail")
	}
}

func TestNewDocument(t *testing.T) {
	a, b := NewDocument(0, sampleLayout()), NewDocument(0, sampleLayout())
	if a.ID == b.ID || !validID(a.ID) {
		t.Errorf("ids %q and %q", a.ID, b.ID)
	}
	if a.Created.IsZero() {
		t.Error("Created not set")
	}
}

func TestDocument_BSON(t *testing.T) {
	doc := NewDocument(2, sampleLayout())
	data, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["_id"] != doc.ID {
		t.Errorf("_id = %v, want %v", raw["_id"], doc.ID)
	}

	var got Document
	if err := bson.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Layout.NodePositions["ST2"] != (tree.Point{12.5, -3}) || got.Layout.NodesLinks.MaxLinkScale != 500 {
		t.Errorf("decoded = %+v", got.Layout)
	}
}

func TestNewMongoStore_BadURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), "not-a-uri", ""); err == nil {
		t.Error("expected error for invalid URI")
	}
}
