package nav

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/opennotesproject/notevault/internal/db"
)

func TestBreadcrumbs(t *testing.T) {
	got := Breadcrumbs("Math/Algebra/linear.md")
	want := []Crumb{
		{Label: "Math", Path: "Math"},
		{Label: "Algebra", Path: "Math/Algebra"},
		{Label: "linear", Path: "Math/Algebra/linear.md", IsNote: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Breadcrumbs = %+v, want %+v", got, want)
	}

	if got := Breadcrumbs(""); got != nil {
		t.Errorf("Breadcrumbs(\"\") = %+v, want nil", got)
	}
	if got := Breadcrumbs("README.MD"); len(got) != 1 || got[0].Label != "README" || !got[0].IsNote {
		t.Errorf("Breadcrumbs(README.MD) = %+v", got)
	}
}

func TestPush(t *testing.T) {
	list := []string{"a", "b", "c"}
	got := Push(list, "b", 12)
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("Push = %v", got)
	}
	if !reflect.DeepEqual(list, []string{"a", "b", "c"}) {
		t.Errorf("input modified: %v", list)
	}
	if got := Push([]string{"a", "b"}, "c", 2); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Errorf("Push with limit = %v", got)
	}
}

func TestRecentSequence(t *testing.T) {
	ctx := context.Background()
	r, err := LoadRecent(ctx, nil, "", 0, nil)
	if err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}

	var opened []string
	for i := 0; i < 20; i++ {
		p := fmt.Sprintf("n%d.md", i%15)
		opened = append(opened, p)
		if _, err := r.Add(ctx, p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	// Expected: last distinct paths in reverse-chronological order.
	seen := make(map[string]bool)
	var want []string
	for i := len(opened) - 1; i >= 0 && len(want) < DefaultRecentLimit; i-- {
		if !seen[opened[i]] {
			seen[opened[i]] = true
			want = append(want, opened[i])
		}
	}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestRecentPersists(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	r, err := LoadRecent(ctx, database, DefaultNamespace, DefaultRecentLimit, nil)
	if err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	r.Add(ctx, "Physics/intro.md")
	r.Add(ctx, "Math/calculus.md")
	r.Add(ctx, "Physics/intro.md")

	again, err := LoadRecent(ctx, database, DefaultNamespace, DefaultRecentLimit, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	want := []string{"Physics/intro.md", "Math/calculus.md"}
	if got := again.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded list = %v, want %v", got, want)
	}

	other, err := LoadRecent(ctx, database, "other", DefaultRecentLimit, nil)
	if err != nil {
		t.Fatalf("other namespace: %v", err)
	}
	if len(other.List()) != 0 {
		t.Errorf("namespaces leaked: %v", other.List())
	}

	if err := again.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cleared, _ := LoadRecent(ctx, database, DefaultNamespace, DefaultRecentLimit, nil)
	if len(cleared.List()) != 0 {
		t.Errorf("expected empty list after Clear, got %v", cleared.List())
	}
}

func TestRecentDiscardsCorruptValue(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(`INSERT INTO recent_notes (namespace, paths) VALUES (?, ?)`, DefaultNamespace, "{not json"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	r, err := LoadRecent(ctx, database, DefaultNamespace, DefaultRecentLimit, nil)
	if err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	if len(r.List()) != 0 {
		t.Errorf("expected empty list, got %v", r.List())
	}
	if _, err := r.Add(ctx, "a.md"); err != nil {
		t.Fatalf("Add after corrupt value: %v", err)
	}
}

func TestRecentAddKeepsListWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}

	r, err := LoadRecent(ctx, database, DefaultNamespace, DefaultRecentLimit, nil)
	if err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	if _, err := r.Add(ctx, "Math/calculus.md"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	database.Close()
	got, err := r.Add(ctx, "Physics/intro.md")
	if err == nil {
		t.Fatal("expected save error on a closed database")
	}
	want := []string{"Physics/intro.md", "Math/calculus.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Add returned %v, want %v", got, want)
	}
	if !reflect.DeepEqual(r.List(), want) {
		t.Errorf("List = %v, want %v", r.List(), want)
	}
}
