package cv

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDocument_StartsBlank(t *testing.T) {
	doc := NewDocument()
	snap := doc.Snapshot()

	for _, n := range []int{snap.Education.Len(), snap.Experience.Len(), snap.Skills.Len(), snap.Languages.Len()} {
		if n != 1 {
			t.Fatalf("expected one blank entry per list, got %d", n)
		}
	}
	if snap.Revision != 0 {
		t.Fatalf("expected revision 0 got %d", snap.Revision)
	}
}

func TestDocument_RemoveSoleEntryResetsToBlank(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.Update(ListEducation, 0, "institution", "X Üniversitesi"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := doc.Update(ListExperience, 0, "company", "Acme"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := doc.Update(ListSkills, 0, "", "Go"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := doc.Update(ListLanguages, 0, "", "Türkçe"); err != nil {
		t.Fatalf("update: %v", err)
	}

	for _, l := range Lists {
		if _, err := doc.Remove(l, 0); err != nil {
			t.Fatalf("remove %s: %v", l, err)
		}
	}

	snap := doc.Snapshot()
	want := Blank()
	want.Revision = snap.Revision
	if diff := cmp.Diff(want.Education.Items(), snap.Education.Items()); diff != "" {
		t.Fatalf("education mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Experience.Items(), snap.Experience.Items()); diff != "" {
		t.Fatalf("experience mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{""}, snap.Skills.Items()); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{""}, snap.Languages.Items()); diff != "" {
		t.Fatalf("languages mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_AppendUpdateRemove(t *testing.T) {
	doc := NewDocument()
	idx, _, err := doc.Append(ListExperience)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected index 1 got %d", idx)
	}
	if _, err := doc.Update(ListExperience, 1, "position", "Backend Engineer"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := doc.Remove(ListExperience, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}

	items := doc.Snapshot().Experience.Items()
	if len(items) != 1 || items[0].Position != "Backend Engineer" {
		t.Fatalf("unexpected experience %+v", items)
	}
}

func TestDocument_Errors(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.SetPersonal("age", "30"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField got %v", err)
	}
	if _, err := doc.Update(ListEducation, 0, "gpa", "4.0"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField got %v", err)
	}
	if _, _, err := doc.Append(List("hobbies")); !errors.Is(err, ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList got %v", err)
	}
	if _, err := doc.Remove(ListSkills, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange got %v", err)
	}
	if doc.Revision() != 0 {
		t.Fatalf("failed mutations must not bump revision, got %d", doc.Revision())
	}
}

func TestDocument_SnapshotIsIsolated(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.SetPersonal("name", "Jane Doe"); err != nil {
		t.Fatalf("set: %v", err)
	}
	snap := doc.Snapshot()

	if _, err := doc.SetPersonal("name", "John Roe"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := doc.Update(ListSkills, 0, "", "Go"); err != nil {
		t.Fatalf("update: %v", err)
	}

	if snap.SubjectName() != "Jane Doe" {
		t.Fatalf("snapshot changed after mutation: %q", snap.SubjectName())
	}
	if got, _ := snap.Skills.At(0); got != "" {
		t.Fatalf("snapshot list changed after mutation: %q", got)
	}
}

func TestDocument_ConcurrentEditsAndSnapshots(t *testing.T) {
	doc := NewDocument()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, _ = doc.Append(ListSkills)
		}()
		go func() {
			defer wg.Done()
			snap := doc.Snapshot()
			if snap.Skills.Len() < 1 {
				t.Errorf("torn snapshot with empty skills")
			}
		}()
	}
	wg.Wait()

	if got := doc.Snapshot().Skills.Len(); got != 51 {
		t.Fatalf("expected 51 skills got %d", got)
	}
}

func TestDocument_Replace(t *testing.T) {
	doc := NewDocument()
	_, _ = doc.SetPersonal("email", "a@b.c")

	next := Blank()
	next.Personal.Name = "Ali Veli"
	next.Revision = 99
	rev := doc.Replace(next)

	if rev != 2 {
		t.Fatalf("expected revision 2 got %d", rev)
	}
	snap := doc.Snapshot()
	if snap.Personal.Name != "Ali Veli" || snap.Personal.Email != "" {
		t.Fatalf("unexpected personal info %+v", snap.Personal)
	}
}
