package event

import (
	"reflect"
	"testing"
)

func TestTagList_AddTrimsAndDedupes(t *testing.T) {
	var tags TagList

	if !tags.Add("  Technology  ") {
		t.Fatal("first add should succeed")
	}
	if tags.Add("Technology") {
		t.Error("duplicate add should be rejected")
	}
	if tags.Add("   ") {
		t.Error("blank add should be rejected")
	}
	// Case-sensitive: a different casing is a different tag.
	if !tags.Add("technology") {
		t.Error("differently-cased tag should be accepted")
	}

	want := []string{"Technology", "technology"}
	if !reflect.DeepEqual(tags.Items(), want) {
		t.Errorf("items mismatch: got %v, want %v", tags.Items(), want)
	}
}

func TestTagList_RemoveByValue(t *testing.T) {
	var tags TagList
	tags.Add("go")
	tags.Add("web")
	tags.Add("cloud")

	if !tags.Remove("web") {
		t.Fatal("remove of existing tag should succeed")
	}
	if tags.Remove("web") {
		t.Error("second remove of the same tag should report false")
	}

	want := []string{"go", "cloud"}
	if !reflect.DeepEqual(tags.Items(), want) {
		t.Errorf("items mismatch: got %v, want %v", tags.Items(), want)
	}
}

func TestTagList_ItemsIsACopy(t *testing.T) {
	var tags TagList
	tags.Add("go")

	items := tags.Items()
	items[0] = "mutated"

	if tags.Items()[0] != "go" {
		t.Error("mutating the returned slice should not affect the list")
	}
}

func TestAgendaList_AddAllowsDuplicates(t *testing.T) {
	var agenda AgendaList

	if !agenda.Add(" Networking Break ") {
		t.Fatal("first add should succeed")
	}
	if !agenda.Add("Networking Break") {
		t.Error("duplicate agenda text should be accepted")
	}
	if agenda.Add("") {
		t.Error("blank add should be rejected")
	}

	if agenda.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", agenda.Len())
	}
}

func TestAgendaList_RemoveAtShiftsDown(t *testing.T) {
	var agenda AgendaList
	agenda.Add("9:00 AM - Check-in")
	agenda.Add("10:00 AM - Keynote")
	agenda.Add("12:00 PM - Lunch")
	agenda.Add("2:00 PM - Workshops")

	if !agenda.RemoveAt(1) {
		t.Fatal("remove at valid index should succeed")
	}

	want := []string{"9:00 AM - Check-in", "12:00 PM - Lunch", "2:00 PM - Workshops"}
	if !reflect.DeepEqual(agenda.Items(), want) {
		t.Errorf("order mismatch after removal: got %v, want %v", agenda.Items(), want)
	}

	if agenda.RemoveAt(-1) || agenda.RemoveAt(3) {
		t.Error("out-of-range removal should report false")
	}
}
