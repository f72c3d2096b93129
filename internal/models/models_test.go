package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewItem(t *testing.T) {
	got := NewItem(3, "  test_item \n", false, 7)
	want := &Item{ID: 3, Name: "test_item", IsDeleted: false, UID: 7}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewItem() mismatch (-want +got):\n%s", diff)
	}
}

func TestItemOwnedBy(t *testing.T) {
	item := NewItem(1, "a", false, 7)
	if !item.OwnedBy(7) {
		t.Error("OwnedBy(7) = false, want true")
	}
	if item.OwnedBy(8) {
		t.Error("OwnedBy(8) = true, want false")
	}
	var missing *Item
	if missing.OwnedBy(7) {
		t.Error("nil item must not be owned by anyone")
	}
}

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	if err := p.Set("correct horse"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if p.Hash == "" || p.Hash == "correct horse" {
		t.Fatalf("Set() stored an unusable hash %q", p.Hash)
	}

	ok, err := p.Matches("correct horse")
	if err != nil || !ok {
		t.Errorf("Matches(right) = %v, %v; want true, nil", ok, err)
	}
	ok, err = p.Matches("wrong horse")
	if err != nil || ok {
		t.Errorf("Matches(wrong) = %v, %v; want false, nil", ok, err)
	}
}

func TestPasswordSetRejectsLongInput(t *testing.T) {
	var p Password
	if err := p.Set(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("Set(72 bytes) error = %v", err)
	}
	// 40 runes, 80 bytes.
	err := p.Set(strings.Repeat("é", 40))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Set(80 bytes) error = %v, want ErrPasswordTooLong", err)
	}
	if ok, err := p.Matches(strings.Repeat("é", 40)); ok || err != nil {
		t.Errorf("Matches(80 bytes) = %v, %v; want false, nil", ok, err)
	}
}
