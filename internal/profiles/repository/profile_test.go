package repository

import (
	"testing"

	"bookmyworkspace/pkg/model"
)

func TestToSetDocument_OnlyPresentFields(t *testing.T) {
	name := "Asha Rao"
	set, err := toSetDocument(&model.ProfileUpdate{FullName: &name})
	if err != nil {
		t.Fatalf("toSetDocument: %v", err)
	}
	if len(set) != 1 || set["full_name"] != name {
		t.Errorf("expected only full_name, got %v", set)
	}
}

func TestToSetDocument_Empty(t *testing.T) {
	set, err := toSetDocument(&model.ProfileUpdate{})
	if err != nil {
		t.Fatalf("toSetDocument: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
}
