package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_ValidatorsRequireTimestamps(t *testing.T) {
	for _, def := range Collections() {
		t.Run(def.Name, func(t *testing.T) {
			schema, ok := def.Validator["$jsonSchema"].(bson.M)
			if !ok {
				t.Fatal("expected $jsonSchema document")
			}
			required, _ := schema["required"].([]string)
			found := false
			for _, f := range required {
				if f == "created_at" {
					found = true
				}
			}
			if !found {
				t.Errorf("expected created_at required, got %v", required)
			}
			if len(def.Indexes) == 0 {
				t.Error("expected at least one index")
			}
		})
	}
}

func TestProfilesEmailIsUnique(t *testing.T) {
	idx := ProfilesIndexes[0]
	if idx.Options == nil || idx.Options.Unique == nil || !*idx.Options.Unique {
		t.Fatal("expected unique email index")
	}
}
