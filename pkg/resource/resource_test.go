package resource

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewCollection(t *testing.T) {
	tests := []struct {
		name        string
		resources   []Resource
		expectError error
	}{
		{
			name: "unique names",
			resources: []Resource{
				{Name: "a"},
				{Name: "b", Deps: []string{"a"}},
			},
		},
		{
			name: "duplicate name",
			resources: []Resource{
				{Name: "a"},
				{Name: "a", Tools: []string{"b"}},
			},
			expectError: ErrDuplicateName,
		},
		{
			name:      "empty collection",
			resources: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCollection(tt.resources...)
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(c) != len(tt.resources) {
				t.Errorf("expected %d resources, got %d", len(tt.resources), len(c))
			}
		})
	}
}

func TestNewCollectionEmptyName(t *testing.T) {
	if _, err := NewCollection(Resource{}); err == nil {
		t.Fatal("expected error for empty resource name")
	}
}

func TestCollectionNames(t *testing.T) {
	c, err := NewCollection(
		Resource{Name: "zeta"},
		Resource{Name: "alpha"},
		Resource{Name: "mid"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"alpha", "mid", "zeta"}
	if got := c.Names(); !reflect.DeepEqual(expected, got) {
		t.Errorf("expected %v, got %v", expected, got)
	}

	if !c.Has("mid") {
		t.Error("expected Has(mid) to be true")
	}
	if c.Has("absent") {
		t.Error("expected Has(absent) to be false")
	}
}
