package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeAmenities(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "fold aliases",
			input: []string{"Wi-Fi", "Meeting Rooms", "AC"},
			want:  []string{"wifi", "meeting", "ac"},
		},
		{
			name:  "remove duplicates",
			input: []string{"wifi", "WiFi", "internet", "coffee"},
			want:  []string{"wifi", "coffee"},
		},
		{
			name:  "filter empty strings",
			input: []string{"parking", "", "  ", "coffee"},
			want:  []string{"parking", "coffee"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmenities(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeAmenities(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeImages_PreservesOrder(t *testing.T) {
	input := []string{
		"https://images.example.com/cover.jpg",
		"images.example.com/desk.jpg",
		"https://IMAGES.example.com/cover.jpg/",
		"",
	}
	want := []string{
		"https://images.example.com/cover.jpg",
		"https://images.example.com/desk.jpg",
	}

	got := NormalizeImages(input)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeImages() = %v, want %v", got, want)
	}
}

func TestNormalizeStringSlice_CustomNormalizer(t *testing.T) {
	got := NormalizeStringSlice([]string{" a ", "b", "a"}, TrimAndNormalize)
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeStringSlice() = %v, want %v", got, want)
	}
}
