package entities

import (
	"errors"
	"testing"
)

func TestParseSearchType(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchType
		wantErr bool
	}{
		{"TITLE", SearchTitle, false},
		{"title", SearchTitle, false},
		{" Content ", SearchContent, false},
		{"id", SearchID, false},
		{"NickName", SearchNickname, false},
		{"hashtag", SearchHashtag, false},
		{"", "", true},
		{"author", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSearchType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownSearchType) {
					t.Fatalf("ParseSearchType(%q) error = %v, want ErrUnknownSearchType", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSearchType(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSearchType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSearchTypeDescription(t *testing.T) {
	for _, st := range SearchTypes() {
		if st.Description() == "" {
			t.Errorf("%s has no description", st)
		}
	}
	if SearchType("BOGUS").Description() != "" {
		t.Error("unknown search type should have no description")
	}
}
