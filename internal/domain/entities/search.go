package entities

import (
	"errors"
	"strings"
)

// SearchType selects the field an article search matches against.
type SearchType string

const (
	SearchTitle    SearchType = "TITLE"
	SearchContent  SearchType = "CONTENT"
	SearchID       SearchType = "ID"
	SearchNickname SearchType = "NICKNAME"
	SearchHashtag  SearchType = "HASHTAG"
)

// ErrUnknownSearchType is returned by ParseSearchType for unrecognized names.
var ErrUnknownSearchType = errors.New("unknown search type")

var searchTypeDescriptions = map[SearchType]string{
	SearchTitle:    "Title",
	SearchContent:  "Content",
	SearchID:       "User ID",
	SearchNickname: "Nickname",
	SearchHashtag:  "Hashtag",
}

// SearchTypes lists every search type in display order.
func SearchTypes() []SearchType {
	return []SearchType{SearchTitle, SearchContent, SearchID, SearchNickname, SearchHashtag}
}

// Description is the label shown in the search form.
func (t SearchType) Description() string {
	return searchTypeDescriptions[t]
}

func (t SearchType) Valid() bool {
	_, ok := searchTypeDescriptions[t]
	return ok
}

// ParseSearchType accepts a search type name in any letter case.
func ParseSearchType(s string) (SearchType, error) {
	t := SearchType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrUnknownSearchType
	}
	return t, nil
}
