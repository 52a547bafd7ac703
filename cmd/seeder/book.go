package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Book is one entry of a bookstore catalogue export.
type Book struct {
	ISBN13            string   `json:"ISBN-13"`
	ISBN10            string   `json:"ISBN-10,omitempty"`
	Title             string   `json:"Title"`
	Format            string   `json:"Format"`
	Authors           []string `json:"Authors"`
	Editors           []string `json:"Editors"`
	Illustrators      []string `json:"Illustrators"`
	OtherContributors []string `json:"Other contributors"`
	Publisher         string   `json:"Publisher"`
	PageCount         int      `json:"Page count"`
	Genres            []string `json:"Genres"`
	Price             float64  `json:"Price"`
}

// Statement renders the book as a single-line insert statement.
// Each distinct contributor gets one variable, numbered in order of first appearance.
func (b *Book) Statement() string {
	parts := []string{
		"insert",
		fmt.Sprintf("$book isa %s;", b.Format),
		fmt.Sprintf("$book has isbn-13 %s;", strconv.Quote(b.ISBN13)),
		fmt.Sprintf("$book has title %s;", strconv.Quote(b.Title)),
		fmt.Sprintf("$book has page-count %d;", b.PageCount),
		fmt.Sprintf("$book has price %s;", strconv.FormatFloat(b.Price, 'f', -1, 64)),
	}
	if b.ISBN10 != "" {
		parts = append(parts, fmt.Sprintf("$book has isbn-10 %s;", strconv.Quote(b.ISBN10)))
	}
	for _, genre := range b.Genres {
		parts = append(parts, fmt.Sprintf("$book has genre %s;", strconv.Quote(genre)))
	}

	index := make(map[string]int)
	var names []string
	for _, group := range [][]string{b.Authors, b.Editors, b.Illustrators, b.OtherContributors} {
		for _, name := range group {
			if _, ok := index[name]; !ok {
				names = append(names, name)
				index[name] = len(names)
			}
		}
	}
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("$contributor_%d isa contributor;", index[name]))
	}
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("$contributor_%d has name %s;", index[name], strconv.Quote(name)))
	}

	roles := []struct {
		names    []string
		role     string
		relation string
	}{
		{b.Authors, "author", "authoring"},
		{b.Editors, "editor", "authoring"},
		{b.Illustrators, "illustrator", "illustrating"},
		{b.OtherContributors, "contributor", "contribution"},
	}
	for _, r := range roles {
		for _, name := range r.names {
			parts = append(parts, fmt.Sprintf("(work: $book, %s: $contributor_%d) isa %s;", r.role, index[name], r.relation))
		}
	}

	parts = append(parts,
		"$publisher isa publisher;",
		fmt.Sprintf("$publisher has name %s;", strconv.Quote(b.Publisher)),
		"(published: $book, publisher: $publisher) isa publishing;",
	)
	return strings.Join(parts, " ")
}
