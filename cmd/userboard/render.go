package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vango-dev/userboard/pkg/posts"
	"github.com/vango-dev/userboard/pkg/users"
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func languageLabel(u users.User) string {
	if u.Language == nil {
		return "-"
	}
	if label, ok := users.LanguageLabel(*u.Language); ok {
		return label
	}
	return *u.Language
}

// userID renders speculative ids so they stand out.
func userID(id int) string {
	if id < 0 {
		return "pending"
	}
	return strconv.Itoa(id)
}

func renderUsers(w io.Writer, list []users.User) {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, "(0 users)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Username", "Email", "Language"})
	for _, u := range list {
		t.AppendRow(table.Row{userID(u.ID), u.Name, u.Username, u.Email, languageLabel(u)})
	}
	t.Render()
}

func renderPosts(w io.Writer, list []posts.Post) {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, "(0 posts)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "User", "Title"})
	for _, p := range list {
		t.AppendRow(table.Row{p.ID, p.UserID, p.Title})
	}
	t.Render()
}
