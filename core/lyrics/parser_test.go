package lyrics

import (
	"errors"
	"testing"
)

func TestParseNoTimedLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t\r\n  "},
		{"id tags only", "[ti:Song]\n[ar:Someone]\n[offset:200]"},
		{"plain text", "just some words\nno tags here"},
		{"id tag with extra colon", "[a:b:c]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			if !errors.Is(err, ErrNoTimedLines) {
				t.Fatalf("Parse() error = %v, want ErrNoTimedLines", err)
			}
			if doc != nil {
				t.Errorf("Parse() doc = %v, want nil", doc)
			}
		})
	}
}

func TestParseSortsLines(t *testing.T) {
	raw := "[00:20.00]third\n[00:00.00]first\n[00:10.00]second\n[01:00]last"
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := []Line{
		{Text: "first", Timestamp: 0},
		{Text: "second", Timestamp: 10},
		{Text: "third", Timestamp: 20},
		{Text: "last", Timestamp: 60},
	}
	got := doc.Lines()
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseMultipleTagsShareText(t *testing.T) {
	doc, err := Parse("[00:01.000][00:02.000]hello")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	lines := doc.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, ts := range []float64{1, 2} {
		if lines[i].Text != "hello" || lines[i].Timestamp != ts {
			t.Errorf("line %d = %+v, want {hello %v}", i, lines[i], ts)
		}
	}
}

func TestParseRepeatedChorus(t *testing.T) {
	raw := "[00:05.00][00:25.00]chorus\n[00:15.00]verse"
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	var texts []string
	for _, l := range doc.Lines() {
		texts = append(texts, l.Text)
	}
	want := []string{"chorus", "verse", "chorus"}
	if len(texts) != len(want) {
		t.Fatalf("texts = %q, want %q", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("texts = %q, want %q", texts, want)
			break
		}
	}
}

func TestParseDropsMalformedTimeTag(t *testing.T) {
	doc, err := Parse("[00:01.000][1:2:3]hello")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	lines := doc.Lines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Text != "hello" || lines[0].Timestamp != 1 {
		t.Errorf("line = %+v, want {hello 1}", lines[0])
	}
}

func TestParseOnlyMalformedTimeTagIsNotIDTag(t *testing.T) {
	doc, err := Parse("[1:2:3]hello\n[00:01]ok")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, ok := doc.Tag("1"); ok {
		t.Errorf("malformed time tag was stored as an id tag")
	}
	if doc.Len() != 1 {
		t.Errorf("Len() = %d, want 1", doc.Len())
	}
}

func TestParseStableOrder(t *testing.T) {
	raw := "[00:05.00]b\n[00:01.00]a\n[00:05.00]c\n[00:05.00]d"
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	var got string
	for _, l := range doc.Lines() {
		got += l.Text
	}
	if got != "abcd" {
		t.Errorf("order = %q, want %q", got, "abcd")
	}
}

func TestParseTextVerbatim(t *testing.T) {
	doc, err := Parse("[00:01.00]  spaced out  ")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := doc.Lines()[0].Text; got != "  spaced out  " {
		t.Errorf("text = %q, want untrimmed", got)
	}

	doc, err = Parse("[00:01.00]")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := doc.Lines()[0].Text; got != "" {
		t.Errorf("text = %q, want empty", got)
	}
}

func TestParseNewlineConventions(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"lf", "[ti:T]\n[00:01]a\n[00:02]b"},
		{"crlf", "[ti:T]\r\n[00:01]a\r\n[00:02]b"},
		{"cr", "[ti:T]\r[00:01]a\r[00:02]b"},
		{"mixed", "[ti:T]\r\n[00:01]a\r[00:02]b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			lines := doc.Lines()
			if len(lines) != 2 || lines[0].Text != "a" || lines[1].Text != "b" {
				t.Errorf("lines = %+v", lines)
			}
			if v, _ := doc.Tag(TagTitle); v != "T" {
				t.Errorf("title = %q, want T", v)
			}
		})
	}
}

func TestParseIDTags(t *testing.T) {
	raw := "[ti:First][ar:Artist]\n" +
		"[al:Album]\n" +
		"[ti:Second]\n" +
		"[custom:kept]\n" +
		"[url:http://example.com]\n" +
		"[offset:-250]\n" +
		"[00:01]line"
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := map[TagKey]string{
		TagTitle:  "Second",
		TagArtist: "Artist",
		TagAlbum:  "Album",
		"custom":  "kept",
		"url":     "http://example.com",
		TagOffset: "-250",
	}
	tags := doc.Tags()
	if len(tags) != len(want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
	for k, v := range want {
		if tags[k] != v {
			t.Errorf("tag %q = %q, want %q", k, tags[k], v)
		}
	}
	if doc.Offset() != -250 {
		t.Errorf("Offset() = %d, want -250", doc.Offset())
	}
}

func TestParseTimeTagLineIgnoresIDTags(t *testing.T) {
	doc, err := Parse("[00:01.00]hello [ti:not a tag]")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, ok := doc.Tag(TagTitle); ok {
		t.Errorf("id tag on a timed line should not be collected")
	}
	if got := doc.Lines()[0].Text; got != "hello [ti:not a tag]" {
		t.Errorf("text = %q", got)
	}
}

func TestParseLineCount(t *testing.T) {
	raw := "[ti:x]\n" +
		"[00:01.00][00:02.00][00:03.00]a\n" +
		"garbage line\n" +
		"[00:04]b\n" +
		"\n" +
		"[00:05.5]c"
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Len() != 5 {
		t.Errorf("Len() = %d, want 5", doc.Len())
	}
	lines := doc.Lines()
	for i := 1; i < len(lines); i++ {
		if lines[i].Timestamp < lines[i-1].Timestamp {
			t.Errorf("lines not sorted at %d: %v < %v", i, lines[i].Timestamp, lines[i-1].Timestamp)
		}
	}
}

func TestParseMetadataStartsEmpty(t *testing.T) {
	doc, err := Parse("[00:01]a")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(doc.Metadata()) != 0 {
		t.Errorf("Metadata() = %v, want empty", doc.Metadata())
	}
}
