// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest writes small, structurally valid PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Page is one page of a test PDF. Forms maps XObject names to Form XObject
// content streams; every form shares the page's XObject resources, so a
// form may invoke its siblings or itself.
type Page struct {
	Content string
	Forms   map[string]string
}

// Build returns a PDF with one page per content stream, in order.
func Build(contents ...string) []byte {
	pages := make([]Page, len(contents))
	for i, c := range contents {
		pages[i] = Page{Content: c}
	}
	return BuildPages(pages...)
}

// BuildPages returns a PDF with the given pages, in order.
func BuildPages(pages ...Page) []byte {
	type layout struct {
		page, content int
		names         []string
		forms         map[string]int
	}

	// Object numbers: 1 catalog, 2 page tree, then per page the page, its
	// content stream and its forms.
	next := 3
	plan := make([]layout, len(pages))
	for i, p := range pages {
		l := layout{page: next, content: next + 1, forms: map[string]int{}}
		next += 2
		for name := range p.Forms {
			l.names = append(l.names, name)
		}
		sort.Strings(l.names)
		for _, name := range l.names {
			l.forms[name] = next
			next++
		}
		plan[i] = l
	}

	var (
		buf     bytes.Buffer
		offsets []int
	)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	stream := func(dict, data string) {
		obj(fmt.Sprintf("<< %s/Length %d >>\nstream\n%s\nendstream", dict, len(data), data))
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := make([]string, len(pages))
	for i, l := range plan {
		kids[i] = fmt.Sprintf("%d 0 R", l.page)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	for i, p := range pages {
		l := plan[i]
		resources := "<< >>"
		if len(l.names) > 0 {
			refs := make([]string, len(l.names))
			for j, name := range l.names {
				refs[j] = fmt.Sprintf("/%s %d 0 R", name, l.forms[name])
			}
			resources = fmt.Sprintf("<< /XObject << %s >> >>", strings.Join(refs, " "))
		}
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources %s /Contents %d 0 R >>", resources, l.content))
		stream("", p.Content)
		for _, name := range l.names {
			stream(fmt.Sprintf("/Type /XObject /Subtype /Form /BBox [0 0 612 792] /Resources %s ", resources), p.Forms[name])
		}
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// Write stores a PDF built from contents as name inside dir and returns
// its path.
func Write(t testing.TB, dir, name string, contents ...string) string {
	t.Helper()
	return write(t, dir, name, Build(contents...))
}

// WritePages stores a PDF built from pages as name inside dir and returns
// its path.
func WritePages(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	return write(t, dir, name, BuildPages(pages...))
}

func write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing test PDF: %v", err)
	}
	return path
}
