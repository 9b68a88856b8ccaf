// Package signup provides embedded runtime resources (the inquiry mutation,
// the default config template) and an overlay filesystem that checks local
// disk first, falling back to embedded.
package signup

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed queries/*.graphql
var rawQueries embed.FS

//go:embed templates/config.yaml
var rawTemplates embed.FS

// Queries is the embedded GraphQL documents filesystem with the "queries/" prefix stripped.
var Queries = mustSub(rawQueries, "queries")

// Templates is the embedded templates filesystem with the "templates/" prefix stripped.
var Templates = mustSub(rawTemplates, "templates")

// CreateUserInquiry is the fixed mutation document sent on every submission.
var CreateUserInquiry = mustRead(Queries, "create_user_inquiry.graphql")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

func mustRead(fsys fs.FS, name string) string {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) || strings.Contains(name, `\`) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(filepath.Join(o.localDir, name))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}
