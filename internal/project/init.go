package project

import (
	"bytes"
	"embed"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dolly-hdl/dolly/internal/config"
	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/fsutil"
	"github.com/dolly-hdl/dolly/internal/module"
	"github.com/dolly-hdl/dolly/internal/runner"
	"github.com/dolly-hdl/dolly/internal/target"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var scaffold = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// packageNamePattern matches names bsc accepts as a package identifier.
var packageNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// scaffoldData is the template context for new project files.
type scaffoldData struct {
	Name       string
	PassMarker string
}

// PackageName derives an UpperCamel package name from a project directory,
// e.g. "my-fifo" becomes "MyFifo".
func PackageName(dir string) string {
	base := filepath.Base(dir)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	title := cases.Title(language.Und)
	var b strings.Builder
	for _, word := range splitWords(base) {
		b.WriteString(title.String(word))
	}
	return b.String()
}

// splitWords breaks s at non-alphanumeric runes and at lower-to-upper case
// transitions.
func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	prev := rune(0)
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}

// Init scaffolds a new project in dir, which must not exist yet. It returns
// the paths it created, relative to dir.
func Init(fsys billy.Filesystem, dir string) ([]string, error) {
	exists, err := fsutil.Exists(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(err, "checking project directory")
	}
	if exists {
		return nil, errors.Newf("cannot initialize project: %s already exists", dir)
	}

	name := PackageName(dir)
	if !packageNamePattern.MatchString(name) {
		return nil, errors.Configf("cannot derive a package name from %q; got %q", filepath.Base(dir), name)
	}

	descriptor, err := config.Encode(config.New(name))
	if err != nil {
		return nil, errors.Wrap(err, "rendering "+FileName)
	}

	data := scaffoldData{Name: name, PassMarker: runner.PassMarker}
	files := []struct {
		path     string
		template string
	}{
		{".gitignore", "gitignore.tmpl"},
		{filepath.Join(SrcDirName, name+module.SourceExt), "module.bsv.tmpl"},
		{filepath.Join(TestsDirName, name+target.UnitTestSuffix+module.SourceExt), "testbench.bsv.tmpl"},
	}

	for _, sub := range []string{SrcDirName, TestsDirName} {
		if err := fsys.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating project directories")
		}
	}

	created := []string{FileName}
	if err := util.WriteFile(fsys, filepath.Join(dir, FileName), descriptor, 0o644); err != nil {
		return nil, errors.Wrap(err, "writing "+FileName)
	}

	for _, f := range files {
		var buf bytes.Buffer
		if err := scaffold.ExecuteTemplate(&buf, f.template, data); err != nil {
			return nil, errors.Wrap(err, "rendering "+f.path)
		}
		if err := util.WriteFile(fsys, filepath.Join(dir, f.path), buf.Bytes(), 0o644); err != nil {
			return nil, errors.Wrap(err, "writing "+f.path)
		}
		created = append(created, f.path)
	}
	return created, nil
}
