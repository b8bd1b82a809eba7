// Package fonts binds logical font faces to TTF files and selects the face
// that can render a given text run. Thai and CJK codepoints must never reach
// a Latin-only face or the PDF engine draws fallback squares.
package fonts

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"backoffice/internal/domain"

	"golang.org/x/image/font/sfnt"
)

// Face is a logical font name bound to at most one file path.
type Face string

const (
	FaceThai      Face = "Thai"
	FaceThaiBold  Face = "ThaiBold"
	FaceLatin     Face = "Latin"
	FaceLatinBold Face = "LatinBold"
	FaceCJK       Face = "CJK"
)

// minFontSize rejects truncated downloads; hinted Noto subsets can be ~35KB.
const minFontSize = 30_000

// faceFiles maps logical faces to the well-known Noto filenames the font
// directory is provisioned with.
var faceFiles = map[Face][]string{
	FaceThai:      {"NotoSansThai-Regular.ttf"},
	FaceThaiBold:  {"NotoSansThai-Bold.ttf"},
	FaceLatin:     {"NotoSans-Regular.ttf"},
	FaceLatinBold: {"NotoSans-Bold.ttf"},
	FaceCJK:       {"NotoSansCJKsc-Regular.ttf", "NotoSansCJK-Regular.ttf"},
}

// Registry resolves logical faces to files. Populated once at startup and
// immutable afterwards; safe for concurrent readers without locks.
type Registry struct {
	once  sync.Once
	dirs  []string
	paths map[Face]string

	// BuiltinLatin lets the engine fall back to the PDF core Helvetica
	// face when no Latin TTF is installed. ASCII-only deployments run
	// without any font files this way.
	BuiltinLatin bool
}

// NewRegistry prepares a registry over the given search directories.
func NewRegistry(dirs []string, builtinLatin bool) *Registry {
	return &Registry{dirs: dirs, paths: map[Face]string{}, BuiltinLatin: builtinLatin}
}

// Register scans the configured directories and binds logical names.
// Subsequent calls return the cached result.
func (r *Registry) Register() {
	r.once.Do(func() {
		for face, names := range faceFiles {
			for _, name := range names {
				for _, dir := range r.dirs {
					p := filepath.Join(dir, name)
					if validFontFile(p) {
						r.paths[face] = p
						break
					}
				}
				if _, ok := r.paths[face]; ok {
					break
				}
			}
		}
	})
}

func validFontFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() < minFontSize {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	_, err = sfnt.Parse(data)
	return err == nil
}

// Path returns the file bound to a face, or "" when the face is missing.
func (r *Registry) Path(face Face) string {
	return r.paths[face]
}

// Has reports whether a face resolved to a file (or a builtin fallback).
func (r *Registry) Has(face Face) bool {
	if r.paths[face] != "" {
		return true
	}
	return r.BuiltinLatin && (face == FaceLatin || face == FaceLatinBold)
}

// Select returns the face that should render a run intended for base.
// Thai runs force the Thai face of matching weight, CJK runs the CJK face.
// A missing preferred face degrades to Latin; when Latin is missing too the
// render must abort.
func (r *Registry) Select(base Face, run string) (Face, error) {
	preferred := base
	switch {
	case ContainsThai(run):
		preferred = FaceThai
		if base == FaceLatinBold || base == FaceThaiBold {
			preferred = FaceThaiBold
		}
	case ContainsCJK(run):
		preferred = FaceCJK
	}

	if r.Has(preferred) {
		return preferred, nil
	}
	fallback := FaceLatin
	if preferred == FaceThaiBold || preferred == FaceLatinBold {
		fallback = FaceLatinBold
	}
	if r.Has(fallback) {
		return fallback, nil
	}
	if fallback != FaceLatin && r.Has(FaceLatin) {
		return FaceLatin, nil
	}
	return "", domain.ErrFontsUnavailable
}

// ContainsThai reports whether any codepoint falls in the Thai block.
func ContainsThai(s string) bool {
	for _, r := range s {
		if isThai(r) {
			return true
		}
	}
	return false
}

// ContainsCJK reports whether any codepoint is a CJK ideograph or CJK
// punctuation.
func ContainsCJK(s string) bool {
	for _, r := range s {
		if isCJK(r) {
			return true
		}
	}
	return false
}

func isThai(r rune) bool { return r >= 0x0E00 && r <= 0x0E7F }

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3000 && r <= 0x303F)
}

// Script classifies a run for face selection.
type Script int

const (
	ScriptOther Script = iota
	ScriptThai
	ScriptCJK
)

// Run is a contiguous substring of uniform script.
type Run struct {
	Text   string
	Script Script
}

// SplitRuns slices text at script boundaries so each run can be bound to a
// single face. Adjacent characters of the same script stay together.
func SplitRuns(text string) []Run {
	var (
		runs []Run
		cur  strings.Builder
		curS = ScriptOther
	)
	flush := func() {
		if cur.Len() > 0 {
			runs = append(runs, Run{Text: cur.String(), Script: curS})
			cur.Reset()
		}
	}
	for _, r := range text {
		s := ScriptOther
		switch {
		case isThai(r):
			s = ScriptThai
		case isCJK(r):
			s = ScriptCJK
		}
		if s != curS {
			flush()
			curS = s
		}
		cur.WriteRune(r)
	}
	flush()
	return runs
}

// FaceFor maps a run's script onto a concrete face given the intended base.
func (r *Registry) FaceFor(base Face, run Run) (Face, error) {
	switch run.Script {
	case ScriptThai:
		if base == FaceLatinBold || base == FaceThaiBold {
			return r.resolve(FaceThaiBold)
		}
		return r.resolve(FaceThai)
	case ScriptCJK:
		return r.resolve(FaceCJK)
	default:
		return r.resolve(base)
	}
}

func (r *Registry) resolve(preferred Face) (Face, error) {
	if r.Has(preferred) {
		return preferred, nil
	}
	if (preferred == FaceThaiBold || preferred == FaceLatinBold) && r.Has(FaceLatinBold) {
		return FaceLatinBold, nil
	}
	if r.Has(FaceLatin) {
		return FaceLatin, nil
	}
	return "", domain.ErrFontsUnavailable
}
