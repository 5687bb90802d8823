package interp

// Builtins visible to runtime expressions. Caller bindings shadow them.

import (
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

//nolint:gochecknoglobals
var builtinEnv = sync.OnceValue(func() map[string]any {
	return map[string]any{
		"hostname": hostname,
		"cwd":      cwd,
		"quote":    strconv.Quote,
		"platform": map[string]any{
			"os":   runtime.GOOS,
			"arch": runtime.GOARCH,
		},
		"path": map[string]any{
			"abs":  pathAbs,
			"base": filepath.Base,
			"dir":  filepath.Dir,
			"ext":  filepath.Ext,
			"join": pathJoin,
		},
		"file": map[string]any{
			"exists": fileExists,
			"isDir":  fileIsDir,
			"read":   fileRead,
		},
		"mung": map[string]any{
			"prefix": mungPrefix,
			"filter": mungFilter,
		},
	}
})

// Builtins returns the names of the builtin bindings, including env, in
// sorted order.
func Builtins() []string {
	return slices.Sorted(maps.Keys(makeEnv(nil)))
}

// BuiltinMembers returns the member names of a builtin namespace such as
// "path", or nil if name is not one.
func BuiltinMembers(name string) []string {
	m, ok := builtinEnv()[name].(map[string]any)
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}

// makeEnv returns a fresh map holding the builtins and an env function
// over environ.
func makeEnv(environ map[string]string) map[string]any {
	env := maps.Clone(builtinEnv())
	env["env"] = func(key string) string { return environ[key] }

	return env
}

// environMap converts KEY=VALUE pairs to a map. A nil slice reads the
// process environment.
func environMap(environ []string) map[string]string {
	if environ == nil {
		environ = os.Environ()
	}

	m := make(map[string]string, len(environ))

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}

	return m
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}

	return h
}

func cwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return wd
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathJoin(elem ...string) string { return filepath.Join(elem...) }

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileRead(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return string(b)
}

// mungPrefix prepends items to the PATH-style list value, removing
// duplicates.
func mungPrefix(value string, items ...string) string {
	return mung.Make(
		mung.WithSubjectItems(value),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
	).String()
}

// mungFilter keeps only the elements of the PATH-style list value that
// exist on disk.
func mungFilter(value string) string {
	return mung.Make(
		mung.WithSubjectItems(value),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithFilter(fileExists),
	).String()
}

// Builtin returns the builtin value at a dotted path such as "path.join".
func Builtin(path string) (any, bool) {
	var cur any = makeEnv(nil)

	for name := range strings.SplitSeq(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		if cur, ok = m[name]; !ok {
			return nil, false
		}
	}

	return cur, true
}
