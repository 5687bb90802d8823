package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/interp/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration
// files such as the one written by the init command:
//
//	log:
//	  level: debug
//	eval:
//	  dialect: hash
//	  var:
//	    - name=World
//
// A flag is looked up in its command's section, or at the top level for
// application flags. Within a scope, a grouped flag like --log-level may
// be written flat (log-level or log_level) or nested under its group key.
// Command-line flags override the file.
//
// A file that does not decode is logged and otherwise ignored.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring invalid configuration file",
				slog.String("error", yaml.FormatError(err, false, true)),
			)

			return config{}, nil
		}

		return config(doc), nil
	}
}

// config implements [kong.Resolver] over a decoded YAML document.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	scope := c

	if node := parent.Node(); node != nil && node.Type == kong.CommandNode {
		section, ok := c.section(node.Name)
		if !ok {
			return nil, nil
		}

		scope = section
	}

	v, ok := scope.lookup(flag)
	if !ok || v == nil {
		return nil, nil
	}

	return flagString(v), nil
}

func (c config) section(key string) (config, bool) {
	m, ok := c[key].(map[string]any)

	return config(m), ok
}

func (c config) value(name string) (any, bool) {
	if v, ok := c[name]; ok {
		return v, true
	}

	v, ok := c[strings.ReplaceAll(name, "-", "_")]

	return v, ok
}

func (c config) lookup(flag *kong.Flag) (any, bool) {
	if v, ok := c.value(flag.Name); ok {
		return v, true
	}

	if flag.Group == nil {
		return nil, false
	}

	key, name, ok := strings.Cut(flag.Name, "-")
	if !ok || key != flag.Group.Key {
		return nil, false
	}

	section, ok := c.section(key)
	if !ok {
		return nil, false
	}

	return section.value(name)
}

// flagString renders a decoded value the way it would appear on the
// command line. Sequence elements are joined with commas, escaping any
// commas they contain.
func flagString(v any) string {
	items, ok := v.([]any)
	if !ok {
		return fmt.Sprint(v)
	}

	elem := make([]string, len(items))
	for i, item := range items {
		elem[i] = strings.ReplaceAll(fmt.Sprint(item), ",", `\,`)
	}

	return strings.Join(elem, ",")
}
