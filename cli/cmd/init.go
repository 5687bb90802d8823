package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/interp/log"
	"github.com/ardnew/interp/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file with the current flag values.
type Init struct {
	Force  bool `help:"Overwrite existing configuration file" short:"f"`
	Stdout bool `help:"Write the configuration to stdout"     short:"c"`
}

// ignoreFlags are never written to the configuration file.
//
//nolint:gochecknoglobals
var ignoreFlags = []string{"help", "version", profile.Tag}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	doc, err := yaml.MarshalContext(ctx, i.document(ktx),
		yaml.Indent(defaultConfigIndent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if i.Stdout {
		_, err = stdout(ctx).Write(doc)

		return err
	}

	confPath := varFrom(ctx, ConfigIdentifier)
	if confPath == "" {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err := os.WriteFile(confPath, doc, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.InfoContext(ctx, "initialized configuration file", slog.String("path", confPath))

	return nil
}

// document lays out the application flags as YAML: grouped flags under
// their group key, command flags under the command name, and the rest at
// the top level. Empty values are omitted.
func (i *Init) document(ktx *kong.Context) yaml.MapSlice {
	var doc yaml.MapSlice

	groups := map[string]int{}

	for _, flag := range ktx.Model.Flags {
		val, ok := flagValue(ktx, flag)
		if !ok {
			continue
		}

		key, name, nested := strings.Cut(flag.Name, "-")
		if flag.Group == nil || flag.Group.Key != key || !nested {
			doc = append(doc, yaml.MapItem{Key: flag.Name, Value: val})

			continue
		}

		idx, seen := groups[key]
		if !seen {
			idx = len(doc)
			groups[key] = idx
			doc = append(doc, yaml.MapItem{Key: key, Value: yaml.MapSlice{}})
		}

		section, _ := doc[idx].Value.(yaml.MapSlice)
		doc[idx].Value = append(section, yaml.MapItem{Key: name, Value: val})
	}

	for _, node := range ktx.Model.Children {
		if node.Type != kong.CommandNode || node.Hidden {
			continue
		}

		var section yaml.MapSlice

		for _, flag := range node.Flags {
			if val, ok := flagValue(ktx, flag); ok {
				section = append(section, yaml.MapItem{Key: flag.Name, Value: val})
			}
		}

		if len(section) > 0 {
			doc = append(doc, yaml.MapItem{Key: node.Name, Value: section})
		}
	}

	return doc
}

// flagValue returns the value of flag if it belongs in the configuration
// file.
func flagValue(ktx *kong.Context, flag *kong.Flag) (any, bool) {
	if flag.Hidden || slices.ContainsFunc(ignoreFlags, func(s string) bool {
		return strings.HasPrefix(flag.Name, s)
	}) {
		return nil, false
	}

	val := ktx.FlagValue(flag)
	if val == nil {
		return nil, false
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.String:
		if rv.Len() == 0 {
			return nil, false
		}

		// Named string types such as enums are written as plain strings.
		return rv.String(), true

	case reflect.Slice, reflect.Map:
		if rv.Len() == 0 {
			return nil, false
		}
	}

	return val, true
}
