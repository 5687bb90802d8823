package interp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
)

// Formats lists the names accepted by [FormatSegments].
func Formats() []string { return []string{"text", "json", "yaml"} }

// FormatSegments writes segs to w as aligned text, JSON or YAML.
// Indent applies to JSON and YAML; zero selects compact output.
func FormatSegments(
	ctx context.Context,
	w io.Writer,
	segs []Segment,
	format string,
	indent int,
) error {
	if segs == nil {
		segs = []Segment{}
	}

	switch strings.ToLower(format) {
	case "", "text":
		return formatText(w, segs)

	case "json":
		var (
			b   []byte
			err error
		)

		if indent > 0 {
			b, err = json.MarshalIndent(segs, "", strings.Repeat(" ", indent))
		} else {
			b, err = json.Marshal(segs)
		}

		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(b))

		return err

	case "yaml":
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		b, err := yaml.MarshalContext(ctx, segs, opts...)
		if err != nil {
			return err
		}

		_, err = w.Write(b)

		return err

	default:
		return ErrInvalidFormat.With(
			slog.String("format", format),
			slog.String("valid", strings.Join(Formats(), ",")),
		)
	}
}

func formatText(w io.Writer, segs []Segment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, s := range segs {
		_, err := fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Offset+1, s.Kind, strconv.Quote(s.Text))
		if err != nil {
			return err
		}
	}

	return tw.Flush()
}
