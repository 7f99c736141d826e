package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/automaton/op"
)

// Format writes the compiled operations back as script source. With a
// positive indent, each statement and child is placed on its own line.
func (s *Script) Format(_ context.Context, w io.Writer, indent int) error {
	for _, n := range s.Ops {
		if err := formatNode(n, w, indent, 0); err != nil {
			return err
		}

		sep := " "
		if indent > 0 {
			sep = "\n"
		}

		if _, err := fmt.Fprint(w, ";", sep); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)

	return err
}

func formatNode(n *op.Node, w io.Writer, indent, depth int) error {
	if indent <= 0 {
		_, err := io.WriteString(w, n.String())

		return err
	}

	var sb strings.Builder

	sb.WriteString(n.Name)
	sb.WriteByte('(')

	for i, k := range n.Args.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}

		v, _ := n.Args.Get(k)
		sb.WriteString(k + " = " + op.Quote(v))
	}

	sb.WriteByte(')')

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if len(n.Children) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, "{\n"); err != nil {
		return err
	}

	pad := strings.Repeat(" ", indent*(depth+1))

	for _, c := range n.Children {
		if _, err := io.WriteString(w, pad); err != nil {
			return err
		}

		if err := formatNode(c, w, indent, depth+1); err != nil {
			return err
		}

		if _, err := io.WriteString(w, ";\n"); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, strings.Repeat(" ", indent*depth)+"}")

	return err
}

// FormatJSON writes the compiled operations as JSON.
func (s *Script) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(s.Ops, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(s.Ops)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the compiled operations as YAML.
func (s *Script) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, s.Ops, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
