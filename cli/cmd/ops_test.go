package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/automaton/log"
)

func TestOpsText(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    []string
		wantNot []string
	}{
		{"all", "", []string{"ForEachDistinct", "MaskParameters", "PollDirectories"}, []string{"Selecting"}},
		{"exact", "MaskParameters", []string{"Behaviour", "one of reset|retain|transaction"}, []string{"Selecting", "ForEachDistinct"}},
		{"alias", "setparameter", []string{"DefineParameter", "Key"}, nil},
		{"fuzzy", "MaskParam", []string{"Selecting operation 'MaskParameters' because 'MaskParam' not understood."}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			o := &Ops{Format: "text", Indent: 2, Name: tt.query}
			if err := o.run(context.Background(), &out, log.Logger{}); err != nil {
				t.Fatal(err)
			}

			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output does not contain %q:\n%s", want, out.String())
				}
			}

			for _, bad := range tt.wantNot {
				if strings.Contains(out.String(), bad) {
					t.Errorf("output contains %q:\n%s", bad, out.String())
				}
			}
		})
	}
}

func TestOpsUnknown(t *testing.T) {
	var out bytes.Buffer

	o := &Ops{Format: "text", Name: "qqqqqqqq"}

	err := o.run(context.Background(), &out, log.Logger{})
	if !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("run() error = %v, want ErrUnknownOp", err)
	}

	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestOpsSuggestions(t *testing.T) {
	o := &Ops{Format: "text", Name: "Tzzzzz"}

	err := o.run(context.Background(), &bytes.Buffer{}, log.Logger{})
	if !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("run() error = %v, want ErrUnknownOp", err)
	}

	if msg := err.Error(); !strings.Contains(msg, `"Tzzzzz": did you mean `) {
		t.Errorf("error %q offers no suggestions", msg)
	}
}

func TestOpsStructured(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer

		o := &Ops{Format: "json", Indent: 2, Name: "Sleep"}
		if err := o.run(context.Background(), &out, log.Logger{}); err != nil {
			t.Fatal(err)
		}

		var docs []map[string]any
		if err := json.Unmarshal(out.Bytes(), &docs); err != nil {
			t.Fatal(err)
		}

		if len(docs) != 1 || docs[0]["name"] != "Sleep" {
			t.Errorf("json docs = %v", docs)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer

		o := &Ops{Format: "yaml", Indent: 2}
		if err := o.run(context.Background(), &out, log.Logger{}); err != nil {
			t.Fatal(err)
		}

		var docs []map[string]any
		if err := yaml.Unmarshal(out.Bytes(), &docs); err != nil {
			t.Fatal(err)
		}

		if len(docs) < 20 {
			t.Errorf("yaml docs = %d, want every operation", len(docs))
		}
	})
}
