package builtin

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/automaton/op"
	"github.com/ardnew/automaton/state"
)

var ForEachDistinct = op.Operation{
	Doc: op.Doc{
		Name: "ForEachDistinct",
		Desc: "Partitions the state into groups of items sharing the same value" +
			" for every given key, and runs child operations on each group in" +
			" turn. The groups are recombined afterwards.",
		Notes: []string{
			"Items carrying several different values for a key are not" +
				" partitioned and are reported with a warning.",
			"Any child that does not succeed is an error.",
		},
		Args: []op.ArgDoc{
			{
				Name: "KeysCommon",
				Desc: "Metadata keys whose values must match within a group," +
					" separated by ';'. With no keys nothing is done.",
				Examples: []string{"Modality", "PatientID;StudyDate"},
				Expected: true,
			},
			{
				Name: "IncludeNA",
				Desc: "Also run the children on the items lacking a value for" +
					" some key.",
				Default:    "false",
				Examples:   []string{"true", "false"},
				Exhaustive: true,
				Expected:   true,
			},
		},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		keys, err := x.Args.List("KeysCommon")
		if err != nil {
			return op.Errored(err)
		}

		includeNA, err := x.Args.Bool("IncludeNA")
		if err != nil {
			return op.Errored(err)
		}

		logger := x.Logger()

		if len(keys) == 0 {
			logger.DebugContext(ctx, "no keys given, nothing to partition")

			return op.Succeeded()
		}

		p := state.Partition(x.State, keys)
		defer func() { x.State.Replace(p.Combine()) }()

		for _, it := range p.Heterogeneous {
			logger.WarnContext(ctx, "Refusing to partition heterogeneous element",
				slog.String("kind", it.Kind),
				slog.String("id", it.ID),
				slog.String("source", it.Source),
			)
		}

		logger.DebugContext(ctx, "partitioned",
			slog.Int("groups", len(p.Parts)),
			slog.Int("unmatched", p.NA.Len()),
		)

		for i, part := range p.Parts {
			if o := x.RunOn(ctx, part, x.Params, x.Children...); !o.OK() {
				return childFailed(x, o,
					slog.String("group", strings.Join(p.Values[i], ";")),
				)
			}
		}

		if includeNA && p.NA.Len() > 0 {
			if o := x.RunOn(ctx, p.NA, x.Params, x.Children...); !o.OK() {
				return childFailed(x, o, slog.String("group", "N/A"))
			}
		}

		return op.Succeeded()
	},
}

var ForEachRTPlan = op.Operation{
	Doc: op.Doc{
		Name: "ForEachRTPlan",
		Desc: "For each selected plan item, isolates the plan together with every" +
			" item linked to it and runs child operations on that selection." +
			" The selection is appended back to the state afterwards.",
		Notes: []string{
			"Items are linked through their ID and references, transitively.",
			"Any child that does not succeed is an error.",
		},
		Args: []op.ArgDoc{{
			Name: "PlanSelection",
			Desc: "Which plans to visit: 'all', 'first', 'last', '#N' counting" +
				" from zero, or '#-N' counting back from the end.",
			Default:  "all",
			Examples: []string{"all", "first", "last", "#0", "#-1"},
			Expected: true,
		}},
	},
	Run: func(ctx context.Context, x *op.Exec) op.Outcome {
		sel, _ := x.Args.Get("PlanSelection")

		indices, err := x.State.SelectPlans(sel)
		if err != nil {
			return op.Errored(op.ErrInvalidArgument.With(
				slog.String("argument", "PlanSelection"),
			).Wrap(err))
		}

		logger := x.Logger()

		if len(indices) == 0 {
			logger.InfoContext(ctx, "no plans selected", slog.String("selection", sel))

			return op.Succeeded()
		}

		// Recombining reorders the state, so plans are tracked by identity.
		plans := make([]*state.Item, len(indices))
		for i, idx := range indices {
			plans[i] = x.State.Items[idx]
		}

		for n, plan := range plans {
			idx := slices.Index(x.State.Items, plan)
			if idx < 0 {
				logger.DebugContext(ctx, "plan no longer present", slog.String("id", plan.ID))

				continue
			}

			picked, rest := x.State.Split(append(x.State.Linked(idx), idx))

			logger.DebugContext(ctx, "visiting plan",
				slog.Int("plan", n),
				slog.String("id", plan.ID),
				slog.Int("items", picked.Len()),
			)

			o := x.RunOn(ctx, picked, x.Params, x.Children...)

			x.State.Replace(rest)
			x.State.Merge(picked)

			if !o.OK() {
				return childFailed(x, o, slog.String("plan", plan.ID))
			}
		}

		return op.Succeeded()
	},
}
