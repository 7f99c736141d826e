package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_Clone_IsDeep(t *testing.T) {
	it := &Item{
		Kind:     "image",
		Refs:     []string{"a"},
		Metadata: Metadata{"Modality": "CT"},
		Elements: []Metadata{{"Slice": "1"}},
	}

	c := it.Clone()
	c.Refs[0] = "b"
	c.Metadata["Modality"] = "MR"
	c.Elements[0]["Slice"] = "2"

	assert.Equal(t, "a", it.Refs[0])
	assert.Equal(t, "CT", it.Metadata["Modality"])
	assert.Equal(t, "1", it.Elements[0]["Slice"])
}

func TestItem_DistinctValues(t *testing.T) {
	tests := []struct {
		name string
		item *Item
		want []string
	}{
		{
			name: "metadata",
			item: &Item{Metadata: Metadata{"k": "v"}},
			want: []string{"v"},
		},
		{
			name: "missing",
			item: &Item{Metadata: Metadata{"x": "v"}},
			want: nil,
		},
		{
			name: "elements agree",
			item: &Item{Elements: []Metadata{{"k": "1"}, {"k": "1"}}},
			want: []string{"1"},
		},
		{
			name: "elements disagree",
			item: &Item{Elements: []Metadata{{"k": "1"}, {"k": "2"}, {"k": "1"}}},
			want: []string{"1", "2"},
		},
		{
			name: "elements partially missing",
			item: &Item{Elements: []Metadata{{"k": "1"}, {}}},
			want: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.DistinctValues("k"))
		})
	}
}

func TestState_CloneMergeReplace(t *testing.T) {
	s := New(&Item{Kind: "a"}, &Item{Kind: "b"})
	snap := s.Clone()

	s.Items[0].Kind = "changed"
	assert.Equal(t, "a", snap.Items[0].Kind)

	other := New(&Item{Kind: "c"})
	s.Merge(other)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 0, other.Len())

	holder := s
	s.Replace(snap)
	assert.Equal(t, 2, holder.Len())
	assert.Equal(t, "a", holder.Items[0].Kind)

	assert.Equal(t, map[string]int{"a": 1, "b": 1}, holder.Kinds())
}

func TestParams_CloneReplace(t *testing.T) {
	p := Params{"a": "1"}
	c := p.Clone()
	c["b"] = "2"

	assert.NotContains(t, p, "b")

	p.Replace(Params{"z": "9"})
	assert.Equal(t, Params{"z": "9"}, p)
	assert.Equal(t, []string{"z"}, p.Keys())

	var empty Params
	assert.NotNil(t, empty.Clone())
}

func TestError_IsMatchesDerived(t *testing.T) {
	err := ErrReadFile.Wrap(errors.New("boom"))

	require.ErrorIs(t, err, ErrReadFile)
	assert.NotErrorIs(t, err, ErrParseFile)
	assert.Equal(t, "failed to read file: boom", err.Error())
}
