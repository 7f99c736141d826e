package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedback_Messages(t *testing.T) {
	var fb Feedback

	at := func(off int) Position { return Position{Offset: off, Line: 1, Column: off + 1} }

	fb.Add(SeverityDebug, Position{}, "first unlocated")
	fb.Add(SeverityWarning, at(9), "late")
	fb.Add(SeverityError, at(2), "early")
	fb.Add(SeverityWarning, at(9), "late")
	fb.Add(SeverityInfo, Position{}, "second unlocated")
	fb.Add(SeverityInfo, at(2), "early too")

	got := fb.Messages()

	texts := make([]string, len(got))
	for i, m := range got {
		texts[i] = m.Text
	}

	assert.Equal(t,
		[]string{"early", "early too", "late", "first unlocated", "second unlocated"},
		texts)
	assert.True(t, fb.HasErrors())
	assert.Equal(t, 6, fb.Len())
}

func TestFeedback_Cap(t *testing.T) {
	var fb Feedback

	for i := range MaxFeedback + 10 {
		fb.Add(SeverityWarning, Position{Offset: i, Line: 1, Column: i + 1}, "w")
	}

	fb.Add(SeverityError, Position{}, "dropped")

	assert.Equal(t, MaxFeedback, fb.Len())
	assert.True(t, fb.HasErrors())
}

func TestMessage_String(t *testing.T) {
	m := Message{Severity: SeverityError, Pos: Position{Line: 3, Column: 7}, Text: "bad"}
	assert.Equal(t, "error: line 3, char 7: bad", m.String())

	m.Pos = Position{}
	assert.Equal(t, "error: bad", m.String())
}
