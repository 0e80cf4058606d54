package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseTodoPatch(t *testing.T) {
	tests := []struct {
		name string
		body string
		want TodoPatch
	}{
		{"empty", `{}`, TodoPatch{}},
		{"text only", `{"text":"milk"}`, TodoPatch{Text: ptr("milk")}},
		{"title is an alias for text", `{"title":"milk"}`, TodoPatch{Text: ptr("milk")}},
		{"empty title is ignored", `{"title":""}`, TodoPatch{}},
		{"null title is ignored", `{"title":null}`, TodoPatch{}},
		{"text wins over title", `{"title":"a","text":"b"}`, TodoPatch{Text: ptr("b")}},
		{"completed true", `{"completed":true}`, TodoPatch{Status: ptr(StatusCompleted)}},
		{"completed false", `{"completed":false}`, TodoPatch{Status: ptr(StatusTodo)}},
		{"status wins over completed", `{"completed":true,"status":1}`, TodoPatch{Status: ptr(StatusInProgress)}},
		{"null text resets", `{"text":null}`, TodoPatch{Text: ptr("")}},
		{"null status resets", `{"status":null}`, TodoPatch{Status: ptr(StatusTodo)}},
		{"null priority resets", `{"priority":null}`, TodoPatch{Priority: ptr(PriorityLow)}},
		{"names match case-insensitively", `{"status":"in_progress","priority":"High"}`,
			TodoPatch{Status: ptr(StatusInProgress), Priority: ptr(PriorityHigh)}},
		{"id and unknown keys are ignored", `{"id":"other","color":"red"}`, TodoPatch{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTodoPatch([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTodoPatch_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"status out of range", `{"status":3}`, ErrInvalidStatus},
		{"negative status", `{"status":-1}`, ErrInvalidStatus},
		{"unknown status name", `{"status":"DONE"}`, ErrInvalidStatus},
		{"priority out of range", `{"priority":7}`, ErrInvalidPriority},
		{"unknown priority name", `{"priority":"URGENT"}`, ErrInvalidPriority},
		{"text of the wrong type", `{"text":5}`, nil},
		{"completed of the wrong type", `{"completed":"yes"}`, nil},
		{"not json", `{`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTodoPatch([]byte(tt.body))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTodoPatch_Apply(t *testing.T) {
	base := Todo{ID: "t1", Text: "milk", Status: StatusInProgress, Priority: PriorityHigh}

	assert.Equal(t, base, TodoPatch{}.Apply(base))
	assert.True(t, TodoPatch{}.Empty())

	got := TodoPatch{Text: ptr("oat milk")}.Apply(base)
	assert.Equal(t, Todo{ID: "t1", Text: "oat milk", Status: StatusInProgress, Priority: PriorityHigh}, got)
}

func TestStatus_Next(t *testing.T) {
	s := StatusTodo
	s = s.Next()
	assert.Equal(t, StatusInProgress, s)
	s = s.Next()
	assert.Equal(t, StatusCompleted, s)
	assert.Equal(t, StatusTodo, s.Next())
}

func TestTodo_JSON(t *testing.T) {
	raw, err := json.Marshal(Todo{ID: "t1", Text: "milk", Status: StatusCompleted, Priority: PriorityLow})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t1","text":"milk","status":2,"priority":0}`, string(raw))
}

func TestTodoSubmission_UnmarshalJSON(t *testing.T) {
	var sub TodoSubmission
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","text":"milk"}`), &sub))
	assert.Equal(t, TodoSubmission{ID: "t1", Patch: TodoPatch{Text: ptr("milk")}}, sub)

	err := json.Unmarshal([]byte(`{"id":"t1","priority":9}`), &sub)
	assert.ErrorIs(t, err, ErrInvalidPriority)
}
