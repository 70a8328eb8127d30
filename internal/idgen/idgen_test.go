package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHasPrefixAndIsUnique(t *testing.T) {
	a := New("task")
	b := New("task")
	assert.True(t, len(a) > len("task_"))
	assert.Contains(t, a, "task_")
	assert.NotEqual(t, a, b)
}

func TestNewNoPrefix(t *testing.T) {
	id := New("")
	assert.NotContains(t, id, "_")
}

func TestSortableAcrossTime(t *testing.T) {
	first := New("task")
	time.Sleep(2 * time.Millisecond)
	second := New("task")
	assert.Less(t, first, second)
}

func TestNewTaskIDAndExecutionIDPrefixes(t *testing.T) {
	assert.Contains(t, NewTaskID(), "task_")
	assert.Contains(t, NewExecutionID(), "exec_")
}
