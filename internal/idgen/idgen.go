// Package idgen produces lexicographically sortable task and execution
// IDs: a fixed-width millisecond-timestamp prefix (so IDs naturally sort
// in creation order) followed by a short random suffix (so two IDs
// minted within the same millisecond never collide). The original
// id_generator builds a similar "timestamp plus distinguishing suffix"
// shape rather than handing out bare UUIDs, for the same reason: a raw
// UUID carries no creation-order information an operator can read off
// at a glance.
package idgen

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// tsWidth holds a millisecond timestamp (currently ~8 base36 digits,
// good for centuries) left-padded to this width so two IDs compare
// correctly as plain strings even across a digit-count rollover.
const tsWidth = 9

// New returns a fresh sortable ID, optionally namespaced by prefix
// (e.g. "task", "exec"). An empty prefix omits the leading segment.
func New(prefix string) string {
	ts := leftPad(strconv.FormatInt(time.Now().UnixMilli(), 36), tsWidth)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	if prefix == "" {
		return ts + suffix
	}
	return prefix + "_" + ts + suffix
}

// NewTaskID mints an ID for internal/taskqueue.Submit's taskID argument.
func NewTaskID() string {
	return New("task")
}

// NewExecutionID mints an ID for one scenario run.
func NewExecutionID() string {
	return New("exec")
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
