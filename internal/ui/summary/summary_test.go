package summary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/summary"
)

func TestFailures(t *testing.T) {
	res := domain.StageResult{Stage: "animations", Processed: 3}
	res.Record("characters/joy.spine", "Is the skeleton of joy.spine named joy?")
	res.Record("characters/joy.spine", "Dialog farewell is missing! Found in characters/joy.spine")
	res.Record("props/door.spine", "spine exited with code 1")

	out := summary.Failures(res)

	assert.Contains(t, out, "animations: 3 error(s)")
	assert.Contains(t, out, "characters/joy.spine")
	assert.Contains(t, out, "Dialog farewell is missing!")
	assert.Contains(t, out, "props/door.spine")
	assert.Equal(t, 1, fileCells(out, "characters/joy.spine"), "a file is named once per group")
}

// fileCells counts the rows whose first column holds file.
func fileCells(table, file string) int {
	n := 0
	for _, line := range strings.Split(table, "\n") {
		if strings.HasPrefix(line, "│ "+file+" ") {
			n++
		}
	}
	return n
}

func TestFailures_NoErrors(t *testing.T) {
	assert.Empty(t, summary.Failures(domain.StageResult{Stage: "scenes", Processed: 2}))
}

func TestOverview(t *testing.T) {
	failed := domain.StageResult{Stage: "lipsync", Processed: 4}
	failed.Record("de_007", "rhubarb exited with code 1")

	out := summary.Overview([]domain.StageResult{
		{Stage: "copy", Processed: 12},
		failed,
	})

	assert.Contains(t, out, "copy")
	assert.Contains(t, out, "lipsync")
	assert.Contains(t, strings.ToUpper(out), "TOTAL")
	assert.Contains(t, out, "12")
}

func TestRender_Empty(t *testing.T) {
	assert.Empty(t, summary.Render(nil))
}
