package workflow_test

import (
	"testing"

	"opexhub/domain/workflow"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	cases := []struct {
		approved int
		total    int
		want     int
	}{
		{0, 0, 0},
		{0, 11, 0},
		{3, 11, 27},
		{5, 11, 45},
		{11, 11, 100},
		{1, 3, 33},
		{2, 2, 100},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, workflow.Progress(c.approved, c.total),
			"progress of %d/%d", c.approved, c.total)
	}
}
