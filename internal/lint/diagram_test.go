package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphs_Mermaid(t *testing.T) {
	g := BuildGraphs(parse(t, flow))

	out, err := g.Mermaid(KindCommand, "", "")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart LR\n")
	assert.Contains(t, out, `probe["probe"]`)
	assert.Contains(t, out, "probe --> rollback\n")
	assert.NotContains(t, out, "classDef cycle")

	out, err = g.Mermaid(KindScript, "", "TD")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart TD\n")
	assert.Contains(t, out, `stage_a[("stage-a")]:::cycle`)
	assert.Contains(t, out, "stage_a -.-> stage_b\n")
	assert.Contains(t, out, "classDef cycle")
}

func TestGraphs_MermaidFrom(t *testing.T) {
	g := BuildGraphs(parse(t, flow))

	out, err := g.Mermaid(KindCommand, "probe", "")
	require.NoError(t, err)
	assert.Contains(t, out, "probe --> rollback\n")

	_, err = g.Mermaid(KindCommand, "missing", "")
	assert.Error(t, err)

	_, err = g.Mermaid("bogus", "", "")
	assert.Error(t, err)
}
