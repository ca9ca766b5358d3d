package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/core"
)

func TestCompileCheckOption(t *testing.T) {
	c, err := CompileCheckOption("positive", "value > 0.0")
	require.NoError(t, err)

	ok, err := c.Eval(map[string]any{"value": 1.5})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Eval(map[string]any{"value": -1.5})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompileCheckOption_InvalidExpression(t *testing.T) {
	_, err := CompileCheckOption("bad", "value >")
	require.Error(t, err)
}

func TestCompileCheckOption_RequiresBool(t *testing.T) {
	_, err := CompileCheckOption("bad", `"not a bool"`)
	require.Error(t, err)
}

func TestRowFilter(t *testing.T) {
	f, err := CompileRowFilter(`device startsWith "sensor-"`)
	require.NoError(t, err)

	ok, err := f.Eval(map[string]any{"device": "sensor-1"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Eval(map[string]any{"device": "gateway-1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProjection(t *testing.T) {
	p, err := CompileProjection(
		[]string{"device", "doubled"},
		[]string{"device", "value * 2.0"},
	)
	require.NoError(t, err)

	out, err := p.Eval(map[string]any{"device": "sensor-1", "value": 2.5})
	require.NoError(t, err)
	assert.Equal(t, core.Row{"sensor-1", 5.0}, out)
}

func TestCompileProjection_Mismatch(t *testing.T) {
	_, err := CompileProjection([]string{"a", "b"}, []string{"1"})
	require.Error(t, err)
}

func TestRowEnv(t *testing.T) {
	desc := &catalog.TableDescriptor{
		Columns: []catalog.ColumnDescriptor{
			{Name: "device", Type: catalog.ColumnString},
			{Name: "value", Type: catalog.ColumnFloat},
			{Name: "note", Type: catalog.ColumnString, Nullable: true},
		},
	}

	env := RowEnv(desc, core.Row{"sensor-1", 1.0})
	assert.Equal(t, map[string]any{
		"device": "sensor-1",
		"value":  1.0,
		"note":   nil,
	}, env)
}
