package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_None(t *testing.T) {
	tp, shutdown, err := Setup("none", "omhauth")
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })

	tp, shutdown, err := Setup("stdout", "omhauth")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "unit-span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "unit-span")
	assert.Contains(t, buf.String(), "omhauth")
}

func TestSetup_Unknown(t *testing.T) {
	_, _, err := Setup("jaeger", "omhauth")
	require.Error(t, err)
}
