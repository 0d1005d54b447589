package irmux

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextWiresDriverBuffers(t *testing.T) {
	d := NewFakeDriver(1, ModeMode2)
	ctx := NewContext(d, log.InfoLevel, nil)

	require.NotNil(t, ctx.Rbuf)
	require.NotNil(t, ctx.Sbuf)
	require.NotNil(t, ctx.Log)
	assert.Same(t, d, ctx.Driver)
}

func TestNewContextLogsAtGivenLevel(t *testing.T) {
	var buf bytes.Buffer
	d := NewFakeDriver(1, ModeMode2)
	ctx := NewContext(d, log.WarnLevel, &buf)

	ctx.Log.Info("should not appear")
	ctx.Log.Warn("should appear")

	assert.NotContains(t, buf.String(), "should not appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestNewContextNilWriterDiscards(t *testing.T) {
	d := NewFakeDriver(1, ModeMode2)
	ctx := NewContext(d, log.DebugLevel, nil)
	assert.NotPanics(t, func() { ctx.Log.Info("discarded") })
}
