package irmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Line: 12, Reason: "bad token"}
	assert.Equal(t, "config line 12: bad token", err.Error())
}

func TestBadTimingErrorMessage(t *testing.T) {
	err := &BadTimingError{Where: "header"}
	assert.Equal(t, "bad timing at header", err.Error())
}

func TestBufferFullErrorMessage(t *testing.T) {
	assert.Equal(t, "buffer full", (&BufferFullError{}).Error())
}

func TestUnsupportedFamilyErrorMessage(t *testing.T) {
	err := &UnsupportedFamilyError{Family: FamilyGrundig}
	assert.Equal(t, "encoding not implemented for family GRUNDIG", err.Error())
}

func TestFramingErrorMessage(t *testing.T) {
	err := &FramingError{Bit: 3}
	assert.Equal(t, "framing error at bit 3", err.Error())
}

func TestUnknownRemoteErrorMessage(t *testing.T) {
	err := &UnknownRemoteError{Name: "tv"}
	assert.Equal(t, `unknown remote "tv"`, err.Error())
}

func TestUnknownButtonErrorMessage(t *testing.T) {
	err := &UnknownButtonError{Remote: "tv", Button: "power"}
	assert.Equal(t, `unknown button "power" on remote "tv"`, err.Error())
}
