package eventLog

import (
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger(h *Hook) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.AddHook(h)
	return l
}

func TestHook_NewestFirstAndNumbered(t *testing.T) {
	h := New(10)
	log := newLogger(h)

	log.Info("reading all pinned refs")
	log.WithField("ref", "bafyroot").Info("fetching")

	recent := h.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "2: fetching bafyroot", recent[0].String())
	assert.Equal(t, "1: reading all pinned refs", recent[1].String())
}

func TestHook_Bounded(t *testing.T) {
	h := New(3)
	log := newLogger(h)
	for i := 0; i < 7; i++ {
		log.Info(fmt.Sprintf("event %d", i))
	}

	recent := h.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, 7, recent[0].Index)
	assert.Equal(t, 5, recent[2].Index)
}

func TestHook_FieldsRendered(t *testing.T) {
	h := New(0)
	log := newLogger(h)
	log.WithFields(logrus.Fields{"ref": "bafyx", "kind": "fetch", "error": "timeout"}).Warn("could not classify ref")

	recent := h.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "could not classify ref bafyx error=timeout kind=fetch", recent[0].Message)
	assert.Equal(t, logrus.WarnLevel, recent[0].Level)
}

func TestHook_IgnoresDebug(t *testing.T) {
	h := New(5)
	log := newLogger(h)
	log.SetLevel(logrus.DebugLevel)
	log.Debug("kubo rpc")
	assert.Empty(t, h.Recent())
}
