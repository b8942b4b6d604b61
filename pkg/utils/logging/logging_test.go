package logging_test

import (
	"bytes"
	"testing"

	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToWarn(t *testing.T) {
	t.Parallel()

	logger, err := logging.New(logging.Output(nil))

	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestNew_AppliesLevel(t *testing.T) {
	t.Parallel()

	logger, err := logging.New(logging.Level("debug"))

	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := logging.New(logging.Level("chatty"))

	require.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func TestFor_TagsComponent(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	logger, err := logging.New(logging.Output(&out), logging.Level("info"))
	require.NoError(t, err)

	logging.For(logger, "bundle").Info("cloned")

	assert.Contains(t, out.String(), "component=bundle")
	assert.Contains(t, out.String(), "msg=cloned")
}

func TestFor_NilBaseDiscards(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		logging.For(nil, "bundle").Error("dropped")
	})
}
