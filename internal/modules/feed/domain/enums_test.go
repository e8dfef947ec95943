package domain_test

import (
	"testing"

	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExportFormat(t *testing.T) {
	format, err := domain.ParseExportFormat("ATOM")
	require.NoError(t, err)
	assert.Equal(t, domain.ExportFormatAtom, format)
	assert.True(t, format.IsValid())

	_, err = domain.ParseExportFormat("opml")
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
	assert.False(t, domain.ExportFormat("opml").IsValid())
}

func TestParseAppEnv(t *testing.T) {
	env, err := domain.ParseAppEnv(" Testing ")
	require.NoError(t, err)
	assert.Equal(t, domain.AppEnvTesting, env)
	assert.Equal(t, "testing", env.String())

	_, err = domain.ParseAppEnv("staging")
	assert.ErrorIs(t, err, domain.ErrInvalidAppEnv)
}
