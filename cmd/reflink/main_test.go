package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reflink/internal/logging"
)

func TestRunContextAttachesScanID(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	id := logging.ScanIDFromContext(runContext(cmd))
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	// Each invocation gets its own correlation id.
	assert.NotEqual(t, id, logging.ScanIDFromContext(runContext(cmd)))
}
