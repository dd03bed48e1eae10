package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRootCmdHasServeSubcommand(t *testing.T) {
	root := newRootCmd()
	serveCmd, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.Equal(t, "serve", serveCmd.Name())
}

func TestServeCmdRequiresCertAndKeyFlags(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"serve", "--addr", ":0"})

	err := root.Execute()
	require.Error(t, err)
}
