package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteList(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"route:list"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	for _, want := range []string{"orders.store", "/order2products/{id}", "graphql.execute", "ws.orders"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestCommandsAreRegistered(t *testing.T) {
	for _, name := range []string{"serve", "migrate", "migrate:rollback", "migrate:status", "seed", "createsuperuser", "route:list", "export:products"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestCreateSuperuserRequiresFlags(t *testing.T) {
	rootCmd.SetArgs([]string{"createsuperuser"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetErr(nil); rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
