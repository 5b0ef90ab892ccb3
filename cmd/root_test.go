package cmd

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {}} {
		var buf bytes.Buffer
		RootCmd.SetOut(&buf)
		RootCmd.SetErr(&buf)
		RootCmd.SetArgs(args)

		if err := RootCmd.Execute(); err != nil {
			t.Errorf("root command with args %v failed: %v", args, err)
		}
		if !strings.Contains(buf.String(), "schemadiff compares two versions of a schema") {
			t.Errorf("expected help output to contain description, got: %s", buf.String())
		}
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	var commandNames []string
	for _, cmd := range RootCmd.Commands() {
		commandNames = append(commandNames, cmd.Name())
	}

	for _, expected := range []string{"version", "plan", "apply", "dump"} {
		if !slices.Contains(commandNames, expected) {
			t.Errorf("expected subcommand %s not found in: %v", expected, commandNames)
		}
	}
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"debug", "config"} {
		if RootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag --%s", name)
		}
	}
}

func TestRootCommandMissingConfigFile(t *testing.T) {
	t.Cleanup(func() { ConfigFile = "" })

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs([]string{"--config", "/nonexistent/schemadiff.yaml", "version"})

	err := RootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected config file error, got %v", err)
	}
}
