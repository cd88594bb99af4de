package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/studentconnect/intake/internal/config"
)

func TestSubmitterFlagUsage_ListsEverySubmitter(t *testing.T) {
	for _, cmdName := range []string{"fill", "mcp"} {
		cmd, _, err := rootCmd.Find([]string{cmdName})
		if !assert.NoError(t, err) {
			continue
		}
		usage := cmd.Flags().Lookup("submitter").Usage
		for _, name := range []string{config.SubmitterLog, config.SubmitterNATS, config.SubmitterFile, config.SubmitterSQLite} {
			assert.Contains(t, usage, name, "%s --submitter", cmdName)
		}
	}
}
