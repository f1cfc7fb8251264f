package postgres

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createTable = regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS (\w+) \((.*?)\n\);`)

func loadTables(t *testing.T) map[string]string {
	t.Helper()
	raw, err := os.ReadFile("../../../migrations/001_core.sql")
	require.NoError(t, err)

	tables := map[string]string{}
	for _, m := range createTable.FindAllStringSubmatch(string(raw), -1) {
		tables[m[1]] = m[2]
	}
	return tables
}

// Deleting a job must never remove applications or the messages tied to them.
func TestSchemaKeepsApplicationsWhenJobsAreDeleted(t *testing.T) {
	tables := loadTables(t)
	require.Contains(t, tables, "applications")

	assert.NotContains(t, tables["applications"], "REFERENCES jobs")
	assert.Contains(t, tables["applications"], "UNIQUE (job_id, jobseeker_id)")

	for name, body := range tables {
		for _, line := range strings.Split(body, "\n") {
			if strings.Contains(line, "REFERENCES applications") {
				assert.NotContains(t, line, "ON DELETE CASCADE", "table %s", name)
			}
		}
	}
}
