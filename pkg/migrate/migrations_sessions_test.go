package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAgentLoginSessionsMigrationHasPartialUniqueIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_agent_login_sessions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no agent login sessions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS agent_login_sessions",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_agent_open_session_per_day",
		"WHERE logout_time IS NULL",
		"CHECK (logout_time IS NULL OR logout_time >= login_time)",
		"DROP TABLE IF EXISTS agent_login_sessions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
