package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestContributionsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_contributions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no contributions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS contributions",
		"FOREIGN KEY (assigned_agent_id) REFERENCES service_agents(id) ON DELETE RESTRICT",
		"CHECK (status <> 'pending' OR (assigned_agent_id IS NULL AND rejection_reason IS NULL))",
		"CHECK (status <> 'rejected' OR rejection_reason IS NOT NULL)",
		"WHERE status = 'pending' AND assigned_agent_id IS NULL",
		"DROP TABLE IF EXISTS contributions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRejectionReasonEnumIsClosed(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_contributions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no contributions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	reasons := []string{
		"quality_issue",
		"damaged",
		"already_rented_elsewhere",
		"incomplete_set",
		"owner_unavailable",
		"incorrect_category",
	}
	for _, reason := range reasons {
		if !strings.Contains(content, "'"+reason+"'") {
			t.Errorf("missing rejection reason %q", reason)
		}
	}
}
