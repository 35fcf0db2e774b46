package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The constraint pass runs on every boot, so each statement must be valid
// PostgreSQL and idempotent. ADD CONSTRAINT in particular has no
// IF NOT EXISTS form and would make the second boot fatal.
func TestConstraintStatements_AreRerunnable(t *testing.T) {
	require.NotEmpty(t, constraintStatements)

	for _, stmt := range constraintStatements {
		normalized := strings.Join(strings.Fields(strings.ToUpper(stmt)), " ")

		assert.NotContains(t, normalized, "ADD CONSTRAINT",
			"constraints must be expressed as indexes so IF NOT EXISTS applies: %s", stmt)
		assert.Contains(t, normalized, "IF NOT EXISTS",
			"statement must be safe to re-run: %s", stmt)
		assert.True(t, strings.HasPrefix(normalized, "CREATE "),
			"unexpected statement form: %s", stmt)
	}
}

func TestConstraintStatements_CoverSessionAndSeatUniqueness(t *testing.T) {
	all := strings.Join(strings.Fields(strings.Join(constraintStatements, " ")), " ")

	assert.Contains(t, all, "ON purchase_sessions (user_id) WHERE state <> 'COMPLETED'")
	assert.Contains(t, all, "ON selected_seats (session_id, seat_row, seat_col)")
}
