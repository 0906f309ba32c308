package storetest

import (
	"testing"

	"github.com/objectiveSquid/Chat-site/pkg/models"
	"github.com/objectiveSquid/Chat-site/pkg/store"
)

// StoreFactory creates a fresh Store instance for each test. The factory
// receives *testing.T so it can use t.TempDir() for stores that need
// filesystem paths and t.Cleanup() for teardown. EnsureTables must have been
// run before the store is returned.
type StoreFactory func(t *testing.T) store.Store

// RunConformanceSuite runs the full conformance test suite against the
// provided store factory. Each test gets a fresh store instance to ensure
// isolation.
//
// The suite covers three categories:
//   - Accounts: creation policy, token issuance and opacity, lookups, deletion
//   - Relations: mirror-write symmetry, self and unknown-peer failures, ownership
//   - Messages: append, unordered-pair fetch, since filtering, ordering
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("Accounts", func(t *testing.T) {
		runAccountTests(t, factory)
	})

	t.Run("Relations", func(t *testing.T) {
		runRelationTests(t, factory)
	})

	t.Run("Messages", func(t *testing.T) {
		runMessageTests(t, factory)
	})
}

// mustAddUser creates an account and fails the test on any non-success
// outcome. Returns the plaintext token.
func mustAddUser(t *testing.T, s store.Store, username string) string {
	t.Helper()

	token, result, err := s.AddUser(t.Context(), username)
	if err != nil {
		t.Fatalf("AddUser(%q) failed: %v", username, err)
	}
	if result != models.AddUserSuccess {
		t.Fatalf("AddUser(%q) result = %v, want success", username, result)
	}
	if token == "" {
		t.Fatalf("AddUser(%q) returned an empty token", username)
	}
	return token
}
