// Package storetest provides a conformance test suite for chat store
// implementations.
//
// All store backends (SQLite, PostgreSQL, BadgerDB) should pass these tests.
// The suite verifies that every implementation satisfies the Store behavioral
// contract, catching regressions when store code changes.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) store.Store {
//	        s, err := store.New(&store.Config{Filepath: filepath.Join(t.TempDir(), "chat.db")})
//	        ...
//	        return s
//	    })
//	}
//
// The factory function receives *testing.T so it can call t.TempDir() for
// stores that need filesystem paths and t.Cleanup for teardown. Factories
// must leave the account policy at its defaults (store.DefaultTokenLength
// and friends); several tests probe the policy boundaries.
package storetest
