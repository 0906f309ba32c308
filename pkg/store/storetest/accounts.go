package storetest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/objectiveSquid/Chat-site/pkg/models"
	"github.com/objectiveSquid/Chat-site/pkg/store"
)

// runAccountTests runs all account operation conformance tests.
func runAccountTests(t *testing.T, factory StoreFactory) {
	t.Run("AddUser", func(t *testing.T) { testAddUser(t, factory) })
	t.Run("UsernamePolicy", func(t *testing.T) { testUsernamePolicy(t, factory) })
	t.Run("DuplicateUser", func(t *testing.T) { testDuplicateUser(t, factory) })
	t.Run("TokenOpacity", func(t *testing.T) { testTokenOpacity(t, factory) })
	t.Run("CheckTokenUnknown", func(t *testing.T) { testCheckTokenUnknown(t, factory) })
	t.Run("CheckUserExists", func(t *testing.T) { testCheckUserExists(t, factory) })
	t.Run("ListUsers", func(t *testing.T) { testListUsers(t, factory) })
	t.Run("DeleteUser", func(t *testing.T) { testDeleteUser(t, factory) })
	t.Run("GetUserNotFound", func(t *testing.T) { testGetUserNotFound(t, factory) })
}

// testAddUser verifies that a created account's token authenticates and
// respects the configured shape.
func testAddUser(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	token := mustAddUser(t, s, "alice")

	if len(token) != store.DefaultTokenLength {
		t.Errorf("token length = %d, want %d", len(token), store.DefaultTokenLength)
	}
	for _, r := range token {
		if !strings.ContainsRune(store.DefaultTokenCharset, r) {
			t.Errorf("token contains %q, which is outside the charset", r)
		}
	}

	username, ok, err := s.CheckToken(ctx, token)
	if err != nil {
		t.Fatalf("CheckToken() failed: %v", err)
	}
	if !ok {
		t.Fatal("CheckToken() did not recognize a freshly issued token")
	}
	if username != "alice" {
		t.Errorf("CheckToken() username = %q, want %q", username, "alice")
	}
}

// testUsernamePolicy probes the exact length boundaries of account creation.
func testUsernamePolicy(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	tests := []struct {
		name     string
		username string
		want     models.AddUserResult
	}{
		{"below minimum", strings.Repeat("a", store.DefaultMinUsernameLength-1), models.AddUserTooShort},
		{"at minimum", strings.Repeat("b", store.DefaultMinUsernameLength), models.AddUserSuccess},
		{"at maximum", strings.Repeat("c", store.DefaultMaxUsernameLength), models.AddUserSuccess},
		{"above maximum", strings.Repeat("d", store.DefaultMaxUsernameLength+1), models.AddUserTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, result, err := s.AddUser(ctx, tt.username)
			if err != nil {
				t.Fatalf("AddUser(%q) failed: %v", tt.username, err)
			}
			if result != tt.want {
				t.Errorf("AddUser(%q) result = %v, want %v", tt.username, result, tt.want)
			}
			if result != models.AddUserSuccess && token != "" {
				t.Errorf("AddUser(%q) returned a token on policy failure", tt.username)
			}
		})
	}
}

// testDuplicateUser verifies that a taken username is rejected with the
// domain error rather than a policy result.
func testDuplicateUser(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")

	_, _, err := s.AddUser(ctx, "alice")
	if !errors.Is(err, models.ErrDuplicateUser) {
		t.Errorf("AddUser() error = %v, want ErrDuplicateUser", err)
	}
}

// testTokenOpacity verifies only the SHA-512 of the token is persisted.
func testTokenOpacity(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	token := mustAddUser(t, s, "alice")

	user, err := s.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if !bytes.Equal(user.TokenHash, models.HashToken(token)) {
		t.Error("stored hash does not match SHA-512 of the issued token")
	}
	if bytes.Contains(user.TokenHash, []byte(token)) {
		t.Error("plaintext token leaked into the stored hash")
	}
}

// testCheckTokenUnknown verifies an unknown token is a clean miss, not an error.
func testCheckTokenUnknown(t *testing.T, factory StoreFactory) {
	s := factory(t)

	username, ok, err := s.CheckToken(t.Context(), "definitely-not-issued")
	if err != nil {
		t.Fatalf("CheckToken() failed: %v", err)
	}
	if ok {
		t.Error("CheckToken() accepted a token that was never issued")
	}
	if username != "" {
		t.Errorf("CheckToken() username = %q, want empty", username)
	}
}

// testCheckUserExists covers both the present and absent cases.
func testCheckUserExists(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")

	exists, err := s.CheckUserExists(ctx, "alice")
	if err != nil {
		t.Fatalf("CheckUserExists() failed: %v", err)
	}
	if !exists {
		t.Error("CheckUserExists(alice) = false, want true")
	}

	exists, err = s.CheckUserExists(ctx, "nobody")
	if err != nil {
		t.Fatalf("CheckUserExists() failed: %v", err)
	}
	if exists {
		t.Error("CheckUserExists(nobody) = true, want false")
	}
}

// testListUsers verifies enumeration returns every created account.
func testListUsers(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	for _, name := range []string{"alice", "bob", "carol"} {
		mustAddUser(t, s, name)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("ListUsers() returned %d users, want 3", len(users))
	}

	seen := make(map[string]bool, len(users))
	for _, u := range users {
		seen[u.Username] = true
	}
	for _, name := range []string{"alice", "bob", "carol"} {
		if !seen[name] {
			t.Errorf("ListUsers() is missing %q", name)
		}
	}
}

// testDeleteUser verifies deletion removes the account and its relation rows
// in both directions.
func testDeleteUser(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	if ok, err := s.AddFriend(ctx, "alice", "bob"); err != nil || !ok {
		t.Fatalf("AddFriend() = (%v, %v), want (true, nil)", ok, err)
	}

	if err := s.DeleteUser(ctx, "alice"); err != nil {
		t.Fatalf("DeleteUser() failed: %v", err)
	}

	if _, err := s.GetUser(ctx, "alice"); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("GetUser() after delete error = %v, want ErrUserNotFound", err)
	}
	if _, err := s.GetRelation(ctx, "bob", "alice"); !errors.Is(err, models.ErrRelationNotFound) {
		t.Errorf("GetRelation(bob, alice) after delete error = %v, want ErrRelationNotFound", err)
	}
	if _, err := s.GetRelation(ctx, "alice", "bob"); !errors.Is(err, models.ErrRelationNotFound) {
		t.Errorf("GetRelation(alice, bob) after delete error = %v, want ErrRelationNotFound", err)
	}

	if err := s.DeleteUser(ctx, "alice"); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("second DeleteUser() error = %v, want ErrUserNotFound", err)
	}
}

// testGetUserNotFound verifies the domain error for unknown accounts.
func testGetUserNotFound(t *testing.T, factory StoreFactory) {
	s := factory(t)

	_, err := s.GetUser(t.Context(), "ghost")
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("GetUser() error = %v, want ErrUserNotFound", err)
	}
}
