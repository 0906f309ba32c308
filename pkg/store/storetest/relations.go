package storetest

import (
	"errors"
	"testing"

	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// runRelationTests runs all relation operation conformance tests.
func runRelationTests(t *testing.T, factory StoreFactory) {
	t.Run("AddFriendSymmetry", func(t *testing.T) { testAddFriendSymmetry(t, factory) })
	t.Run("AddFriendSelf", func(t *testing.T) { testAddFriendSelf(t, factory) })
	t.Run("AddFriendUnknownPeer", func(t *testing.T) { testAddFriendUnknownPeer(t, factory) })
	t.Run("AddFriendIdempotent", func(t *testing.T) { testAddFriendIdempotent(t, factory) })
	t.Run("RemoveFriendSymmetry", func(t *testing.T) { testRemoveFriendSymmetry(t, factory) })
	t.Run("RemoveFriendWithoutRows", func(t *testing.T) { testRemoveFriendWithoutRows(t, factory) })
	t.Run("AllRelationsOwnership", func(t *testing.T) { testAllRelationsOwnership(t, factory) })
	t.Run("GetRelationNotFound", func(t *testing.T) { testGetRelationNotFound(t, factory) })
}

// testAddFriendSymmetry verifies the mirror-write discipline: a successful
// AddFriend(a, b) sets first_is_friend on (a,b) and secondary_is_friend on
// (b,a), leaving the other booleans untouched.
func testAddFriendSymmetry(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	ok, err := s.AddFriend(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("AddFriend() failed: %v", err)
	}
	if !ok {
		t.Fatal("AddFriend() = false, want true")
	}

	forward, err := s.GetRelation(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetRelation(alice, bob) failed: %v", err)
	}
	if !forward.FirstIsFriend.Bool() {
		t.Error("(alice, bob).first_is_friend = false, want true")
	}
	if forward.SecondaryIsFriend.Bool() || forward.SecondaryIsBlocked.Bool() {
		t.Error("(alice, bob) has unexpected booleans set")
	}

	mirror, err := s.GetRelation(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("GetRelation(bob, alice) failed: %v", err)
	}
	if !mirror.SecondaryIsFriend.Bool() {
		t.Error("(bob, alice).secondary_is_friend = false, want true")
	}
	if mirror.FirstIsFriend.Bool() || mirror.SecondaryIsBlocked.Bool() {
		t.Error("(bob, alice) has unexpected booleans set")
	}
}

// testAddFriendSelf verifies self-friendship reports failure without error.
func testAddFriendSelf(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")

	ok, err := s.AddFriend(ctx, "alice", "alice")
	if err != nil {
		t.Fatalf("AddFriend() failed: %v", err)
	}
	if ok {
		t.Error("AddFriend(alice, alice) = true, want false")
	}

	if _, err := s.GetRelation(ctx, "alice", "alice"); !errors.Is(err, models.ErrRelationNotFound) {
		t.Errorf("self relation error = %v, want ErrRelationNotFound", err)
	}
}

// testAddFriendUnknownPeer verifies a missing peer reports failure and writes
// nothing.
func testAddFriendUnknownPeer(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")

	ok, err := s.AddFriend(ctx, "alice", "ghost")
	if err != nil {
		t.Fatalf("AddFriend() failed: %v", err)
	}
	if ok {
		t.Error("AddFriend(alice, ghost) = true, want false")
	}

	relations, err := s.AllRelations(ctx, "alice")
	if err != nil {
		t.Fatalf("AllRelations() failed: %v", err)
	}
	if len(relations) != 0 {
		t.Errorf("AllRelations() returned %d rows after a failed AddFriend, want 0", len(relations))
	}
}

// testAddFriendIdempotent verifies repeating AddFriend keeps exactly two rows.
func testAddFriendIdempotent(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	for i := 0; i < 2; i++ {
		if ok, err := s.AddFriend(ctx, "alice", "bob"); err != nil || !ok {
			t.Fatalf("AddFriend() attempt %d = (%v, %v), want (true, nil)", i+1, ok, err)
		}
	}

	fromAlice, err := s.AllRelations(ctx, "alice")
	if err != nil {
		t.Fatalf("AllRelations(alice) failed: %v", err)
	}
	fromBob, err := s.AllRelations(ctx, "bob")
	if err != nil {
		t.Fatalf("AllRelations(bob) failed: %v", err)
	}
	if len(fromAlice) != 1 || len(fromBob) != 1 {
		t.Errorf("row counts after repeated AddFriend = (%d, %d), want (1, 1)", len(fromAlice), len(fromBob))
	}
}

// testRemoveFriendSymmetry verifies both mirror booleans are cleared.
func testRemoveFriendSymmetry(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	if ok, err := s.AddFriend(ctx, "alice", "bob"); err != nil || !ok {
		t.Fatalf("AddFriend() = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err := s.RemoveFriend(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("RemoveFriend() failed: %v", err)
	}
	if !ok {
		t.Fatal("RemoveFriend() = false, want true")
	}

	forward, err := s.GetRelation(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetRelation(alice, bob) failed: %v", err)
	}
	mirror, err := s.GetRelation(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("GetRelation(bob, alice) failed: %v", err)
	}
	if forward.FirstIsFriend.Bool() || mirror.SecondaryIsFriend.Bool() {
		t.Error("friendship booleans survived RemoveFriend")
	}
}

// testRemoveFriendWithoutRows verifies RemoveFriend against a pair that never
// friended still succeeds and leaves both rows with false booleans.
func testRemoveFriendWithoutRows(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	ok, err := s.RemoveFriend(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("RemoveFriend() failed: %v", err)
	}
	if !ok {
		t.Fatal("RemoveFriend() = false, want true")
	}

	forward, err := s.GetRelation(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetRelation(alice, bob) failed: %v", err)
	}
	if forward.FirstIsFriend.Bool() || forward.SecondaryIsFriend.Bool() || forward.SecondaryIsBlocked.Bool() {
		t.Error("upserted row has unexpected booleans set")
	}
}

// testAllRelationsOwnership verifies AllRelations(user) returns only rows the
// user owns, one per peer.
func testAllRelationsOwnership(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	for _, name := range []string{"alice", "bob", "carol"} {
		mustAddUser(t, s, name)
	}

	if ok, err := s.AddFriend(ctx, "alice", "bob"); err != nil || !ok {
		t.Fatalf("AddFriend(alice, bob) = (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := s.AddFriend(ctx, "carol", "alice"); err != nil || !ok {
		t.Fatalf("AddFriend(carol, alice) = (%v, %v), want (true, nil)", ok, err)
	}

	relations, err := s.AllRelations(ctx, "alice")
	if err != nil {
		t.Fatalf("AllRelations(alice) failed: %v", err)
	}
	if len(relations) != 2 {
		t.Fatalf("AllRelations(alice) returned %d rows, want 2", len(relations))
	}
	for _, r := range relations {
		if r.FirstUsername != "alice" {
			t.Errorf("AllRelations(alice) returned a row owned by %q", r.FirstUsername)
		}
	}
}

// testGetRelationNotFound verifies the domain error for absent rows.
func testGetRelationNotFound(t *testing.T, factory StoreFactory) {
	s := factory(t)

	_, err := s.GetRelation(t.Context(), "alice", "bob")
	if !errors.Is(err, models.ErrRelationNotFound) {
		t.Errorf("GetRelation() error = %v, want ErrRelationNotFound", err)
	}
}
