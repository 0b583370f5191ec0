package game

import (
	"context"
	"errors"
	"testing"

	"livechess/internal/chess"
	"livechess/internal/storage"
)

func TestAttachRequiresIdentity(t *testing.T) {
	r := NewRegistry(storage.NewMemory())
	if _, _, err := r.Attach("", 1, &fakeTransport{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(r.MembersOf(1)) != 0 {
		t.Fatalf("registry changed on failed attach")
	}
}

func TestReattachMovesMembership(t *testing.T) {
	r := NewRegistry(storage.NewMemory())
	first, second := &fakeTransport{}, &fakeTransport{}

	if _, moved, err := r.Attach("alice", 1, first); err != nil || moved {
		t.Fatalf("attach: moved=%v err=%v", moved, err)
	}
	if _, moved, _ := r.Attach("alice", 1, second); moved {
		t.Fatalf("re-attach to the same game is not a move")
	}
	members := r.MembersOf(1)
	if len(members) != 1 || members[0].Transport != second {
		t.Fatalf("expected one member on the new transport, got %+v", members)
	}

	prev, moved, _ := r.Attach("alice", 2, second)
	if !moved || prev != 1 {
		t.Fatalf("expected a move from game 1, got prev=%d moved=%v", prev, moved)
	}
	if len(r.MembersOf(1)) != 0 || len(r.MembersOf(2)) != 1 {
		t.Fatalf("membership not moved")
	}
}

func TestDetachTransportIgnoresStaleHandle(t *testing.T) {
	r := NewRegistry(storage.NewMemory())
	old, fresh := &fakeTransport{}, &fakeTransport{}
	r.Attach("alice", 1, old)
	r.Attach("alice", 1, fresh)

	if r.DetachTransport("alice", 1, old) {
		t.Fatalf("stale handle detached the fresh connection")
	}
	if r.DetachTransport("alice", 2, fresh) {
		t.Fatalf("detached from the wrong game")
	}
	if !r.DetachTransport("alice", 1, fresh) {
		t.Fatalf("current handle should detach")
	}
	if _, _, ok := r.Lookup("alice"); ok {
		t.Fatalf("alice still attached")
	}
}

func TestMembersOfSortedAndTransports(t *testing.T) {
	r := NewRegistry(storage.NewMemory())
	shared := &fakeTransport{}
	r.Attach("carol", 1, shared)
	r.Attach("alice", 1, &fakeTransport{})
	r.Attach("bob", 2, shared)

	members := r.MembersOf(1)
	if len(members) != 2 || members[0].Identity != "alice" || members[1].Identity != "carol" {
		t.Fatalf("unexpected members %+v", members)
	}
	through := r.AttachedThrough(shared)
	if len(through) != 2 || through["carol"] != 1 || through["bob"] != 2 {
		t.Fatalf("unexpected identities on shared transport %v", through)
	}
	if got := len(r.Transports()); got != 2 {
		t.Fatalf("expected 2 distinct transports, got %d", got)
	}
	if !r.Detach("bob", 2) || r.Detach("bob", 2) {
		t.Fatalf("detach should succeed exactly once")
	}
}

func TestRoleOf(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	id, _ := store.CreateGame(ctx, "g", chess.NewGame())
	store.JoinGame(ctx, id, chess.Black, "bob")
	r := NewRegistry(store)

	cases := map[string]Role{"bob": BlackPlayer, "carol": Observer}
	for user, want := range cases {
		got, err := r.RoleOf(ctx, user, id)
		if err != nil || got != want {
			t.Fatalf("%s: expected %s, got %s (%v)", user, want, got, err)
		}
	}
	if _, err := r.RoleOf(ctx, "bob", id+1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
