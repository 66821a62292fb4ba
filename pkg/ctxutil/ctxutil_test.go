package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestUserIDRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := WithUserID(context.Background(), id)

	got, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected user ID to be present")
	}
	if got != id {
		t.Errorf("got %v, want %v", got, id)
	}
}

func TestUserIDMissing(t *testing.T) {
	t.Parallel()

	if _, ok := UserIDFromCtx(context.Background()); ok {
		t.Fatal("expected no user ID in empty context")
	}
}

func TestUserIDNil(t *testing.T) {
	t.Parallel()

	ctx := WithUserID(context.Background(), uuid.Nil)
	if _, ok := UserIDFromCtx(ctx); ok {
		t.Fatal("nil UUID should not count as present")
	}
}
