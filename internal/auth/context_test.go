package auth

import (
	"context"
	"testing"
)

func TestUserIDFromContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := UserIDFromContext(ctx); got != "" {
		t.Errorf("UserIDFromContext(empty) = %q, want empty", got)
	}

	ctx = ContextWithUserID(ctx, "user-9")
	if got := UserIDFromContext(ctx); got != "user-9" {
		t.Errorf("UserIDFromContext = %q, want user-9", got)
	}
	if got := MustUserIDFromContext(ctx); got != "user-9" {
		t.Errorf("MustUserIDFromContext = %q, want user-9", got)
	}
}

func TestMustUserIDFromContext_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic without auth middleware")
		}
	}()
	MustUserIDFromContext(context.Background())
}
