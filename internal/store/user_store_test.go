package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"chatpay/internal/models"
)

func TestUserStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO users") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "ON CONFLICT (id) DO UPDATE") {
				t.Fatalf("unexpected query: %s", query)
			}
			for _, col := range []string{"login", "phone", "role", "registered"} {
				if strings.Contains(query, col+" =") {
					t.Fatalf("upsert must not touch %s: %s", col, query)
				}
			}
			if len(args) != 6 || args[0] != int64(7) || args[2] != "Jane Doe" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	})
	err := store.Upsert(ctx, models.Profile{ID: 7, Handle: "jdoe", FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserStoreSearchExcludesSelf(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "WHERE id <> $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "ILIKE $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 3 || args[0] != int64(7) || args[1] != "%jane%" || args[2] != 10 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]models.User) = []models.User{{ID: 8}}
			return nil
		},
	})
	users, err := store.Search(ctx, "jane", 7, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 || users[0].ID != 8 {
		t.Fatalf("unexpected users: %#v", users)
	}
}

func TestUserStoreUpdateLogin(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "UPDATE users SET login = $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "jane" || args[1] != int64(7) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	})
	if err := store.UpdateLogin(ctx, 7, "jane"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserStoreMarkRegistered(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "SET registered = true") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 1 || args[0] != int64(7) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	})
	if err := store.MarkRegistered(ctx, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserStoreCount(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, _ ...any) error {
			if !strings.Contains(query, "SELECT COUNT(*) FROM users") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*int64) = 42
			return nil
		},
	})
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Fatalf("unexpected count: %d", count)
	}
}
