// Package fstest connects tests to the Firestore emulator.
package fstest

import (
	"context"
	"os"
	"testing"

	gcfirestore "cloud.google.com/go/firestore"

	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

// NewClient connects to the Firestore emulator and skips the test when
// FIRESTORE_EMULATOR_HOST is not set.
func NewClient(t testing.TB) *gcfirestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; run `make test-emulator`")
	}
	client, err := gcfirestore.NewClient(context.Background(), "demo-procure-test")
	if err != nil {
		t.Fatalf("firestore emulator: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Clear deletes every document in the named collections.
func Clear(ctx context.Context, client *gcfirestore.Client, names ...string) error {
	for _, name := range names {
		err := fs.All(client.Collection(name).Documents(ctx), func(snap *gcfirestore.DocumentSnapshot) error {
			_, err := snap.Ref.Delete(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
