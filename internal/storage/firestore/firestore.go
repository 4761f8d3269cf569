// Package firestore holds collection names and small helpers shared by the
// Firestore-backed repositories.
package firestore

import (
	"errors"
	"fmt"
	"time"

	gcfirestore "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	CollectionUsers           = "users"
	CollectionProjects        = "projects"
	CollectionVendors         = "vendors"
	CollectionPurchaseOrders  = "purchase_orders"
	CollectionVariationOrders = "variation_orders"
	CollectionWorkContracts   = "work_contracts"
	CollectionSystemSettings  = "system_settings"
	CollectionOutbox          = "notification_outbox"

	DocLineIntegration = "line_integration"
	DocGlobalConfig    = "global_config"
)

func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func IsAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// All drains an iterator, calling fn for every snapshot.
func All(it *gcfirestore.DocumentIterator, fn func(*gcfirestore.DocumentSnapshot) error) error {
	defer it.Stop()
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
}

// Time reads a timestamp field that may be stored as a Firestore timestamp or
// be absent.
func Time(data map[string]any, key string) time.Time {
	if t, ok := data[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}

func String(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Float reads a numeric field; Firestore returns int64 or float64 depending
// on how the value was written.
func Float(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func Bool(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}
