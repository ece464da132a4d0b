//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// maxDBNameLen stays under MongoDB's 63 byte database name limit with room
// for the uniqueness suffix.
const maxDBNameLen = 48

var (
	shared     *MongoDBContainer
	sharedOnce = sync.OnceValue(func() error {
		var err error
		shared, err = SetupMongoDB(context.Background())
		return err
	})
	dbSeq atomic.Uint64
)

// SetupTestMainWithMongoDB runs the package tests against one shared
// container and terminates it afterwards:
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	if err := sharedOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "mongodb container unavailable: %v\n", err)
		return 1
	}

	code := m.Run()

	if err := shared.Cleanup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return code
}

// GetSharedContainerURI returns the shared container's connection string.
func GetSharedContainerURI() string {
	if err := sharedOnce(); err != nil {
		panic("shared mongodb container: " + err.Error())
	}
	return shared.URI
}

// SanitizeDBName turns a test name into a database name unique to this run.
// Characters MongoDB rejects in database names become underscores.
func SanitizeDBName(testName string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.', ' ', '"', '$', '*', '<', '>', ':', '|', '?':
			return '_'
		}
		return r
	}, testName)
	if len(name) > maxDBNameLen {
		name = name[:maxDBNameLen]
	}
	return fmt.Sprintf("%s_%d_%d", name, os.Getpid()%10000, dbSeq.Add(1))
}
