//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatehouse/internal/auth/models"
	"gatehouse/internal/auth/store"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresUserStore
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(store.Migrate(context.Background(), s.postgres.DB))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func newTestUser(email string) *models.User {
	return &models.User{
		Email:          email,
		Name:           "Test User",
		HashedPassword: "hash",
		Salt:           "salt",
		Roles:          domain.RoleList("admin", "editor"),
	}
}

func (s *PostgresUserStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	u := newTestUser("jane@example.com")
	s.Require().NoError(s.store.Create(ctx, u))
	s.Positive(u.ID)

	found, err := s.store.FindByEmail(ctx, "jane@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Equal(domain.RoleList("admin", "editor"), found.Roles)
	s.Empty(found.ResetToken)
	s.Nil(found.ResetTokenExpiresAt)
}

// TestConcurrentUniqueEmailViolation verifies that concurrent signup attempts
// with the same email result in exactly one success.
func (s *PostgresUserStoreSuite) TestConcurrentUniqueEmailViolation() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestUser("race@example.com"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should conflict")
}

func (s *PostgresUserStoreSuite) TestResetTokenLifecycle() {
	ctx := context.Background()
	u := newTestUser("reset@example.com")
	s.Require().NoError(s.store.Create(ctx, u))

	expires := time.Now().Add(24 * time.Hour).UTC()
	s.Require().NoError(s.store.SetResetToken(ctx, u.ID, "token-abc", expires))

	found, err := s.store.FindByResetToken(ctx, "token-abc")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Require().NotNil(found.ResetTokenExpiresAt)
	s.WithinDuration(expires, *found.ResetTokenExpiresAt, time.Second)

	s.Require().NoError(s.store.UpdatePassword(ctx, u.ID, "new-hash", "new-salt"))

	_, err = s.store.FindByResetToken(ctx, "token-abc")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	updated, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("new-hash", updated.HashedPassword)
	s.Empty(updated.ResetToken)
}

func (s *PostgresUserStoreSuite) TestUpdateMissingUser() {
	ctx := context.Background()
	err := s.store.UpdatePassword(ctx, 12345, "h", "s")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
