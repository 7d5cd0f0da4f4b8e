//go:build integration

package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"devicegate/internal/accounts"
	"devicegate/pkg/testutil/containers"
)

type PostgresAccountsSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *accounts.PostgresStore
}

func TestPostgresAccountsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAccountsSuite))
}

func (s *PostgresAccountsSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = accounts.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresAccountsSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "accounts"))
}

func (s *PostgresAccountsSuite) newAccount(username, deviceID string) accounts.Account {
	account, err := accounts.New(accounts.Draft{
		Username:  username,
		Password:  "hunter2hunter2",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0",
	}, deviceID, time.Now())
	s.Require().NoError(err)
	return account
}

func (s *PostgresAccountsSuite) TestSaveAndFindByID() {
	ctx := context.Background()
	account := s.newAccount("alice", "visitor-1")

	s.Require().NoError(s.store.Save(ctx, account))

	found, err := s.store.FindByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(account.ID, found.ID)
	s.Equal("alice", found.Username)
	s.Equal("visitor-1", found.DeviceID)
	s.True(found.VerifyPassword("hunter2hunter2"))
	s.False(found.VerifyPassword("wrong-password"))
}

func (s *PostgresAccountsSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(context.Background(), "no-such-id")
	s.ErrorIs(err, accounts.ErrNotFound)
}

func (s *PostgresAccountsSuite) TestListOrdersByCreation() {
	ctx := context.Background()

	first := s.newAccount("alice", "visitor-1")
	first.CreatedAt = time.Now().Add(-time.Hour).UTC()
	second := s.newAccount("bob", "visitor-2")

	s.Require().NoError(s.store.Save(ctx, second))
	s.Require().NoError(s.store.Save(ctx, first))

	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("alice", list[0].Username)
	s.Equal("bob", list[1].Username)
}
