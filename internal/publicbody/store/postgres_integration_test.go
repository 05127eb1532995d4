//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"foicore/internal/publicbody/models"
	"foicore/pkg/sentinel"
	"foicore/pkg/testutil/containers"
)

type PostgresBodyStoreSuite struct {
	suite.Suite
	container *containers.PostgresContainer
	store     *Postgres
	ctx       context.Context
}

func TestPostgresBodyStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresBodyStoreSuite))
}

func (s *PostgresBodyStoreSuite) SetupSuite() {
	s.container = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.container.DB)
	s.ctx = context.Background()
}

func (s *PostgresBodyStoreSuite) SetupTest() {
	s.Require().NoError(s.container.TruncateTables(s.ctx,
		"public_body_laws", "public_bodies"))
}

func (s *PostgresBodyStoreSuite) newBody(name string) *models.PublicBody {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.PublicBody{
		ID:        uuid.New(),
		Name:      name,
		Slug:      models.Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresBodyStoreSuite) TestRoundTrip() {
	b := s.newBody("Federal Ministry")
	b.Email = "foi@ministry.example.gov"
	b.URL = "https://ministry.example.gov"
	b.LawIDs = []uuid.UUID{uuid.New(), uuid.New()}
	s.Require().NoError(s.store.Create(s.ctx, b))

	found, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(b.Name, found.Name)
	s.Equal(b.Email, found.Email)
	s.Equal(b.LawIDs, found.LawIDs, "law links keep insertion order")
	s.True(found.CreatedAt.Equal(b.CreatedAt))
}

func (s *PostgresBodyStoreSuite) TestConflictsAndNotFound() {
	s.Run("duplicate slug answers ErrConflict", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newBody("Agency")))
		err := s.store.Create(s.ctx, s.newBody("Agency"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown id answers ErrNotFound", func() {
		_, err := s.store.FindByID(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("saving a missing body answers ErrNotFound", func() {
		err := s.store.Save(s.ctx, s.newBody("Ghost"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresBodyStoreSuite) TestHierarchyQueries() {
	parent := s.newBody("Ministry")
	s.Require().NoError(s.store.Create(s.ctx, parent))

	mk := func(name string) *models.PublicBody {
		b := s.newBody(name)
		b.ParentID = &parent.ID
		b.RootID = &parent.ID
		b.Depth = 1
		return b
	}
	for _, name := range []string{"Zeta Office", "Alpha Office", "Mid Office"} {
		s.Require().NoError(s.store.Create(s.ctx, mk(name)))
	}

	s.Run("children come back in name order", func() {
		children, err := s.store.FindByParent(s.ctx, parent.ID)
		s.Require().NoError(err)
		s.Require().Len(children, 3)
		s.Equal("Alpha Office", children[0].Name)
		s.Equal("Mid Office", children[1].Name)
		s.Equal("Zeta Office", children[2].Name)
	})

	s.Run("count matches live rows", func() {
		n, err := s.store.CountByParent(s.ctx, parent.ID)
		s.Require().NoError(err)
		s.Equal(3, n)

		s.Require().NoError(s.store.Create(s.ctx, mk("Late Office")))
		n, err = s.store.CountByParent(s.ctx, parent.ID)
		s.Require().NoError(err)
		s.Equal(4, n)
	})
}

func (s *PostgresBodyStoreSuite) TestSaveReplacesLaws() {
	b := s.newBody("Archive")
	first, second := uuid.New(), uuid.New()
	b.LawIDs = []uuid.UUID{first, second}
	s.Require().NoError(s.store.Create(s.ctx, b))

	b.LawIDs = []uuid.UUID{second}
	b.Confirmed = true
	s.Require().NoError(s.store.Save(s.ctx, b))

	found, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.True(found.Confirmed)
	s.Equal([]uuid.UUID{second}, found.LawIDs)
}
