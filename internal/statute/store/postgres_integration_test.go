//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"foicore/internal/statute/models"
	"foicore/pkg/sentinel"
	"foicore/pkg/testutil/containers"
)

type PostgresStatuteStoreSuite struct {
	suite.Suite
	container *containers.PostgresContainer
	store     *Postgres
	ctx       context.Context
}

func TestPostgresStatuteStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStatuteStoreSuite))
}

func (s *PostgresStatuteStoreSuite) SetupSuite() {
	s.container = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.container.DB)
	s.ctx = context.Background()
}

func (s *PostgresStatuteStoreSuite) SetupTest() {
	s.Require().NoError(s.container.TruncateTables(s.ctx,
		"statute_combined", "statutes", "jurisdictions"))
}

func (s *PostgresStatuteStoreSuite) newStatute(name string, jurisdiction *uuid.UUID) *models.Statute {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Statute{
		ID:                  uuid.New(),
		Name:                name,
		Slug:                models.Slugify(name),
		JurisdictionID:      jurisdiction,
		MaxResponseTimeUnit: models.UnitCalendarDay,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (s *PostgresStatuteStoreSuite) TestStatuteRoundTrip() {
	days := 30
	st := s.newStatute("Informationsfreiheitsgesetz", nil)
	st.RefusalReasons = "§3: Security\n§5: Privacy"
	st.MaxResponseTime = &days
	st.MaxResponseTimeUnit = models.UnitWorkingDay
	st.LetterStart = "Dear sir or madam,"
	s.Require().NoError(s.store.CreateStatute(s.ctx, st))

	found, err := s.store.FindStatuteByID(s.ctx, st.ID)
	s.Require().NoError(err)
	s.Equal(st.Name, found.Name)
	s.Equal(st.RefusalReasons, found.RefusalReasons)
	s.Equal(models.UnitWorkingDay, found.MaxResponseTimeUnit)
	s.Require().NotNil(found.MaxResponseTime)
	s.Equal(days, *found.MaxResponseTime)
	s.Equal("Dear sir or madam,", found.LetterStart)
	s.True(found.CreatedAt.Equal(st.CreatedAt))
}

func (s *PostgresStatuteStoreSuite) TestConflictsAndNotFound() {
	s.Run("duplicate slug answers ErrConflict", func() {
		s.Require().NoError(s.store.CreateStatute(s.ctx, s.newStatute("UIG", nil)))
		err := s.store.CreateStatute(s.ctx, s.newStatute("UIG", nil))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown id answers ErrNotFound", func() {
		_, err := s.store.FindStatuteByID(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("updating a missing statute answers ErrNotFound", func() {
		err := s.store.UpdateStatute(s.ctx, s.newStatute("Ghost", nil))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStatuteStoreSuite) TestCombinedLinksKeepPosition() {
	a := s.newStatute("Alpha", nil)
	b := s.newStatute("Beta", nil)
	c := s.newStatute("Gamma", nil)
	for _, st := range []*models.Statute{a, b, c} {
		s.Require().NoError(s.store.CreateStatute(s.ctx, st))
	}

	meta := s.newStatute("Umbrella", nil)
	meta.Meta = true
	meta.CombinedIDs = []uuid.UUID{c.ID, a.ID, b.ID}
	s.Require().NoError(s.store.CreateStatute(s.ctx, meta))

	found, err := s.store.FindStatuteByID(s.ctx, meta.ID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{c.ID, a.ID, b.ID}, found.CombinedIDs)

	// An update replaces the whole link set.
	found.CombinedIDs = []uuid.UUID{b.ID}
	s.Require().NoError(s.store.UpdateStatute(s.ctx, found))
	again, err := s.store.FindStatuteByID(s.ctx, meta.ID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{b.ID}, again.CombinedIDs)
}

func (s *PostgresStatuteStoreSuite) TestFindStatutesByIDsPreservesOrder() {
	a := s.newStatute("A", nil)
	b := s.newStatute("B", nil)
	s.Require().NoError(s.store.CreateStatute(s.ctx, a))
	s.Require().NoError(s.store.CreateStatute(s.ctx, b))

	got, err := s.store.FindStatutesByIDs(s.ctx, []uuid.UUID{b.ID, uuid.New(), a.ID})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("B", got[0].Name)
	s.Equal("A", got[1].Name)
}

func (s *PostgresStatuteStoreSuite) TestListStatutesByJurisdiction() {
	now := time.Now().UTC()
	j := &models.Jurisdiction{
		ID: uuid.New(), Name: "Federal", Slug: "federal",
		CreatedAt: now, UpdatedAt: now,
	}
	s.Require().NoError(s.store.CreateJurisdiction(s.ctx, j))

	meta := s.newStatute("Umbrella", &j.ID)
	meta.Meta = true
	meta.Priority = 9
	low := s.newStatute("Alpha", &j.ID)
	low.Priority = 1
	high := s.newStatute("Beta", &j.ID)
	high.Priority = 1
	for _, st := range []*models.Statute{high, meta, low} {
		s.Require().NoError(s.store.CreateStatute(s.ctx, st))
	}

	got, err := s.store.ListStatutesByJurisdiction(s.ctx, j.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal("Umbrella", got[0].Name, "meta sorts first regardless of priority")
	s.Equal("Alpha", got[1].Name)
	s.Equal("Beta", got[2].Name, "name breaks priority ties")
}

func (s *PostgresStatuteStoreSuite) TestJurisdictionVisibility() {
	now := time.Now().UTC()
	mk := func(name string, rank int, hidden bool) *models.Jurisdiction {
		return &models.Jurisdiction{
			ID: uuid.New(), Name: name, Slug: models.Slugify(name),
			Rank: rank, Hidden: hidden, CreatedAt: now, UpdatedAt: now,
		}
	}
	s.Require().NoError(s.store.CreateJurisdiction(s.ctx, mk("Bavaria", 2, false)))
	s.Require().NoError(s.store.CreateJurisdiction(s.ctx, mk("Federal", 1, false)))
	s.Require().NoError(s.store.CreateJurisdiction(s.ctx, mk("Archive", 0, true)))

	got, err := s.store.ListVisibleJurisdictions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2, "hidden jurisdictions are excluded")
	s.Equal("Federal", got[0].Name)
	s.Equal("Bavaria", got[1].Name)
}
