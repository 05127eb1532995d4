package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"foicore/internal/publicbody/models"
	"foicore/pkg/sentinel"
)

type BodyStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestBodyStoreSuite(t *testing.T) {
	suite.Run(t, new(BodyStoreSuite))
}

func (s *BodyStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *BodyStoreSuite) newBody(name string, parent *uuid.UUID) *models.PublicBody {
	now := time.Now()
	return &models.PublicBody{
		ID:        uuid.New(),
		Name:      name,
		Slug:      models.Slugify(name) + "-" + uuid.NewString()[:8],
		ParentID:  parent,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *BodyStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds body by ID", func() {
		b := s.newBody("Ministry of the Interior", nil)
		s.Require().NoError(s.store.Create(s.ctx, b))
		found, err := s.store.FindByID(s.ctx, b.ID)
		s.Require().NoError(err)
		s.Equal(b.Name, found.Name)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("save of unknown body fails", func() {
		err := s.store.Save(s.ctx, s.newBody("Ghost", nil))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate slug", func() {
		a := s.newBody("Duplicate", nil)
		b := s.newBody("Duplicate", nil)
		b.Slug = a.Slug
		s.Require().NoError(s.store.Create(s.ctx, a))
		s.Require().ErrorIs(s.store.Create(s.ctx, b), sentinel.ErrConflict)
	})
}

func (s *BodyStoreSuite) TestChildren() {
	parent := s.newBody("Ministry", nil)
	s.Require().NoError(s.store.Create(s.ctx, parent))

	zulu := s.newBody("Zulu Agency", &parent.ID)
	alpha := s.newBody("Alpha Agency", &parent.ID)
	s.Require().NoError(s.store.Create(s.ctx, zulu))
	s.Require().NoError(s.store.Create(s.ctx, alpha))
	s.Require().NoError(s.store.Create(s.ctx, s.newBody("Unrelated", nil)))

	s.Run("finds children in name order", func() {
		children, err := s.store.FindByParent(s.ctx, parent.ID)
		s.Require().NoError(err)
		s.Require().Len(children, 2)
		s.Equal("Alpha Agency", children[0].Name)
		s.Equal("Zulu Agency", children[1].Name)
	})

	s.Run("count matches live membership", func() {
		n, err := s.store.CountByParent(s.ctx, parent.ID)
		s.Require().NoError(err)
		s.Equal(2, n)

		s.Require().NoError(s.store.Create(s.ctx, s.newBody("Third Agency", &parent.ID)))
		n, err = s.store.CountByParent(s.ctx, parent.ID)
		s.Require().NoError(err)
		s.Equal(3, n)
	})

	s.Run("count is fresh under concurrent inserts", func() {
		root := s.newBody("Concurrent Root", nil)
		s.Require().NoError(s.store.Create(s.ctx, root))
		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.NoError(s.store.Create(s.ctx, s.newBody("Child "+uuid.NewString(), &root.ID)))
			}()
		}
		wg.Wait()
		count, err := s.store.CountByParent(s.ctx, root.ID)
		s.Require().NoError(err)
		s.Equal(n, count)
	})
}
