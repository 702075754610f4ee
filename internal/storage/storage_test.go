package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elo-welcoming/internal/models"
	"elo-welcoming/internal/storage"
)

var drivers = []string{storage.DriverCGO, storage.DriverPureGo}

func newTestStorage(t *testing.T, driver string) *storage.Storage {
	t.Helper()
	s, err := storage.NewStorage(filepath.Join(t.TempDir(), "igreja_dados.db"), driver)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedWelcomer(t *testing.T, s *storage.Storage, name, alias, email string) int64 {
	t.Helper()
	ctx := context.Background()
	var id int64
	require.NoError(t, s.WithTx(ctx, func(tx *storage.Tx) error {
		gid, err := tx.FindGroupByLeader(ctx, "lider_teste")
		if errors.Is(err, storage.ErrNotFound) {
			gid, err = tx.InsertGroup(ctx, "lider_teste")
		}
		if err != nil {
			return err
		}
		id, err = tx.InsertWelcomer(ctx, models.Welcomer{Name: name, Alias: alias, Email: email, GroupID: &gid})
		return err
	}))
	return id
}

func forEachDriver(t *testing.T, fn func(t *testing.T, s *storage.Storage)) {
	for _, d := range drivers {
		t.Run(d, func(t *testing.T) {
			fn(t, newTestStorage(t, d))
		})
	}
}

func TestNewStorage_UnsupportedDriver(t *testing.T) {
	_, err := storage.NewStorage(filepath.Join(t.TempDir(), "x.db"), "postgres")
	require.Error(t, err)
}

func TestNewStorage_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igreja_dados.db")
	ctx := context.Background()

	s1, err := storage.NewStorage(path, storage.DriverCGO)
	require.NoError(t, err)
	_, err = s1.InsertGroup(ctx, "lider_a")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := storage.NewStorage(path, storage.DriverCGO)
	require.NoError(t, err)
	defer s2.Close()

	groups, err := s2.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "lider_a", groups[0].LeaderName)
}

func TestUniqueConstraints(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *storage.Storage) {
		ctx := context.Background()
		wid := seedWelcomer(t, s, "maria", "Maria", "maria@example.com")

		_, err := s.InsertGroup(ctx, "lider_teste")
		assert.True(t, storage.IsUniqueViolation(err), "duplicate leader: %v", err)

		_, err = s.InsertWelcomer(ctx, models.Welcomer{Name: "outra", Email: "maria@example.com"})
		assert.True(t, storage.IsUniqueViolation(err), "duplicate email: %v", err)

		v := models.NewVisitor{Name: "Ana", DecisionDate: "2025-06-26", WelcomerID: wid}
		_, err = s.InsertVisitor(ctx, v)
		require.NoError(t, err)
		_, err = s.InsertVisitor(ctx, v)
		assert.True(t, storage.IsUniqueViolation(err), "duplicate visitor: %v", err)

		n, err := s.CountVisitors(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestForeignKeys(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *storage.Storage) {
		ctx := context.Background()
		_, err := s.InsertVisitor(ctx, models.NewVisitor{Name: "Ana", DecisionDate: "2025-06-26", WelcomerID: 999})
		require.Error(t, err)
		assert.True(t, storage.IsForeignKeyViolation(err), "got %v", err)
		assert.False(t, storage.IsUniqueViolation(err))
	})
}

func TestFindWelcomer(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *storage.Storage) {
		ctx := context.Background()
		first := seedWelcomer(t, s, "maria_da_silva", "Maria", "maria@example.com")
		seedWelcomer(t, s, "joao", "", "joao@example.com")

		w, err := s.FindWelcomer(ctx, "Maria")
		require.NoError(t, err)
		assert.Equal(t, first, w.ID)

		w, err = s.FindWelcomer(ctx, "Maria da Silva")
		require.NoError(t, err, "normalized name should match")
		assert.Equal(t, first, w.ID)

		w, err = s.FindWelcomer(ctx, "joao")
		require.NoError(t, err)
		assert.Equal(t, "joao@example.com", w.Email)

		_, err = s.FindWelcomer(ctx, "Pedro")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		w, err = s.FindWelcomerByEmail(ctx, "MARIA@example.com")
		require.NoError(t, err)
		assert.Equal(t, first, w.ID)
	})
}

func TestFindWelcomerByPhone(t *testing.T) {
	s := newTestStorage(t, storage.DriverCGO)
	ctx := context.Background()
	_, err := s.InsertWelcomer(ctx, models.Welcomer{Name: "maria", Email: "m@example.com", Phone: "(11) 99999-8888"})
	require.NoError(t, err)

	w, err := s.FindWelcomerByPhone(ctx, "5511999998888")
	require.NoError(t, err)
	assert.Equal(t, "maria", w.Name)

	_, err = s.FindWelcomerByPhone(ctx, "5511000000000")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindWelcomerByPhone_RequiresAreaCode(t *testing.T) {
	s := newTestStorage(t, storage.DriverCGO)
	ctx := context.Background()
	_, err := s.InsertWelcomer(ctx, models.Welcomer{Name: "ze", Email: "ze@example.com", Phone: "9999-8888"})
	require.NoError(t, err)

	_, err = s.FindWelcomerByPhone(ctx, "5521999998888")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.FindWelcomerByPhone(ctx, "99998888")
	require.NoError(t, err, "exact digits still match")
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *storage.Storage) {
		ctx := context.Background()
		boom := errors.New("boom")

		err := s.WithTx(ctx, func(tx *storage.Tx) error {
			if _, err := tx.InsertGroup(ctx, "lider_rollback"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.FindGroupByLeader(ctx, "lider_rollback")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestMarkNotified_OnlyGivenIDs(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *storage.Storage) {
		ctx := context.Background()
		wid := seedWelcomer(t, s, "maria", "", "maria@example.com")

		var ids []int64
		for _, name := range []string{"Ana", "Bia", "Caio"} {
			id, err := s.InsertVisitor(ctx, models.NewVisitor{Name: name, DecisionDate: "2025-06-26", WelcomerID: wid})
			require.NoError(t, err)
			ids = append(ids, id)
		}

		n, err := s.MarkNotified(ctx, ids[:2])
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		pending, err := s.PendingVisitors(ctx, wid)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "Caio", pending[0].Name)

		n, err = s.MarkNotified(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestApplyReply(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *storage.Storage) {
		ctx := context.Background()
		wid := seedWelcomer(t, s, "maria", "", "maria@example.com")

		var ids []int64
		for _, name := range []string{"Ana Silva", "100%_real", "Bruno"} {
			id, err := s.InsertVisitor(ctx, models.NewVisitor{Name: name, DecisionDate: "2025-06-26", WelcomerID: wid})
			require.NoError(t, err)
			ids = append(ids, id)
		}
		_, err := s.MarkNotified(ctx, ids)
		require.NoError(t, err)

		obs := "ligar semana que vem"
		n, err := s.ApplyReply(ctx, "ana", models.Resolved(models.OutcomeNoAnswer), &obs, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		v, err := s.GetVisitor(ctx, "Ana Silva", "2025-06-26")
		require.NoError(t, err)
		assert.Equal(t, models.StatusResolved, v.Status.Kind)
		assert.Equal(t, models.OutcomeNoAnswer, v.Status.String())
		assert.Equal(t, obs, v.Observation)

		n, err = s.ApplyReply(ctx, "ana", models.Resolved(models.OutcomeInterested), nil, 0)
		require.NoError(t, err)
		assert.Zero(t, n, "resolved records must not match again")

		n, err = s.ApplyReply(ctx, "%", models.Resolved(models.OutcomeIgnored), nil, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n, "wildcards in the fragment are literal")

		n, err = s.ApplyReply(ctx, "Bruno", models.Resolved(models.OutcomeIgnored), nil, wid+100)
		require.NoError(t, err)
		assert.Zero(t, n, "scoped to another welcomer")

		n, err = s.ApplyReply(ctx, "Bruno", models.Resolved(models.OutcomeIgnored), nil, wid)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}

func TestPendingByWelcomer(t *testing.T) {
	s := newTestStorage(t, storage.DriverCGO)
	ctx := context.Background()
	maria := seedWelcomer(t, s, "maria", "", "maria@example.com")
	joao := seedWelcomer(t, s, "joao", "", "joao@example.com")

	insert := func(name, date string, wid int64) {
		_, err := s.InsertVisitor(ctx, models.NewVisitor{Name: name, DecisionDate: date, WelcomerID: wid})
		require.NoError(t, err)
	}
	insert("A", "2025-06-01", maria)
	insert("B", "2025-06-08", maria)
	insert("C", "2025-06-08", joao)
	insert("D", "2025-07-20", joao)

	counts, err := s.PendingByWelcomer(ctx, "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "maria", counts[0].WelcomerName)
	assert.Equal(t, 2, counts[0].Pending)
	assert.Equal(t, "lider_teste", counts[0].GroupLeader)
	assert.Equal(t, 1, counts[1].Pending)

	counts, err = s.PendingByWelcomer(ctx, "", "")
	require.NoError(t, err)
	total := 0
	for _, c := range counts {
		total += c.Pending
	}
	assert.Equal(t, 4, total)
}

func TestVisitorRoundTrip(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *storage.Storage) {
		ctx := context.Background()
		wid := seedWelcomer(t, s, "maria", "", "maria@example.com")
		age := 23
		_, err := s.InsertVisitor(ctx, models.NewVisitor{
			Name: "Ana", Age: &age, Phone: "11 9999", DecisionDate: "2025-06-26",
			WelcomerID: wid, Gender: "M", Event: "conectados",
		})
		require.NoError(t, err)

		v, err := s.GetVisitor(ctx, "Ana", "2025-06-26")
		require.NoError(t, err)
		require.NotNil(t, v.Age)
		assert.Equal(t, 23, *v.Age)
		assert.Equal(t, "11 9999", v.Phone)
		assert.Equal(t, "M", v.Gender)
		assert.Equal(t, "conectados", v.Event)
		assert.Equal(t, models.StatusPending, v.Status.Kind)
		require.NotNil(t, v.WelcomerID)
		assert.Equal(t, wid, *v.WelcomerID)
		assert.False(t, v.LoadedAt.IsZero())

		pending, err := s.VisitorsByStatus(ctx, models.Pending())
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})
}
