package updates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
)

type fakeRepository struct {
	updates map[int64]models.NeedUpdate
	nextID  int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{updates: make(map[int64]models.NeedUpdate), nextID: 1}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, update *models.NeedUpdate) error {
	update.ID = f.nextID
	f.nextID++
	f.updates[update.ID] = *update
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, needID, updateID int64) (*models.NeedUpdate, error) {
	update, ok := f.updates[updateID]
	if !ok || update.NeedID != needID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := update
	return &copied, nil
}

func (f *fakeRepository) ListByNeed(ctx context.Context, needID int64, visibleOnly bool) ([]models.NeedUpdate, error) {
	var out []models.NeedUpdate
	for _, update := range f.updates {
		if update.NeedID != needID {
			continue
		}
		if visibleOnly && !update.Visible {
			continue
		}
		out = append(out, update)
	}
	return out, nil
}

func (f *fakeRepository) SetVisibility(ctx context.Context, needID, updateID int64, visible bool) (int64, error) {
	update, ok := f.updates[updateID]
	if !ok || update.NeedID != needID {
		return 0, nil
	}
	update.Visible = visible
	f.updates[updateID] = update
	return 1, nil
}

func (f *fakeRepository) Delete(ctx context.Context, needID, updateID int64) (int64, error) {
	update, ok := f.updates[updateID]
	if !ok || update.NeedID != needID {
		return 0, nil
	}
	delete(f.updates, updateID)
	return 1, nil
}

type fakeNeedFinder struct {
	needs map[int64]models.Need
}

func (f *fakeNeedFinder) FindByID(ctx context.Context, id int64) (*models.Need, error) {
	need, ok := f.needs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := need
	return &copied, nil
}

func newTestService(t *testing.T, repo Repository, finder NeedFinder) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: &bytes.Buffer{}})
	svc, err := NewService(repo, finder, logg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func approvedFinder() *fakeNeedFinder {
	return &fakeNeedFinder{needs: map[int64]models.Need{
		1: {ID: 1, Status: enums.NeedStatusApproved},
		2: {ID: 2, Status: enums.NeedStatusPending},
	}}
}

func TestCreateUpdateValidation(t *testing.T) {
	svc := newTestService(t, newFakeRepository(), approvedFinder())

	if _, err := svc.Create(context.Background(), 1, CreateParams{Title: "", Body: "b"}); err == nil {
		t.Fatal("empty title should be rejected")
	}
	if _, err := svc.Create(context.Background(), 1, CreateParams{Title: strings.Repeat("x", titleMaxLen+1), Body: "b"}); err == nil {
		t.Fatal("over-length title should be rejected")
	}
	if _, err := svc.Create(context.Background(), 404, CreateParams{Title: "t", Body: "b"}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("missing need should be not found, got %v", err)
	}

	update, err := svc.Create(context.Background(), 1, CreateParams{Title: "  Roof repaired  ", Body: "Done this week."})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if update.Title != "Roof repaired" {
		t.Fatalf("title should be trimmed, got %q", update.Title)
	}
	if !update.Visible {
		t.Fatal("new updates should start visible")
	}
}

func TestListPublicFiltersHiddenAndUnapproved(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, approvedFinder())

	visible, err := svc.Create(context.Background(), 1, CreateParams{Title: "a", Body: "b"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	hidden, err := svc.Create(context.Background(), 1, CreateParams{Title: "c", Body: "d"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.SetVisibility(context.Background(), 1, hidden.ID, false); err != nil {
		t.Fatalf("hide failed: %v", err)
	}

	public, err := svc.ListPublic(context.Background(), 1)
	if err != nil {
		t.Fatalf("public list failed: %v", err)
	}
	if len(public) != 1 || public[0].ID != visible.ID {
		t.Fatalf("public list should hold only the visible update, got %v", public)
	}

	all, err := svc.ListAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin list should hold both updates, got %d", len(all))
	}

	// Pending needs are invisible to the public surface.
	if _, err := svc.ListPublic(context.Background(), 2); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("pending need should read as not found, got %v", err)
	}
}

func TestSetVisibilityAndDeleteNotFound(t *testing.T) {
	svc := newTestService(t, newFakeRepository(), approvedFinder())

	if _, err := svc.SetVisibility(context.Background(), 1, 99, false); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(context.Background(), 1, 99); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	update, err := svc.Create(context.Background(), 1, CreateParams{Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), 1, update.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), 1, update.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}
