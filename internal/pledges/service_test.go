package pledges

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

type fakeRepository struct {
	pledges map[int64]models.Pledge
	nextID  int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{pledges: make(map[int64]models.Pledge), nextID: 1}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, pledge *models.Pledge) error {
	pledge.ID = f.nextID
	f.nextID++
	f.pledges[pledge.ID] = *pledge
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id int64) (*models.Pledge, error) {
	pledge, ok := f.pledges[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := pledge
	return &copied, nil
}

func (f *fakeRepository) List(ctx context.Context, params listPledgesParams) ([]models.Pledge, *pagination.Cursor, error) {
	var out []models.Pledge
	for _, pledge := range f.pledges {
		if params.NeedID > 0 && pledge.NeedID != params.NeedID {
			continue
		}
		if params.Status != "" && pledge.Status != params.Status {
			continue
		}
		out = append(out, pledge)
	}
	return out, nil, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id int64, from, to enums.PledgeStatus) (int64, error) {
	pledge, ok := f.pledges[id]
	if !ok || pledge.Status != from {
		return 0, nil
	}
	pledge.Status = to
	f.pledges[id] = pledge
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

func newTestService(t *testing.T) Service {
	t.Helper()
	finder := &fakeNeedFinder{needs: map[int64]models.Need{
		1: {ID: 1, Status: enums.NeedStatusApproved},
		2: {ID: 2, Status: enums.NeedStatusPending},
	}}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: &bytes.Buffer{}})
	svc, err := NewService(newFakeRepository(), finder, logg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func offer(t *testing.T, svc Service) *models.Pledge {
	t.Helper()
	pledge, err := svc.Create(context.Background(), CreateParams{
		NeedID:      1,
		Description: "Two bags of winter clothes",
		DonorName:   "R. Alvarez",
		DonorEmail:  "r@example.com",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return pledge
}

func TestCreatePledge(t *testing.T) {
	svc := newTestService(t)

	pledge := offer(t, svc)
	if pledge.Status != enums.PledgeStatusOffered {
		t.Fatalf("new pledges should start offered, got %s", pledge.Status)
	}
	if pledge.DonorEmail == nil || *pledge.DonorEmail != "r@example.com" {
		t.Fatal("donor email should be stored")
	}

	if _, err := svc.Create(context.Background(), CreateParams{NeedID: 1, DonorName: "x"}); err == nil {
		t.Fatal("empty description should be rejected")
	}
	if _, err := svc.Create(context.Background(), CreateParams{NeedID: 2, Description: "d", DonorName: "x"}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("pledges against unapproved needs should read as not found, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateParams{NeedID: 404, Description: "d", DonorName: "x"}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPledgeLifecycle(t *testing.T) {
	svc := newTestService(t)
	pledge := offer(t, svc)

	accepted, err := svc.Accept(context.Background(), pledge.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != enums.PledgeStatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	// Declining is only possible while still offered.
	if _, err := svc.Decline(context.Background(), pledge.ID); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	fulfilled, err := svc.Fulfill(context.Background(), pledge.ID)
	if err != nil {
		t.Fatalf("fulfill failed: %v", err)
	}
	if fulfilled.Status != enums.PledgeStatusFulfilled {
		t.Fatalf("expected fulfilled, got %s", fulfilled.Status)
	}

	if _, err := svc.Fulfill(context.Background(), pledge.ID); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("second fulfill should conflict, got %v", err)
	}
	if _, err := svc.Accept(context.Background(), 999); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeclineFromOffered(t *testing.T) {
	svc := newTestService(t)
	pledge := offer(t, svc)

	declined, err := svc.Decline(context.Background(), pledge.ID)
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if declined.Status != enums.PledgeStatusDeclined {
		t.Fatalf("expected declined, got %s", declined.Status)
	}
	if _, err := svc.Fulfill(context.Background(), pledge.ID); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("declined pledges cannot be fulfilled, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	first := offer(t, svc)
	offer(t, svc)

	if _, err := svc.Accept(context.Background(), first.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	result, err := svc.List(context.Background(), ListParams{NeedID: 1, Status: "accepted"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != first.ID {
		t.Fatalf("status filter should return only the accepted pledge, got %v", result.Items)
	}

	if _, err := svc.List(context.Background(), ListParams{Status: "bogus"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("unknown status should be rejected, got %v", err)
	}
}
