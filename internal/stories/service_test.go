package stories

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

type fakeRepository struct {
	stories map[int64]models.Story
	nextID  int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{stories: make(map[int64]models.Story), nextID: 1}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, story *models.Story) error {
	story.ID = f.nextID
	f.nextID++
	f.stories[story.ID] = *story
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id int64) (*models.Story, error) {
	story, ok := f.stories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := story
	return &copied, nil
}

func (f *fakeRepository) List(ctx context.Context, params listStoriesParams) ([]models.Story, *pagination.Cursor, error) {
	var out []models.Story
	for _, story := range f.stories {
		if params.PublishedOnly && !story.Published {
			continue
		}
		out = append(out, story)
	}
	return out, nil, nil
}

func (f *fakeRepository) Update(ctx context.Context, story *models.Story) error {
	f.stories[story.ID] = *story
	return nil
}

func (f *fakeRepository) SetPublished(ctx context.Context, id int64, published bool) (int64, error) {
	story, ok := f.stories[id]
	if !ok {
		return 0, nil
	}
	story.Published = published
	f.stories[id] = story
	return 1, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if _, ok := f.stories[id]; !ok {
		return 0, nil
	}
	delete(f.stories, id)
	return 1, nil
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: &bytes.Buffer{}})
	svc, err := NewService(repo, logg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, repo
}

func TestCreateStoryNormalizesGallery(t *testing.T) {
	svc, _ := newTestService(t)

	story, err := svc.Create(context.Background(), WriteParams{
		Title:       "  New roof for the Riveras  ",
		Body:        "Funded in nine days.",
		HeroURL:     " /uploads/stories/hero.jpg ",
		GalleryURLs: []string{" /uploads/a.jpg ", "", "/uploads/b.jpg"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if story.Title != "New roof for the Riveras" {
		t.Fatalf("title should be trimmed, got %q", story.Title)
	}
	if story.HeroURL == nil || *story.HeroURL != "/uploads/stories/hero.jpg" {
		t.Fatal("hero url should be trimmed and stored")
	}
	if len(story.GalleryURLs) != 2 {
		t.Fatalf("blank gallery entries should be dropped, got %v", story.GalleryURLs)
	}
	if story.Published {
		t.Fatal("new stories should start unpublished")
	}
}

func TestCreateStoryValidation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), WriteParams{Title: "", Body: "b"}); err == nil {
		t.Fatal("empty title should be rejected")
	}

	oversized := make([]string, galleryMaxURLs+1)
	for i := range oversized {
		oversized[i] = "/uploads/x.jpg"
	}
	if _, err := svc.Create(context.Background(), WriteParams{Title: "t", Body: "b", GalleryURLs: oversized}); err == nil {
		t.Fatal("oversized gallery should be rejected")
	}
}

func TestPublishedVisibility(t *testing.T) {
	svc, _ := newTestService(t)

	story, err := svc.Create(context.Background(), WriteParams{Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.GetPublished(context.Background(), story.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("draft should be hidden from the public, got %v", err)
	}

	published, err := svc.SetPublished(context.Background(), story.ID, true)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !published.Published {
		t.Fatal("story should be published")
	}

	if _, err := svc.GetPublished(context.Background(), story.ID); err != nil {
		t.Fatalf("published story should be public: %v", err)
	}

	publicList, err := svc.ListPublished(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("public list failed: %v", err)
	}
	if len(publicList.Items) != 1 {
		t.Fatalf("expected one published story, got %d", len(publicList.Items))
	}
}

func TestEditReplacesHeroAndGallery(t *testing.T) {
	svc, _ := newTestService(t)

	story, err := svc.Create(context.Background(), WriteParams{
		Title:   "t",
		Body:    "b",
		HeroURL: "/uploads/old.jpg",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	edited, err := svc.Edit(context.Background(), story.ID, WriteParams{Title: "t2", Body: "b2"})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if edited.HeroURL != nil {
		t.Fatal("omitting the hero url should clear it")
	}
	if edited.Title != "t2" {
		t.Fatalf("unexpected title %q", edited.Title)
	}
}

func TestDeleteStoryNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Delete(context.Background(), 99); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.SetPublished(context.Background(), 99, true); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
