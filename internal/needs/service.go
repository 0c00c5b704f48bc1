package needs

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
	"github.com/upliftbridge/upliftbridge-backend/pkg/storage/localdisk"
)

const (
	summaryMaxLen = 160
	photoMaxFiles = 6
)

var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// PhotoStore is the storage surface the needs service uploads through.
type PhotoStore interface {
	Save(ctx context.Context, scope, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, publicURL string) error
}

// ModerationConfig bounds the admin review workflow.
type ModerationConfig struct {
	ReviewerName    string
	MinRejectionLen int
}

// Service defines need submission, browsing, moderation, and photo operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Need, error)
	ListPublished(ctx context.Context, params ListParams) (*ListResult, error)
	ListForReview(ctx context.Context, params ListParams) (*ListResult, error)
	GetPublished(ctx context.Context, id int64) (*Detail, error)
	GetAny(ctx context.Context, id int64) (*Detail, error)
	GetPaymentRouting(ctx context.Context, id int64) (*PaymentRouting, error)
	Approve(ctx context.Context, id int64, reviewer string) (*models.Need, error)
	Reject(ctx context.Context, id int64, reviewer, reason string) (*models.Need, error)
	Close(ctx context.Context, id int64, reviewer string) (*models.Need, error)
	AddPhoto(ctx context.Context, needID int64, fileName string, r io.Reader) (*models.NeedPhoto, error)
	RemovePhoto(ctx context.Context, needID, photoID int64) error
}

type service struct {
	repo   Repository
	photos PhotoStore
	logg   *logger.Logger
	cfg    ModerationConfig
}

// NewService wires needs dependencies.
func NewService(repo Repository, photos PhotoStore, logg *logger.Logger, cfg ModerationConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "needs repository required")
	}
	if photos == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "photo store required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if cfg.MinRejectionLen <= 0 {
		cfg.MinRejectionLen = 10
	}
	if cfg.ReviewerName == "" {
		cfg.ReviewerName = "Admin"
	}
	return &service{repo: repo, photos: photos, logg: logg, cfg: cfg}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Need, error) {
	title := strings.TrimSpace(params.Title)
	beneficiary := strings.TrimSpace(params.BeneficiaryName)
	email := strings.TrimSpace(params.BeneficiaryEmail)

	switch {
	case title == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	case isPlaceholder(params.Story):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "story required")
	case isPlaceholder(params.LongTermDream):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "long-term dream required")
	case isPlaceholder(params.TriedAlready):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "what has already been tried is required")
	case beneficiary == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beneficiary name required")
	case email == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beneficiary email required")
	case !params.AmountNeeded.IsPositive():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goal amount must be positive")
	}

	items := cleanItems(params.Items)
	if len(items) == 0 || items[0].Name == "" || items[0].Cost == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one requested item with a name and estimated cost is required")
	}
	for i, item := range items[1:] {
		if item.Name == "" || item.Cost == "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "requested item %d needs both a name and an estimated cost", i+2)
		}
	}

	paymentLink := strings.TrimSpace(params.InstitutionPaymentLink)
	if params.PreferDirectToInstitution {
		if paymentLink == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "institution payment link required when direct payment is selected")
		}
		parsed, err := url.Parse(paymentLink)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "institution payment link must be an absolute URL")
		}
	}

	category, err := enums.ParseNeedCategory(strings.ToLower(strings.TrimSpace(params.Category)))
	if err != nil {
		category = enums.NeedCategoryOther
	}

	description := composeDescription(params, items)
	summary := composeSummary(params, description)

	need := &models.Need{
		Title:                     title,
		Summary:                   summary,
		Description:               description,
		Category:                  category,
		Status:                    enums.NeedStatusPending,
		AmountNeeded:              params.AmountNeeded.Round(2),
		BeneficiaryName:           beneficiary,
		BeneficiaryEmail:          email,
		PreferDirectToInstitution: params.PreferDirectToInstitution,
		VerificationLevel:         enums.VerificationBasicContact,
	}
	if city := strings.TrimSpace(params.City); city != "" {
		need.City = &city
	}
	if region := strings.TrimSpace(params.Region); region != "" {
		need.Region = &region
	}
	if payTo := strings.TrimSpace(params.PayTo); payTo != "" {
		need.PayTo = &payTo
	}
	if name := strings.TrimSpace(params.InstitutionName); name != "" {
		need.InstitutionName = &name
	}
	if kind := strings.TrimSpace(params.InstitutionType); kind != "" {
		need.InstitutionType = &kind
	}
	if paymentLink != "" {
		need.InstitutionPaymentLink = &paymentLink
	}
	if note := strings.TrimSpace(params.VerificationNote); note != "" {
		need.VerificationNote = &note
	}

	if err := s.repo.Create(ctx, need); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create need")
	}

	s.logg.Info(s.logg.WithNeedID(ctx, need.ID), "need submitted for review")
	return need, nil
}

func (s *service) ListPublished(ctx context.Context, params ListParams) (*ListResult, error) {
	params.Status = enums.NeedStatusApproved.String()
	return s.list(ctx, params)
}

func (s *service) ListForReview(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status == "" {
		params.Status = enums.NeedStatusPending.String()
	}
	return s.list(ctx, params)
}

func (s *service) list(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listNeedsParams{Limit: params.Limit}

	if params.Status != "" {
		status, err := enums.ParseNeedStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		query.Status = status
	}
	if params.Category != "" {
		category, err := enums.ParseNeedCategory(params.Category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		query.Category = category
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list needs")
	}

	items := make([]NeedSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, summarize(row))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

func (s *service) GetPublished(ctx context.Context, id int64) (*Detail, error) {
	detail, err := s.GetAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Need.Status != enums.NeedStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
	}
	return detail, nil
}

func (s *service) GetAny(ctx context.Context, id int64) (*Detail, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	}
	need, err := s.repo.FindByIDWithAttachments(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load need")
	}
	return &Detail{Need: *need, Photos: need.Photos, Updates: need.Updates}, nil
}

// GetPaymentRouting exposes where the offsite gift should be paid. The donor
// lands here after the platform-support checkout settles, so only approved
// needs resolve.
func (s *service) GetPaymentRouting(ctx context.Context, id int64) (*PaymentRouting, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	}
	need, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load need")
	}
	if need.Status != enums.NeedStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
	}

	return &PaymentRouting{
		NeedID:                    need.ID,
		Title:                     need.Title,
		Remaining:                 need.Remaining(),
		PayTo:                     need.PayTo,
		InstitutionName:           need.InstitutionName,
		InstitutionType:           need.InstitutionType,
		InstitutionPaymentLink:    need.InstitutionPaymentLink,
		PreferDirectToInstitution: need.PreferDirectToInstitution,
	}, nil
}

func (s *service) Approve(ctx context.Context, id int64, reviewer string) (*models.Need, error) {
	return s.review(ctx, id, reviewer, enums.NeedStatusPending, enums.NeedStatusApproved, nil)
}

func (s *service) Reject(ctx context.Context, id int64, reviewer, reason string) (*models.Need, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < s.cfg.MinRejectionLen {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation,
			"rejection reason must be at least %d characters", s.cfg.MinRejectionLen)
	}
	return s.review(ctx, id, reviewer, enums.NeedStatusPending, enums.NeedStatusRejected, &reason)
}

func (s *service) Close(ctx context.Context, id int64, reviewer string) (*models.Need, error) {
	return s.review(ctx, id, reviewer, enums.NeedStatusApproved, enums.NeedStatusClosed, nil)
}

func (s *service) review(ctx context.Context, id int64, reviewer string, from, to enums.NeedStatus, reason *string) (*models.Need, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	}
	if strings.TrimSpace(reviewer) == "" {
		reviewer = s.cfg.ReviewerName
	}

	affected, err := s.repo.UpdateReview(ctx, id, from, to, reviewer, reason, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update need review")
	}

	need, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload need")
	}
	if affected == 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"need must be %s to become %s", from, to)
	}

	s.logg.Info(s.logg.WithNeedID(ctx, id), "need review recorded")
	return need, nil
}

func (s *service) AddPhoto(ctx context.Context, needID int64, fileName string, r io.Reader) (*models.NeedPhoto, error) {
	if needID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedPhotoExtensions[ext] {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo must be jpg, jpeg, png, or webp")
	}

	if _, err := s.repo.FindByID(ctx, needID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load need")
	}

	count, err := s.repo.CountPhotos(ctx, needID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count photos")
	}
	if count >= photoMaxFiles {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "a need may have at most %d photos", photoMaxFiles)
	}

	url, size, err := s.photos.Save(ctx, "need-"+strconv.FormatInt(needID, 10), fileName, r)
	if err != nil {
		if errors.Is(err, localdisk.ErrTooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photo too large")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store photo")
	}

	photo := &models.NeedPhoto{
		NeedID:    needID,
		FileName:  fileName,
		URL:       url,
		SizeBytes: size,
		SortOrder: int(count),
	}
	if err := s.repo.CreatePhoto(ctx, photo); err != nil {
		// Best effort: the file is orphaned if this delete fails too.
		_ = s.photos.Delete(ctx, url)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record photo")
	}
	return photo, nil
}

func (s *service) RemovePhoto(ctx context.Context, needID, photoID int64) error {
	if needID <= 0 || photoID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "need id and photo id required")
	}

	photo, err := s.repo.FindPhoto(ctx, needID, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load photo")
	}

	if _, err := s.repo.DeletePhoto(ctx, needID, photoID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete photo")
	}
	if err := s.photos.Delete(ctx, photo.URL); err != nil {
		s.logg.Warn(s.logg.WithNeedID(ctx, needID), "deleting stored photo file failed")
	}
	return nil
}
