package service

import (
	"context"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/entitlement"
	"github.com/qs3c/coach_go_server/internal/pkg/policy"
	"github.com/qs3c/coach_go_server/internal/repository"
)

type BundleService struct {
	bundleRepo *repository.BundleRepository
	storage    ObjectStorage
	cfg        *config.Config
}

func NewBundleService(bundleRepo *repository.BundleRepository, storage ObjectStorage, cfg *config.Config) *BundleService {
	return &BundleService{
		bundleRepo: bundleRepo,
		storage:    storage,
		cfg:        cfg,
	}
}

// Create 创建套餐
func (s *BundleService) Create(actor policy.Actor, req *dto.CreateBundleRequest) (*dto.BundleDetail, error) {
	if !policy.CanCreateAsTrainer(actor).Allowed {
		return nil, ErrPermissionDenied
	}

	bundle := &model.BundleDraft{
		TrainerID:    actor.UserID,
		Title:        req.Title,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		Recurring:    req.Recurring,
		Status:       req.Status,
		ProductsJSON: encodeProducts(req.Products),
		ServicesJSON: encodeServices(req.Services),
		GoalsJSON:    encodeGoals(req.Goals, req.SessionCount),
	}
	if bundle.Status == "" {
		bundle.Status = model.BundleStatusDraft
	}

	if err := s.bundleRepo.Create(bundle); err != nil {
		return nil, err
	}

	return toBundleDetail(bundle), nil
}

// Get 套餐详情：归属教练和管理员总能查看，其他人只能看已发布的
func (s *BundleService) Get(actor policy.Actor, id int64) (*dto.BundleDetail, error) {
	bundle, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if bundle.Status != model.BundleStatusPublished &&
		!policy.Decide(actor, policy.ActionManage, bundleResource(bundle)).Allowed {
		return nil, ErrPermissionDenied
	}
	return toBundleDetail(bundle), nil
}

// List 教练自己的套餐列表
func (s *BundleService) List(actor policy.Actor, status string, page, pageSize int) ([]*dto.BundleDetail, int64, error) {
	if !policy.CanCreateAsTrainer(actor).Allowed {
		return nil, 0, ErrPermissionDenied
	}

	bundles, total, err := s.bundleRepo.ListByTrainer(actor.UserID, page, pageSize, status)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.BundleDetail, len(bundles))
	for i, b := range bundles {
		items[i] = toBundleDetail(b)
	}
	return items, total, nil
}

// Update 更新套餐，被进行中订阅引用时拒绝
func (s *BundleService) Update(actor policy.Actor, id int64, req *dto.UpdateBundleRequest) (*dto.BundleDetail, error) {
	bundle, err := s.loadForManage(actor, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.PriceCents != nil {
		fields["price_cents"] = *req.PriceCents
	}
	if req.Recurring != nil {
		fields["recurring"] = *req.Recurring
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Products != nil {
		fields["products_json"] = encodeProducts(req.Products)
	}
	if req.Services != nil {
		fields["services_json"] = encodeServices(req.Services)
	}
	if req.Goals != nil || req.SessionCount != nil {
		goals := req.Goals
		if goals == nil {
			goals = entitlement.ParseGoals(bundle.GoalsJSON.Decode())
		}
		sessionCount := req.SessionCount
		if sessionCount == nil {
			if n := int(entitlement.GoalSessionCount(bundle.GoalsJSON.Decode())); n > 0 {
				sessionCount = &n
			}
		}
		fields["goals_json"] = encodeGoals(goals, sessionCount)
	}

	if len(fields) > 0 {
		if err := s.ensureNotInUse(bundle.ID); err != nil {
			return nil, err
		}
		if err := s.bundleRepo.UpdateFields(bundle.ID, fields); err != nil {
			return nil, err
		}
	}

	updated, err := s.load(bundle.ID)
	if err != nil {
		return nil, err
	}
	return toBundleDetail(updated), nil
}

// Delete 删除套餐，被进行中订阅引用时拒绝
func (s *BundleService) Delete(actor policy.Actor, id int64) error {
	bundle, err := s.loadForManage(actor, id)
	if err != nil {
		return err
	}
	if err := s.ensureNotInUse(bundle.ID); err != nil {
		return err
	}
	return s.bundleRepo.Delete(bundle.ID)
}

// UploadCover 上传套餐封面
func (s *BundleService) UploadCover(actor policy.Actor, id int64, file io.Reader, filename string) (string, error) {
	bundle, err := s.loadForManage(actor, id)
	if err != nil {
		return "", err
	}
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}

	data, ext, err := readImage(file, filename, s.cfg.Upload)
	if err != nil {
		return "", err
	}

	coverURL, err := s.storage.UploadBundleCover(bundle.ID, data, ext)
	if err != nil {
		return "", err
	}
	if err := s.bundleRepo.UpdateFields(bundle.ID, map[string]interface{}{"cover_url": coverURL}); err != nil {
		return "", err
	}
	removeReplaced(s.storage, bundle.CoverURL, coverURL)
	return coverURL, nil
}

func (s *BundleService) load(id int64) (*model.BundleDraft, error) {
	bundle, err := s.bundleRepo.GetByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	return bundle, nil
}

func (s *BundleService) loadForManage(actor policy.Actor, id int64) (*model.BundleDraft, error) {
	bundle, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !policy.Decide(actor, policy.ActionManage, bundleResource(bundle)).Allowed {
		return nil, ErrPermissionDenied
	}
	return bundle, nil
}

func (s *BundleService) ensureNotInUse(bundleID int64) error {
	n, err := s.bundleRepo.CountLiveSubscriptions(bundleID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrBundleInUse
	}
	return nil
}

func bundleResource(b *model.BundleDraft) policy.Resource {
	return policy.Resource{Kind: "bundle", TrainerID: b.TrainerID}
}

// 写入时统一成规范的 JSON 形态，读取仍走宽松解析以兼容历史数据

func encodeProducts(items []dto.BundleProductInput) model.JSONText {
	if items == nil {
		items = []dto.BundleProductInput{}
	}
	return model.NewJSONText(items)
}

func encodeServices(items []dto.BundleServiceInput) model.JSONText {
	if items == nil {
		items = []dto.BundleServiceInput{}
	}
	return model.NewJSONText(items)
}

func encodeGoals(goals []string, sessionCount *int) model.JSONText {
	if goals == nil {
		goals = []string{}
	}
	if sessionCount != nil && *sessionCount > 0 {
		return model.NewJSONText(map[string]any{
			"items":        goals,
			"sessionCount": *sessionCount,
		})
	}
	return model.NewJSONText(goals)
}

func toBundleDetail(b *model.BundleDraft) *dto.BundleDetail {
	return &dto.BundleDetail{
		ID:           b.ID,
		TrainerID:    b.TrainerID,
		Title:        b.Title,
		Description:  b.Description,
		PriceCents:   b.PriceCents,
		Recurring:    b.Recurring,
		CoverURL:     b.CoverURL,
		Status:       b.Status,
		Products:     entitlement.ParseProducts(b.ProductsJSON.Decode()),
		Services:     entitlement.ParseServices(b.ServicesJSON.Decode()),
		Goals:        entitlement.ParseGoals(b.GoalsJSON.Decode()),
		SessionCount: int(entitlement.GoalSessionCount(b.GoalsJSON.Decode())),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
}
