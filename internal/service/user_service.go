package service

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/repository"
)

// ObjectStorage 头像、封面等图片的对象存储
type ObjectStorage interface {
	UploadAvatar(userID int64, data []byte, ext string) (string, error)
	UploadBundleCover(bundleID int64, data []byte, ext string) (string, error)
	DeleteByURL(url string) error
}

type UserService struct {
	userRepo *repository.UserRepository
	storage  ObjectStorage
	cfg      *config.Config
}

// NewUserService storage 可以为 nil，此时上传接口返回 ErrStorageUnavailable
func NewUserService(userRepo *repository.UserRepository, storage ObjectStorage, cfg *config.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

// GetProfile 获取用户详情
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return toUserInfo(user), nil
}

// UpdateProfile 更新用户信息
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}

	// 检查用户名是否已被占用
	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		fields["username"] = *req.Username
		user.Username = *req.Username
	}
	if req.DisplayName != nil {
		fields["display_name"] = *req.DisplayName
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
		user.Bio = *req.Bio
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}

	return toUserInfo(user), nil
}

// UploadAvatar 上传用户头像到 OSS 并更新头像 URL
func (s *UserService) UploadAvatar(userID int64, file io.Reader, filename string) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	data, ext, err := readImage(file, filename, s.cfg.Upload)
	if err != nil {
		return "", err
	}

	avatarURL, err := s.storage.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": avatarURL}); err != nil {
		return "", err
	}

	removeReplaced(s.storage, user.AvatarURL, avatarURL)
	return avatarURL, nil
}

// removeReplaced 删除被替换掉的旧图片，失败只记日志
func removeReplaced(storage ObjectStorage, oldURL, newURL string) {
	if oldURL == "" || oldURL == newURL {
		return
	}
	if err := storage.DeleteByURL(oldURL); err != nil {
		log.Warn().Err(err).Str("url", oldURL).Msg("delete replaced object failed")
	}
}

// readImage 读取上传的图片并校验扩展名和大小
func readImage(file io.Reader, filename string, cfg config.UploadConfig) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	if len(cfg.AllowedExtensions) > 0 {
		allowed := false
		for _, e := range cfg.AllowedExtensions {
			if strings.EqualFold(e, ext) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, "", ErrInvalidFileType
		}
	}

	limit := cfg.MaxSize
	if limit <= 0 {
		limit = 5 << 20
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > limit {
		return nil, "", ErrFileTooLarge
	}

	return data, ext, nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Role:        user.Role,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Bio:         user.Bio,
	}
	if user.Email != nil {
		info.Email = *user.Email
	}
	if !user.CreatedAt.IsZero() {
		info.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	return info
}
