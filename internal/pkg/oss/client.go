package oss

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/coach_go_server/config"
)

type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// UploadAvatar 上传用户头像
func (c *Client) UploadAvatar(userID int64, data []byte, ext string) (string, error) {
	return c.upload(AvatarKey(userID, time.Now(), ext), data, ext)
}

// UploadBundleCover 上传套餐封面
func (c *Client) UploadBundleCover(bundleID int64, data []byte, ext string) (string, error) {
	return c.upload(BundleCoverKey(bundleID, time.Now(), ext), data, ext)
}

func (c *Client) upload(objectKey string, data []byte, ext string) (string, error) {
	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(ContentType(ext)))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	return c.GetURL(objectKey), nil
}

// Delete 删除文件
func (c *Client) Delete(objectKey string) error {
	err := c.bucket.DeleteObject(objectKey)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// DeleteByURL 按访问 URL 删除对象，不属于本 bucket 的 URL 直接忽略
func (c *Client) DeleteByURL(url string) error {
	if !c.owns(url) {
		return nil
	}
	key := c.ExtractObjectKey(url)
	if key == "" {
		return nil
	}
	return c.Delete(key)
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return c.bucketBase() + objectKey
}

func (c *Client) bucketBase() string {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(c.client.Config.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/", c.bucketName, endpoint)
}

func (c *Client) owns(url string) bool {
	if c.cdnDomain != "" && strings.HasPrefix(url, fmt.Sprintf("https://%s/", c.cdnDomain)) {
		return true
	}
	return strings.HasPrefix(url, c.bucketBase())
}

// ExtractObjectKey 从 URL 中提取 object key
func (c *Client) ExtractObjectKey(url string) string {
	if c.cdnDomain != "" {
		prefix := fmt.Sprintf("https://%s/", c.cdnDomain)
		if strings.HasPrefix(url, prefix) {
			return url[len(prefix):]
		}
	}

	// https://bucket-name.endpoint/path/to/object
	parts := strings.Split(url, "/")
	if len(parts) >= 4 {
		return strings.Join(parts[3:], "/")
	}

	return path.Base(url)
}

// AvatarKey 头像对象路径
func AvatarKey(userID int64, now time.Time, ext string) string {
	return fmt.Sprintf("avatars/%d/%d%s", userID, now.Unix(), ext)
}

// BundleCoverKey 套餐封面对象路径
func BundleCoverKey(bundleID int64, now time.Time, ext string) string {
	return fmt.Sprintf("bundles/%d/cover_%d%s", bundleID, now.Unix(), ext)
}

// ContentType 根据扩展名获取 Content-Type
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
