package service

import "errors"

var (
	ErrPermissionDenied  = errors.New("无权执行该操作")
	ErrInvalidTransition = errors.New("当前状态不允许该操作")

	ErrSubscriptionNotFound  = errors.New("订阅不存在")
	ErrSubscriptionNotActive = errors.New("订阅未处于进行中")
	ErrClientNotFound        = errors.New("客户不存在")

	ErrBundleNotFound = errors.New("套餐不存在")
	ErrBundleInUse    = errors.New("套餐已被进行中的订阅使用")

	ErrSessionNotFound      = errors.New("课时不存在")
	ErrDeliveryNotFound     = errors.New("交付记录不存在")
	ErrNotificationNotFound = errors.New("提醒不存在")

	ErrStorageUnavailable = errors.New("文件存储未配置")
	ErrInvalidFileType    = errors.New("不支持的文件类型")
	ErrFileTooLarge       = errors.New("文件过大")
)
