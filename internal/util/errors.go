package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("resource not found")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")

	// 输入本身非法，如重排列表有重复、未覆盖课程全部章节
	ErrInvalidArgument = errors.New("invalid argument")

	// 外部编码服务调用失败，可重试；重试资产创建前须先确认记录未落库
	ErrUpstreamAsset = errors.New("upstream asset service error")

	ErrInvalidVideoExt = errors.New("不支持的视频格式")
)

// PreconditionFailedError 发布前置条件不满足，Missing 列出缺失字段
type PreconditionFailedError struct {
	Missing []string
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func NewPreconditionFailed(missing ...string) *PreconditionFailedError {
	return &PreconditionFailedError{Missing: missing}
}

// IsPreconditionFailed 判断并提取前置条件错误
func IsPreconditionFailed(err error) (*PreconditionFailedError, bool) {
	var pf *PreconditionFailedError
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsUpstreamAsset(err error) bool {
	return errors.Is(err, ErrUpstreamAsset)
}
