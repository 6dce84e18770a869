// Package encoding 封装外部视频编码服务的资产生命周期接口。
// 该服务接收一个可公开访问的源视频 URL，异步转码后返回资产 id 与播放 id；
// 本包只负责 create/delete 两个操作，转码进度等由播放端轮询服务商。
package encoding

import (
	"bytes"
	"context"
	"courselab_backend/internal/config"
	"courselab_backend/internal/util"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// 播放策略
const (
	PolicyPublic = "public"
	PolicySigned = "signed"
)

// Asset 服务商返回的资产句柄
type Asset struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	PlaybackIDs []string `json:"playback_ids"`
}

// PlaybackID 首个播放 id，服务商未返回时为空串
func (a *Asset) PlaybackID() string {
	if len(a.PlaybackIDs) == 0 {
		return ""
	}
	return a.PlaybackIDs[0]
}

// AssetAPI 资产生命周期操作，service 层依赖此接口以便测试替换
type AssetAPI interface {
	CreateAsset(ctx context.Context, inputURL, policy string) (*Asset, error)
	DeleteAsset(ctx context.Context, assetID string) error
}

// Client 基于 HTTP 的默认实现，token 对走 Basic Auth
type Client struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	httpClient  *http.Client
}

func NewClient(cfg config.EncodingConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		tokenID:     cfg.TokenID,
		tokenSecret: cfg.TokenSecret,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type createAssetRequest struct {
	Input          string   `json:"input"`
	PlaybackPolicy []string `json:"playback_policy"`
	Test           bool     `json:"test"`
}

type createAssetResponse struct {
	Data struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		PlaybackIDs []struct {
			ID     string `json:"id"`
			Policy string `json:"policy"`
		} `json:"playback_ids"`
	} `json:"data"`
	Error *struct {
		Messages []string `json:"messages"`
	} `json:"error,omitempty"`
}

// CreateAsset 从源 URL 创建一个新资产
// 超时后重试须先检查资产记录是否已落库，避免在服务商侧产生重复资产
func (c *Client) CreateAsset(ctx context.Context, inputURL, policy string) (*Asset, error) {
	body, err := json.Marshal(createAssetRequest{
		Input:          inputURL,
		PlaybackPolicy: []string{policy},
		Test:           false,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/video/v1/assets", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: create asset: %v", util.ErrUpstreamAsset, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", util.ErrUpstreamAsset, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: create asset returned %d: %s", util.ErrUpstreamAsset, resp.StatusCode, string(data))
	}

	var parsed createAssetResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", util.ErrUpstreamAsset, err)
	}
	if parsed.Data.ID == "" {
		return nil, fmt.Errorf("%w: create asset returned empty id", util.ErrUpstreamAsset)
	}

	asset := &Asset{
		ID:     parsed.Data.ID,
		Status: parsed.Data.Status,
	}
	for _, p := range parsed.Data.PlaybackIDs {
		asset.PlaybackIDs = append(asset.PlaybackIDs, p.ID)
	}
	return asset, nil
}

// DeleteAsset 删除远端资产；404 视为已删除成功，便于重试
// 超时不等于删除成功，调用方必须保留本地资产记录等待下次重试
func (c *Client) DeleteAsset(ctx context.Context, assetID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/video/v1/assets/"+assetID, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: delete asset: %v", util.ErrUpstreamAsset, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: delete asset returned %d", util.ErrUpstreamAsset, resp.StatusCode)
	}
	return nil
}
