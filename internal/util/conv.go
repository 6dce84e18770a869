package util

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
)

// GenerateRandomString 生成 n 个字符的随机十六进制串，用于文件名去重
func GenerateRandomString(n int) string {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(int64(n), 36)
	}
	return hex.EncodeToString(b)[:n]
}
