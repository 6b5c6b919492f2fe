package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInvitationCode 生成指定长度的随机邀请码
func GenerateInvitationCode(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	limit := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		sb.WriteByte(charset[n.Int64()])
	}
	return sb.String()
}
