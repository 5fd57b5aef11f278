package auth

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TokenGenerator はセッショントークンの生成インターフェース。
// 生成されたトークンはそのままセッションの主キーとして保存される。
// ID＋シークレット分離方式に差し替える場合もこのインターフェースを実装する。
type TokenGenerator interface {
	Generate(userID string, now time.Time) (string, error)
}

// BcryptTokenGenerator はユーザーIDとナノ秒精度のタイムスタンプを連結したシードを
// bcryptでハッシュ化し、ハッシュ文字列をトークンとして返す。
// bcryptはハッシュごとにランダムなソルトを生成するため、同一シードでも値は一意になる。
type BcryptTokenGenerator struct {
	Cost int
}

// NewBcryptTokenGenerator はBcryptTokenGeneratorを生成する。
// costが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewBcryptTokenGenerator(cost int) *BcryptTokenGenerator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptTokenGenerator{Cost: cost}
}

// Generate はセッショントークンを生成する。
// シードは最大でUUID(36)+19桁であり、bcryptの入力上限72バイトに収まる。
func (g *BcryptTokenGenerator) Generate(userID string, now time.Time) (string, error) {
	seed := userID + strconv.FormatInt(now.UnixNano(), 10)
	hash, err := bcrypt.GenerateFromPassword([]byte(seed), g.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash session seed: %w", err)
	}
	return string(hash), nil
}

// compile-time interface check
var _ TokenGenerator = (*BcryptTokenGenerator)(nil)
