package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// ----------------- 密码 -----------------

// HashPassword 使用 bcrypt 生成密码哈希，cost 非法时退回默认值。
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword 验证明文密码与存储的哈希是否匹配。
func CheckPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// ----------------- AES-256-GCM（备份文件、安全日志） -----------------

const kdfSalt = "berdoz-admin/aes-gcm"

var keyCache sync.Map // 口令 -> []byte

// deriveKey 用 PBKDF2 把配置里的口令拉伸成 32 字节 key，结果缓存。
func deriveKey(keyStr string) []byte {
	if k, ok := keyCache.Load(keyStr); ok {
		return k.([]byte)
	}
	key := pbkdf2.Key([]byte(keyStr), []byte(kdfSalt), 100_000, 32, sha256.New)
	keyCache.Store(keyStr, key)
	return key
}

func newGCM(keyStr string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(keyStr))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aesgcm, nil
}

// EncryptAES 使用 AES-256-GCM 加密数据，返回 nonce+ciphertext。
func EncryptAES(keyStr string, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(keyStr)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptAES 使用 AES-256-GCM 解密数据（输入必须是 nonce+ciphertext）。
func DecryptAES(keyStr string, data []byte) ([]byte, error) {
	aesgcm, err := newGCM(keyStr)
	if err != nil {
		return nil, err
	}
	ns := aesgcm.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("cipher too short")
	}
	plaintext, err := aesgcm.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// EncryptString 加密后转 base64，空串或未配置 key 时原样返回。
func EncryptString(keyStr, plain string) (string, error) {
	if plain == "" || keyStr == "" {
		return plain, nil
	}
	b, err := EncryptAES(keyStr, []byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecryptString 是 EncryptString 的逆操作，解不开时返回原值。
func DecryptString(keyStr, cipherStr string) string {
	if cipherStr == "" || keyStr == "" {
		return cipherStr
	}
	b, err := base64.StdEncoding.DecodeString(cipherStr)
	if err != nil {
		return cipherStr
	}
	plain, err := DecryptAES(keyStr, b)
	if err != nil {
		return cipherStr
	}
	return string(plain)
}
