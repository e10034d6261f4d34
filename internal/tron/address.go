// Package tron реализует кодирование адресов и разбор call data сети TRON.
package tron

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"

	"github.com/mr-tron/base58"
)

const (
	// AccountVersionByte — версионный байт адресов аккаунтов сети TRON.
	// Сырые 20-байтовые значения из call data дополняются им перед кодированием.
	AccountVersionByte = 0x41

	// AddressLength — длина бинарного адреса: версионный байт и 20 байт полезной нагрузки.
	AddressLength = 21

	checksumLength = 4
)

// ErrChecksumMismatch возвращается, если контрольная сумма адреса не совпадает
// с двойным хешем предшествующих байт.
var (
	ErrChecksumMismatch = errors.New("address checksum mismatch")
	// ErrAddressTooShort возвращается, если декодированный адрес короче минимально возможного.
	ErrAddressTooShort = errors.New("address too short")
)

// Codec кодирует бинарные адреса в текстовую форму base58check и обратно.
// Контрольная сумма — первые четыре байта двойного хеша; хеш-функция
// настраивается опцией, по умолчанию SHA-256.
type Codec struct {
	newHash func() hash.Hash
}

// Option настраивает Codec.
type Option func(*Codec)

// WithChecksumHash задаёт хеш-функцию для вычисления контрольной суммы.
func WithChecksumHash(newHash func() hash.Hash) Option {
	return func(c *Codec) {
		c.newHash = newHash
	}
}

// NewCodec создаёт кодек адресов с указанными опциями.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{newHash: sha256.New}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode кодирует бинарный адрес в текстовую форму base58check.
// Версионный байт, если он присутствует в raw, сохраняется без изменений;
// вызывающая сторона отвечает за его добавление к голой полезной нагрузке.
func (c *Codec) Encode(raw []byte) string {
	b := make([]byte, len(raw)+checksumLength)
	n := copy(b, raw)
	copy(b[n:], c.checksum(raw))
	return base58.Encode(b)
}

// Decode декодирует текстовый адрес и проверяет контрольную сумму.
// Несовпадение контрольной суммы — ошибка декодирования, а не тихий пропуск.
func (c *Codec) Decode(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}

	if len(b) <= checksumLength {
		return nil, ErrAddressTooShort
	}

	raw := b[:len(b)-checksumLength]
	if !bytes.Equal(b[len(b)-checksumLength:], c.checksum(raw)) {
		return nil, ErrChecksumMismatch
	}

	return raw, nil
}

func (c *Codec) checksum(raw []byte) []byte {
	h := c.newHash()
	h.Write(raw)
	first := h.Sum(nil)

	h = c.newHash()
	h.Write(first)
	second := h.Sum(nil)

	return second[:checksumLength]
}
