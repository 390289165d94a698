package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/meta-portal/meta-service/internal/crypto"
	"github.com/meta-portal/meta-service/internal/model"
)

type fakeCache struct {
	data map[string]string
}

func (f *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCache) SetEx(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeCache) Close() error { return nil }

func TestCompanyCache_ContactEmailSurvivesCacheHit(t *testing.T) {
	cipher, err := crypto.New([]byte("0123456789abcdef0123456789abcdef"))
	assert.NoError(t, err)

	cache := &fakeCache{data: map[string]string{}}
	st := &Store{cache: cache, cipher: cipher}

	c := &model.Company{ID: 42, Name: "Acme", Slug: "acme", ContactEmail: "admin@acme.com", IsActive: true}
	c.EncryptedEmail, c.EmailNonce, err = cipher.Encrypt(c.ContactEmail)
	assert.NoError(t, err)

	ctx := context.Background()
	st.cacheCompany(ctx, c)

	// The cached blob carries only the encrypted bytes, never the plaintext.
	assert.NotContains(t, cache.data[companyKey(42)], "admin@acme.com")

	// A cache hit returns the same fields a database read would.
	got, err := st.CompanyByID(ctx, 42)
	assert.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "admin@acme.com", got.ContactEmail)
}
