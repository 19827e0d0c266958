//go:build integration

package certificate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"birthregistry/internal/certificate"
	platformredis "birthregistry/internal/platform/redis"
	"birthregistry/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *certificate.Cache
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())

	client, err := platformredis.New(s.redis.URL)
	s.Require().NoError(err)
	s.Require().NotNil(client)

	s.cache = certificate.NewCache(client, time.Minute)
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CacheSuite) view() *certificate.View {
	return &certificate.View{
		CertificateNumber:  "BC/2025/0314/042",
		ChildName:          "Aarav Sharma",
		RegistrationNumber: "REG-20250314-042",
		VerificationToken:  "token",
	}
}

func (s *CacheSuite) TestSetAndGet() {
	ctx := context.Background()

	s.Nil(s.cache.Get(ctx, "REG-20250314-042"))

	s.cache.Set(ctx, "REG-20250314-042", s.view())

	got := s.cache.Get(ctx, "REG-20250314-042")
	s.Require().NotNil(got)
	s.Equal("BC/2025/0314/042", got.CertificateNumber)
	s.Equal("Aarav Sharma", got.ChildName)
}

func (s *CacheSuite) TestInvalidate() {
	ctx := context.Background()

	s.cache.Set(ctx, "REG-20250314-042", s.view())
	s.Require().NotNil(s.cache.Get(ctx, "REG-20250314-042"))

	s.cache.Invalidate(ctx, "REG-20250314-042")
	s.Nil(s.cache.Get(ctx, "REG-20250314-042"))
}

func (s *CacheSuite) TestTTLExpiry() {
	ctx := context.Background()

	client, err := platformredis.New(s.redis.URL)
	s.Require().NoError(err)
	short := certificate.NewCache(client, time.Second)

	short.Set(ctx, "REG-20250314-042", s.view())
	s.Require().NotNil(short.Get(ctx, "REG-20250314-042"))

	time.Sleep(1500 * time.Millisecond)
	s.Nil(short.Get(ctx, "REG-20250314-042"))
}

func (s *CacheSuite) TestNilCacheIsANoOp() {
	ctx := context.Background()
	var nilCache *certificate.Cache

	s.Nil(nilCache.Get(ctx, "REG-20250314-042"))
	nilCache.Set(ctx, "REG-20250314-042", s.view())
	nilCache.Invalidate(ctx, "REG-20250314-042")
}
