package usecase_test

import (
	"context"
	"errors"
	"testing"

	"gradhire-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	up := usecase.PingFunc(func(context.Context) error { return nil })
	down := usecase.PingFunc(func(context.Context) error { return errors.New("connection refused") })

	result, ok := usecase.NewHealthUsecase(map[string]usecase.Pinger{"database": up, "redis": nil}).
		Check(context.Background())
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"status": "ok", "database": "up"}, result)

	result, ok = usecase.NewHealthUsecase(map[string]usecase.Pinger{"database": up, "redis": down}).
		Check(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "degraded", result["status"])
	assert.Equal(t, "down", result["redis"])
}
