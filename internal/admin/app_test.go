package admin

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/omhauth/internal/server/config"
	"github.com/stretchr/testify/assert"
)

func TestNewApp_RejectsMemoryStore(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = "memory://dev"

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, ErrMemoryStore)
}
