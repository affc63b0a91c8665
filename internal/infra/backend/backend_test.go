package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jose-valero/streambot/internal/infra/config"
)

func TestOpenFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = st.Close(ctx) }()

	assert.Equal(t, "memory", st.Name)
	assert.NoError(t, st.Docs.Ping(ctx))

	items, err := st.Tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
