package task

import (
	"instagen/internal/service"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatsTask_Run(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	stats := service.NewStats()
	stats.RecordGeneration(4)
	stats.RecordExport()

	task := NewStatsTask(stats, "0 */10 * * * *", zap.New(core))
	task.Run()

	entries := logs.FilterMessage("service stats").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(1), fields["generations"])
	assert.Equal(t, int64(4), fields["posts"])
	assert.Equal(t, int64(1), fields["exports"])
	assert.Equal(t, int64(0), fields["failures"])
}

func TestStatsTask_StartStop(t *testing.T) {
	task := NewStatsTask(service.NewStats(), "*/30 * * * * *", nil)
	require.NoError(t, task.Start())
	assert.Len(t, task.Cron.Entries(), 1)
	task.Stop()
}

func TestStatsTask_InvalidSpec(t *testing.T) {
	task := NewStatsTask(service.NewStats(), "not a cron", nil)
	assert.Error(t, task.Start())
}
