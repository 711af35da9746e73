package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("survey parsed", slog.Int("respondents", 2))
		logger.Error("survey parse failed", slog.String("field", "report flags"))

		require.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("parsed"))
		assert.True(t, handler.ContainsAttr("respondents", int64(2)))
		assert.True(t, handler.ContainsAttr("field", "report flags"))
	})

	t.Run("scoped loggers share the buffer", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		parser := logger.With(slog.String("component", "parser"))

		parser.Warn("ignoring respondent rows beyond declared count", slog.Int("declared", 1))
		logger.Info("unscoped")

		records := handler.GetRecords()
		require.Len(t, records, 2)
		assert.Equal(t, "parser", records[0].Attrs["component"])
		assert.Equal(t, int64(1), records[0].Attrs["declared"])
		assert.NotContains(t, records[1].Attrs, "component")
	})

	t.Run("filters by level and message", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("parser state change")
		logger.Info("survey parsed")
		logger.Warn("values matched no declared option")
		logger.Error("run failed")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
		assert.Len(t, handler.GetRecordsByMessage("survey"), 1)
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("report written", slog.String("component", "exporter"))
		logger.Warn("survey validation failed", slog.Int("problems", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "report")
		AssertLogAttr(t, handler, "component", "exporter")
		AssertNoErrors(t, handler)
	})

	t.Run("concurrent logging", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.With(slog.Int("worker", n)).Info("concurrent log")
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
	})
}
