package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-converter/internal/domain/tabular"
	"github.com/FACorreiaa/statement-converter/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLayout(items []tabular.TextItem, err error) LayoutFunc {
	return func(ctx context.Context, file []byte) ([]tabular.TextItem, error) {
		return items, err
	}
}

func statementItems() []tabular.TextItem {
	return []tabular.TextItem{
		{Text: "Date", X: 0, Y: 0, Width: 30},
		{Text: "Description", X: 100, Y: 0, Width: 70},
		{Text: "Amount", X: 250, Y: 0, Width: 50},
		{Text: "01/15/2024", X: 0, Y: 20, Width: 60},
		{Text: "Grocery", X: 100, Y: 20, Width: 50},
		{Text: "-45.67", X: 250, Y: 20, Width: 40},
	}
}

func TestService_Extract(t *testing.T) {
	t.Run("spatial extraction end to end", func(t *testing.T) {
		svc := NewService(config.ExtractConfig{QueueSize: 2, JobTimeout: 5}, testLayout(statementItems(), nil), testLogger())
		defer svc.Close()

		var mu sync.Mutex
		var progress []int
		table, err := svc.Extract(context.Background(), []byte("pdf-bytes"), StrategySpatial, func(p int) {
			mu.Lock()
			progress = append(progress, p)
			mu.Unlock()
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"Date", "Description", "Amount"}, table.Headers)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Grocery", table.Rows[0]["Description"])

		mu.Lock()
		defer mu.Unlock()
		require.NotEmpty(t, progress)
		assert.Equal(t, 0, progress[0])
		assert.Equal(t, 100, progress[len(progress)-1])
		assert.IsNonDecreasing(t, progress)
	})

	t.Run("layout failure surfaces as error", func(t *testing.T) {
		svc := NewService(config.ExtractConfig{}, testLayout(nil, errors.New("cannot read PDF buffer")), testLogger())
		defer svc.Close()

		_, err := svc.Extract(context.Background(), []byte("broken"), StrategySpatial, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot read PDF buffer")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		svc := NewService(config.ExtractConfig{}, testLayout(nil, nil), testLogger())
		defer svc.Close()

		_, err := svc.Extract(context.Background(), nil, "ocr", nil)
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("extract after close", func(t *testing.T) {
		svc := NewService(config.ExtractConfig{}, testLayout(nil, nil), testLogger())
		svc.Close()

		_, err := svc.Extract(context.Background(), nil, StrategySpatial, nil)
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("concurrent submissions are serialized", func(t *testing.T) {
		var mu sync.Mutex
		inFlight := 0
		maxInFlight := 0

		layout := func(ctx context.Context, file []byte) ([]tabular.TextItem, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return statementItems(), nil
		}

		svc := NewService(config.ExtractConfig{QueueSize: 8, JobTimeout: 5}, layout, testLogger())
		defer svc.Close()

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Extract(context.Background(), []byte("f"), StrategySpatial, nil)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, maxInFlight)
	})

	t.Run("caller cancellation abandons the wait", func(t *testing.T) {
		layout := func(ctx context.Context, file []byte) ([]tabular.TextItem, error) {
			time.Sleep(50 * time.Millisecond)
			return statementItems(), nil
		}
		svc := NewService(config.ExtractConfig{QueueSize: 1, JobTimeout: 5}, layout, testLogger())
		defer svc.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		_, err := svc.Extract(ctx, []byte("f"), StrategySpatial, nil)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("register custom strategy", func(t *testing.T) {
		svc := NewService(config.ExtractConfig{}, nil, testLogger())
		defer svc.Close()

		svc.RegisterStrategy("fixed", strategyFunc(func(ctx context.Context, file []byte, report func(int)) (*tabular.TableData, error) {
			report(100)
			return &tabular.TableData{Headers: []string{"Only"}, Confidence: 1}, nil
		}))

		table, err := svc.Extract(context.Background(), nil, "fixed", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Only"}, table.Headers)
	})
}

type strategyFunc func(ctx context.Context, file []byte, report func(int)) (*tabular.TableData, error)

func (f strategyFunc) Extract(ctx context.Context, file []byte, report func(int)) (*tabular.TableData, error) {
	return f(ctx, file, report)
}
