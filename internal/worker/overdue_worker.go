package worker

import (
	"context"
	"time"

	"taskKeeper/internal/logger"
	"taskKeeper/internal/service"

	"go.uber.org/zap"
)

// OverdueWorker периодически считает просроченные открытые задачи и пишет
// сводку в лог. Статусы задач он не меняет, задача остаётся в todo или
// in-progress, пока владелец сам её не закроет.
type OverdueWorker struct {
	repo     service.TaskRepository
	interval time.Duration
}

func NewOverdueWorker(repo service.TaskRepository, interval time.Duration) *OverdueWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &OverdueWorker{
		repo:     repo,
		interval: interval,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

func (w *OverdueWorker) Check(ctx context.Context) {
	start := time.Now()

	count, err := w.repo.CountOverdue(ctx, start)
	if err != nil {
		logger.Warn("Worker: ошибка подсчёта просроченных задач", zap.Error(err))
		return
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int64("overdue", count),
	)
}
