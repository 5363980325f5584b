package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Refresh 并发获取排班、约束和预设，返回第一个失败的错误。
// 一项失败不会取消其余两项，每项失败各自只通知一次。
func (e *Engine) Refresh(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error { return e.FetchShifts(ctx) })
	g.Go(func() error { return e.FetchConstraints(ctx) })
	g.Go(func() error { return e.FetchPresets(ctx) })

	return g.Wait()
}
