package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/config"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/engine"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/gateway"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/staging"
)

// App 保存一次命令行调用中共享的依赖，engine 在第一个子命令运行前创建
type App struct {
	Token  string
	Pretty bool

	cfg    *config.Config
	logger *slog.Logger

	engine  *engine.Engine
	gateway *gateway.Client
	slot    slotStore
	closers []func() error
}

// slotStore 是 sqlite 和 redis 两种后端共有的操作
type slotStore interface {
	staging.Slot
	Delete(scope string) error
}

func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Close 依次释放打开的连接，返回第一个错误
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shiftctl",
		Short:         "排班管理命令行客户端，修改先暂存在本地，save 之后才提交到服务器",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # 暂存一个排班，然后提交
  shiftctl shifts assign 2024-06-10 DAY alice
  shiftctl shifts save

  # 为自己添加约束
  shiftctl constraints add alice 2024-06-11 NIGHT CANT
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.open(cmd.Context())
	}

	cmd.PersistentFlags().StringVar(&app.Token, "token", "", "登录令牌，默认读取 SESSION_TOKEN")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "格式化输出的 JSON")

	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newWeekCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newRefreshCmd(app))
	cmd.AddCommand(newCancelCmd(app))
	cmd.AddCommand(newShiftsCmd(app))
	cmd.AddCommand(newConstraintsCmd(app))
	cmd.AddCommand(newPresetsCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newScopesCmd(app))
	cmd.AddCommand(newForgetCmd(app))

	return cmd
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return reported{err}
}

// reported 标记已经输出过的错误
type reported struct{ error }

func (r reported) Unwrap() error { return r.error }

// Reported 判断 err 是否已经由命令输出到标准错误
func Reported(err error) bool {
	var r reported
	return errors.As(err, &r)
}

// parseShift 解析 "2006-01-02 DAY" 形式的两个参数
func parseShift(date, kind string) (domain.ShiftKey, error) {
	return domain.ParseShiftKey(date, kind)
}

// parseShiftRef 解析 "2006-01-02/DAY" 形式的单个参数，空字符串返回 nil
func parseShiftRef(s string) (*domain.ShiftKey, error) {
	if s == "" {
		return nil, nil
	}
	date, kind, ok := strings.Cut(s, "/")
	if !ok {
		return nil, fmt.Errorf("班次格式应为 日期/类型，例如 2024-06-10/DAY：%q", s)
	}
	key, err := domain.ParseShiftKey(date, kind)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (a *App) refresh(ctx context.Context) error {
	return a.engine.Refresh(ctx)
}
