package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newScopesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scopes",
		Short: "列出本地保存了暂存数据的身份，按最近修改排序",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lister, ok := app.slot.(interface{ Scopes() ([]string, error) })
			if !ok {
				return writeErr(cmd, errors.New("当前暂存后端不支持列出身份"))
			}
			scopes, err := lister.Scopes()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, scopes)
		},
	}
}

func newForgetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "forget [scope]",
		Short: "删除某个身份保存在本地的暂存数据，默认为当前身份",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current := app.engine.Scope()
			scope := current
			if len(args) == 1 {
				scope = args[0]
			}
			if scope == "" {
				return writeErr(cmd, errors.New("未登录时需要指定身份"))
			}

			// 当前身份的暂存区在内存中，需要先清空，否则下一次修改会重新写入
			if scope == current {
				app.engine.Cancel()
			}
			if err := app.slot.Delete(scope); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"forgotten": scope})
		},
	}
}
