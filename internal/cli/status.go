package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/session"
)

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "显示当前登录身份",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := app.engine.Session()
			return writeOut(cmd, app, map[string]any{
				"authenticated": sess.IsAuthenticated(),
				"admin":         sess.IsAdmin(),
				"username":      sess.Username(),
			})
		},
	}
}

func newWeekCmd(app *App) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "week",
		Short: "列出本周（或偏移若干周）的七个日期，每周从周日开始",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dates := domain.WeekDates(time.Now(), offset)
			out := make([]string, 0, len(dates))
			for _, d := range dates {
				out = append(out, d.Format(time.DateOnly))
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "相对本周的偏移")

	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "显示暂存区中尚未提交的修改",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]any{
				"dirty":       app.engine.HasPending(),
				"shifts":      app.engine.PendingShifts(),
				"constraints": app.engine.PendingConstraints(),
			}
			if draft, ok := app.engine.Draft(); ok {
				out["draft"] = draft
			}
			return writeOut(cmd, app, out)
		},
	}
}

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "从服务器获取排班、约束和预设",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.refresh(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"shifts":      len(app.engine.CommittedShifts()),
				"constraints": len(app.engine.CommittedConstraints()),
				"presets":     len(app.engine.Presets().Presets),
			})
		},
	}
}

func newCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "丢弃暂存区中的全部修改",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.engine.Cancel()
			return writeOut(cmd, app, map[string]any{"pending": 0})
		},
	}
}

func newUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "列出可以排班的人员",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.gateway.ListSubjects(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, users)
		},
	}
}

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <token>",
		Short: "切换到令牌对应的身份，显示该身份的暂存修改和服务器数据概况",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.FromToken(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !sess.IsAuthenticated() {
				return writeErr(cmd, domain.ErrUnauthenticated)
			}

			app.gateway = app.gateway.WithSession(sess)
			if err := app.engine.SwitchSession(sess, app.gateway); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.refresh(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"username":  sess.Username(),
				"admin":     sess.IsAdmin(),
				"pending":   len(app.engine.PendingShifts()) + len(app.engine.PendingConstraints()),
				"committed": len(app.engine.CommittedShifts()),
			})
		},
	}
}
