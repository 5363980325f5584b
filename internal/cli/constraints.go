package cli

import (
	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func newConstraintsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "constraints",
		Aliases: []string{"constraint"},
		Short:   "人员的排班约束",
	}

	cmd.AddCommand(newConstraintsListCmd(app))
	cmd.AddCommand(newConstraintsAddCmd(app))
	cmd.AddCommand(newConstraintsRemoveCmd(app))
	cmd.AddCommand(newConstraintsMoveCmd(app))
	cmd.AddCommand(newConstraintsSaveCmd(app))
	cmd.AddCommand(newConstraintsCancelCmd(app))

	return cmd
}

func newConstraintsListCmd(app *App) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出生效的约束",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.engine.FetchConstraints(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, app.engine.ConstraintsFor(subject))
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "只列出该人员的约束")

	return cmd
}

func newConstraintsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <subject> <date> <DAY|NIGHT> <CANT|PREFERS_NOT|PREFERS>",
		Short: "暂存一条约束",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseShift(args[1], args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			kind, err := domain.ParseConstraintKind(args[3])
			if err != nil {
				return writeErr(cmd, err)
			}

			staged, err := app.engine.AddConstraint(args[0], key, kind)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, staged)
		},
	}
}

func newConstraintsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <subject> <date> <DAY|NIGHT>",
		Short: "删除一条约束",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseShift(args[1], args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.engine.RemoveConstraint(cmd.Context(), args[0], key); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"subject": args[0], "removed": key.String()})
		},
	}
}

func newConstraintsMoveCmd(app *App) *cobra.Command {
	var from, to, payload, kind string

	cmd := &cobra.Command{
		Use:   "move [subject]",
		Short: "把约束从一个班次移到另一个班次",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := readMoveIntent(args, from, to, payload)
			if err != nil {
				return writeErr(cmd, err)
			}
			if kind != "" {
				k, err := domain.ParseConstraintKind(kind)
				if err != nil {
					return writeErr(cmd, err)
				}
				intent.Kind = &k
			}

			if err := app.engine.FetchConstraints(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.engine.MoveConstraint(cmd.Context(), intent); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, app.engine.PendingConstraints())
		},
	}
	addMoveFlags(cmd, &from, &to, &payload)
	cmd.Flags().StringVar(&kind, "kind", "", "约束类型，默认沿用起始班次上的约束")

	return cmd
}

func newConstraintsSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "提交暂存的约束",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pending := len(app.engine.PendingConstraints())
			if err := app.engine.SaveConstraints(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"saved": pending})
		},
	}
}

func newConstraintsCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "丢弃暂存的约束",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.engine.CancelConstraints()
			return writeOut(cmd, app, map[string]any{"pending": 0})
		},
	}
}
