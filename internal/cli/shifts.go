package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func newShiftsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "排班",
	}

	cmd.AddCommand(newShiftsListCmd(app))
	cmd.AddCommand(newShiftsAssignCmd(app))
	cmd.AddCommand(newShiftsUnassignCmd(app))
	cmd.AddCommand(newShiftsMoveCmd(app))
	cmd.AddCommand(newShiftsPresetCmd(app))
	cmd.AddCommand(newShiftsSaveCmd(app))
	cmd.AddCommand(newShiftsCancelCmd(app))
	cmd.AddCommand(newShiftsSuggestCmd(app))
	cmd.AddCommand(newShiftsResetWeekCmd(app))
	cmd.AddCommand(newShiftsRecalcCmd(app))

	return cmd
}

func newShiftsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出生效的排班，暂存的排班覆盖已提交的",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.engine.FetchShifts(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, app.engine.ResolveAll())
		},
	}
}

func newShiftsAssignCmd(app *App) *cobra.Command {
	var presetName string

	cmd := &cobra.Command{
		Use:   "assign <date> <DAY|NIGHT> <subject>",
		Short: "暂存一个排班",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseShift(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}

			var preset *domain.ScoringPreset
			if err := app.engine.FetchPresets(cmd.Context()); err != nil {
				if presetName != "" {
					return writeErr(cmd, err)
				}
				// 暂存只在本地进行，离线时不带预设
				app.logger.Warn("无法获取评分预设，排班将不带预设暂存", "error", err)
			} else if presetName != "" {
				p, ok := app.engine.Presets().Presets[presetName]
				if !ok {
					return writeErr(cmd, domain.ErrNotFound)
				}
				preset = &p
			}

			if app.engine.IsOccupied(key) {
				app.logger.Info("班次已有分配，将被覆盖", "日期", args[0], "班次", args[1])
			}

			staged, err := app.engine.Assign(key, args[2], preset)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, staged)
		},
	}
	cmd.Flags().StringVar(&presetName, "preset", "", "使用的评分预设，默认为当前预设")

	return cmd
}

func newShiftsUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <date> <DAY|NIGHT>",
		Short: "撤销排班，暂存的直接丢弃，已提交的从服务器删除",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseShift(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.engine.Unassign(cmd.Context(), key); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"unassigned": key.String()})
		},
	}
}

func newShiftsMoveCmd(app *App) *cobra.Command {
	var from, to, payload string

	cmd := &cobra.Command{
		Use:   "move [subject]",
		Short: "把人员从一个班次移到另一个班次",
		Example: `  shiftctl shifts move alice --from 2024-06-10/DAY --to 2024-06-11/NIGHT
  shiftctl shifts move --payload drop.json --to 2024-06-11/NIGHT`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := readMoveIntent(args, from, to, payload)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.engine.FetchShifts(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.engine.MoveAssignment(cmd.Context(), intent); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, app.engine.PendingShifts())
		},
	}
	addMoveFlags(cmd, &from, &to, &payload)

	return cmd
}

func newShiftsPresetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preset <date> <DAY|NIGHT> <preset>",
		Short: "更换已排班次使用的评分预设",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseShift(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.refresh(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			staged, err := app.engine.ChangePreset(key, args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, staged)
		},
	}
}

func newShiftsSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "提交暂存的排班",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pending := len(app.engine.PendingShifts())
			if err := app.engine.SaveAssignments(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"saved": pending})
		},
	}
}

func newShiftsCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "丢弃暂存的排班",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.engine.CancelAssignments()
			return writeOut(cmd, app, map[string]any{"pending": 0})
		},
	}
}

func newShiftsSuggestCmd(app *App) *cobra.Command {
	var subjects []string
	var offset int

	cmd := &cobra.Command{
		Use:   "suggest [start end]",
		Short: "请求建议排班，结果会覆盖暂存的排班。不指定日期时使用 --offset 指定的一周",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("需要同时指定开始和结束日期，或者都不指定")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			week := domain.WeekDates(time.Now(), offset)
			start, end := week[0], week[len(week)-1]
			if len(args) == 2 {
				var err error
				if start, err = parseDate(args[0]); err != nil {
					return writeErr(cmd, err)
				}
				if end, err = parseDate(args[1]); err != nil {
					return writeErr(cmd, err)
				}
			}

			staged, err := app.engine.Suggest(cmd.Context(), subjects, start, end)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, staged)
		},
	}
	cmd.Flags().StringSliceVar(&subjects, "subject", nil, "参与排班的人员，可以重复")
	cmd.Flags().IntVar(&offset, "offset", 0, "相对本周的偏移")

	return cmd
}

func newShiftsResetWeekCmd(app *App) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "reset-week [date]",
		Short: "删除服务器上 date 所在一周的全部排班，不指定日期时使用 --offset 指定的一周",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := domain.WeekDates(time.Now(), offset)[0]
			if len(args) == 1 {
				var err error
				if date, err = parseDate(args[0]); err != nil {
					return writeErr(cmd, err)
				}
			}

			staged, err := app.engine.ResetWeek(cmd.Context(), date)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"weekStart": domain.WeekStart(date).Format(time.DateOnly),
				"staged":    staged,
			})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "相对本周的偏移")

	return cmd
}

func newShiftsRecalcCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "让服务器重新计算所有人的分数",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.engine.RecalculateScores(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"recalculated": true})
		},
	}
}

func addMoveFlags(cmd *cobra.Command, from, to, payload *string) {
	cmd.Flags().StringVar(from, "from", "", "起始班次，格式为 日期/类型")
	cmd.Flags().StringVar(to, "to", "", "目标班次，格式为 日期/类型，留空表示移出班表")
	cmd.Flags().StringVar(payload, "payload", "", "拖放时写入的 JSON 文件，提供人员和起始班次")
}

func readMoveIntent(args []string, from, to, payload string) (domain.MoveIntent, error) {
	target, err := parseShiftRef(to)
	if err != nil {
		return domain.MoveIntent{}, err
	}

	if payload != "" {
		data, err := os.ReadFile(payload)
		if err != nil {
			return domain.MoveIntent{}, err
		}
		return domain.DecodeMoveIntent(data, target)
	}

	origin, err := parseShiftRef(from)
	if err != nil {
		return domain.MoveIntent{}, err
	}

	intent := domain.MoveIntent{From: origin, To: target}
	if len(args) > 0 {
		intent.SubjectID = args[0]
	}
	return intent, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, domain.Location)
}
