package cli

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func newPresetsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "presets",
		Aliases: []string{"preset"},
		Short:   "评分预设",
	}

	cmd.AddCommand(newPresetsListCmd(app))
	cmd.AddCommand(newPresetsSelectCmd(app))
	cmd.AddCommand(newPresetsDraftCmd(app))
	cmd.AddCommand(newPresetsSetWeightCmd(app))
	cmd.AddCommand(newPresetsSaveCmd(app))
	cmd.AddCommand(newPresetsDiscardCmd(app))

	return cmd
}

func newPresetsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部预设和当前预设",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.engine.FetchPresets(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, app.engine.Presets())
		},
	}
}

func newPresetsSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select <name>",
		Short: "切换当前预设",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.engine.SelectPreset(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"currentPreset": args[0]})
		},
	}
}

func newPresetsDraftCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "draft <name>",
		Short: "以已有预设为起点开始编辑，名字不存在时从空预设开始",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.engine.FetchPresets(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, app.engine.DraftPresetFromName(args[0]))
		},
	}
}

func newPresetsSetWeightCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-weight <day> <DAY|NIGHT> <weight>",
		Short: "修改草稿中某一天某个班次的权重",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseShiftKind(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			weight, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return writeErr(cmd, err)
			}

			if current, ok := app.engine.Draft(); ok {
				if prev, ok := current.WeightFor(args[0], kind); ok {
					app.logger.Debug("修改草稿权重", "日期", args[0], "班次", kind, "原权重", prev, "新权重", weight)
				}
			}

			draft, err := app.engine.SetDraftWeight(args[0], kind, weight)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, draft)
		},
	}
}

func newPresetsSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "提交正在编辑的预设",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.engine.SaveDraft(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, app.engine.Presets())
		},
	}
}

func newPresetsDiscardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "丢弃正在编辑的预设",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.engine.DiscardDraft()
			return writeOut(cmd, app, map[string]any{"draft": nil})
		},
	}
}
