package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kunquat/kqsynth/internal/conf"
	"github.com/kunquat/kqsynth/pkg/kqt"
)

func newValidateCmd(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project-dir>",
		Short: "Load a project directory and report whether it validates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(settings, args[0])
		},
	}
}

func runValidate(settings *conf.Settings, dir string) error {
	project, err := loadProject(dir, newFileCache())
	if err != nil {
		return err
	}

	h := kqt.NewHandle(toKqtOptions(settings))
	if err := applyProject(h, project); err != nil {
		return err
	}
	if err := h.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w (%s)", err, h.GetError())
	}

	fmt.Printf("%s: ok (%d keys)\n", dir, len(project))
	return nil
}
